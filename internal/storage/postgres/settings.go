package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
)

const (
	seedSettingQuery = `INSERT INTO settings (key, enabled, params) VALUES ($1, $2, $3::jsonb)
                        ON CONFLICT (key) DO NOTHING`
	selectSettingQuery = `SELECT key, enabled, params, updated_at FROM settings WHERE key=$1`
	setEnabledQuery    = `INSERT INTO settings (key, enabled, params) VALUES ($1, $2, $3::jsonb)
                          ON CONFLICT (key) DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = NOW()
                          RETURNING key, enabled, params, updated_at`
	setParamQuery = `INSERT INTO settings (key, enabled, params) VALUES ($1, $2, $3::jsonb)
                     ON CONFLICT (key) DO UPDATE SET params = settings.params || $4::jsonb, updated_at = NOW()
                     RETURNING key, enabled, params, updated_at`
	updateSettingQuery = `INSERT INTO settings (key, enabled, params) VALUES ($1, $2, $3::jsonb)
                          ON CONFLICT (key) DO UPDATE SET enabled = COALESCE($4::boolean, settings.enabled),
                          params = settings.params || $5::jsonb, updated_at = NOW()
                          RETURNING key, enabled, params, updated_at`
)

// Seed inserts def unless the key exists and returns the stored record. The
// read runs as its own statement so it observes rows committed concurrently.
func (r *settingRepository) Seed(ctx context.Context, def model.Setting) (*model.Setting, error) {
	params, err := encodeParams(def.Params)
	if err != nil {
		return nil, err
	}
	if _, err := r.storage.pool.Exec(ctx, seedSettingQuery, def.Key, def.Enabled, params); err != nil {
		return nil, err
	}
	return scanSetting(r.storage.pool.QueryRow(ctx, selectSettingQuery, def.Key))
}

func (r *settingRepository) SetEnabled(ctx context.Context, def model.Setting, enabled bool) (*model.Setting, error) {
	params, err := encodeParams(def.Params)
	if err != nil {
		return nil, err
	}
	return scanSetting(r.storage.pool.QueryRow(ctx, setEnabledQuery, def.Key, enabled, params))
}

func (r *settingRepository) SetParam(ctx context.Context, def model.Setting, name, value string) (*model.Setting, error) {
	merged := maps.Clone(def.Params)
	if merged == nil {
		merged = map[string]string{}
	}
	merged[name] = value
	seed, err := encodeParams(merged)
	if err != nil {
		return nil, err
	}
	patch, err := encodeParams(map[string]string{name: value})
	if err != nil {
		return nil, err
	}
	return scanSetting(r.storage.pool.QueryRow(ctx, setParamQuery, def.Key, def.Enabled, seed, patch))
}

func (r *settingRepository) Update(ctx context.Context, def model.Setting, enabled *bool, params map[string]string) (*model.Setting, error) {
	seedEnabled := def.Enabled
	var toggle any
	if enabled != nil {
		seedEnabled = *enabled
		toggle = *enabled
	}
	merged := maps.Clone(def.Params)
	if merged == nil {
		merged = map[string]string{}
	}
	maps.Copy(merged, params)
	seed, err := encodeParams(merged)
	if err != nil {
		return nil, err
	}
	patch, err := encodeParams(params)
	if err != nil {
		return nil, err
	}
	return scanSetting(r.storage.pool.QueryRow(ctx, updateSettingQuery, def.Key, seedEnabled, seed, toggle, patch))
}

func scanSetting(row pgx.Row) (*model.Setting, error) {
	var (
		s   model.Setting
		raw []byte
	)
	if err := row.Scan(&s.Key, &s.Enabled, &raw, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.Params); err != nil {
			return nil, fmt.Errorf("decode setting %s params: %w", s.Key, err)
		}
	}
	return &s, nil
}

func encodeParams(params map[string]string) (string, error) {
	if len(params) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode setting params: %w", err)
	}
	return string(raw), nil
}
