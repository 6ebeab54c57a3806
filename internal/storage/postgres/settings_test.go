package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	"github.com/polkiloo/earnbot/internal/domain/model"
)

var (
	seedSettingPattern   = regexp.QuoteMeta("INSERT INTO settings (key, enabled, params) VALUES")
	selectSettingPattern = regexp.QuoteMeta("SELECT key, enabled, params, updated_at FROM settings")
)

var settingColumns = []string{"key", "enabled", "params", "updated_at"}

func TestSettingRepositorySeed(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &settingRepository{storage: storage}

	now := time.Now()
	def := model.Setting{Key: model.SettingTimeGap, Enabled: true, Params: map[string]string{model.ParamCooldown: "1h"}}

	mock.ExpectExec(seedSettingPattern).WithArgs(model.SettingTimeGap, true, `{"cooldown":"1h"}`).WillReturnResult(pgxmockv3.NewResult("INSERT", 0))
	mock.ExpectQuery(selectSettingPattern).WithArgs(model.SettingTimeGap).WillReturnRows(
		pgxmockv3.NewRows(settingColumns).AddRow(model.SettingTimeGap, false, []byte(`{"cooldown":"2h"}`), now))
	s, err := repo.Seed(context.Background(), def)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Enabled || s.Param(model.ParamCooldown, "") != "2h" {
		t.Fatalf("expected stored record to win over defaults, got %+v", s)
	}

	mock.ExpectExec(seedSettingPattern).WithArgs(model.SettingWithdraw, true, "{}").WillReturnError(errors.New("insert"))
	if _, err := repo.Seed(context.Background(), model.Setting{Key: model.SettingWithdraw, Enabled: true}); err == nil {
		t.Fatal("expected seed error")
	}

	mock.ExpectExec(seedSettingPattern).WithArgs(model.SettingWithdraw, true, "{}").WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	mock.ExpectQuery(selectSettingPattern).WithArgs(model.SettingWithdraw).WillReturnRows(
		pgxmockv3.NewRows(settingColumns).AddRow(model.SettingWithdraw, true, []byte(`not json`), now))
	if _, err := repo.Seed(context.Background(), model.Setting{Key: model.SettingWithdraw, Enabled: true}); err == nil {
		t.Fatal("expected decode error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestSettingRepositoryToggles(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &settingRepository{storage: storage}

	now := time.Now()
	def := model.Setting{Key: model.SettingTimeGap, Enabled: true, Params: map[string]string{model.ParamCooldown: "1h"}}

	mock.ExpectQuery(seedSettingPattern).WithArgs(model.SettingTimeGap, false, `{"cooldown":"1h"}`).WillReturnRows(
		pgxmockv3.NewRows(settingColumns).AddRow(model.SettingTimeGap, false, []byte(`{"cooldown":"1h"}`), now))
	s, err := repo.SetEnabled(context.Background(), def, false)
	if err != nil || s.Enabled {
		t.Fatalf("unexpected setting %+v err=%v", s, err)
	}

	mock.ExpectQuery(seedSettingPattern).WithArgs(model.SettingTimeGap, true, `{"cooldown":"30m"}`, `{"cooldown":"30m"}`).WillReturnRows(
		pgxmockv3.NewRows(settingColumns).AddRow(model.SettingTimeGap, true, []byte(`{"cooldown":"30m"}`), now))
	s, err = repo.SetParam(context.Background(), def, model.ParamCooldown, "30m")
	if err != nil || s.Param(model.ParamCooldown, "") != "30m" {
		t.Fatalf("unexpected setting %+v err=%v", s, err)
	}
	if def.Params[model.ParamCooldown] != "1h" {
		t.Fatal("defaults must not be mutated")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestSettingRepositoryUpdate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &settingRepository{storage: storage}

	now := time.Now()
	def := model.Setting{Key: model.SettingTimeGap, Enabled: true, Params: map[string]string{model.ParamCooldown: "1h"}}
	enabled := false

	mock.ExpectQuery(seedSettingPattern).WithArgs(model.SettingTimeGap, false, `{"cooldown":"30m0s"}`, false, `{"cooldown":"30m0s"}`).WillReturnRows(
		pgxmockv3.NewRows(settingColumns).AddRow(model.SettingTimeGap, false, []byte(`{"cooldown":"30m0s"}`), now))
	s, err := repo.Update(context.Background(), def, &enabled, map[string]string{model.ParamCooldown: "30m0s"})
	if err != nil || s.Enabled || s.Param(model.ParamCooldown, "") != "30m0s" {
		t.Fatalf("unexpected setting %+v err=%v", s, err)
	}

	mock.ExpectQuery(seedSettingPattern).WithArgs(model.SettingTimeGap, true, `{"cooldown":"2h0m0s"}`, nil, `{"cooldown":"2h0m0s"}`).WillReturnRows(
		pgxmockv3.NewRows(settingColumns).AddRow(model.SettingTimeGap, false, []byte(`{"cooldown":"2h0m0s"}`), now))
	s, err = repo.Update(context.Background(), def, nil, map[string]string{model.ParamCooldown: "2h0m0s"})
	if err != nil || s.Enabled || s.Param(model.ParamCooldown, "") != "2h0m0s" {
		t.Fatalf("expected stored toggle to be kept, got %+v err=%v", s, err)
	}

	mock.ExpectQuery(seedSettingPattern).WithArgs(model.SettingWithdraw, true, "{}", true, "{}").WillReturnError(errors.New("write"))
	enabled = true
	if _, err := repo.Update(context.Background(), model.Setting{Key: model.SettingWithdraw}, &enabled, nil); err == nil {
		t.Fatal("expected update error")
	}
	if def.Params[model.ParamCooldown] != "1h" {
		t.Fatal("defaults must not be mutated")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
