package repository

import (
	"context"

	"github.com/polkiloo/earnbot/internal/domain/model"
)

// SettingRepository stores feature toggles. Every method seeds def when the
// key is missing.
type SettingRepository interface {
	Seed(ctx context.Context, def model.Setting) (*model.Setting, error)
	SetEnabled(ctx context.Context, def model.Setting, enabled bool) (*model.Setting, error)
	SetParam(ctx context.Context, def model.Setting, name, value string) (*model.Setting, error)
	// Update sets enabled when it is non-nil and merges params, in one write.
	Update(ctx context.Context, def model.Setting, enabled *bool, params map[string]string) (*model.Setting, error)
}
