package model

import "time"

// Setting keys known to the service.
const (
	SettingWithdraw = "withdraw"
	SettingTimeGap  = "time_gap"
	SettingGenLink  = "genlink"
)

// ParamCooldown holds the cooldown duration of the time_gap setting.
const ParamCooldown = "cooldown"

// Setting is a named feature toggle with auxiliary parameters.
type Setting struct {
	Key       string
	Enabled   bool
	Params    map[string]string
	UpdatedAt time.Time
}

// Param returns a parameter value or def when it is absent.
func (s Setting) Param(name, def string) string {
	if v, ok := s.Params[name]; ok && v != "" {
		return v
	}
	return def
}
