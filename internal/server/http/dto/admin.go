package dto

// BalanceResponse reports a user's wallet balance.
type BalanceResponse struct {
	UserID  int64  `json:"user_id"`
	Balance string `json:"balance"`
}

// AdjustRequest carries a signed manual balance correction.
type AdjustRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// SettingRequest updates a feature toggle. Cooldown applies to time_gap only.
type SettingRequest struct {
	Enabled  *bool  `json:"enabled"`
	Cooldown string `json:"cooldown"`
}

// SettingResponse describes a feature toggle.
type SettingResponse struct {
	Key     string            `json:"key"`
	Enabled bool              `json:"enabled"`
	Params  map[string]string `json:"params,omitempty"`
}

// ErrorResponse carries a stable reason code.
type ErrorResponse struct {
	Error string `json:"error"`
}
