package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
	"github.com/polkiloo/earnbot/internal/server/http/dto"
)

// AdminHandler serves gift code, balance and settings endpoints.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// GenerateGiftCodes handles POST /api/admin/giftcodes.
func (h *AdminHandler) GenerateGiftCodes(c *gin.Context) {
	var req dto.GiftCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	amount, err := model.ParseAmount(req.Amount)
	if err != nil {
		respondError(c, domainErrors.ErrInvalidAmount)
		return
	}

	codes, err := h.facade.GenerateGiftCodes(c.Request.Context(), CurrentAdminID(c), amount, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.GiftCodesResponse{Amount: amount.String(), Codes: make([]string, 0, len(codes))}
	for _, g := range codes {
		resp.Codes = append(resp.Codes, g.Code)
	}
	c.JSON(http.StatusCreated, resp)
}

// Balance handles GET /api/admin/users/:id/balance.
func (h *AdminHandler) Balance(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c)
		return
	}

	balance, err := h.facade.Balance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{UserID: userID, Balance: balance.String()})
}

// UpdateSetting handles PUT /api/admin/settings/:key. Both fields are
// validated before anything is written and applied in a single update.
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	var req dto.SettingRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Enabled == nil && req.Cooldown == "") {
		badRequest(c)
		return
	}
	key := c.Param("key")

	var cooldown time.Duration
	if req.Cooldown != "" {
		d, err := time.ParseDuration(req.Cooldown)
		if err != nil || d <= 0 || key != model.SettingTimeGap {
			badRequest(c)
			return
		}
		cooldown = d
	}

	setting, err := h.facade.UpdateSetting(c.Request.Context(), CurrentAdminID(c), key, req.Enabled, cooldown)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SettingResponse{Key: setting.Key, Enabled: setting.Enabled, Params: setting.Params})
}

// AdjustBalance handles POST /api/admin/users/:id/adjust. A negative amount
// debits the wallet.
func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c)
		return
	}
	var req dto.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	delta, err := model.ParseAmount(req.Amount)
	if err != nil {
		respondError(c, domainErrors.ErrInvalidAmount)
		return
	}

	balance, err := h.facade.AdjustBalance(c.Request.Context(), CurrentAdminID(c), userID, delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{UserID: userID, Balance: balance.String()})
}
