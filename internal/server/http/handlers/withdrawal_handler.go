package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/polkiloo/earnbot/internal/domain/model"
	"github.com/polkiloo/earnbot/internal/server/http/dto"
)

// WithdrawalHandler lets administrators moderate withdrawal requests.
type WithdrawalHandler struct {
	facade WithdrawalFacade
}

// NewWithdrawalHandler constructs WithdrawalHandler.
func NewWithdrawalHandler(facade WithdrawalFacade) *WithdrawalHandler {
	return &WithdrawalHandler{facade: facade}
}

// Pending handles GET /api/admin/withdrawals/pending.
func (h *WithdrawalHandler) Pending(c *gin.Context) {
	items, err := h.facade.PendingWithdrawals(c.Request.Context(), CurrentAdminID(c), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.WithdrawalResponse, 0, len(items))
	for _, w := range items {
		resp = append(resp, toWithdrawalResponse(w))
	}
	c.JSON(http.StatusOK, resp)
}

// Approve handles POST /api/admin/withdrawals/:id/approve.
func (h *WithdrawalHandler) Approve(c *gin.Context) {
	h.resolve(c, model.WithdrawalApprove)
}

// Reject handles POST /api/admin/withdrawals/:id/reject.
func (h *WithdrawalHandler) Reject(c *gin.Context) {
	h.resolve(c, model.WithdrawalReject)
}

func (h *WithdrawalHandler) resolve(c *gin.Context, action model.WithdrawalAction) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c)
		return
	}

	w, err := h.facade.ResolveWithdrawal(c.Request.Context(), CurrentAdminID(c), id, action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWithdrawalResponse(*w))
}
