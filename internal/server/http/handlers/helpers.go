package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
	"github.com/polkiloo/earnbot/internal/server/http/dto"
	"github.com/polkiloo/earnbot/internal/server/http/middleware"
)

// CurrentAdminID extracts the authenticated administrator from context.
func CurrentAdminID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.AdminIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

var kindStatus = map[domainErrors.Kind]int{
	domainErrors.KindValidation:        http.StatusBadRequest,
	domainErrors.KindNotFound:          http.StatusNotFound,
	domainErrors.KindState:             http.StatusConflict,
	domainErrors.KindInsufficientFunds: http.StatusConflict,
	domainErrors.KindRateLimited:       http.StatusTooManyRequests,
	domainErrors.KindUnauthorized:      http.StatusForbidden,
	domainErrors.KindExternal:          http.StatusBadGateway,
	domainErrors.KindInternal:          http.StatusInternalServerError,
}

func respondError(c *gin.Context, err error) {
	status, ok := kindStatus[domainErrors.KindOf(err)]
	if !ok {
		status = http.StatusInternalServerError
	}
	c.JSON(status, dto.ErrorResponse{Error: domainErrors.Code(err)})
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: domainErrors.ErrInvalidArgument.Code})
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}

func toWithdrawalResponse(w model.Withdrawal) dto.WithdrawalResponse {
	return dto.WithdrawalResponse{
		ID:         w.ID.String(),
		UserID:     w.UserID,
		Method:     w.Method,
		Account:    w.Account,
		Amount:     w.Amount.String(),
		Status:     string(w.Status),
		Reason:     w.Reason,
		ResolvedBy: w.ResolvedBy,
		CreatedAt:  w.CreatedAt,
		ResolvedAt: w.ResolvedAt,
	}
}
