package http

import (
	"errors"
	"net/http"

	"trading-agent/internal/dto"
	"trading-agent/internal/service"
	"trading-agent/pkg/logger"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupSwap(e *echo.Echo) {
	e.POST("/swap", h.requestSwap)
}

// requestSwap only queues the swap. It runs once the owner approves it on Telegram.
func (h *HttpAPIHandler) requestSwap(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.SwapRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "telegramId and outputMint are required."})
	}

	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "telegramId and outputMint are required."})
	}

	ctx, _ = h.log.Scoped(ctx, logger.StringField("telegram_id", req.TelegramID))
	err := h.service.SwapApprovalService.RequestSwap(ctx, *req)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]string{"message": "Swap request sent to user on Telegram."})
	case errors.Is(err, service.ErrWalletUserNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found."})
	case errors.Is(err, service.ErrNotifyUser):
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to contact user on Telegram."})
	default:
		h.log.ErrorContext(ctx, "failed to request swap", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to request swap"})
	}
}
