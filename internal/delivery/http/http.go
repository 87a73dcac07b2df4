package http

import (
	"trading-agent/internal/service"
	"trading-agent/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HttpAPIHandler struct {
	echo      *echo.Echo
	validator *goValidator.Validate
	log       *logger.Logger
	service   *service.SwapServerService
}

func NewHttpAPIHandler(echo *echo.Echo, validator *goValidator.Validate, log *logger.Logger, service *service.SwapServerService) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:      echo,
		validator: validator,
		log:       log,
		service:   service,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.SetupSwap(h.echo)
}
