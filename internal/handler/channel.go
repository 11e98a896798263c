package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/steve2482/simspeedserver/internal/middleware"
	"github.com/steve2482/simspeedserver/internal/service"
)

type ChannelHandler struct {
	svc *service.ChannelService
}

func NewChannelHandler(svc *service.ChannelService) *ChannelHandler {
	return &ChannelHandler{svc: svc}
}

// Names handles GET /channel-names
func (h *ChannelHandler) Names(c fiber.Ctx) error {
	channels, err := h.svc.List(c.Context())
	if err != nil {
		middleware.Logger.Error().Err(err).Msg("list channels failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list channels")
	}
	return c.JSON(channels)
}
