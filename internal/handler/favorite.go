package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/steve2482/simspeedserver/internal/middleware"
	"github.com/steve2482/simspeedserver/internal/model"
	"github.com/steve2482/simspeedserver/internal/service"
)

type FavoriteHandler struct {
	svc *service.FavoriteService
}

func NewFavoriteHandler(svc *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{svc: svc}
}

// Add handles POST /favorite-channel
func (h *FavoriteHandler) Add(c fiber.Ctx) error {
	return h.toggle(c, h.svc.AddFavorite)
}

// Remove handles POST /remove-channel
func (h *FavoriteHandler) Remove(c fiber.Ctx) error {
	return h.toggle(c, h.svc.RemoveFavorite)
}

// toggle responds with the channel name as a JSON string on success.
func (h *FavoriteHandler) toggle(c fiber.Ctx, apply func(ctx context.Context, userID, channelName string) error) error {
	var req model.FavoriteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	name, errMsg := middleware.ValidateChannelName(req.Channel)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	if err := apply(c.Context(), middleware.UserID(c), name); err != nil {
		if errors.Is(err, service.ErrChannelNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Channel not found")
		}
		middleware.Logger.Error().Err(err).Str("channel", name).Msg("favorite update failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update favorites")
	}
	return c.JSON(name)
}
