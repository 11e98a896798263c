package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/steve2482/simspeedserver/internal/middleware"
	"github.com/steve2482/simspeedserver/internal/model"
	"github.com/steve2482/simspeedserver/internal/service"
	"github.com/steve2482/simspeedserver/internal/youtube"
)

type BroadcastHandler struct {
	svc *service.BroadcastService
}

func NewBroadcastHandler(svc *service.BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{svc: svc}
}

// Live handles GET /live
func (h *BroadcastHandler) Live(c fiber.Ctx) error {
	pages, err := h.svc.Live(c.Context())
	if err != nil {
		return broadcastError(c, "live", err)
	}
	return c.JSON(pages)
}

// Upcoming handles GET /upcoming
func (h *BroadcastHandler) Upcoming(c fiber.Ctx) error {
	details, err := h.svc.Upcoming(c.Context())
	if err != nil {
		return broadcastError(c, "upcoming", err)
	}
	return c.JSON(details)
}

// ChannelUpcoming handles POST /channel-upcoming
func (h *BroadcastHandler) ChannelUpcoming(c fiber.Ctx) error {
	var req model.ChannelUpcomingRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	name, errMsg := middleware.ValidateChannelName(req.ChannelName)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	details, err := h.svc.ChannelUpcoming(c.Context(), name)
	if err != nil {
		return broadcastError(c, "channel-upcoming", err)
	}
	return c.JSON(details)
}

// ChannelVideos handles POST /channel-videos. The upstream page is relayed
// byte for byte so the client can follow nextPageToken itself.
func (h *BroadcastHandler) ChannelVideos(c fiber.Ctx) error {
	var req model.ChannelVideosRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	name, errMsg := middleware.ValidateChannelName(req.ChannelName)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	token, errMsg := middleware.ValidatePageToken(req.NextPageToken)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	page, err := h.svc.ChannelVideos(c.Context(), name, token)
	if err != nil {
		return broadcastError(c, "channel-videos", err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(page)
}

func broadcastError(c fiber.Ctx, op string, err error) error {
	if errors.Is(err, service.ErrChannelNotFound) {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Channel not found")
	}

	var upErr *youtube.UpstreamError
	if errors.As(err, &upErr) {
		middleware.Logger.Error().
			Err(upErr.Err).
			Str("op", op).
			Str("upstream", upErr.Op).
			Int("status", upErr.StatusCode).
			Msg("upstream request failed")
		return middleware.ErrorResponse(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "Video provider request failed")
	}

	middleware.Logger.Error().Err(err).Str("op", op).Msg("broadcast lookup failed")
	return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load broadcasts")
}
