package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/steve2482/simspeedserver/internal/middleware"
	"github.com/steve2482/simspeedserver/internal/model"
	"github.com/steve2482/simspeedserver/internal/service"
)

type UserHandler struct {
	users        *service.UserService
	sessions     *service.SessionService
	secureCookie bool
}

func NewUserHandler(users *service.UserService, sessions *service.SessionService, secureCookie bool) *UserHandler {
	return &UserHandler{users: users, sessions: sessions, secureCookie: secureCookie}
}

// Register handles POST /register
func (h *UserHandler) Register(c fiber.Ctx) error {
	var req model.RegisterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	req, code, errMsg := middleware.ValidateRegistration(req)
	if code != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, code, errMsg)
	}

	user, err := h.users.Register(c.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrAccountExists) {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "ACCOUNT_EXISTS", err.Error())
		}
		middleware.Logger.Error().Err(err).Msg("register failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account")
	}
	return h.startSession(c, user)
}

// Login handles POST /login
func (h *UserHandler) Login(c fiber.Ctx) error {
	var req model.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	if strings.TrimSpace(req.UserName) == "" || req.Password == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_FIELDS", "userName and password are required")
	}

	user, err := h.users.Authenticate(c.Context(), req.UserName, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", err.Error())
		}
		middleware.Logger.Error().Err(err).Msg("login failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in")
	}
	return h.startSession(c, user)
}

// Logout handles GET /logout
func (h *UserHandler) Logout(c fiber.Ctx) error {
	if token := middleware.SessionToken(c); token != "" {
		if err := h.sessions.Destroy(c.Context(), token); err != nil {
			middleware.Logger.Warn().Err(err).Msg("session delete failed")
		}
	}
	c.ClearCookie(middleware.SessionCookie)
	return c.JSON(fiber.Map{"authenticated": false})
}

// Me handles GET /user. Requires RequireSession.
func (h *UserHandler) Me(c fiber.Ctx) error {
	user, err := h.users.Lookup(c.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "User not found")
		}
		middleware.Logger.Error().Err(err).Msg("user lookup failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to lookup user")
	}
	return c.JSON(user)
}

func (h *UserHandler) startSession(c fiber.Ctx, user *model.User) error {
	token, err := h.sessions.Create(c.Context(), user.ID)
	if err != nil {
		middleware.Logger.Error().Err(err).Msg("session create failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start session")
	}
	c.Cookie(middleware.NewSessionCookie(token, h.sessions.TTL(), h.secureCookie))
	return c.JSON(user)
}
