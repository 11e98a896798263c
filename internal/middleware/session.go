package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
)

// SessionCookie is the cookie that carries the session token.
const SessionCookie = "sid"

const localUserID = "userID"

// SessionResolver maps a session token to a user id.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// SessionRefresher is implemented by resolvers whose tokens carry their own
// expiry. RequireSession uses it to re-issue the cookie on every use.
type SessionRefresher interface {
	Refresh(token string) (string, error)
	TTL() time.Duration
}

// NewSessionCookie builds the sid cookie for token.
func NewSessionCookie(token string, maxAge time.Duration, secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// SessionToken extracts the token from the sid cookie or, failing that,
// an "Authorization: Bearer" header.
func SessionToken(c fiber.Ctx) string {
	tok, _ := sessionToken(c)
	return tok
}

func sessionToken(c fiber.Ctx) (token string, fromCookie bool) {
	if tok := c.Cookies(SessionCookie); tok != "" {
		return tok, true
	}
	auth := c.Get(fiber.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:]), false
	}
	return "", false
}

// RequireSession rejects requests without a live session and stores the
// session's user id in the request locals for UserID. Cookie sessions get
// a fresh cookie when sessions can refresh tokens.
func RequireSession(sessions SessionResolver, secureCookie bool) fiber.Handler {
	refresher, _ := sessions.(SessionRefresher)
	return func(c fiber.Ctx) error {
		token, fromCookie := sessionToken(c)
		if token == "" {
			return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Login required")
		}
		userID, err := sessions.Resolve(c.Context(), token)
		if err != nil || userID == "" {
			return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Session expired or invalid")
		}
		if fromCookie && refresher != nil {
			if fresh, err := refresher.Refresh(token); err == nil {
				c.Cookie(NewSessionCookie(fresh, refresher.TTL(), secureCookie))
			} else {
				Logger.Warn().Err(err).Msg("session refresh failed")
			}
		}
		c.Locals(localUserID, userID)
		return c.Next()
	}
}

// UserID returns the user attached by RequireSession, or "".
func UserID(c fiber.Ctx) string {
	uid, _ := c.Locals(localUserID).(string)
	return uid
}
