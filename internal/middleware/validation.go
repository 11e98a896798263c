package middleware

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"

	"github.com/steve2482/simspeedserver/internal/model"
)

// Field length limits matching database schema constraints.
const (
	MaxChannelNameLen = 64  // channels.name VARCHAR(64)
	MaxPageTokenLen   = 128 // upstream page tokens are short opaque strings
	MaxNameLen        = 100
	MaxEmailLen       = 254 // RFC 5321 path limit
	MaxUserNameLen    = 32  // users.user_name VARCHAR(64)
	MaxPasswordLen    = 72  // bcrypt ignores bytes past 72
)

var (
	// pageTokenRe matches upstream page tokens: URL-safe base64 alphabet.
	pageTokenRe = regexp.MustCompile(`^[A-Za-z0-9_=-]+$`)
	// userNameRe matches user names: letters, digits, dash, underscore, dot.
	userNameRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateChannelName checks that an internal channel name fits the
// channels.name column and carries no control characters. Whether the
// channel exists is left to the directory lookup.
func ValidateChannelName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "channel name is required"
	}
	if !utf8.ValidString(name) {
		return "", "channel name must be valid UTF-8"
	}
	if utf8.RuneCountInString(name) > MaxChannelNameLen {
		return "", "channel name must be at most 64 characters"
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return "", "channel name contains control characters"
	}
	return name, ""
}

// ValidatePageToken checks an optional continuation token. Empty is valid.
func ValidatePageToken(token string) (string, string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ""
	}
	if len(token) > MaxPageTokenLen {
		return "", "nextPageToken must be at most 128 characters"
	}
	if !pageTokenRe.MatchString(token) {
		return "", "nextPageToken contains invalid characters"
	}
	return token, ""
}

// ValidateEmail checks that an email is a bare, well-formed address.
func ValidateEmail(email string) (string, string) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", "Email is Required"
	}
	if len(email) > MaxEmailLen {
		return "", "Email is too long"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return "", "Email is not valid"
	}
	return email, ""
}

// ValidateUserName checks a login name.
func ValidateUserName(userName string) (string, string) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return "", "Username is required"
	}
	if len(userName) > MaxUserNameLen {
		return "", "Username must be at most 32 characters"
	}
	if !userNameRe.MatchString(userName) {
		return "", "Username contains invalid characters"
	}
	return userName, ""
}

// ValidateRegistration checks a registration body and returns the
// normalized request, or an error code and message.
func ValidateRegistration(req model.RegisterRequest) (model.RegisterRequest, string, string) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return req, "MISSING_FIELDS", "Name is Required"
	}
	if len(req.Name) > MaxNameLen {
		return req, "INVALID_FIELD", "Name must be at most 100 characters"
	}

	var errMsg string
	if strings.TrimSpace(req.Email) == "" {
		return req, "MISSING_FIELDS", "Email is Required"
	}
	if req.Email, errMsg = ValidateEmail(req.Email); errMsg != "" {
		return req, "INVALID_FIELD", errMsg
	}
	if strings.TrimSpace(req.UserName) == "" {
		return req, "MISSING_FIELDS", "Username is required"
	}
	if req.UserName, errMsg = ValidateUserName(req.UserName); errMsg != "" {
		return req, "INVALID_FIELD", errMsg
	}

	if req.Password == "" {
		return req, "MISSING_FIELDS", "Password is required"
	}
	if len(req.Password) > MaxPasswordLen {
		return req, "INVALID_FIELD", "Password must be at most 72 bytes"
	}
	if req.Password2 != req.Password {
		return req, "INVALID_FIELD", "Passwords do not match"
	}
	return req, "", ""
}
