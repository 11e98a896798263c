package service

import "errors"

var (
	ErrChannelNotFound    = errors.New("channel not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid user name or password")
	ErrAccountExists      = errors.New("an account already exists with provided email address or user name")
	ErrSessionNotFound    = errors.New("session not found or expired")
)
