package model

import "time"

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	UserName         string    `json:"userName"`
	PasswordHash     string    `json:"-"`
	FavoriteChannels []string  `json:"favoriteChannels"`
	CreatedAt        time.Time `json:"createdAt"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	UserName  string `json:"userName"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}
