package auth

import (
	user "github.com/joymart/joymart-backend/internal/users"
)

// TokenPair carries the freshly minted credentials.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse is returned by register, login, and refresh.
type AuthResponse struct {
	User   *user.UserDTO `json:"user"`
	Tokens TokenPair     `json:"tokens"`
}
