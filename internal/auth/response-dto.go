package auth

import "eventbook/internal/users"

type AuthResponse struct {
	User         users.UserResponse `json:"user"`
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	ExpiresIn    int64              `json:"expires_in"`
}
