package auth

import (
	"github.com/davegutierrez/shoplite-backend/internal/users"
)

// LoginRequest carries shop-operator credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the token pair and the authenticated account.
type LoginResponse struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	User         users.UserResponse `json:"user"`
}

// RefreshRequest carries the expired-or-expiring access token alongside the
// refresh token that proves session ownership.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterStaffRequest is the owner-only payload for creating an account.
// When Password is empty a temporary one is generated and returned once.
type RegisterStaffRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=owner staff"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// RegisterStaffResponse returns the created account. TempPassword is set only
// when the password was generated server-side; it is never stored in clear.
type RegisterStaffResponse struct {
	User         users.UserResponse `json:"user"`
	TempPassword string             `json:"temp_password,omitempty"`
}
