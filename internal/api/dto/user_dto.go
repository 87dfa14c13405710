package dto

import (
	"time"

	"github.com/spec-kit/aera-issue-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	Username       string  `json:"username"`
	Password       string  `json:"password"`
	Role           string  `json:"role"`
	TechnicianType *string `json:"technician_type,omitempty"`
}

// RegisterResponse confirms account creation.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token plus display claims.
type LoginResponse struct {
	Token          string      `json:"token"`
	Role           domain.Role `json:"role"`
	Username       string      `json:"username"`
	FullName       string      `json:"full_name"`
	TechnicianType *string     `json:"technician_type,omitempty"`
	ExpiresAt      time.Time   `json:"expires_at"`
}

// UserRefResponse is the denormalized identity attached to issue reads.
type UserRefResponse struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	FullName       string  `json:"full_name"`
	TechnicianType *string `json:"technician_type,omitempty"`
}
