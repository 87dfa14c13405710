package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/aera-issue-service/internal/api/dto"
	"github.com/spec-kit/aera-issue-service/internal/domain"
	"github.com/spec-kit/aera-issue-service/internal/service"
	apperrors "github.com/spec-kit/aera-issue-service/pkg/util"
)

// AuthHandler manages registration and login endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Register POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.service.Register(c.Context(), service.RegisterInput{
		FullName:  req.FullName,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		Role:      domain.Role(req.Role),
		Specialty: req.TechnicianType,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.RegisterResponse{
		Message: "user registered successfully",
		UserID:  user.ID,
	})
}

// Login POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, exp, err := h.service.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{
		Token:          token,
		Role:           user.Role,
		Username:       user.Username,
		FullName:       user.FullName,
		TechnicianType: user.Specialty,
		ExpiresAt:      exp,
	})
}
