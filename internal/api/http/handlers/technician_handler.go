package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/aera-issue-service/internal/api/dto"
	"github.com/spec-kit/aera-issue-service/internal/auth"
	"github.com/spec-kit/aera-issue-service/internal/domain"
	"github.com/spec-kit/aera-issue-service/internal/service"
	apperrors "github.com/spec-kit/aera-issue-service/pkg/util"
)

// TechnicianHandler manages the technician task endpoints.
type TechnicianHandler struct {
	service *service.TechnicianService
}

// NewTechnicianHandler constructs the handler.
func NewTechnicianHandler(technicianService *service.TechnicianService) *TechnicianHandler {
	return &TechnicianHandler{service: technicianService}
}

// Tasks GET /api/technician/tasks.
func (h *TechnicianHandler) Tasks(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tasks, err := h.service.AssignedTasks(c.Context(), principal.UserID, principal.Specialty)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponses(tasks)})
}

// UpdateTask PUT /api/technician/tasks/:id.
func (h *TechnicianHandler) UpdateTask(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	issue, err := h.service.UpdateTaskStatus(c.Context(), principal.UserID, principal.Specialty,
		c.Params("id"), domain.IssueStatus(req.Status), req.UpdateNotes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}
