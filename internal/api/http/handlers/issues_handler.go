package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/aera-issue-service/internal/api/dto"
	"github.com/spec-kit/aera-issue-service/internal/auth"
	"github.com/spec-kit/aera-issue-service/internal/domain"
	"github.com/spec-kit/aera-issue-service/internal/service"
	apperrors "github.com/spec-kit/aera-issue-service/pkg/util"
)

// IssuesHandler manages issue submission, listing and triage endpoints.
type IssuesHandler struct {
	issues      *service.IssueService
	assignments *service.AssignmentService
}

// NewIssuesHandler constructs the handler.
func NewIssuesHandler(issueService *service.IssueService, assignmentService *service.AssignmentService) *IssuesHandler {
	return &IssuesHandler{issues: issueService, assignments: assignmentService}
}

// CreateIssue POST /api/issues.
func (h *IssuesHandler) CreateIssue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	issue, err := h.issues.CreateIssue(c.Context(), principal.UserID, service.IssueCreateInput{
		UserType:         req.UserType,
		LocationCategory: req.LocationCategory,
		Block:            req.Block,
		Floor:            req.Floor,
		RoomNumber:       req.RoomNumber,
		Condition:        req.Condition,
		ProblemLevel:     req.ProblemLevel,
		Data:             req.Data,
		OtherSuggestions: req.OtherSuggestions,
		Priority:         domain.IssuePriority(req.Priority),
		TechnicianType:   req.TechnicianType,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": issueResponse(issue)})
}

// ListIssues GET /api/issues. Visibility is scoped by the caller's role.
func (h *IssuesHandler) ListIssues(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	issues, err := h.issues.ListIssues(c.Context(), principal.Role, principal.UserID, principal.Specialty)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponses(issues)})
}

// AssignIssue PUT /api/issues/:id/assign.
func (h *IssuesHandler) AssignIssue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	actor := service.Actor{ID: principal.UserID, Role: principal.Role}
	issue, err := h.assignments.Assign(c.Context(), actor, c.Params("id"), req.TechnicianType)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}

// UpdateIssue PUT /api/issues/:id/status.
func (h *IssuesHandler) UpdateIssue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	actor := service.Actor{ID: principal.UserID, Role: principal.Role}
	issue, err := h.issues.UpdateIssue(c.Context(), actor, c.Params("id"), service.IssueUpdateInput{
		Status:         domain.IssueStatus(req.Status),
		TechnicianType: req.TechnicianType,
		Risk:           req.Risk,
		AnalysisNotes:  req.AnalysisNotes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}

// CompleteIssue PUT /api/issues/:id/complete.
func (h *IssuesHandler) CompleteIssue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	actor := service.Actor{ID: principal.UserID, Role: principal.Role}
	issue, err := h.issues.CompleteIssue(c.Context(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}

// ListHistory GET /api/issues/:id/history.
func (h *IssuesHandler) ListHistory(c *fiber.Ctx) error {
	entries, err := h.issues.ListHistory(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.HistoryEntryResponse{
			ID:        entry.ID,
			Action:    entry.Action,
			ActorID:   entry.ActorID,
			ActorRole: entry.ActorRole,
			Details:   entry.Details,
			CreatedAt: entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func issueResponse(issue *domain.Issue) dto.IssueResponse {
	return dto.IssueResponse{
		ID:                 issue.ID,
		SubmittedBy:        userRefResponse(issue.SubmittedBy),
		UserType:           issue.UserType,
		LocationCategory:   issue.LocationCategory,
		Block:              issue.Block,
		Floor:              issue.Floor,
		RoomNumber:         issue.RoomNumber,
		Condition:          issue.Condition,
		ProblemLevel:       issue.ProblemLevel,
		Data:               issue.Data,
		OtherSuggestions:   issue.OtherSuggestions,
		Priority:           issue.Priority,
		TechnicianType:     issue.TechnicianType,
		AssignedTechnician: userRefResponse(issue.AssignedTechnician),
		Risk:               issue.Risk,
		AnalysisNotes:      issue.AnalysisNotes,
		UpdateNotes:        issue.UpdateNotes,
		Status:             issue.Status,
		Timestamps: dto.IssueTimestampsResponse{
			Submitted: issue.Timestamps.Submitted,
			Assigned:  issue.Timestamps.Assigned,
			Completed: issue.Timestamps.Completed,
		},
		CreatedAt: issue.CreatedAt,
		UpdatedAt: issue.UpdatedAt,
	}
}

func issueResponses(issues []domain.Issue) []dto.IssueResponse {
	items := make([]dto.IssueResponse, 0, len(issues))
	for i := range issues {
		items = append(items, issueResponse(&issues[i]))
	}
	return items
}

func userRefResponse(ref *domain.UserRef) *dto.UserRefResponse {
	if ref == nil {
		return nil
	}
	return &dto.UserRefResponse{
		ID:             ref.ID,
		Username:       ref.Username,
		FullName:       ref.FullName,
		TechnicianType: ref.Specialty,
	}
}
