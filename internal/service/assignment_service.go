package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/aera-issue-service/internal/domain"
	"github.com/spec-kit/aera-issue-service/internal/events"
	"github.com/spec-kit/aera-issue-service/internal/repository"
	apperrors "github.com/spec-kit/aera-issue-service/pkg/util"
)

// AssignmentService routes issues to technicians by specialty.
type AssignmentService struct {
	issues     repository.IssueRepository
	users      repository.UserRepository
	history    repository.IssueHistoryRepository
	dispatcher events.Dispatcher
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	IssueRepo   repository.IssueRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.IssueHistoryRepository
	Dispatcher  events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		issues:     deps.IssueRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Assign binds an issue to one technician matching the requested specialty.
// The specialty is stored lowercase; the technician pick is deterministic
// (first by insertion order) with no load balancing. Assigning an already-
// assigned issue overwrites the previous technician in place without
// clearing progress state.
func (s *AssignmentService) Assign(ctx context.Context, actor Actor, issueID, requestedSpecialty string) (*domain.Issue, error) {
	specialty := strings.ToLower(strings.TrimSpace(requestedSpecialty))
	if specialty == "" {
		return nil, apperrors.NewValidationError("technician_type is required", nil)
	}

	technician, err := s.users.FindTechnicianBySpecialty(ctx, specialty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"technician_type": specialty})
		}
		return nil, apperrors.MapError(err)
	}

	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"issue_id": issueID})
		}
		return nil, apperrors.MapError(err)
	}

	oldTechnician := issue.AssignedTechnicianID
	now := time.Now()
	issue.AssignedTechnicianID = &technician.ID
	issue.AssignedTechnician = technician.Ref()
	issue.TechnicianType = specialty
	issue.Status = domain.IssueStatusAssigned
	issue.Timestamps.Assigned = &now

	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}

	actorID := actor.ID
	entry := &domain.HistoryEntry{
		IssueID:   issue.ID,
		Action:    domain.HistoryActionAssign,
		ActorID:   &actorID,
		ActorRole: actor.Role,
		Details: map[string]any{
			"technician_type":         specialty,
			"old_assigned_technician": oldTechnician,
			"assigned_technician":     technician.ID,
		},
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, actor, issue.ID, events.IssueAssignedPayload{
		TechnicianID:   technician.ID,
		TechnicianType: specialty,
	})
	return issue, nil
}

func (s *AssignmentService) publishEvent(ctx context.Context, actor Actor, issueID string, payload events.IssueAssignedPayload) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventIssueAssigned,
		IssueID:   issueID,
		Actor:     events.Actor{UserID: actor.ID, Role: actor.Role},
		Timestamp: time.Now(),
		Payload:   payload,
	}
	_ = s.dispatcher.Publish(ctx, event)
}
