package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/aera-issue-service/internal/domain"
	"github.com/spec-kit/aera-issue-service/internal/events"
	"github.com/spec-kit/aera-issue-service/internal/repository"
	apperrors "github.com/spec-kit/aera-issue-service/pkg/util"
)

// TechnicianService exposes the task view and progress updates for
// technicians.
type TechnicianService struct {
	issues     repository.IssueRepository
	dispatcher events.Dispatcher
}

// TechnicianDependencies bundles repositories.
type TechnicianDependencies struct {
	IssueRepo  repository.IssueRepository
	Dispatcher events.Dispatcher
}

// NewTechnicianService constructs the service.
func NewTechnicianService(deps TechnicianDependencies) *TechnicianService {
	return &TechnicianService{issues: deps.IssueRepo, dispatcher: deps.Dispatcher}
}

// AssignedTasks lists issues assigned to the technician plus unclaimed
// issues matching their specialty in the assigned/in_progress states.
func (s *TechnicianService) AssignedTasks(ctx context.Context, technicianID string, specialty *string) ([]domain.Issue, error) {
	filter := repository.IssueFilter{
		Technician: &repository.TechnicianFilter{
			TechnicianID: technicianID,
			Specialty:    normalizeSpecialty(specialty),
			SpecialtyStatuses: []domain.IssueStatus{
				domain.IssueStatusAssigned,
				domain.IssueStatusInProgress,
			},
		},
	}
	issues, err := s.issues.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return issues, nil
}

// Task statuses a technician may set.
var technicianStatuses = map[domain.IssueStatus]struct{}{
	domain.IssueStatusAssigned:   {},
	domain.IssueStatusInProgress: {},
	domain.IssueStatusCompleted:  {},
}

// UpdateTaskStatus advances a task through its lifecycle. Only the bound
// technician, or a specialty match while the issue is unassigned, may
// update; completion stamps the completed instant.
func (s *TechnicianService) UpdateTaskStatus(ctx context.Context, technicianID string, specialty *string, issueID string, status domain.IssueStatus, updateNotes *string) (*domain.Issue, error) {
	if _, ok := technicianStatuses[status]; !ok {
		return nil, apperrors.NewValidationError("invalid status value", map[string]any{"status": string(status)})
	}

	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !technicianCanUpdate(issue, technicianID, specialty) {
		return nil, apperrors.NewForbidden("task belongs to another technician")
	}

	oldStatus := issue.Status
	issue.Status = status
	if updateNotes != nil {
		issue.UpdateNotes = *updateNotes
	}
	if status == domain.IssueStatusCompleted {
		now := time.Now()
		issue.Timestamps.Completed = &now
	}

	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.dispatcher != nil && status != oldStatus {
		eventType := events.EventIssueStatusChanged
		if status == domain.IssueStatusCompleted {
			eventType = events.EventIssueCompleted
		}
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      eventType,
			IssueID:   issue.ID,
			Actor:     events.Actor{UserID: technicianID, Role: domain.RoleTechnician},
			Timestamp: time.Now(),
			Payload:   events.IssueStatusChangedPayload{OldStatus: oldStatus, NewStatus: status},
		})
	}
	return issue, nil
}

func technicianCanUpdate(issue *domain.Issue, technicianID string, specialty *string) bool {
	if issue.AssignedTechnicianID != nil {
		return *issue.AssignedTechnicianID == technicianID
	}
	normalized := normalizeSpecialty(specialty)
	return normalized != nil && strings.EqualFold(issue.TechnicianType, *normalized)
}
