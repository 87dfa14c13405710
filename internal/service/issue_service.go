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

// Actor identifies the caller of a mutating operation.
type Actor struct {
	ID   string
	Role domain.Role
}

// IssueService coordinates issue submission and lifecycle workflows.
type IssueService struct {
	issues     repository.IssueRepository
	users      repository.UserRepository
	history    repository.IssueHistoryRepository
	dispatcher events.Dispatcher
}

// IssueDependencies bundles repositories for the issue service.
type IssueDependencies struct {
	IssueRepo   repository.IssueRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.IssueHistoryRepository
	Dispatcher  events.Dispatcher
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	return &IssueService{
		issues:     deps.IssueRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// IssueCreateInput describes a report submission.
type IssueCreateInput struct {
	UserType         string
	LocationCategory string
	Block            string
	Floor            string
	RoomNumber       string
	Condition        string
	ProblemLevel     string
	Data             map[string]any
	OtherSuggestions string
	Priority         domain.IssuePriority
	TechnicianType   string
}

// CreateIssue records a new report in the submitted state. Priority and
// target specialty are derived from the condition data when absent.
func (s *IssueService) CreateIssue(ctx context.Context, submitterID string, input IssueCreateInput) (*domain.Issue, error) {
	priority := input.Priority
	technicianType := strings.ToLower(strings.TrimSpace(input.TechnicianType))
	if priority == "" || technicianType == "" {
		classified := ClassifyReport(input.Condition, input.Data)
		if priority == "" {
			priority = classified.Priority
		}
		if technicianType == "" {
			technicianType = classified.TechnicianType
		}
	}

	issue := &domain.Issue{
		SubmittedByID:    submitterID,
		UserType:         input.UserType,
		LocationCategory: input.LocationCategory,
		Block:            input.Block,
		Floor:            input.Floor,
		RoomNumber:       input.RoomNumber,
		Condition:        input.Condition,
		ProblemLevel:     input.ProblemLevel,
		Data:             input.Data,
		OtherSuggestions: input.OtherSuggestions,
		Priority:         priority,
		TechnicianType:   technicianType,
		Status:           domain.IssueStatusSubmitted,
		Timestamps:       domain.IssueTimestamps{Submitted: time.Now()},
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueCreated,
		IssueID: issue.ID,
		Actor:   events.Actor{UserID: submitterID, Role: domain.RoleDataCollector},
		Payload: events.IssueCreatedPayload{
			Priority:         issue.Priority,
			TechnicianType:   issue.TechnicianType,
			LocationCategory: issue.LocationCategory,
			Block:            issue.Block,
			RoomNumber:       issue.RoomNumber,
		},
	})
	return issue, nil
}

// ListIssues returns issues visible to the caller per their resolved scope.
func (s *IssueService) ListIssues(ctx context.Context, role domain.Role, userID string, specialty *string) ([]domain.Issue, error) {
	scope := ResolveScope(role, userID, specialty)
	issues, err := s.issues.List(ctx, scope.Filter())
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return issues, nil
}

// GetIssue fetches a single issue with denormalized identities.
func (s *IssueService) GetIssue(ctx context.Context, issueID string) (*domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"issue_id": issueID})
		}
		return nil, apperrors.MapError(err)
	}
	return issue, nil
}

// ListHistory returns the audit trail of an issue, oldest first.
func (s *IssueService) ListHistory(ctx context.Context, issueID string) ([]domain.HistoryEntry, error) {
	if _, err := s.GetIssue(ctx, issueID); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByIssue(ctx, issueID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// IssueUpdateInput describes a manager triage update. Empty fields are left
// unchanged.
type IssueUpdateInput struct {
	Status         domain.IssueStatus
	TechnicianType string
	Risk           string
	AnalysisNotes  string
}

// UpdateIssue applies a manager's status/risk/notes update and appends one
// history entry. A status of assigned accompanied by a specialty re-invokes
// the technician lookup; a missing technician does not fail the update.
func (s *IssueService) UpdateIssue(ctx context.Context, actor Actor, issueID string, input IssueUpdateInput) (*domain.Issue, error) {
	if input.Status != "" && !input.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status value", map[string]any{"status": string(input.Status)})
	}

	issue, err := s.GetIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	oldStatus := issue.Status
	technicianType := strings.ToLower(strings.TrimSpace(input.TechnicianType))
	delta := map[string]any{}

	if input.Status != "" {
		issue.Status = input.Status
		delta["status"] = string(input.Status)
	}
	if technicianType != "" {
		issue.TechnicianType = technicianType
		delta["technician_type"] = technicianType
	}
	if input.Risk != "" {
		issue.Risk = input.Risk
		delta["risk"] = input.Risk
	}
	if input.AnalysisNotes != "" {
		issue.AnalysisNotes = input.AnalysisNotes
		delta["analysis_notes"] = input.AnalysisNotes
	}

	now := time.Now()
	if input.Status == domain.IssueStatusAssigned && technicianType != "" {
		tech, err := s.users.FindTechnicianBySpecialty(ctx, technicianType)
		if err == nil {
			issue.AssignedTechnicianID = &tech.ID
			issue.AssignedTechnician = tech.Ref()
			delta["assigned_technician"] = tech.ID
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		issue.Timestamps.Assigned = &now
	}
	if input.Status == domain.IssueStatusCompleted {
		issue.Timestamps.Completed = &now
	}

	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.appendHistory(ctx, actor, issue.ID, domain.HistoryActionUpdate, delta); err != nil {
		return nil, err
	}
	if input.Status != "" && input.Status != oldStatus {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventIssueStatusChanged,
			IssueID: issue.ID,
			Actor:   events.Actor{UserID: actor.ID, Role: actor.Role},
			Payload: events.IssueStatusChangedPayload{OldStatus: oldStatus, NewStatus: issue.Status},
		})
	}
	return issue, nil
}

// CompleteIssue marks an issue completed and stamps the completion instant,
// whatever the prior state. Manager-invoked completions append history;
// technician completions do not.
func (s *IssueService) CompleteIssue(ctx context.Context, actor Actor, issueID string) (*domain.Issue, error) {
	issue, err := s.GetIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	oldStatus := issue.Status
	now := time.Now()
	issue.Status = domain.IssueStatusCompleted
	issue.Timestamps.Completed = &now

	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}
	if actor.Role == domain.RoleManager {
		delta := map[string]any{"status": string(domain.IssueStatusCompleted)}
		if err := s.appendHistory(ctx, actor, issue.ID, domain.HistoryActionUpdate, delta); err != nil {
			return nil, err
		}
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueCompleted,
		IssueID: issue.ID,
		Actor:   events.Actor{UserID: actor.ID, Role: actor.Role},
		Payload: events.IssueStatusChangedPayload{OldStatus: oldStatus, NewStatus: issue.Status},
	})
	return issue, nil
}

func (s *IssueService) appendHistory(ctx context.Context, actor Actor, issueID, action string, details map[string]any) error {
	actorID := actor.ID
	entry := &domain.HistoryEntry{
		IssueID:   issueID,
		Action:    action,
		ActorID:   &actorID,
		ActorRole: actor.Role,
		Details:   details,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *IssueService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
