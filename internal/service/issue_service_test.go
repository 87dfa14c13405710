package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/aera-issue-service/internal/domain"
	"github.com/spec-kit/aera-issue-service/internal/events"
)

type issueFixture struct {
	users      *memUserRepo
	issues     *memIssueRepo
	history    *memHistoryRepo
	dispatcher *capturingDispatcher
	svc        *IssueService
}

func newIssueFixture() *issueFixture {
	users := newMemUserRepo()
	issues := newMemIssueRepo()
	history := newMemHistoryRepo()
	dispatcher := newCapturingDispatcher()
	return &issueFixture{
		users:      users,
		issues:     issues,
		history:    history,
		dispatcher: dispatcher,
		svc: NewIssueService(IssueDependencies{
			IssueRepo:   issues,
			UserRepo:    users,
			HistoryRepo: history,
			Dispatcher:  dispatcher,
		}),
	}
}

func TestCreateIssueClassifiesWhenUnset(t *testing.T) {
	f := newIssueFixture()

	issue, err := f.svc.CreateIssue(context.Background(), "collector-1", IssueCreateInput{
		LocationCategory: "classroom",
		Block:            "B",
		RoomNumber:       "204",
		Condition:        "Good",
		Data:             map[string]any{"projector": "not working"},
	})
	require.NoError(t, err)
	require.Equal(t, domain.IssuePriorityHigh, issue.Priority)
	require.Equal(t, SpecialtyElectricity, issue.TechnicianType)
	require.Equal(t, domain.IssueStatusSubmitted, issue.Status)
	require.False(t, issue.Timestamps.Submitted.IsZero())
	require.Nil(t, issue.Timestamps.Assigned)
	require.Nil(t, issue.Timestamps.Completed)

	published := f.dispatcher.published()
	require.Len(t, published, 1)
	require.Equal(t, events.EventIssueCreated, published[0].Type)
}

func TestCreateIssueKeepsExplicitTriage(t *testing.T) {
	f := newIssueFixture()

	issue, err := f.svc.CreateIssue(context.Background(), "collector-1", IssueCreateInput{
		Condition:      "Poor",
		Priority:       domain.IssuePriorityLow,
		TechnicianType: "Water",
	})
	require.NoError(t, err)
	require.Equal(t, domain.IssuePriorityLow, issue.Priority)
	require.Equal(t, "water", issue.TechnicianType)
}

func TestUpdateIssueRejectsInvalidStatus(t *testing.T) {
	f := newIssueFixture()
	ctx := context.Background()
	issue, err := f.svc.CreateIssue(ctx, "collector-1", IssueCreateInput{Condition: "Poor"})
	require.NoError(t, err)

	_, err = f.svc.UpdateIssue(ctx, manager, issue.ID, IssueUpdateInput{Status: domain.IssueStatus("fixed")})
	requireCode(t, err, "VALIDATION_FAILED")

	stored, err := f.issues.GetByID(ctx, issue.ID)
	require.NoError(t, err)
	require.Equal(t, domain.IssueStatusSubmitted, stored.Status)

	entries, err := f.history.ListByIssue(ctx, issue.ID)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestUpdateIssueAppendsExactlyOneHistoryEntry(t *testing.T) {
	f := newIssueFixture()
	ctx := context.Background()
	issue, err := f.svc.CreateIssue(ctx, "collector-1", IssueCreateInput{Condition: "Poor"})
	require.NoError(t, err)

	_, err = f.svc.UpdateIssue(ctx, manager, issue.ID, IssueUpdateInput{
		Status:        domain.IssueStatusInProgress,
		Risk:          "high",
		AnalysisNotes: "pipe corroded",
	})
	require.NoError(t, err)

	entries, err := f.history.ListByIssue(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, domain.HistoryActionUpdate, entries[0].Action)
	require.Equal(t, "in_progress", entries[0].Details["status"])
	require.Equal(t, "high", entries[0].Details["risk"])
	require.Equal(t, "pipe corroded", entries[0].Details["analysis_notes"])

	// a second update appends, never rewrites
	firstID := entries[0].ID
	_, err = f.svc.UpdateIssue(ctx, manager, issue.ID, IssueUpdateInput{Risk: "medium"})
	require.NoError(t, err)

	entries, err = f.history.ListByIssue(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, firstID, entries[0].ID)
	require.Equal(t, "high", entries[0].Details["risk"])
}

func TestUpdateIssueAssignViaStatusToleratesMissingTechnician(t *testing.T) {
	f := newIssueFixture()
	ctx := context.Background()
	issue, err := f.svc.CreateIssue(ctx, "collector-1", IssueCreateInput{Condition: "Poor"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateIssue(ctx, manager, issue.ID, IssueUpdateInput{
		Status:         domain.IssueStatusAssigned,
		TechnicianType: "Plumbing",
	})
	require.NoError(t, err)
	require.Equal(t, domain.IssueStatusAssigned, updated.Status)
	require.Equal(t, "plumbing", updated.TechnicianType)
	require.Nil(t, updated.AssignedTechnicianID)
	require.NotNil(t, updated.Timestamps.Assigned)
}

func TestUpdateIssueAssignViaStatusBindsTechnician(t *testing.T) {
	f := newIssueFixture()
	ctx := context.Background()
	tech := seedTechnician(t, f.users, "bob", "water")
	issue, err := f.svc.CreateIssue(ctx, "collector-1", IssueCreateInput{Condition: "Poor"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateIssue(ctx, manager, issue.ID, IssueUpdateInput{
		Status:         domain.IssueStatusAssigned,
		TechnicianType: "water",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTechnicianID)
	require.Equal(t, tech.ID, *updated.AssignedTechnicianID)
}

func TestCompleteIssueStampsFromAnyState(t *testing.T) {
	f := newIssueFixture()
	ctx := context.Background()
	issue, err := f.svc.CreateIssue(ctx, "collector-1", IssueCreateInput{Condition: "Poor"})
	require.NoError(t, err)

	completed, err := f.svc.CompleteIssue(ctx, manager, issue.ID)
	require.NoError(t, err)
	require.Equal(t, domain.IssueStatusCompleted, completed.Status)
	require.NotNil(t, completed.Timestamps.Completed)

	// manager-invoked completion is audited
	entries, err := f.history.ListByIssue(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestCompleteIssueByTechnicianSkipsHistory(t *testing.T) {
	f := newIssueFixture()
	ctx := context.Background()
	issue, err := f.svc.CreateIssue(ctx, "collector-1", IssueCreateInput{Condition: "Poor"})
	require.NoError(t, err)

	technician := Actor{ID: "tech-1", Role: domain.RoleTechnician}
	_, err = f.svc.CompleteIssue(ctx, technician, issue.ID)
	require.NoError(t, err)

	entries, err := f.history.ListByIssue(ctx, issue.ID)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestGetIssueNotFound(t *testing.T) {
	f := newIssueFixture()

	_, err := f.svc.GetIssue(context.Background(), "missing")
	requireCode(t, err, "NOT_FOUND")

	_, err = f.svc.ListHistory(context.Background(), "missing")
	requireCode(t, err, "NOT_FOUND")
}

func TestIssueLifecycleEndToEnd(t *testing.T) {
	users := newMemUserRepo()
	issues := newMemIssueRepo()
	history := newMemHistoryRepo()
	dispatcher := newCapturingDispatcher()
	deps := IssueDependencies{IssueRepo: issues, UserRepo: users, HistoryRepo: history, Dispatcher: dispatcher}
	issueSvc := NewIssueService(deps)
	assignSvc := NewAssignmentService(AssignmentDependencies{
		IssueRepo: issues, UserRepo: users, HistoryRepo: history, Dispatcher: dispatcher,
	})
	techSvc := NewTechnicianService(TechnicianDependencies{IssueRepo: issues, Dispatcher: dispatcher})

	ctx := context.Background()
	tech := seedTechnician(t, users, "bob", "water")

	issue, err := issueSvc.CreateIssue(ctx, "collector-1", IssueCreateInput{
		Condition: "Good",
		Data:      map[string]any{"waterSupply": "tap leaking"},
	})
	require.NoError(t, err)
	require.Equal(t, SpecialtyWater, issue.TechnicianType)

	assigned, err := assignSvc.Assign(ctx, manager, issue.ID, "Water")
	require.NoError(t, err)
	require.Equal(t, tech.ID, *assigned.AssignedTechnicianID)

	inProgress, err := techSvc.UpdateTaskStatus(ctx, tech.ID, tech.Specialty, issue.ID, domain.IssueStatusInProgress, strPtr("replacing valve"))
	require.NoError(t, err)
	require.Equal(t, domain.IssueStatusInProgress, inProgress.Status)

	done, err := techSvc.UpdateTaskStatus(ctx, tech.ID, tech.Specialty, issue.ID, domain.IssueStatusCompleted, nil)
	require.NoError(t, err)
	require.Equal(t, domain.IssueStatusCompleted, done.Status)
	require.Equal(t, "replacing valve", done.UpdateNotes)

	// lifecycle instants are ordered
	require.NotNil(t, done.Timestamps.Assigned)
	require.NotNil(t, done.Timestamps.Completed)
	require.False(t, done.Timestamps.Assigned.Before(done.Timestamps.Submitted))
	require.False(t, done.Timestamps.Completed.Before(*done.Timestamps.Assigned))

	entries, err := history.ListByIssue(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, domain.HistoryActionAssign, entries[0].Action)
}
