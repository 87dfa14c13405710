package domain

import "time"

// IssueStatus enumerates the ordered lifecycle states of an issue.
type IssueStatus string

const (
	IssueStatusSubmitted  IssueStatus = "submitted"
	IssueStatusAssigned   IssueStatus = "assigned"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusCompleted  IssueStatus = "completed"
)

// Valid reports whether the status belongs to the ordered set.
func (s IssueStatus) Valid() bool {
	switch s {
	case IssueStatusSubmitted, IssueStatusAssigned, IssueStatusInProgress, IssueStatusCompleted:
		return true
	}
	return false
}

// IssuePriority enumerates triage urgency.
type IssuePriority string

const (
	IssuePriorityLow    IssuePriority = "Low"
	IssuePriorityMedium IssuePriority = "Medium"
	IssuePriorityHigh   IssuePriority = "High"
)

// IssueTimestamps records the lifecycle instants of an issue.
type IssueTimestamps struct {
	Submitted time.Time
	Assigned  *time.Time
	Completed *time.Time
}

// Issue is the aggregate for a submitted facility condition report.
type Issue struct {
	ID               string
	SubmittedByID    string
	UserType         string
	LocationCategory string
	Block            string
	Floor            string
	RoomNumber       string
	Condition        string
	ProblemLevel     string
	Data             map[string]any
	OtherSuggestions string
	Priority         IssuePriority
	TechnicianType   string
	// AssignedTechnicianID is nil until the assignment router binds a
	// technician; a later assign overwrites it in place.
	AssignedTechnicianID *string
	Risk                 string
	AnalysisNotes        string
	UpdateNotes          string
	Status               IssueStatus
	Timestamps           IssueTimestamps
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Read-side denormalization for display; not persisted on the issue row.
	SubmittedBy        *UserRef
	AssignedTechnician *UserRef
}
