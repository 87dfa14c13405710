package events

import (
	"time"

	"github.com/spec-kit/aera-issue-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated       EventType = "issue_created"
	EventIssueAssigned      EventType = "issue_assigned"
	EventIssueStatusChanged EventType = "issue_status_changed"
	EventIssueCompleted     EventType = "issue_completed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	IssueID   string      `json:"issue_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	Priority         domain.IssuePriority `json:"priority"`
	TechnicianType   string               `json:"technician_type"`
	LocationCategory string               `json:"location_category"`
	Block            string               `json:"block,omitempty"`
	RoomNumber       string               `json:"room_number,omitempty"`
}

// IssueAssignedPayload payload.
type IssueAssignedPayload struct {
	TechnicianID   string `json:"technician_id"`
	TechnicianType string `json:"technician_type"`
}

// IssueStatusChangedPayload payload.
type IssueStatusChangedPayload struct {
	OldStatus domain.IssueStatus `json:"old_status"`
	NewStatus domain.IssueStatus `json:"new_status"`
}
