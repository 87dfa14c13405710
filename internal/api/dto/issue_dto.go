package dto

import (
	"time"

	"github.com/spec-kit/aera-issue-service/internal/domain"
)

// CreateIssueRequest payload. Priority and technician_type are optional;
// the server derives them from the condition data when absent.
type CreateIssueRequest struct {
	UserType         string         `json:"user_type"`
	LocationCategory string         `json:"location_category"`
	Block            string         `json:"block"`
	Floor            string         `json:"floor"`
	RoomNumber       string         `json:"room_number"`
	Condition        string         `json:"condition"`
	ProblemLevel     string         `json:"problem_level"`
	Data             map[string]any `json:"data"`
	OtherSuggestions string         `json:"other_suggestions"`
	Priority         string         `json:"priority"`
	TechnicianType   string         `json:"technician_type"`
}

// AssignIssueRequest payload.
type AssignIssueRequest struct {
	TechnicianType string `json:"technician_type"`
}

// UpdateIssueRequest is a manager triage update; empty fields are ignored.
type UpdateIssueRequest struct {
	Status         string `json:"status"`
	TechnicianType string `json:"technician_type"`
	Risk           string `json:"risk"`
	AnalysisNotes  string `json:"analysis_notes"`
}

// UpdateTaskRequest is a technician progress update.
type UpdateTaskRequest struct {
	Status      string  `json:"status"`
	UpdateNotes *string `json:"update_notes,omitempty"`
}

// IssueTimestampsResponse mirrors the lifecycle instants.
type IssueTimestampsResponse struct {
	Submitted time.Time  `json:"submitted"`
	Assigned  *time.Time `json:"assigned,omitempty"`
	Completed *time.Time `json:"completed,omitempty"`
}

// IssueResponse is the full issue representation returned by all issue
// endpoints, with submitter and technician identities expanded.
type IssueResponse struct {
	ID                 string               `json:"id"`
	SubmittedBy        *UserRefResponse     `json:"submitted_by"`
	UserType           string               `json:"user_type,omitempty"`
	LocationCategory   string               `json:"location_category"`
	Block              string               `json:"block,omitempty"`
	Floor              string               `json:"floor,omitempty"`
	RoomNumber         string               `json:"room_number,omitempty"`
	Condition          string               `json:"condition,omitempty"`
	ProblemLevel       string               `json:"problem_level,omitempty"`
	Data               map[string]any       `json:"data,omitempty"`
	OtherSuggestions   string               `json:"other_suggestions,omitempty"`
	Priority           domain.IssuePriority `json:"priority"`
	TechnicianType     string               `json:"technician_type"`
	AssignedTechnician *UserRefResponse     `json:"assigned_technician"`
	Risk               string               `json:"risk,omitempty"`
	AnalysisNotes      string               `json:"analysis_notes,omitempty"`
	UpdateNotes        string               `json:"update_notes,omitempty"`
	Status             domain.IssueStatus   `json:"status"`
	Timestamps         IssueTimestampsResponse `json:"timestamps"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// HistoryEntryResponse is one audit trail record.
type HistoryEntryResponse struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	ActorID   *string        `json:"actor_id"`
	ActorRole domain.Role    `json:"actor_role"`
	Details   map[string]any `json:"details"`
	CreatedAt time.Time      `json:"created_at"`
}
