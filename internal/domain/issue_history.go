package domain

import "time"

// History actions recorded on manager mutations.
const (
	HistoryActionAssign = "assign"
	HistoryActionUpdate = "update"
)

// HistoryEntry is an immutable audit record of a manager-initiated issue
// mutation. Entries are append-only: never edited or removed.
type HistoryEntry struct {
	ID        string
	IssueID   string
	Action    string
	ActorID   *string
	ActorRole Role
	Details   map[string]any
	CreatedAt time.Time
}
