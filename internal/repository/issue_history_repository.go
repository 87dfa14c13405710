package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/aera-issue-service/internal/domain"
)

// IssueHistoryRepository stores the append-only audit trail. There is no
// update or delete: entries are immutable once written.
type IssueHistoryRepository interface {
	Append(ctx context.Context, entry *domain.HistoryEntry) error
	ListByIssue(ctx context.Context, issueID string) ([]domain.HistoryEntry, error)
}

type issueHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewIssueHistoryRepository builds the repository.
func NewIssueHistoryRepository(pool *pgxpool.Pool) IssueHistoryRepository {
	return &issueHistoryRepository{pool: pool}
}

func (r *issueHistoryRepository) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	const query = `
        INSERT INTO issue_history (issue_id, action, actor_id, actor_role, details)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.IssueID,
		entry.Action,
		entry.ActorID,
		entry.ActorRole,
		entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *issueHistoryRepository) ListByIssue(ctx context.Context, issueID string) ([]domain.HistoryEntry, error) {
	const query = `
        SELECT id, issue_id, action, actor_id, actor_role, details, created_at
        FROM issue_history WHERE issue_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.IssueID,
			&entry.Action,
			&entry.ActorID,
			&entry.ActorRole,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
