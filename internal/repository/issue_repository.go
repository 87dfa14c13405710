package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/aera-issue-service/internal/domain"
)

// TechnicianFilter matches issues assigned to a technician or, when a
// specialty is recorded, issues targeting that specialty.
type TechnicianFilter struct {
	TechnicianID string
	Specialty    *string
	// SpecialtyStatuses restricts the specialty arm only; empty means any
	// status. Explicit assignments always match regardless of status.
	SpecialtyStatuses []domain.IssueStatus
}

// IssueFilter captures read-scope restrictions. A zero filter matches all
// issues.
type IssueFilter struct {
	SubmitterID *string
	Technician  *TechnicianFilter
}

// IssueRepository encapsulates issue persistence.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	Update(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	List(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates the repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (submitted_by, user_type, location_category, block, floor, room_number,
            condition, problem_level, data, other_suggestions, priority, technician_type,
            assigned_technician, risk, analysis_notes, update_notes, status, submitted_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		issue.SubmittedByID,
		issue.UserType,
		issue.LocationCategory,
		issue.Block,
		issue.Floor,
		issue.RoomNumber,
		issue.Condition,
		issue.ProblemLevel,
		issue.Data,
		issue.OtherSuggestions,
		issue.Priority,
		issue.TechnicianType,
		issue.AssignedTechnicianID,
		issue.Risk,
		issue.AnalysisNotes,
		issue.UpdateNotes,
		issue.Status,
		issue.Timestamps.Submitted,
	).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)
}

func (r *issueRepository) Update(ctx context.Context, issue *domain.Issue) error {
	const query = `
        UPDATE issues SET priority=$1, technician_type=$2, assigned_technician=$3, risk=$4,
            analysis_notes=$5, update_notes=$6, status=$7, assigned_at=$8, completed_at=$9,
            updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		issue.Priority,
		issue.TechnicianType,
		issue.AssignedTechnicianID,
		issue.Risk,
		issue.AnalysisNotes,
		issue.UpdateNotes,
		issue.Status,
		issue.Timestamps.Assigned,
		issue.Timestamps.Completed,
		issue.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const issueSelect = `
    SELECT i.id, i.submitted_by, i.user_type, i.location_category, i.block, i.floor, i.room_number,
           i.condition, i.problem_level, i.data, i.other_suggestions, i.priority, i.technician_type,
           i.assigned_technician, i.risk, i.analysis_notes, i.update_notes, i.status,
           i.submitted_at, i.assigned_at, i.completed_at, i.created_at, i.updated_at,
           s.username, s.full_name,
           t.username, t.full_name, t.technician_type
    FROM issues i
    JOIN users s ON s.id = i.submitted_by
    LEFT JOIN users t ON t.id = i.assigned_technician`

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	var issue domain.Issue
	if err := scanIssue(r.pool.QueryRow(ctx, issueSelect+` WHERE i.id=$1`, id), &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) List(ctx context.Context, filter IssueFilter) ([]domain.Issue, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SubmitterID != nil {
		args = append(args, *filter.SubmitterID)
		clauses = append(clauses, fmt.Sprintf("i.submitted_by=$%d", len(args)))
	}
	if tf := filter.Technician; tf != nil {
		args = append(args, tf.TechnicianID)
		assignedClause := fmt.Sprintf("i.assigned_technician=$%d", len(args))
		if tf.Specialty == nil {
			clauses = append(clauses, assignedClause)
		} else {
			args = append(args, *tf.Specialty)
			specialtyClause := fmt.Sprintf("LOWER(i.technician_type)=LOWER($%d)", len(args))
			if len(tf.SpecialtyStatuses) > 0 {
				placeholders := make([]string, len(tf.SpecialtyStatuses))
				for i, status := range tf.SpecialtyStatuses {
					args = append(args, status)
					placeholders[i] = fmt.Sprintf("$%d", len(args))
				}
				specialtyClause = fmt.Sprintf("(%s AND i.status IN (%s))",
					specialtyClause, strings.Join(placeholders, ","))
			}
			clauses = append(clauses, fmt.Sprintf("(%s OR %s)", assignedClause, specialtyClause))
		}
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY i.created_at DESC", issueSelect, strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		if err := scanIssue(rows, &issue); err != nil {
			return nil, err
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}

func scanIssue(row pgx.Row, issue *domain.Issue) error {
	var (
		submitterUsername string
		submitterFullName string
		techUsername      *string
		techFullName      *string
		techSpecialty     *string
	)
	if err := row.Scan(
		&issue.ID,
		&issue.SubmittedByID,
		&issue.UserType,
		&issue.LocationCategory,
		&issue.Block,
		&issue.Floor,
		&issue.RoomNumber,
		&issue.Condition,
		&issue.ProblemLevel,
		&issue.Data,
		&issue.OtherSuggestions,
		&issue.Priority,
		&issue.TechnicianType,
		&issue.AssignedTechnicianID,
		&issue.Risk,
		&issue.AnalysisNotes,
		&issue.UpdateNotes,
		&issue.Status,
		&issue.Timestamps.Submitted,
		&issue.Timestamps.Assigned,
		&issue.Timestamps.Completed,
		&issue.CreatedAt,
		&issue.UpdatedAt,
		&submitterUsername,
		&submitterFullName,
		&techUsername,
		&techFullName,
		&techSpecialty,
	); err != nil {
		return err
	}

	issue.SubmittedBy = &domain.UserRef{
		ID:       issue.SubmittedByID,
		Username: submitterUsername,
		FullName: submitterFullName,
	}
	if issue.AssignedTechnicianID != nil && techUsername != nil {
		issue.AssignedTechnician = &domain.UserRef{
			ID:        *issue.AssignedTechnicianID,
			Username:  *techUsername,
			FullName:  derefString(techFullName),
			Specialty: techSpecialty,
		}
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
