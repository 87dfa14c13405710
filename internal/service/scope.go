package service

import (
	"strings"

	"github.com/spec-kit/aera-issue-service/internal/domain"
	"github.com/spec-kit/aera-issue-service/internal/repository"
)

// Scope is the issue-visibility predicate for a caller, a tagged variant
// over the caller's role. Resolution never fails: an unrecognized role
// falls through to the most restrictive submitter scope.
type Scope interface {
	Filter() repository.IssueFilter
}

// ManagerScope matches every issue.
type ManagerScope struct{}

// TechnicianScope matches issues assigned to the technician or, when a
// specialty is recorded, issues targeting that specialty. Without a
// specialty it degrades to explicit assignments only.
type TechnicianScope struct {
	TechnicianID string
	Specialty    *string
}

// SubmitterScope matches only the caller's own submissions.
type SubmitterScope struct {
	UserID string
}

// ResolveScope computes the visibility scope for a caller.
func ResolveScope(role domain.Role, userID string, specialty *string) Scope {
	switch role {
	case domain.RoleManager:
		return ManagerScope{}
	case domain.RoleTechnician:
		return TechnicianScope{TechnicianID: userID, Specialty: normalizeSpecialty(specialty)}
	case domain.RoleDataCollector:
		return SubmitterScope{UserID: userID}
	default:
		// fail closed
		return SubmitterScope{UserID: userID}
	}
}

// Filter returns an unrestricted filter.
func (ManagerScope) Filter() repository.IssueFilter {
	return repository.IssueFilter{}
}

// Filter restricts to assigned-or-specialty issues.
func (s TechnicianScope) Filter() repository.IssueFilter {
	return repository.IssueFilter{
		Technician: &repository.TechnicianFilter{
			TechnicianID: s.TechnicianID,
			Specialty:    s.Specialty,
		},
	}
}

// Filter restricts to the caller's own submissions.
func (s SubmitterScope) Filter() repository.IssueFilter {
	userID := s.UserID
	return repository.IssueFilter{SubmitterID: &userID}
}

func normalizeSpecialty(specialty *string) *string {
	if specialty == nil {
		return nil
	}
	trimmed := strings.ToLower(strings.TrimSpace(*specialty))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
