package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/aera-issue-service/internal/domain"
	"github.com/spec-kit/aera-issue-service/internal/events"
	"github.com/spec-kit/aera-issue-service/internal/repository"
)

// memUserRepo keeps users in insertion order so specialty lookups are
// deterministic, mirroring the ORDER BY created_at, id pick.
type memUserRepo struct {
	mu    sync.Mutex
	users []domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users = append(r.users, *user)
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == user.ID {
			user.UpdatedAt = time.Now()
			r.users[i] = *user
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == id {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].Username == username {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].Email == email {
			u := r.users[i]
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) FindTechnicianBySpecialty(_ context.Context, specialty string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		u := r.users[i]
		if u.Role != domain.RoleTechnician || u.Specialty == nil {
			continue
		}
		if strings.EqualFold(*u.Specialty, specialty) {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) ListTechnicians(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for i := range r.users {
		if r.users[i].Role == domain.RoleTechnician {
			out = append(out, r.users[i])
		}
	}
	return out, nil
}

// memIssueRepo stores issues by value so callers cannot mutate state without
// an explicit Update.
type memIssueRepo struct {
	mu     sync.Mutex
	issues []domain.Issue
}

func newMemIssueRepo() *memIssueRepo {
	return &memIssueRepo{}
}

func (r *memIssueRepo) Create(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	now := time.Now()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	r.issues = append(r.issues, *issue)
	return nil
}

func (r *memIssueRepo) Update(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.issues {
		if r.issues[i].ID == issue.ID {
			issue.UpdatedAt = time.Now()
			r.issues[i] = *issue
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *memIssueRepo) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.issues {
		if r.issues[i].ID == id {
			issue := r.issues[i]
			return &issue, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memIssueRepo) List(_ context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Issue
	for i := range r.issues {
		if matchesFilter(&r.issues[i], filter) {
			out = append(out, r.issues[i])
		}
	}
	return out, nil
}

func matchesFilter(issue *domain.Issue, filter repository.IssueFilter) bool {
	if filter.SubmitterID != nil && issue.SubmittedByID != *filter.SubmitterID {
		return false
	}
	if tf := filter.Technician; tf != nil {
		if issue.AssignedTechnicianID != nil && *issue.AssignedTechnicianID == tf.TechnicianID {
			return true
		}
		if tf.Specialty == nil {
			return false
		}
		if !strings.EqualFold(issue.TechnicianType, *tf.Specialty) {
			return false
		}
		if len(tf.SpecialtyStatuses) == 0 {
			return true
		}
		for _, status := range tf.SpecialtyStatuses {
			if issue.Status == status {
				return true
			}
		}
		return false
	}
	return true
}

type memHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{}
}

func (r *memHistoryRepo) Append(_ context.Context, entry *domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memHistoryRepo) ListByIssue(_ context.Context, issueID string) ([]domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.HistoryEntry
	for i := range r.entries {
		if r.entries[i].IssueID == issueID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

// capturingDispatcher records published events for assertions.
type capturingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func newCapturingDispatcher() *capturingDispatcher {
	return &capturingDispatcher{}
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *capturingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.Event, len(d.events))
	copy(out, d.events)
	return out
}

func strPtr(s string) *string {
	return &s
}

func seedTechnician(t interface {
	Fatalf(format string, args ...any)
}, repo *memUserRepo, username, specialty string) *domain.User {
	user := &domain.User{
		FullName:  "Tech " + username,
		Email:     username + "@aera.local",
		Username:  username,
		Role:      domain.RoleTechnician,
		Specialty: strPtr(specialty),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed technician %s: %v", username, err)
	}
	return user
}
