package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"arc-backend/internal/model"
	"arc-backend/internal/repository"
)

// memStore backs every repository interface with maps so services can be
// tested without postgres.
type memStore struct {
	mu          sync.Mutex
	users       map[string]*model.User
	consents    []*model.ConsentRecord
	submissions []*model.QuestionnaireSubmission
	requests    map[string]*model.DeletionRequest
	events      []model.AuditEvent
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[string]*model.User{},
		requests: map[string]*model.DeletionRequest{},
	}
}

func (m *memStore) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.CreatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return &model.User{}, repository.ErrNotFound
}

func (m *memStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return &model.User{}, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) CreateConsent(_ context.Context, r *model.ConsentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.consents = append(m.consents, &cp)
	return nil
}

func (m *memStore) GetConsentsByUser(_ context.Context, userID string) ([]model.ConsentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ConsentRecord
	for _, r := range m.consents {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AcceptedAt.After(out[j].AcceptedAt) })
	return out, nil
}

func (m *memStore) GetActiveConsent(_ context.Context, userID, consentType string) (*model.ConsentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.consents) - 1; i >= 0; i-- {
		r := m.consents[i]
		if r.UserID == userID && r.ConsentType == consentType && r.WithdrawnAt == nil {
			cp := *r
			return &cp, nil
		}
	}
	return &model.ConsentRecord{}, repository.ErrNotFound
}

func (m *memStore) WithdrawConsent(_ context.Context, userID, consentType string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.withdraw(userID, consentType, at), nil
}

func (m *memStore) withdraw(userID, consentType string, at time.Time) int64 {
	var n int64
	for _, r := range m.consents {
		if r.UserID == userID && r.WithdrawnAt == nil && (consentType == "" || r.ConsentType == consentType) {
			t := at
			r.WithdrawnAt = &t
			n++
		}
	}
	return n
}

func (m *memStore) CreateSubmission(_ context.Context, s *model.QuestionnaireSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.submissions = append(m.submissions, &cp)
	return nil
}

func (m *memStore) GetLatestSubmission(_ context.Context, userID string) (*model.QuestionnaireSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.submissions) - 1; i >= 0; i-- {
		if s := m.submissions[i]; s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return &model.QuestionnaireSubmission{}, repository.ErrNotFound
}

func (m *memStore) GetSubmissionsByUser(_ context.Context, userID string) ([]model.QuestionnaireSubmission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.QuestionnaireSubmission
	for _, s := range m.submissions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memStore) CountSubmissions(ctx context.Context, userID string) (int64, error) {
	list, _ := m.GetSubmissionsByUser(ctx, userID)
	return int64(len(list)), nil
}

func (m *memStore) CreateDeletionRequest(_ context.Context, r *model.DeletionRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.requests[r.ID] = &cp
	return nil
}

func (m *memStore) GetDeletionRequest(_ context.Context, id string) (*model.DeletionRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return &model.DeletionRequest{}, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) Erase(_ context.Context, req *model.DeletionRequest, at time.Time) (repository.ErasureResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res repository.ErasureResult
	kept := m.submissions[:0]
	for _, s := range m.submissions {
		if s.UserID == req.UserID {
			res.Submissions++
			continue
		}
		kept = append(kept, s)
	}
	m.submissions = kept
	res.Consents = m.withdraw(req.UserID, "", at)
	req.Status = model.DeletionCompleted
	req.CompletedAt = &at
	cp := *req
	m.requests[req.ID] = &cp
	return res, nil
}

func (m *memStore) CreateAuditEvent(_ context.Context, e *model.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = uint(len(m.events) + 1)
	m.events = append(m.events, *e)
	return nil
}

func (m *memStore) GetAuditEventsByUser(_ context.Context, userID string) ([]model.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AuditEvent
	for _, e := range m.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}
