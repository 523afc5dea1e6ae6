package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"arc-backend/internal/encryption"
	"arc-backend/internal/model"
	"arc-backend/internal/repository"
	"arc-backend/utilities"
)

// DataExport is everything held about a user, decrypted.
type DataExport struct {
	ExportID    string                `json:"exportId"`
	GeneratedAt time.Time             `json:"generatedAt"`
	User        *model.User           `json:"user"`
	Consents    []model.ConsentRecord `json:"consents"`
	Submissions []SavedQuestionnaire  `json:"submissions"`
	AuditEvents []model.AuditEvent    `json:"auditEvents"`
}

// DataSummary describes what is held without revealing it.
type DataSummary struct {
	UserID         string    `json:"userId"`
	Email          string    `json:"email"`
	MemberSince    time.Time `json:"memberSince"`
	Submissions    int64     `json:"submissions"`
	ActiveConsents []string  `json:"activeConsents"`
	AuditEvents    int       `json:"auditEvents"`
}

// DeletionResult is returned once a deletion request is confirmed.
type DeletionResult struct {
	Request *model.DeletionRequest   `json:"request"`
	Erased  repository.ErasureResult `json:"erased"`
}

type DataRightsService interface {
	RequestDeletion(ctx context.Context, userID, reason string) (*model.DeletionRequest, error)
	ConfirmDeletion(ctx context.Context, userID, requestID string) (*DeletionResult, error)
	Export(ctx context.Context, userID string) (*DataExport, error)
	Summary(ctx context.Context, userID string) (*DataSummary, error)
}

type dataRightsService struct {
	users       repository.UserRepository
	consents    repository.ConsentRepository
	submissions repository.SubmissionRepository
	requests    repository.DataRightsRepository
	audit       repository.AuditRepository
	crypto      encryption.Provider
	bus         *utilities.EventBus
	now         func() time.Time
}

func NewDataRightsService(
	users repository.UserRepository,
	consents repository.ConsentRepository,
	submissions repository.SubmissionRepository,
	requests repository.DataRightsRepository,
	audit repository.AuditRepository,
	crypto encryption.Provider,
	bus *utilities.EventBus,
) DataRightsService {
	return &dataRightsService{
		users:       users,
		consents:    consents,
		submissions: submissions,
		requests:    requests,
		audit:       audit,
		crypto:      crypto,
		bus:         bus,
		now:         time.Now,
	}
}

func (s *dataRightsService) RequestDeletion(ctx context.Context, userID, reason string) (*model.DeletionRequest, error) {
	now := s.now().UTC()
	req := &model.DeletionRequest{
		ID:          uuid.NewString(),
		UserID:      userID,
		Status:      model.DeletionPending,
		Reason:      reason,
		RequestedAt: now,
	}
	if err := s.requests.CreateDeletionRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("creating deletion request: %w", err)
	}
	publish(s.bus, Event{Type: EventDeletionRequested, UserID: userID, At: now,
		Data: map[string]any{"requestId": req.ID}})
	return req, nil
}

// ConfirmDeletion - Erases the user's questionnaire data and withdraws consents
func (s *dataRightsService) ConfirmDeletion(ctx context.Context, userID, requestID string) (*DeletionResult, error) {
	req, err := s.requests.GetDeletionRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// Another user's request id is reported as missing.
	if req.UserID != userID {
		return nil, ErrNotFound
	}
	if req.Status == model.DeletionCompleted {
		return nil, ErrAlreadyDone
	}

	now := s.now().UTC()
	erased, err := s.requests.Erase(ctx, req, now)
	if err != nil {
		return nil, fmt.Errorf("erasing data: %w", err)
	}
	publish(s.bus, Event{Type: EventDataDeleted, UserID: userID, At: now,
		Data: map[string]any{"requestId": req.ID, "submissions": erased.Submissions, "consents": erased.Consents}})
	return &DeletionResult{Request: req, Erased: erased}, nil
}

func (s *dataRightsService) Export(ctx context.Context, userID string) (*DataExport, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	consents, err := s.consents.GetConsentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	subs, err := s.submissions.GetSubmissionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	events, err := s.audit.GetAuditEventsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &DataExport{
		ExportID:    uuid.NewString(),
		GeneratedAt: s.now().UTC(),
		User:        user,
		Consents:    consents,
		Submissions: make([]SavedQuestionnaire, 0, len(subs)),
		AuditEvents: events,
	}
	for i := range subs {
		p, err := decryptSubmission(ctx, s.crypto, &subs[i])
		if err != nil {
			return nil, err
		}
		out.Submissions = append(out.Submissions, SavedQuestionnaire{ID: subs[i].ID, CreatedAt: subs[i].CreatedAt, Data: *p})
	}
	publish(s.bus, Event{Type: EventDataExported, UserID: userID, At: out.GeneratedAt,
		Data: map[string]any{"exportId": out.ExportID, "submissions": len(out.Submissions)}})
	return out, nil
}

func (s *dataRightsService) Summary(ctx context.Context, userID string) (*DataSummary, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	n, err := s.submissions.CountSubmissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	consents, err := s.consents.GetConsentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	events, err := s.audit.GetAuditEventsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	sum := &DataSummary{
		UserID:         user.ID,
		Email:          user.Email,
		MemberSince:    user.CreatedAt,
		Submissions:    n,
		ActiveConsents: []string{},
		AuditEvents:    len(events),
	}
	seen := make(map[string]bool)
	for _, c := range consents {
		if c.Active() && !seen[c.ConsentType] {
			seen[c.ConsentType] = true
			sum.ActiveConsents = append(sum.ActiveConsents, c.ConsentType)
		}
	}
	return sum, nil
}
