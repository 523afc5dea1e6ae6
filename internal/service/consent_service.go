package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
	"gorm.io/datatypes"

	"arc-backend/internal/model"
	"arc-backend/internal/repository"
	"arc-backend/utilities"
)

var consentTypes = map[string]bool{
	model.ConsentTerms:      true,
	model.ConsentPrivacy:    true,
	model.ConsentHealthData: true,
	model.ConsentMarketing:  true,
}

// ConsentInput is one accept or withdraw action.
type ConsentInput struct {
	Type      string
	Version   string
	Accepted  bool
	IP        string
	UserAgent string
	Metadata  map[string]any
}

// ConsentResult reports what a Record call changed.
type ConsentResult struct {
	Record    *model.ConsentRecord `json:"record,omitempty"`
	Withdrawn int64                `json:"withdrawn"`
}

type ConsentService interface {
	Record(ctx context.Context, userID string, in ConsentInput) (*ConsentResult, error)
	GetConsents(ctx context.Context, userID string) ([]model.ConsentRecord, error)
	HasConsent(ctx context.Context, userID, consentType string) (bool, error)
}

type consentService struct {
	repo   repository.ConsentRepository
	bus    *utilities.EventBus
	ipSalt []byte
	now    func() time.Time
}

// NewConsentService creates the service. ipSalt keys the client IP hash.
func NewConsentService(repo repository.ConsentRepository, bus *utilities.EventBus, ipSalt []byte) ConsentService {
	return &consentService{repo: repo, bus: bus, ipSalt: ipSalt, now: time.Now}
}

func (s *consentService) Record(ctx context.Context, userID string, in ConsentInput) (*ConsentResult, error) {
	if !consentTypes[in.Type] {
		return nil, fmt.Errorf("%w: unknown consent type %q", ErrInvalidInput, in.Type)
	}
	now := s.now().UTC()

	if !in.Accepted {
		n, err := s.repo.WithdrawConsent(ctx, userID, in.Type, now)
		if err != nil {
			return nil, fmt.Errorf("withdrawing consent: %w", err)
		}
		if n > 0 {
			publish(s.bus, Event{Type: EventConsentWithdrawn, UserID: userID, At: now,
				Data: map[string]any{"consentType": in.Type, "records": n}})
		}
		return &ConsentResult{Withdrawn: n}, nil
	}

	rec := &model.ConsentRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		ConsentType: in.Type,
		Version:     in.Version,
		AcceptedAt:  now,
		IPHash:      s.hashIP(in.IP),
		UserAgent:   in.UserAgent,
	}
	if len(in.Metadata) > 0 {
		b, err := json.Marshal(in.Metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: metadata: %v", ErrInvalidInput, err)
		}
		rec.Metadata = datatypes.JSON(b)
	}
	if err := s.repo.CreateConsent(ctx, rec); err != nil {
		return nil, fmt.Errorf("recording consent: %w", err)
	}
	publish(s.bus, Event{Type: EventConsentRecorded, UserID: userID, At: now,
		Data: map[string]any{"consentType": in.Type, "version": in.Version}})
	return &ConsentResult{Record: rec}, nil
}

func (s *consentService) GetConsents(ctx context.Context, userID string) ([]model.ConsentRecord, error) {
	return s.repo.GetConsentsByUser(ctx, userID)
}

func (s *consentService) HasConsent(ctx context.Context, userID, consentType string) (bool, error) {
	_, err := s.repo.GetActiveConsent(ctx, userID, consentType)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *consentService) hashIP(ip string) string {
	if ip == "" {
		return ""
	}
	return hex.EncodeToString(argon2.IDKey([]byte(ip), s.ipSalt, 1, 16*1024, 1, 16))
}

// requireConsent returns ErrConsentRequired unless the consent is active.
func requireConsent(ctx context.Context, consents ConsentService, userID, consentType string) error {
	ok, err := consents.HasConsent(ctx, userID, consentType)
	if err != nil {
		return fmt.Errorf("checking consent: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrConsentRequired, consentType)
	}
	return nil
}
