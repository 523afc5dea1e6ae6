package service

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"arc-backend/internal/model"
	"arc-backend/internal/repository"
	"arc-backend/utilities"
)

// Audited events published on the event bus.
const (
	EventConsentRecorded    = "consent_recorded"
	EventConsentWithdrawn   = "consent_withdrawn"
	EventQuestionnaireSaved = "questionnaire_saved"
	EventDeletionRequested  = "deletion_requested"
	EventDataDeleted        = "data_deleted"
	EventDataExported       = "data_exported"
)

// Event is the payload of every audited event. Data holds identifiers and
// counts only.
type Event struct {
	Type   string
	UserID string
	Data   map[string]any
	At     time.Time
}

func publish(bus *utilities.EventBus, e Event) {
	if bus == nil {
		return
	}
	bus.Publish(e.Type, e)
}

type AuditService interface {
	// Subscribe starts persisting every audited event published on the bus.
	Subscribe()
	GetEvents(ctx context.Context, userID string) ([]model.AuditEvent, error)
}

type auditService struct {
	repo repository.AuditRepository
	bus  *utilities.EventBus
}

func NewAuditService(repo repository.AuditRepository, bus *utilities.EventBus) AuditService {
	return &auditService{repo: repo, bus: bus}
}

func (s *auditService) Subscribe() {
	for _, name := range []string{
		EventConsentRecorded,
		EventConsentWithdrawn,
		EventQuestionnaireSaved,
		EventDeletionRequested,
		EventDataDeleted,
		EventDataExported,
	} {
		s.bus.Subscribe(name, s.handle)
	}
}

func (s *auditService) handle(data interface{}) {
	e, ok := data.(Event)
	if !ok {
		utilities.Warn("audit: unexpected event payload %T", data)
		return
	}
	var raw datatypes.JSON
	if len(e.Data) > 0 {
		b, err := json.Marshal(e.Data)
		if err != nil {
			utilities.Error("audit: encoding %s: %v", e.Type, err)
			return
		}
		raw = b
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.repo.CreateAuditEvent(ctx, &model.AuditEvent{
		UserID:    e.UserID,
		Event:     e.Type,
		Data:      raw,
		CreatedAt: e.At,
	})
	if err != nil {
		utilities.Error("audit: storing %s for %s: %v", e.Type, e.UserID, err)
	}
}

func (s *auditService) GetEvents(ctx context.Context, userID string) ([]model.AuditEvent, error) {
	return s.repo.GetAuditEventsByUser(ctx, userID)
}
