package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"arc-backend/internal/encryption"
	"arc-backend/internal/engine"
	"arc-backend/internal/llm"
	"arc-backend/internal/model"
	"arc-backend/internal/questionnaire"
	"arc-backend/internal/repository"
	"arc-backend/utilities"
)

// SavedPayload is the plaintext of an encrypted submission.
type SavedPayload struct {
	Persona   string                           `json:"persona"`
	Version   string                           `json:"version"`
	Responses questionnaire.Responses          `json:"responses"`
	Scores    map[string]engine.CompositeScore `json:"scores"`
	Unknown   []string                         `json:"unknownFields,omitempty"`
	SavedAt   time.Time                        `json:"savedAt"`
}

// SavedQuestionnaire is a decrypted submission.
type SavedQuestionnaire struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	Data      SavedPayload `json:"data"`
}

type QuestionnaireService interface {
	// Process scores answers for a persona and builds the full report.
	Process(ctx context.Context, persona string, answers map[string]questionnaire.Answer, strict bool) (*engine.Report, error)
	// ProcessWithNarrative adds an LLM narrative; a failed completion fails the call.
	ProcessWithNarrative(ctx context.Context, persona string, answers map[string]questionnaire.Answer) (*engine.Report, *llm.Narrative, error)
	Save(ctx context.Context, userID, persona string, answers map[string]questionnaire.Answer) (*model.QuestionnaireSubmission, error)
	GetLatest(ctx context.Context, userID string) (*SavedQuestionnaire, error)
}

type questionnaireService struct {
	catalog     CatalogService
	consents    ConsentService
	submissions repository.SubmissionRepository
	crypto      encryption.Provider
	narrative   NarrativeService
	bus         *utilities.EventBus
	now         func() time.Time
}

// NewQuestionnaireService creates the service. narrative may be nil when no
// LLM is configured.
func NewQuestionnaireService(
	catalog CatalogService,
	consents ConsentService,
	submissions repository.SubmissionRepository,
	crypto encryption.Provider,
	narrative NarrativeService,
	bus *utilities.EventBus,
) QuestionnaireService {
	return &questionnaireService{
		catalog:     catalog,
		consents:    consents,
		submissions: submissions,
		crypto:      crypto,
		narrative:   narrative,
		bus:         bus,
		now:         time.Now,
	}
}

func (s *questionnaireService) Process(ctx context.Context, persona string, answers map[string]questionnaire.Answer, strict bool) (*engine.Report, error) {
	cfg, err := questionnaire.Load(persona)
	if err != nil {
		return nil, err
	}
	responses, unknown := questionnaire.Canonicalize(cfg, answers)

	products, err := s.catalog.EngineProducts(ctx)
	if err != nil {
		return nil, err
	}
	rep, err := engine.Run(cfg, responses, products, engine.Options{Strict: strict})
	if err != nil {
		return nil, err
	}
	rep.Unknown = unknown
	return rep, nil
}

func (s *questionnaireService) ProcessWithNarrative(ctx context.Context, persona string, answers map[string]questionnaire.Answer) (*engine.Report, *llm.Narrative, error) {
	if s.narrative == nil {
		return nil, nil, ErrNarrativeUnavailable
	}
	rep, err := s.Process(ctx, persona, answers, false)
	if err != nil {
		return nil, nil, err
	}
	n, err := s.narrative.Generate(ctx, rep)
	if err != nil {
		return nil, nil, err
	}
	return rep, &n, nil
}

func (s *questionnaireService) Save(ctx context.Context, userID, persona string, answers map[string]questionnaire.Answer) (*model.QuestionnaireSubmission, error) {
	if err := requireConsent(ctx, s.consents, userID, model.ConsentHealthData); err != nil {
		return nil, err
	}
	cfg, err := questionnaire.Load(persona)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: no answers", ErrInvalidInput)
	}
	responses, unknown := questionnaire.Canonicalize(cfg, answers)
	result, err := engine.ComputeComposites(cfg, responses, engine.Options{})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	plaintext, err := json.Marshal(SavedPayload{
		Persona:   cfg.Persona,
		Version:   cfg.Version,
		Responses: responses,
		Scores:    result.Composites,
		Unknown:   unknown,
		SavedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	ciphertext, err := s.crypto.Encrypt(ctx, plaintext)
	if err != nil {
		return nil, fmt.Errorf("encrypting submission: %w", err)
	}

	sub := &model.QuestionnaireSubmission{
		ID:        uuid.NewString(),
		UserID:    userID,
		Persona:   cfg.Persona,
		Payload:   ciphertext,
		Scheme:    encryption.Scheme(ciphertext),
		CreatedAt: now,
	}
	if err := s.submissions.CreateSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("storing submission: %w", err)
	}
	publish(s.bus, Event{Type: EventQuestionnaireSaved, UserID: userID, At: now,
		Data: map[string]any{"submissionId": sub.ID, "persona": sub.Persona}})
	return sub, nil
}

func (s *questionnaireService) GetLatest(ctx context.Context, userID string) (*SavedQuestionnaire, error) {
	if err := requireConsent(ctx, s.consents, userID, model.ConsentHealthData); err != nil {
		return nil, err
	}
	sub, err := s.submissions.GetLatestSubmission(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	payload, err := decryptSubmission(ctx, s.crypto, sub)
	if err != nil {
		return nil, err
	}
	return &SavedQuestionnaire{ID: sub.ID, CreatedAt: sub.CreatedAt, Data: *payload}, nil
}

func decryptSubmission(ctx context.Context, crypto encryption.Provider, sub *model.QuestionnaireSubmission) (*SavedPayload, error) {
	plaintext, err := crypto.Decrypt(ctx, sub.Payload)
	if err != nil {
		return nil, fmt.Errorf("decrypting submission %s: %w", sub.ID, err)
	}
	var p SavedPayload
	if err := json.Unmarshal(plaintext, &p); err != nil {
		return nil, fmt.Errorf("decoding submission %s: %w", sub.ID, err)
	}
	return &p, nil
}
