package controller

import (
	"context"
	"time"

	"arc-backend/internal/engine"
	"arc-backend/internal/llm"
	"arc-backend/internal/model"
	"arc-backend/internal/questionnaire"
	"arc-backend/internal/repository"
	"arc-backend/internal/service"
)

type fakeQuestionnaire struct {
	processErr error
	gotPersona string
	gotStrict  bool
	gotUser    string
	narrative  *llm.Narrative
	saveErr    error
	latest     *service.SavedQuestionnaire
	latestErr  error
}

func (f *fakeQuestionnaire) Process(_ context.Context, persona string, _ map[string]questionnaire.Answer, strict bool) (*engine.Report, error) {
	f.gotPersona, f.gotStrict = persona, strict
	if f.processErr != nil {
		return nil, f.processErr
	}
	return &engine.Report{Persona: persona}, nil
}

func (f *fakeQuestionnaire) ProcessWithNarrative(ctx context.Context, persona string, answers map[string]questionnaire.Answer) (*engine.Report, *llm.Narrative, error) {
	rep, err := f.Process(ctx, persona, answers, false)
	if err != nil {
		return nil, nil, err
	}
	if f.narrative == nil {
		return nil, nil, service.ErrNarrativeUnavailable
	}
	return rep, f.narrative, nil
}

func (f *fakeQuestionnaire) Save(_ context.Context, userID, persona string, _ map[string]questionnaire.Answer) (*model.QuestionnaireSubmission, error) {
	f.gotUser = userID
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return &model.QuestionnaireSubmission{ID: "sub-1", UserID: userID, Persona: persona, Scheme: "aes:v1", CreatedAt: time.Now()}, nil
}

func (f *fakeQuestionnaire) GetLatest(_ context.Context, userID string) (*service.SavedQuestionnaire, error) {
	f.gotUser = userID
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latest, nil
}

type fakeConsent struct {
	got service.ConsentInput
}

func (f *fakeConsent) Record(_ context.Context, userID string, in service.ConsentInput) (*service.ConsentResult, error) {
	f.got = in
	if !in.Accepted {
		return &service.ConsentResult{Withdrawn: 1}, nil
	}
	return &service.ConsentResult{Record: &model.ConsentRecord{ID: "c-1", UserID: userID, ConsentType: in.Type}}, nil
}

func (f *fakeConsent) GetConsents(_ context.Context, userID string) ([]model.ConsentRecord, error) {
	return []model.ConsentRecord{{ID: "c-1", UserID: userID, ConsentType: model.ConsentTerms}}, nil
}

func (f *fakeConsent) HasConsent(context.Context, string, string) (bool, error) { return true, nil }

type fakeDataRights struct {
	confirmErr error
}

func (f *fakeDataRights) RequestDeletion(_ context.Context, userID, reason string) (*model.DeletionRequest, error) {
	return &model.DeletionRequest{ID: "req-1", UserID: userID, Status: model.DeletionPending, Reason: reason}, nil
}

func (f *fakeDataRights) ConfirmDeletion(_ context.Context, userID, requestID string) (*service.DeletionResult, error) {
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return &service.DeletionResult{
		Request: &model.DeletionRequest{ID: requestID, UserID: userID, Status: model.DeletionCompleted},
		Erased:  repository.ErasureResult{Submissions: 2, Consents: 1},
	}, nil
}

func (f *fakeDataRights) Export(_ context.Context, userID string) (*service.DataExport, error) {
	return &service.DataExport{ExportID: "exp-1", User: &model.User{ID: userID}}, nil
}

func (f *fakeDataRights) Summary(_ context.Context, userID string) (*service.DataSummary, error) {
	return &service.DataSummary{UserID: userID, Submissions: 3, ActiveConsents: []string{model.ConsentTerms}}, nil
}

type fakeSession struct{}

func (fakeSession) StartSession(_ context.Context, email string) (*model.User, string, error) {
	return &model.User{ID: "user-1", Email: email}, "signed-token", nil
}

type fakeCatalog struct{}

func (fakeCatalog) GetProducts(_ context.Context, kind, _ string) ([]model.CatalogProduct, error) {
	if kind == "bogus" {
		return nil, service.ErrInvalidInput
	}
	return []model.CatalogProduct{{ID: "test-ferritin", Kind: engine.KindTest, Name: "Ferritin"}}, nil
}

func (fakeCatalog) GetProviders(context.Context) ([]model.CatalogProvider, error) {
	return []model.CatalogProvider{{ID: "arc-labs", Name: "Arc Labs"}}, nil
}

func (fakeCatalog) EngineProducts(context.Context) ([]engine.Product, error) { return nil, nil }
