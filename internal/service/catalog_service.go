package service

import (
	"context"
	"fmt"

	"arc-backend/internal/engine"
	"arc-backend/internal/model"
	"arc-backend/internal/repository"
)

type CatalogService interface {
	GetProducts(ctx context.Context, kind, search string) ([]model.CatalogProduct, error)
	GetProviders(ctx context.Context) ([]model.CatalogProvider, error)
	// EngineProducts returns every active product in the engine's form.
	EngineProducts(ctx context.Context) ([]engine.Product, error)
}

type catalogService struct {
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) GetProducts(ctx context.Context, kind, search string) ([]model.CatalogProduct, error) {
	switch kind {
	case "", engine.KindTest, engine.KindSupplement:
	default:
		return nil, fmt.Errorf("%w: kind must be %q or %q", ErrInvalidInput, engine.KindTest, engine.KindSupplement)
	}
	products, err := s.repo.GetProducts(ctx, repository.CatalogFilter{Kind: kind, Search: search})
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return products, nil
}

func (s *catalogService) GetProviders(ctx context.Context) ([]model.CatalogProvider, error) {
	providers, err := s.repo.GetProviders(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading providers: %w", err)
	}
	return providers, nil
}

func (s *catalogService) EngineProducts(ctx context.Context) ([]engine.Product, error) {
	products, err := s.repo.GetProducts(ctx, repository.CatalogFilter{})
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return model.EngineProducts(products), nil
}
