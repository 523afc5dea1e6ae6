package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"arc-backend/internal/model"
)

const (
	productsTable  = "catalog_products"
	providersTable = "catalog_providers"
)

// supabaseCatalogRepository reads the catalog through the Supabase REST API
// with the public anon key.
type supabaseCatalogRepository struct {
	baseURL string
	anonKey string
	client  *http.Client
}

// NewSupabaseCatalogRepository creates a REST-backed catalog. client may be nil.
func NewSupabaseCatalogRepository(projectURL, anonKey string, client *http.Client) CatalogRepository {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &supabaseCatalogRepository{
		baseURL: strings.TrimRight(projectURL, "/") + "/rest/v1/",
		anonKey: anonKey,
		client:  client,
	}
}

func (r *supabaseCatalogRepository) GetProducts(ctx context.Context, f CatalogFilter) ([]model.CatalogProduct, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "kind.asc,name.asc")
	if !f.IncludeInactive {
		q.Set("active", "eq.true")
	}
	if f.Kind != "" {
		q.Set("kind", "eq."+f.Kind)
	}
	if f.ProviderID != "" {
		q.Set("provider_id", "eq."+f.ProviderID)
	}
	if f.Search != "" {
		term := strings.NewReplacer(",", " ", "(", " ", ")", " ").Replace(f.Search)
		q.Set("or", fmt.Sprintf("(name.ilike.*%s*,biomarker.ilike.*%s*)", term, term))
	}
	var products []model.CatalogProduct
	if err := r.get(ctx, productsTable, q, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *supabaseCatalogRepository) GetProviders(ctx context.Context) ([]model.CatalogProvider, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("active", "eq.true")
	q.Set("order", "name.asc")
	var providers []model.CatalogProvider
	if err := r.get(ctx, providersTable, q, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

func (r *supabaseCatalogRepository) get(ctx context.Context, table string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+table+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", r.anonKey)
	req.Header.Set("Authorization", "Bearer "+r.anonKey)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("supabase %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("supabase %s: HTTP %d: %s", table, resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("supabase %s: HTTP %d", table, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("supabase %s: decoding: %w", table, err)
	}
	return nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
