package repository

import (
	"context"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"arc-backend/internal/db"
	"arc-backend/internal/db/query"
	"arc-backend/internal/model"
)

// CatalogFilter narrows a product listing. Zero values match everything.
type CatalogFilter struct {
	Kind       string
	ProviderID string
	Search     string
	// IncludeInactive also returns products that are switched off.
	IncludeInactive bool
}

type CatalogRepository interface {
	GetProducts(ctx context.Context, f CatalogFilter) ([]model.CatalogProduct, error)
	GetProviders(ctx context.Context) ([]model.CatalogProvider, error)
}

// CatalogStore is a catalog that also accepts seeding.
type CatalogStore interface {
	CatalogRepository
	UpsertCatalog(ctx context.Context, providers []model.CatalogProvider, products []model.CatalogProduct) error
}

type catalogRepository struct {
	db *gorm.DB
	qe *db.QueryExecutor
}

// NewCatalogRepository reads the catalog from the postgres tables.
func NewCatalogRepository(gdb *gorm.DB) CatalogStore {
	return &catalogRepository{db: gdb, qe: db.NewQueryExecutor(gdb)}
}

func (r *catalogRepository) GetProducts(ctx context.Context, f CatalogFilter) ([]model.CatalogProduct, error) {
	var products []model.CatalogProduct
	err := r.qe.Find(ctx, &products, productPredicate(f), "kind, name")
	return products, err
}

func (r *catalogRepository) GetProviders(ctx context.Context) ([]model.CatalogProvider, error) {
	var providers []model.CatalogProvider
	p := query.NewFilterPredicate().Equal("active", true)
	err := r.qe.Find(ctx, &providers, p, "name")
	return providers, err
}

func (r *catalogRepository) UpsertCatalog(ctx context.Context, providers []model.CatalogProvider, products []model.CatalogProduct) error {
	return r.qe.Transaction(ctx, func(tx *gorm.DB) error {
		upsert := tx.Clauses(clause.OnConflict{UpdateAll: true})
		if len(providers) > 0 {
			if err := upsert.Create(&providers).Error; err != nil {
				return err
			}
		}
		if len(products) > 0 {
			if err := upsert.Create(&products).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func productPredicate(f CatalogFilter) *query.FilterPredicate {
	p := query.NewFilterPredicate()
	and := func() {
		if !p.Empty() {
			p.And()
		}
	}
	if !f.IncludeInactive {
		p.Equal("active", true)
	}
	if f.Kind != "" {
		and()
		p.Equal("kind", f.Kind)
	}
	if f.ProviderID != "" {
		and()
		p.Equal("provider_id", f.ProviderID)
	}
	if f.Search != "" {
		and()
		p.Open().Like("name", f.Search).Or().Like("biomarker", f.Search).Close()
	}
	return p
}

// staticCatalogRepository serves a fixed catalog from memory.
type staticCatalogRepository struct {
	providers []model.CatalogProvider
	products  []model.CatalogProduct
}

// NewStaticCatalogRepository serves the given rows; it is used by the CLI and
// when no catalog store is configured.
func NewStaticCatalogRepository(providers []model.CatalogProvider, products []model.CatalogProduct) CatalogRepository {
	return &staticCatalogRepository{providers: providers, products: products}
}

func (r *staticCatalogRepository) GetProducts(_ context.Context, f CatalogFilter) ([]model.CatalogProduct, error) {
	out := make([]model.CatalogProduct, 0, len(r.products))
	for _, p := range r.products {
		if matchesFilter(p, f) {
			out = append(out, p)
		}
	}
	sortProducts(out)
	return out, nil
}

func (r *staticCatalogRepository) GetProviders(context.Context) ([]model.CatalogProvider, error) {
	out := make([]model.CatalogProvider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func matchesFilter(p model.CatalogProduct, f CatalogFilter) bool {
	switch {
	case !f.IncludeInactive && !p.Active:
		return false
	case f.Kind != "" && p.Kind != f.Kind:
		return false
	case f.ProviderID != "" && p.ProviderID != f.ProviderID:
		return false
	case f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.Biomarker, f.Search):
		return false
	}
	return true
}

func sortProducts(list []model.CatalogProduct) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Kind != list[j].Kind {
			return list[i].Kind < list[j].Kind
		}
		return list[i].Name < list[j].Name
	})
}
