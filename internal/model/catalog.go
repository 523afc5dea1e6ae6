package model

import (
	"time"

	"gorm.io/datatypes"

	"arc-backend/internal/engine"
)

type CatalogProvider struct {
	ID        string         `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null"`
	Website   string         `json:"website,omitempty"`
	Regions   datatypes.JSON `json:"regions,omitempty"`
	Active    bool           `json:"active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CatalogProduct is a lab test or a supplement offered through a provider.
type CatalogProduct struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	Kind        string         `json:"kind" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"not null"`
	Biomarker   string         `json:"biomarker,omitempty"`
	Category    string         `json:"category,omitempty"`
	SafetyNotes string         `json:"safety_notes,omitempty"`
	Dose        string         `json:"dose,omitempty"`
	PriceCents  int64          `json:"price_cents"`
	ProviderID  string         `json:"provider_id,omitempty" gorm:"index"`
	Active      bool           `json:"active" gorm:"default:true"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ToEngine converts the row to the engine's catalog view.
func (p CatalogProduct) ToEngine() engine.Product {
	return engine.Product{
		ID:          p.ID,
		Kind:        p.Kind,
		Name:        p.Name,
		Biomarker:   p.Biomarker,
		Category:    p.Category,
		SafetyNotes: p.SafetyNotes,
		Dose:        p.Dose,
		PriceCents:  p.PriceCents,
		ProviderID:  p.ProviderID,
		Active:      p.Active,
	}
}

// EngineProducts converts a list of rows.
func EngineProducts(rows []CatalogProduct) []engine.Product {
	out := make([]engine.Product, len(rows))
	for i, r := range rows {
		out[i] = r.ToEngine()
	}
	return out
}
