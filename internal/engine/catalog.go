package engine

import (
	"sort"
	"strings"
)

// Product kinds.
const (
	KindTest       = "test"
	KindSupplement = "supplement"
)

// Product is the engine's read-only view of a catalog item.
type Product struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Biomarker   string `json:"biomarker,omitempty"`
	Category    string `json:"category,omitempty"`
	SafetyNotes string `json:"safetyNotes,omitempty"`
	Dose        string `json:"dose,omitempty"`
	PriceCents  int64  `json:"priceCents"`
	ProviderID  string `json:"providerId,omitempty"`
	Active      bool   `json:"active"`
}

type ScreeningBundle struct {
	Name        string   `json:"name"`
	Month       int      `json:"month"`
	Biomarkers  []string `json:"biomarkers"`
	TriggeredBy []string `json:"triggeredBy"`
}

type TestSelection struct {
	Tests   []Product         `json:"tests"`
	Bundles []ScreeningBundle `json:"bundles"`
}

// SelectTestsFromCatalog keeps active test products whose biomarker belongs to
// a wanted family and groups them into month-assigned bundles.
func SelectTestsFromCatalog(products []Product, targets BiomarkerTargets) TestSelection {
	wanted := targets.Biomarkers()
	sel := TestSelection{Tests: []Product{}, Bundles: []ScreeningBundle{}}

	inCatalog := make(map[string]bool)
	seen := make(map[string]bool)
	for _, p := range products {
		if p.Kind != KindTest || !p.Active {
			continue
		}
		if _, ok := wanted[p.Biomarker]; !ok {
			continue
		}
		inCatalog[p.Biomarker] = true
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		sel.Tests = append(sel.Tests, p)
	}
	sort.SliceStable(sel.Tests, func(i, j int) bool {
		return sel.Tests[i].Name < sel.Tests[j].Name
	})

	byName := make(map[string]*ScreeningBundle)
	for _, f := range targets.sortedFamilies() {
		fam := families[f]
		var markers []string
		for _, b := range fam.Biomarkers {
			if inCatalog[b] {
				markers = append(markers, b)
			}
		}
		if len(markers) == 0 {
			continue
		}
		b, ok := byName[fam.Bundle]
		if !ok {
			b = &ScreeningBundle{Name: fam.Bundle, Month: fam.Month}
			byName[fam.Bundle] = b
		}
		b.Biomarkers = appendUnique(b.Biomarkers, markers...)
		b.TriggeredBy = appendUnique(b.TriggeredBy, targets.Families[f]...)
	}
	for _, b := range byName {
		sel.Bundles = append(sel.Bundles, *b)
	}
	sort.Slice(sel.Bundles, func(i, j int) bool {
		if sel.Bundles[i].Month != sel.Bundles[j].Month {
			return sel.Bundles[i].Month < sel.Bundles[j].Month
		}
		return sel.Bundles[i].Name < sel.Bundles[j].Name
	})
	return sel
}

func appendUnique(list []string, items ...string) []string {
	for _, it := range items {
		dup := false
		for _, have := range list {
			if strings.EqualFold(have, it) {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, it)
		}
	}
	return list
}
