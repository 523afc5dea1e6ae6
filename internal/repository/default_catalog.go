package repository

import (
	"strings"

	"gorm.io/datatypes"

	"arc-backend/internal/engine"
	"arc-backend/internal/model"
)

const (
	defaultLabProvider        = "arc-labs"
	defaultSupplementProvider = "arc-nutrition"
)

var defaultTestPrices = map[string]int64{
	"HbA1c":                  1900,
	"Fasting Glucose":        900,
	"Fasting Insulin":        2400,
	"Total Cholesterol":      900,
	"LDL Cholesterol":        1200,
	"HDL Cholesterol":        1200,
	"Triglycerides":          1000,
	"ApoB":                   3500,
	"TSH":                    1500,
	"Free T4":                1800,
	"Free T3":                1800,
	"TPO Antibodies":         2900,
	"Ferritin":               1600,
	"Serum Iron":             1200,
	"Transferrin Saturation": 1400,
	"Vitamin D (25-OH)":      2900,
	"Vitamin B12":            1900,
	"Folate":                 1900,
	"Magnesium (RBC)":        2500,
	"Cortisol (AM)":          2700,
	"DHEA-S":                 2900,
	"hs-CRP":                 1900,
	"Homocysteine":           3200,
	"Estradiol":              2600,
	"FSH":                    2400,
	"LH":                     2400,
	"Progesterone":           2600,
	"SHBG":                   2900,
	"Calcium":                900,
	"Parathyroid Hormone":    3900,
	"ALT":                    900,
	"AST":                    900,
	"GGT":                    900,
	"eGFR":                   1100,
	"Creatinine":             900,
}

var defaultSupplements = []model.CatalogProduct{
	{ID: "sup-vitamin-d3", Name: "Vitamin D3 + K2", Category: engine.CategoryVitaminD, Dose: "1000-2000 IU daily with food", SafetyNotes: "Avoid high doses without a blood test.", PriceCents: 1400},
	{ID: "sup-omega-3", Name: "Omega-3 (EPA/DHA)", Category: engine.CategoryOmega3, Dose: "1-2 g combined EPA/DHA daily", SafetyNotes: "May increase bleeding risk with anticoagulants.", PriceCents: 2200},
	{ID: "sup-magnesium", Name: "Magnesium Glycinate", Category: engine.CategoryMagnesium, Dose: "200-400 mg in the evening", SafetyNotes: "Reduce the dose if stools loosen. Avoid with severe kidney disease.", PriceCents: 1600},
	{ID: "sup-ashwagandha", Name: "Ashwagandha (KSM-66)", Category: engine.CategoryAdaptogen, Dose: "300-600 mg daily", SafetyNotes: "Not for pregnancy. Can affect thyroid hormone levels.", PriceCents: 1800},
	{ID: "sup-probiotic", Name: "Multi-strain Probiotic", Category: engine.CategoryProbiotic, Dose: "1 capsule daily", SafetyNotes: "Check with a clinician if immunocompromised.", PriceCents: 2400},
	{ID: "sup-psyllium", Name: "Psyllium Husk", Category: engine.CategoryFibre, Dose: "5 g daily with a large glass of water", SafetyNotes: "Separate from medicines by two hours.", PriceCents: 900},
	{ID: "sup-berberine", Name: "Berberine", Category: engine.CategoryBerberine, Dose: "500 mg with meals, up to three times daily", SafetyNotes: "Interacts with glucose-lowering medication. Not for pregnancy.", PriceCents: 2600},
	{ID: "sup-creatine", Name: "Creatine Monohydrate", Category: engine.CategoryCreatine, Dose: "3-5 g daily", SafetyNotes: "Keep well hydrated.", PriceCents: 1900},
	{ID: "sup-melatonin", Name: "Melatonin (low dose)", Category: engine.CategoryMelatonin, Dose: "0.5-1 mg 1-2 hours before target bedtime", SafetyNotes: "Short-term use. Avoid driving after taking.", PriceCents: 800},
	{ID: "sup-menopause", Name: "Sage & Black Cohosh", Category: engine.CategoryMenoBotanic, Dose: "As directed on label", SafetyNotes: "Avoid with liver disease or alongside HRT.", PriceCents: 2100},
	{ID: "sup-saffron", Name: "Saffron Extract", Category: engine.CategoryMood, Dose: "30 mg daily", SafetyNotes: "Do not combine with antidepressants without advice.", PriceCents: 2500},
	{ID: "sup-calcium", Name: "Calcium Citrate", Category: engine.CategoryCalcium, Dose: "500 mg with food if dietary intake is low", SafetyNotes: "Separate from thyroid medication by four hours.", PriceCents: 1100},
	{ID: "sup-k2", Name: "Vitamin K2 (MK-7)", Category: engine.CategoryVitaminK2, Dose: "90-180 mcg daily", SafetyNotes: "Contraindicated with warfarin.", PriceCents: 1500},
	{ID: "sup-iron", Name: "Iron Bisglycinate", Category: engine.CategoryIron, Dose: "14-28 mg every other day", SafetyNotes: "Only with confirmed low ferritin.", PriceCents: 1200},
	{ID: "sup-selenium", Name: "Selenium", Category: engine.CategorySelenium, Dose: "100 mcg daily", SafetyNotes: "Do not exceed 200 mcg daily.", PriceCents: 900},
	{ID: "sup-curcumin", Name: "Curcumin Phytosome", Category: engine.CategoryCurcumin, Dose: "500 mg twice daily with food", SafetyNotes: "May increase bleeding risk. Avoid with gallstones.", PriceCents: 2300},
	{ID: "sup-b-complex", Name: "Methylated B Complex", Category: engine.CategoryBComplex, Dose: "1 capsule with breakfast", SafetyNotes: "Turns urine bright yellow.", PriceCents: 1400},
	{ID: "sup-electrolytes", Name: "Electrolyte Mix", Category: engine.CategoryElectrolytes, Dose: "1 sachet in water on travel days", SafetyNotes: "Check sodium intake if you have high blood pressure.", PriceCents: 1300},
}

// DefaultCatalog returns a catalog covering every biomarker family and
// supplement category the engine can recommend.
func DefaultCatalog() ([]model.CatalogProvider, []model.CatalogProduct) {
	providers := []model.CatalogProvider{
		{ID: defaultLabProvider, Name: "Arc Partner Labs", Website: "https://labs.thearc.example", Regions: datatypes.JSON(`["UK","EU"]`), Active: true},
		{ID: defaultSupplementProvider, Name: "Arc Nutrition", Website: "https://shop.thearc.example", Regions: datatypes.JSON(`["UK"]`), Active: true},
	}

	var products []model.CatalogProduct
	seen := make(map[string]bool)
	for _, f := range allFamilies {
		for _, b := range engine.FamilyBiomarkers(f) {
			if seen[b] {
				continue
			}
			seen[b] = true
			products = append(products, model.CatalogProduct{
				ID:         "test-" + slug(b),
				Kind:       engine.KindTest,
				Name:       b,
				Biomarker:  b,
				PriceCents: defaultTestPrices[b],
				ProviderID: defaultLabProvider,
				Active:     true,
				Metadata:   datatypes.JSON(`{"sample":"venous"}`),
			})
		}
	}
	for _, s := range defaultSupplements {
		s.Kind = engine.KindSupplement
		s.ProviderID = defaultSupplementProvider
		s.Active = true
		products = append(products, s)
	}
	return providers, products
}

var allFamilies = []engine.Family{
	engine.FamilyMetabolicGlucose,
	engine.FamilyMetabolicLipids,
	engine.FamilyThyroid,
	engine.FamilyIronStatus,
	engine.FamilyMicronutrients,
	engine.FamilyCortisolHPA,
	engine.FamilyInflammation,
	engine.FamilyFemaleHormones,
	engine.FamilyBoneHealth,
	engine.FamilyLiverKidney,
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
