package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"arc-backend/internal/engine"
	"arc-backend/internal/questionnaire"
)

func samplePayload() PDFGenerationData {
	return PDFGenerationData{
		User:        User{Name: "Alex Morgan", Email: "alex@example.com", Age: 48},
		Persona:     "women",
		GeneratedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		Scores: []Score{
			{Name: "Sleep disruption", Value: 72},
			{Name: "Menopause symptoms", Value: 55},
		},
		KeyMetrics: []Score{{Name: "Sleep Quality", Value: 28}},
		Screenings: []Screening{{
			Name: "Hormone Health", Month: 2,
			Biomarkers:  []string{"Estradiol", "FSH"},
			TriggeredBy: []string{"vasomotor_flag"},
		}},
		Nutrition: []string{"Aim for three calcium-rich foods each day."},
		Supplements: []Supplement{{
			Name: "Magnesium Glycinate", Priority: "Core", Dose: "200-400 mg",
			SafetyNotes: "Reduce the dose if stools loosen.",
		}},
		Breathwork: []Breathwork{{Name: "4-7-8 breathing", Pattern: "in 4s, hold 7s, out 8s", Minutes: 4, When: "Before bed"}},
		Months: []Month{
			{Month: 1, Title: "Month 1: Foundations", Actions: []string{"Walk daily."}},
			{Month: 2, Title: "Month 2: Build", Bundles: []string{"Hormone Health"}},
			{Month: 3, Title: "Month 3: Consolidate"},
		},
		Actions:   map[string][]string{"environment": {"Keep the bedroom cool."}},
		Narrative: "Your sleep is the main lever right now.\n\nSmall changes add up & compound.",
	}
}

func TestGenerate_ProducesPDF(t *testing.T) {
	g, err := NewGenerator("")
	if err != nil {
		t.Fatal(err)
	}
	out, err := g.Generate(context.Background(), samplePayload())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF: %q", out[:min(len(out), 8)])
	}
	if len(out) < 1000 {
		t.Errorf("len = %d, suspiciously small", len(out))
	}
}

func TestGenerate_ImmediateConcernAndSymbols(t *testing.T) {
	g, err := NewGenerator("")
	if err != nil {
		t.Fatal(err)
	}
	data := samplePayload()
	data.ImmediateConcern = true
	data.Nutrition = append(data.Nutrition, "Keep alcohol < 7 drinks & café visits short")
	if _, err := g.Generate(context.Background(), data); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}

func TestGenerate_CancelledContext(t *testing.T) {
	g, err := NewGenerator("")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Generate(ctx, samplePayload()); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestNewGenerator_TemplateDirOverride(t *testing.T) {
	dir := t.TempDir()
	tmpl := `<h1>Custom report for {{.User.Name}}</h1>`
	if err := os.WriteFile(filepath.Join(dir, templateFile), []byte(tmpl), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := NewGenerator(dir)
	if err != nil {
		t.Fatal(err)
	}
	html, err := g.RenderHTML(samplePayload())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(html), "Custom report for Alex Morgan") {
		t.Errorf("override template not used: %s", html)
	}
	// theme.yaml is absent from dir, so the embedded theme applies.
	if g.theme.Font != "Helvetica" || g.theme.Sizes["h1"] != 22 {
		t.Errorf("theme = %+v, want embedded defaults", g.theme)
	}
}

func TestNewGenerator_BadTemplate(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, templateFile), []byte(`{{.Broken`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewGenerator(dir); err == nil {
		t.Error("expected a parse error")
	}
}

func TestRenderHTML_EscapesUserInput(t *testing.T) {
	g, err := NewGenerator("")
	if err != nil {
		t.Fatal(err)
	}
	data := samplePayload()
	data.User.Name = `<script>alert(1)</script>`
	html, err := g.RenderHTML(data)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(html), "<script>") {
		t.Error("user name rendered unescaped")
	}
}

func TestNormalize(t *testing.T) {
	doc := `<html><head><title>x</title></head><body>
<h2>Scores</h2>
<p class="muted">Prepared for <b>Sam</b> and <em>friends</em></p>
<table><tr><th>Area</th><th>Score</th></tr><tr><td>Sleep</td><td>72</td></tr></table>
<ul><li>Walk  daily</li></ul>
<div class="page-break"></div>
<hr>
</body></html>`
	blocks, err := normalize(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	kinds := []blockKind{blockHeading, blockParagraph, blockRow, blockRow, blockListItem, blockPageBreak, blockRule}
	if len(blocks) != len(kinds) {
		t.Fatalf("got %d blocks, want %d: %+v", len(blocks), len(kinds), blocks)
	}
	for i, k := range kinds {
		if blocks[i].kind != k {
			t.Errorf("block %d kind = %v, want %v", i, blocks[i].kind, k)
		}
	}
	if blocks[0].level != 2 || blocks[0].inline != "Scores" {
		t.Errorf("heading = %+v", blocks[0])
	}
	if got, want := blocks[1].inline, "Prepared for <b>Sam</b> and <i>friends</i>"; got != want {
		t.Errorf("inline = %q, want %q", got, want)
	}
	if blocks[1].class != "muted" {
		t.Errorf("class = %q", blocks[1].class)
	}
	if !blocks[2].header || blocks[3].header || blocks[3].cells[1] != "72" {
		t.Errorf("rows = %+v, %+v", blocks[2], blocks[3])
	}
	if blocks[4].inline != "Walk daily" {
		t.Errorf("list item = %q", blocks[4].inline)
	}
}

func TestFromEngine(t *testing.T) {
	cfg, err := questionnaire.Load(questionnaire.PersonaWomen)
	if err != nil {
		t.Fatal(err)
	}
	rep, err := engine.Run(cfg, questionnaire.Responses{
		"BG_AGE": questionnaire.Number(52),
		"V1":     questionnaire.Label("Very"),
		"V2":     questionnaire.Label("Extremely"),
		"S1":     questionnaire.Label("Often"),
	}, nil, engine.Options{})
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	d := FromEngine(User{Name: "Jo"}, rep, "narrative", now)

	if d.User.Age != 52 {
		t.Errorf("Age = %d, want 52 from demographics", d.User.Age)
	}
	if len(d.Scores) == 0 {
		t.Fatal("no scores")
	}
	found := false
	for _, s := range d.Scores {
		if s.Name == "Menopause symptoms" {
			found = true
		}
	}
	if !found {
		t.Errorf("Scores = %+v, want Menopause symptoms", d.Scores)
	}
	if len(d.Months) != 3 || d.Narrative != "narrative" || !d.GeneratedAt.Equal(now) {
		t.Errorf("payload = %+v", d)
	}

	g, err := NewGenerator("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate(context.Background(), d); err != nil {
		t.Fatalf("Generate: %v", err)
	}
}
