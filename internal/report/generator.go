package report

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"
)

const (
	templateFile = "report.html.tmpl"
	themeFile    = "theme.yaml"

	marginMM     = 15.0
	pageWidthMM  = 210.0
	contentWidth = pageWidthMM - 2*marginMM
)

//go:embed templates/*
var embedded embed.FS

// Theme controls fonts, colours and spacing of the PDF.
type Theme struct {
	Font         string             `yaml:"font"`
	Colors       map[string]string  `yaml:"colors"`
	Sizes        map[string]float64 `yaml:"sizes"`
	LineHeight   float64            `yaml:"line_height"`
	ParagraphGap float64            `yaml:"paragraph_gap"`
}

func (t Theme) size(name string, fallback float64) float64 {
	if v, ok := t.Sizes[name]; ok && v > 0 {
		return v
	}
	return fallback
}

// color parses a "#rrggbb" theme colour, defaulting to black.
func (t Theme) color(name string) (int, int, int) {
	var r, g, b int
	hex := strings.TrimPrefix(t.Colors[name], "#")
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0
	}
	return r, g, b
}

// Generator renders report payloads into A4 PDFs. It is safe for concurrent
// use: each Generate call builds its own document.
type Generator struct {
	tmpl  *template.Template
	theme Theme
}

// NewGenerator loads the report template and theme from templateDir, falling
// back to the embedded defaults for any file the directory does not provide.
func NewGenerator(templateDir string) (*Generator, error) {
	themeData, err := readAsset(templateDir, themeFile)
	if err != nil {
		return nil, err
	}
	var theme Theme
	if err := yaml.Unmarshal(themeData, &theme); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", themeFile, err)
	}
	if theme.Font == "" {
		theme.Font = "Helvetica"
	}
	if theme.LineHeight <= 0 {
		theme.LineHeight = 5
	}

	tmplData, err := readAsset(templateDir, templateFile)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(templateFile).Funcs(templateFuncs).Parse(string(tmplData))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", templateFile, err)
	}
	return &Generator{tmpl: tmpl, theme: theme}, nil
}

func readAsset(dir, name string) ([]byte, error) {
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
	}
	data, err := embedded.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("reading embedded %s: %w", name, err)
	}
	return data, nil
}

// RenderHTML executes the report template without producing a PDF.
func (g *Generator) RenderHTML(data PDFGenerationData) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing report template: %w", err)
	}
	return buf.Bytes(), nil
}

// Generate renders data into PDF bytes. The payload is assumed valid.
func (g *Generator) Generate(ctx context.Context, data PDFGenerationData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page, err := g.RenderHTML(data)
	if err != nil {
		return nil, err
	}
	blocks, err := normalize(bytes.NewReader(page))
	if err != nil {
		return nil, err
	}
	return g.render(ctx, blocks)
}

type renderer struct {
	pdf   *gofpdf.Fpdf
	html  gofpdf.HTMLBasicType
	tr    func(string) string
	theme Theme
}

func (g *Generator) render(ctx context.Context, blocks []block) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, marginMM)
	pdf.AliasNbPages("")
	pdf.SetTitle("The Arc health report", true)
	pdf.SetCreator("arc-backend", true)

	r := &renderer{
		pdf:   pdf,
		html:  pdf.HTMLBasicNew(),
		tr:    pdf.UnicodeTranslatorFromDescriptor(""),
		theme: g.theme,
	}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont(r.theme.Font, "I", r.theme.size("small", 8))
		pdf.SetTextColor(r.theme.color("muted"))
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	for _, b := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.block(b)
		if pdf.Err() {
			return nil, fmt.Errorf("rendering pdf: %w", pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.OutputAndClose(nopCloser{&buf}); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func (r *renderer) block(b block) {
	lh := r.theme.LineHeight
	body := r.theme.size("body", 10)
	r.pdf.SetFont(r.theme.Font, "", body)
	r.pdf.SetTextColor(r.theme.color("text"))

	switch b.kind {
	case blockHeading:
		size := r.theme.size(fmt.Sprintf("h%d", b.level), body+2)
		r.pdf.Ln(r.theme.ParagraphGap * 2)
		r.pdf.SetFont(r.theme.Font, "B", size)
		r.pdf.SetTextColor(r.theme.color("primary"))
		r.html.Write(size*0.45, r.tr(b.inline))
		r.pdf.Ln(size * 0.5)
		if b.level <= 2 {
			y := r.pdf.GetY()
			r.pdf.SetDrawColor(r.theme.color("accent"))
			r.pdf.SetLineWidth(0.4)
			r.pdf.Line(marginMM, y, marginMM+contentWidth, y)
			r.pdf.Ln(2)
		}

	case blockParagraph:
		switch b.class {
		case "muted":
			r.pdf.SetFont(r.theme.Font, "", r.theme.size("small", body-2))
			r.pdf.SetTextColor(r.theme.color("muted"))
		case "alert":
			r.pdf.SetTextColor(r.theme.color("danger"))
		}
		r.html.Write(lh, r.tr(b.inline))
		r.pdf.Ln(lh + r.theme.ParagraphGap)

	case blockListItem:
		r.pdf.SetX(marginMM + 2)
		r.pdf.CellFormat(4, lh, r.tr("•"), "", 0, "L", false, 0, "")
		r.pdf.SetLeftMargin(marginMM + 6)
		r.html.Write(lh, r.tr(b.inline))
		r.pdf.SetLeftMargin(marginMM)
		r.pdf.Ln(lh + 1)

	case blockRow:
		r.row(b)

	case blockRule:
		r.pdf.Ln(2)
		y := r.pdf.GetY()
		r.pdf.SetDrawColor(r.theme.color("muted"))
		r.pdf.SetLineWidth(0.2)
		r.pdf.Line(marginMM, y, marginMM+contentWidth, y)
		r.pdf.Ln(3)

	case blockPageBreak:
		r.pdf.AddPage()
	}
}

// row draws a table row whose height fits the tallest wrapped cell.
func (r *renderer) row(b block) {
	lh := r.theme.LineHeight
	w := contentWidth / float64(len(b.cells))
	cells := make([]string, len(b.cells))
	lines := 1
	for i, c := range b.cells {
		cells[i] = r.tr(c)
		if b.header {
			r.pdf.SetFont(r.theme.Font, "B", r.theme.size("body", 10))
		}
		if n := len(r.pdf.SplitLines([]byte(cells[i]), w-2)); n > lines {
			lines = n
		}
	}
	h := float64(lines)*lh + 2

	_, pageH := r.pdf.GetPageSize()
	if r.pdf.GetY()+h > pageH-marginMM {
		r.pdf.AddPage()
	}
	style := "D"
	if b.header {
		style = "FD"
		r.pdf.SetFillColor(r.theme.color("table_header"))
	}
	r.pdf.SetDrawColor(r.theme.color("muted"))
	r.pdf.SetLineWidth(0.1)

	x, y := marginMM, r.pdf.GetY()
	for i, c := range cells {
		cx := x + float64(i)*w
		r.pdf.Rect(cx, y, w, h, style)
		r.pdf.SetXY(cx+1, y+1)
		r.pdf.MultiCell(w-2, lh, c, "", "L", false)
	}
	r.pdf.SetXY(x, y+h)
}

var bucketTitles = map[string]string{
	"nutrition":         "Nutrition",
	"supplements":       "Supplements",
	"movement_recovery": "Movement and recovery",
	"screenings_checks": "Screenings and checks",
	"environment":       "Environment",
	"red_flags":         "Red flags",
}

var templateFuncs = template.FuncMap{
	"pct": func(v float64) string { return fmt.Sprintf("%.0f", v) },
	"level": func(v float64) string {
		switch {
		case v >= 60:
			return "High"
		case v >= 40:
			return "Moderate"
		default:
			return "Low"
		}
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			t = time.Now()
		}
		return t.Format("2 January 2006")
	},
	"join": strings.Join,
	"persona": func(p string) string {
		if p == "" {
			return ""
		}
		return strings.ToUpper(p[:1]) + p[1:]
	},
	"priority": func(p string) string { return strings.ReplaceAll(p, "_", " ") },
	"bucket": func(b string) string {
		if t, ok := bucketTitles[b]; ok {
			return t
		}
		return b
	},
	"paragraphs": func(s string) []string {
		var out []string
		for _, p := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	},
}
