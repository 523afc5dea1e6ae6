package service

import (
	"context"
	"time"

	"arc-backend/internal/engine"
	"arc-backend/internal/report"
)

// PDFRenderer renders a report payload to PDF bytes.
type PDFRenderer interface {
	Generate(ctx context.Context, data report.PDFGenerationData) ([]byte, error)
}

type ReportService interface {
	GeneratePDF(ctx context.Context, data report.PDFGenerationData) ([]byte, error)
	// BuildPDFData converts an engine report into a PDF payload.
	BuildPDFData(user report.User, rep *engine.Report, narrative string) report.PDFGenerationData
}

type reportService struct {
	renderer PDFRenderer
	now      func() time.Time
}

func NewReportService(renderer PDFRenderer) ReportService {
	return &reportService{renderer: renderer, now: time.Now}
}

func (s *reportService) GeneratePDF(ctx context.Context, data report.PDFGenerationData) ([]byte, error) {
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = s.now().UTC()
	}
	return s.renderer.Generate(ctx, data)
}

func (s *reportService) BuildPDFData(user report.User, rep *engine.Report, narrative string) report.PDFGenerationData {
	return report.FromEngine(user, rep, narrative, s.now().UTC())
}
