package controller

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"arc-backend/internal/report"
	"arc-backend/internal/service"
)

type ReportController struct {
	ReportService service.ReportService
	responder
}

func NewReportController(reportService service.ReportService, resp responder) *ReportController {
	return &ReportController{ReportService: reportService, responder: resp}
}

// GeneratePDF - Validates a report payload and streams the rendered PDF
func (rc *ReportController) GeneratePDF(c *gin.Context) {
	var data report.PDFGenerationData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid report payload", "fields": err.Error()})
		return
	}
	pdf, err := rc.ReportService.GeneratePDF(c.Request.Context(), data)
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, reportFilename(data.User.Name)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func reportFilename(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "arc-report.pdf"
	}
	return "arc-report-" + slug + ".pdf"
}
