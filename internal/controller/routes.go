package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"arc-backend/internal/service"
	"arc-backend/utilities"
)

// Services holds everything the API routes call into.
type Services struct {
	Questionnaire service.QuestionnaireService
	Report        service.ReportService
	Consent       service.ConsentService
	DataRights    service.DataRightsService
	Session       service.SessionService
	Catalog       service.CatalogService
	// Production marks session cookies Secure and hides error detail.
	Production bool
}

func RegisterRoutes(r *gin.Engine, s Services) {
	resp := responder{production: s.Production}
	auth := utilities.AuthMiddleware()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Session routes.
	sessionCtrl := NewSessionController(s.Session, resp)
	sessionRoutes := api.Group("/auth")
	{
		sessionRoutes.POST("/session", sessionCtrl.StartSession)
		sessionRoutes.DELETE("/session", sessionCtrl.EndSession)
	}

	// Report routes.
	reportCtrl := NewReportController(s.Report, resp)
	api.POST("/generate-pdf", reportCtrl.GeneratePDF)

	// Questionnaire routes.
	qCtrl := NewQuestionnaireController(s.Questionnaire, resp)
	qRoutes := api.Group("/questionnaire")
	{
		qRoutes.POST("/process/:persona", qCtrl.Process)
		qRoutes.POST("/process-women-full", qCtrl.ProcessWomenFull)
		qRoutes.POST("/save", auth, qCtrl.Save)
		qRoutes.GET("/get", auth, qCtrl.GetLatest)
	}

	// Consent routes.
	consentCtrl := NewConsentController(s.Consent, resp)
	consentRoutes := api.Group("/consent", auth)
	{
		consentRoutes.GET("", consentCtrl.GetConsents)
		consentRoutes.POST("/record", consentCtrl.Record)
	}

	// Data rights routes.
	rightsCtrl := NewDataRightsController(s.DataRights, resp)
	rightsRoutes := api.Group("/data-rights", auth)
	{
		rightsRoutes.POST("/delete", rightsCtrl.RequestDeletion)
		rightsRoutes.PUT("/delete", rightsCtrl.ConfirmDeletion)
		rightsRoutes.POST("/export", rightsCtrl.Export)
		rightsRoutes.GET("/export", rightsCtrl.Summary)
	}

	// Catalog routes.
	catalogCtrl := NewCatalogController(s.Catalog, resp)
	catalogRoutes := api.Group("/catalog")
	{
		catalogRoutes.GET("/products", catalogCtrl.GetProducts)
		catalogRoutes.GET("/providers", catalogCtrl.GetProviders)
	}
}
