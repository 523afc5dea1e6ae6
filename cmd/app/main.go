package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"arc-backend/internal/config"
	"arc-backend/internal/controller"
	"arc-backend/internal/db"
	"arc-backend/internal/encryption"
	"arc-backend/internal/llm"
	"arc-backend/internal/model"
	"arc-backend/internal/report"
	"arc-backend/internal/repository"
	"arc-backend/internal/service"
	"arc-backend/pkg/middleware"
	"arc-backend/utilities"
)

const version = "1.0.0"

func main() {
	printStartUpBanner()

	// Load XML configuration from file.
	configPath := os.Getenv("ARC_CONFIG")
	if configPath == "" {
		configPath = "config.xml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Env.Validate(); err != nil {
		log.Fatalf("invalid environment: %v", err)
	}

	if err := utilities.SetupLogging(cfg.Logging.Dir, cfg.Logging.Debug); err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}
	defer utilities.CloseLogs()
	utilities.SetSessionSecret(cfg.Env.JWTSecret)

	// Initialize DB using the loaded config.
	gdb, err := db.InitDBFromConfig(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if cfg.DB.Initialize {
		// Run migrations.
		if err := gdb.AutoMigrate(model.All()...); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	crypto, err := encryption.New(encryption.Settings{
		Provider:    cfg.Encryption.Provider,
		Production:  cfg.Env.IsProduction(),
		KMSKeyID:    cfg.Env.KMSKeyID,
		KMSToken:    cfg.Env.KMSToken,
		KMSEndpoint: cfg.Encryption.KMSEndpoint,
		LocalSecret: cfg.Env.LocalEncryptionSecret,
	})
	if err != nil {
		log.Fatalf("failed to configure encryption: %v", err)
	}
	utilities.Info("encryption provider: %s", crypto.Name())
	if crypto.Name() == encryption.ProviderDev {
		utilities.Warn("questionnaire payloads are NOT encrypted (dev provider)")
	}

	generator, err := report.NewGenerator(cfg.Report.TemplateDir)
	if err != nil {
		log.Fatalf("failed to load report template: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	catalogRepo, closeCatalog := buildCatalog(ctx, cfg, gdb)
	cancel()
	defer closeCatalog()

	// Create repositories.
	userRepo := repository.NewUserRepository(gdb)
	consentRepo := repository.NewConsentRepository(gdb)
	submissionRepo := repository.NewSubmissionRepository(gdb)
	rightsRepo := repository.NewDataRightsRepository(gdb)
	auditRepo := repository.NewAuditRepository(gdb)

	// Create services.
	bus := utilities.GlobalEventBus
	service.NewAuditService(auditRepo, bus).Subscribe()

	var narrativeService service.NarrativeService
	if cfg.Env.OpenAIAPIKey != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := llm.Authenticate(ctx, cfg.Env.OpenAIAPIKey, cfg.ThirdParty.OpenAIURL); err != nil {
			utilities.Warn("OpenAI key check failed: %v", err)
		}
		cancel()
		narrativeService = service.NewNarrativeService(
			llm.NewOpenAIClient(cfg.Env.OpenAIAPIKey, cfg.ThirdParty.OpenAIModel, cfg.ThirdParty.OpenAIURL))
	} else {
		utilities.Warn("OPENAI_API_KEY not set; /api/questionnaire/process-women-full will return 503")
	}

	catalogService := service.NewCatalogService(catalogRepo)
	consentService := service.NewConsentService(consentRepo, bus, []byte(cfg.Env.JWTSecret))
	services := controller.Services{
		Questionnaire: service.NewQuestionnaireService(catalogService, consentService, submissionRepo, crypto, narrativeService, bus),
		Report:        service.NewReportService(generator),
		Consent:       consentService,
		DataRights:    service.NewDataRightsService(userRepo, consentRepo, submissionRepo, rightsRepo, auditRepo, crypto, bus),
		Session:       service.NewSessionService(userRepo),
		Catalog:       catalogService,
		Production:    cfg.Env.IsProduction(),
	}

	if cfg.Env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	// Initialize Gin router.
	r := gin.Default()

	// CORS configuration.
	r.Use(cors.New(corsConfig(cfg.Context.AllowedOrigins)))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst).Middleware())
	}
	if cfg.RequestDump {
		r.Use(middleware.RequestDumpMiddleware())
	}

	controller.RegisterRoutes(r, services)

	// Start server on the host and port specified in the XML config.
	addr := fmt.Sprintf("%s:%d", cfg.Context.Host, cfg.Context.Port)
	utilities.Info("listening on %s (%s)", addr, cfg.Env.Environment)
	if err := r.Run(addr); err != nil {
		utilities.Error("server stopped: %v", err)
	}
	bus.Wait()
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	// Credentials rule out a wildcard origin, so reflect the caller instead.
	if len(origins) == 0 {
		c.AllowOriginFunc = func(string) bool { return true }
	} else {
		c.AllowOrigins = origins
	}
	return c
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("ARC", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("ARC API (v%s)\n\n", version)
}
