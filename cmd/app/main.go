package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"maturity-assessment-backend/internal/config"
	"maturity-assessment-backend/internal/controller"
	"maturity-assessment-backend/internal/db"
	"maturity-assessment-backend/internal/llm"
	"maturity-assessment-backend/internal/repository"
	"maturity-assessment-backend/internal/service"
	"maturity-assessment-backend/pkg/middleware"
	"maturity-assessment-backend/utilities"
)

const version = "1.0.0"

func main() {
	printStartUpBanner()

	configPath := "config.xml"
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	// Load XML configuration and environment secrets.
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := utilities.SetupLogging(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to set up logging: %v", err)
	}

	if cfg.Context.TimeZone != "" {
		if loc, err := time.LoadLocation(cfg.Context.TimeZone); err != nil {
			slog.Warn("unknown time zone, using system default", "time_zone", cfg.Context.TimeZone, "error", err)
		} else {
			time.Local = loc
		}
	}

	if err := run(cfg, logger); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.APIConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize DB using the loaded config.
	if err := db.InitDBFromConfig(cfg); err != nil {
		return err
	}
	gdb := db.GetDB()

	// Create repositories.
	orgRepo := repository.NewOrganizationRepository(gdb)
	assessmentRepo := repository.NewAssessmentRepository(gdb)
	questionRepo := repository.NewQuestionRepository(gdb)

	// Create services.
	jwtManager := utilities.NewJWTManager(cfg.Authentication.JWTSecret,
		time.Duration(cfg.Authentication.SessionTimeout)*time.Minute)
	questionService := service.NewQuestionService(questionRepo)
	authService := service.NewAuthService(orgRepo, jwtManager)
	assessmentService := service.NewAssessmentService(assessmentRepo, orgRepo, questionService, utilities.GlobalEventBus)
	adminService := service.NewAdminService(orgRepo, assessmentRepo, questionService)
	reportFiles := service.NewReportFileService(assessmentRepo, orgRepo, questionService, cfg.Reports.WorkingDir)

	var assistant service.AssistantService
	if cfg.THIRD_PARTY.LLMURL != "" {
		client := llm.NewOllamaClient(cfg.THIRD_PARTY.LLMURL, cfg.THIRD_PARTY.LLMModel,
			time.Duration(cfg.THIRD_PARTY.LLMTimeout)*time.Second)
		assistant = service.NewAssistantService(client)
		slog.Info("question assistant enabled", "model", cfg.THIRD_PARTY.LLMModel)
	} else {
		assistant = service.NewAssistantService(nil)
	}

	// Run migrations and seed the question catalogs.
	if cfg.DB.Initialize {
		if err := db.Migrate(gdb); err != nil {
			return err
		}
		if err := questionService.SeedCatalogs(ctx); err != nil {
			return err
		}
	}

	service.InitReportEventListeners(utilities.GlobalEventBus, reportFiles)

	if !cfg.Context.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID())
	if cfg.RequestDump {
		r.Use(middleware.RequestDumpMiddleware(logger))
	}

	// CORS configuration.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", utilities.AdminKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "Maturity Assessment API", "version": version})
	})
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := gdb.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	controller.RegisterRoutes(r.Group(cfg.Context.Path), controller.Services{
		Auth:         authService,
		Questions:    questionService,
		Assessments:  assessmentService,
		Admin:        adminService,
		Assistant:    assistant,
		ReportFiles:  reportFiles,
		JWT:          jwtManager,
		LoginLimiter: utilities.NewIPRateLimiter(cfg.Authentication.LoginRate, cfg.Authentication.LoginBurst),
		AdminSecret:  cfg.Authentication.AdminSecret,
	})

	srv := &http.Server{
		Addr:              cfg.Context.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr, "path", cfg.Context.Path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	// let pending report listeners finish writing
	utilities.GlobalEventBus.Wait()
	return nil
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("MATURITY", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("MATURITY ASSESSMENT API (v%s)\n\n", version)
}
