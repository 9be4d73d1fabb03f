package main

import (
	"fmt"
	"os"

	"flowtrack/internal/cache"
	"flowtrack/internal/config"
	"flowtrack/internal/database"
	"flowtrack/internal/events"
	"flowtrack/internal/logger"
	"flowtrack/internal/oauth"
	"flowtrack/internal/server"
	"flowtrack/internal/services"
	"flowtrack/internal/validator"

	"github.com/gin-gonic/gin"
)

// @title           FlowTrack API
// @version         1.0
// @description     FlowTrack records expenses and incomes, keeps a running budget and reports monthly totals.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	var reportCache cache.ReportCache = cache.NopReportCache{}
	if len(appConfig.MemcacheHosts) > 0 {
		mc, err := cache.NewMemcacheReportCache(appConfig.MemcacheHosts, appConfig.ReportCacheTTL)
		if err != nil {
			log.Warnw("report cache disabled", "error", err)
		} else {
			reportCache = mc
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if appConfig.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPQueue)
		if err != nil {
			return fmt.Errorf("failed to connect to message broker: %w", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	var google oauth.GoogleVerifier
	if appConfig.GoogleClientID != "" {
		google = oauth.NewGoogleVerifier(appConfig.GoogleClientID)
	}

	db := dbManager.DB()
	ledger := services.NewBudgetLedger(db)
	router := server.NewRouter(server.Services{
		Users:  services.NewUserService(db),
		Facts:  services.NewFactService(db),
		Ledger: ledger,
		Transactions: services.NewTransactionService(db, ledger,
			services.WithReportCache(reportCache),
			services.WithPublisher(publisher),
			services.WithReverseOnDelete(appConfig.ReverseOnDelete),
		),
		Reports: services.NewReportService(db, reportCache),
		Audit:   services.NewAuditService(db),
		Google:  google,
	}, server.Options{
		CORSOrigins:    appConfig.CORSOrigins,
		MetricsAPIKey:  appConfig.MetricsAPIKey,
		RequestLogging: true,
	})

	log.Infow("starting FlowTrack API",
		"port", appConfig.Port,
		"env", appConfig.Env,
		"reverse_on_delete", appConfig.ReverseOnDelete,
	)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
