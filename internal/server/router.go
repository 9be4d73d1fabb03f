// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"flowtrack/internal/handlers"
	"flowtrack/internal/metrics"
	"flowtrack/internal/middleware"
	"flowtrack/internal/oauth"
	"flowtrack/internal/services"

	_ "flowtrack/internal/docs" // swagger docs
)

// Services are the collaborators the routes are served by.
type Services struct {
	Users        services.UserServicer
	Facts        services.FactServicer
	Ledger       services.BudgetLedger
	Transactions services.TransactionServicer
	Reports      services.ReportServicer
	Audit        services.AuditServicer
	Google       oauth.GoogleVerifier
}

// Options control the outer surface of the router.
type Options struct {
	CORSOrigins   []string
	MetricsAPIKey string
	// RequestLogging is off in tests to keep output quiet.
	RequestLogging bool
}

// NewRouter builds the gin engine with every FlowTrack route.
func NewRouter(svc Services, opts Options) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Audit, svc.Google)
	factHandler := handlers.NewFactHandler(svc.Facts, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, svc.Audit)
	reportHandler := handlers.NewReportHandler(svc.Reports, svc.Users)
	budgetHandler := handlers.NewBudgetHandler(svc.Ledger)

	router := gin.New()
	router.Use(gin.Recovery())
	if opts.RequestLogging {
		router.Use(middleware.RequestLogging())
	}
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())
	router.Use(cors(opts.CORSOrigins))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", middleware.APIKeyAuth(opts.MetricsAPIKey), gin.WrapH(metrics.Handler()))
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/google", authHandler.GoogleLogin)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)
	protected.GET("/profile/budget/reconcile", budgetHandler.Reconcile)

	expenses := protected.Group("/expenses")
	expenses.POST("", factHandler.CreateExpense)
	expenses.GET("", factHandler.ListExpenses)
	expenses.GET("/:id", factHandler.GetExpense)

	incomes := protected.Group("/incomes")
	incomes.POST("", factHandler.CreateIncome)
	incomes.GET("", factHandler.ListIncomes)
	incomes.GET("/:id", factHandler.GetIncome)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/mine", transactionHandler.ListMyTransactions)
	transactions.GET("/totals/expense", transactionHandler.TotalExpense)
	transactions.GET("/totals/income", transactionHandler.TotalIncome)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	reports := protected.Group("/reports")
	reports.GET("/monthly", reportHandler.MonthlyTotals)
	reports.GET("/monthly/budget", reportHandler.MonthlyBudgetReport)
	reports.GET("/statement.pdf", reportHandler.Statement)

	return router
}

// cors allows the configured browser origins.
func cors(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	allowAll := false
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
