package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crewcost/crewcost-backend/internal/config"
	"github.com/crewcost/crewcost-backend/internal/handler"
	"github.com/crewcost/crewcost-backend/internal/middleware"
	"github.com/crewcost/crewcost-backend/internal/repository/postgres"
	"github.com/crewcost/crewcost-backend/internal/repository/storage"
	"github.com/crewcost/crewcost-backend/internal/service"
	"github.com/crewcost/crewcost-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/crewcost/crewcost-backend/docs"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	periodRepo := postgres.NewPeriodRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)
	budgetLineRepo := postgres.NewBudgetLineRepository(pool)
	changeOrderRepo := postgres.NewChangeOrderRepository(pool)
	ecoLineRepo := postgres.NewECOLineRepository(pool)
	documentRepo := postgres.NewDocumentRepository(pool)

	// Document storage is optional; the API runs without uploads if S3 is
	// not reachable.
	var documentStore storage.DocumentStore
	s3Store, err := storage.NewS3DocumentStore(context.Background(), cfg.S3)
	if err != nil {
		log.Warn().Err(err).Msg("Document storage unavailable, uploads disabled")
	} else {
		documentStore = s3Store
	}

	// WebSocket hub
	hub := websocket.NewHub()

	// Initialize services
	authService := service.NewAuthService(userRepo)
	periodService := service.NewPeriodService(periodRepo, hub)
	budgetService := service.NewBudgetService(budgetRepo, budgetLineRepo, periodRepo, projectRepo, hub)
	changeOrderService := service.NewChangeOrderService(changeOrderRepo, ecoLineRepo, budgetRepo, projectRepo, hub)
	calculationService := service.NewCalculationService(budgetRepo, budgetLineRepo, changeOrderRepo, ecoLineRepo)
	documentService := service.NewDocumentService(documentRepo, changeOrderRepo, documentStore)

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// WebSocket token validator
	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create websocket validator")
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	projectHandler := handler.NewProjectHandler(projectRepo)
	periodHandler := handler.NewPeriodHandler(periodService)
	budgetHandler := handler.NewBudgetHandler(budgetService, periodService)
	changeOrderHandler := handler.NewChangeOrderHandler(changeOrderService)
	reportHandler := handler.NewReportHandler(calculationService, budgetService)
	documentHandler := handler.NewDocumentHandler(documentService)
	wsHandler := handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, authHandler, projectHandler, periodHandler, budgetHandler, changeOrderHandler, reportHandler, documentHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Shutdown()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
