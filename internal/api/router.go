package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/clanops/roster-bot/internal/api/handler"
	"github.com/clanops/roster-bot/internal/api/middleware"
	"github.com/clanops/roster-bot/internal/core/domain"
	"github.com/clanops/roster-bot/internal/core/ports"
)

// Deps carries the wired services and clients the router needs.
type Deps struct {
	Updates      handler.UpdateQueue
	Admin        ports.AdminService
	Auth         ports.AuthService
	Mongo        *mongo.Database
	Redis        *redis.Client
	JWTSecret    string
	AdminActorID int64
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("roster"))

	// --- Webhook ingestion ---
	updateHandler := handler.NewUpdateHandler(d.Updates)
	e.POST("/v1/updates", updateHandler.Receive)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Admin read API (JWT + role required) ---
	adminHandler := handler.NewAdminHandler(d.Admin, d.AdminActorID)
	adminGroup := e.Group("/v1/admin",
		middleware.Auth(d.JWTSecret),
		middleware.RBAC(domain.RoleAdmin, domain.RoleViewer),
	)
	adminGroup.GET("/members", adminHandler.ListMembers)
	adminGroup.GET("/pending", adminHandler.ListPending)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
