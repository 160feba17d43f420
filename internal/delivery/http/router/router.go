// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"smartextract/internal/delivery/http/middleware"
	"smartextract/internal/delivery/http/router/handler"
	"smartextract/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	DocumentHandler   *handler.DocumentHandler
	ExtractionHandler *handler.ExtractionHandler
	TemplateHandler   *handler.TemplateHandler
	AuthMiddleware    *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler       *handler.AuthHandler
	userHandler       *handler.UserHandler
	documentHandler   *handler.DocumentHandler
	extractionHandler *handler.ExtractionHandler
	templateHandler   *handler.TemplateHandler
	authMiddleware    *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:       params.AuthHandler,
		userHandler:       params.UserHandler,
		documentHandler:   params.DocumentHandler,
		extractionHandler: params.ExtractionHandler,
		templateHandler:   params.TemplateHandler,
		authMiddleware:    params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
// Everything under /api/v1 except login and register requires a bearer token.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint, outside the versioned (and CSRF-protected) prefix.
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api/v1")

	// Auth routes
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.GET("/me", r.authHandler.Me, r.authMiddleware.Authenticate)
	}

	// Account routes
	userGroup := api.Group("/users")
	userGroup.Use(r.authMiddleware.Authenticate)
	{
		userGroup.GET("/me", r.userHandler.GetProfile)
		userGroup.PUT("/me", r.userHandler.UpdateProfile)
		userGroup.GET("", r.userHandler.ListUsers, r.authMiddleware.RequireScope(entity.ScopeAdmin))
	}

	// Document routes
	docGroup := api.Group("/documents")
	docGroup.Use(r.authMiddleware.Authenticate)
	{
		docGroup.POST("", r.documentHandler.Upload)
		docGroup.GET("", r.documentHandler.List)
		docGroup.GET("/:id", r.documentHandler.Get)
		docGroup.GET("/:id/download", r.documentHandler.Download)
		docGroup.DELETE("/:id", r.documentHandler.Delete)
	}

	// Extraction pipeline routes
	extractionGroup := api.Group("/extractions")
	extractionGroup.Use(r.authMiddleware.Authenticate)
	{
		extractionGroup.POST("", r.extractionHandler.Submit)
		extractionGroup.GET("", r.extractionHandler.List)
		extractionGroup.GET("/:id", r.extractionHandler.Get)
		extractionGroup.GET("/:id/data", r.extractionHandler.Results)
	}

	// Template routes
	templateGroup := api.Group("/templates")
	templateGroup.Use(r.authMiddleware.Authenticate)
	{
		templateGroup.POST("", r.templateHandler.Create)
		templateGroup.GET("", r.templateHandler.List)
		templateGroup.GET("/:id", r.templateHandler.Get)
		templateGroup.PUT("/:id", r.templateHandler.Update)
		templateGroup.DELETE("/:id", r.templateHandler.Delete)
	}
}
