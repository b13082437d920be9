// Package router assembles the gin engine and its route groups.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Config holds the engine-level HTTP options
type Config struct {
	APIVersion string
	// ServiceName enables otelgin tracing when set
	ServiceName string
	JWT         middleware.JWTConfig
}

// Router manages HTTP route registration.
//
// Three groups exist: root (health probes, no auth), /api/<version>
// (bearer token) and a tenant group under it that also requires X-Tenant-ID.
type Router struct {
	engine   *gin.Engine
	cfg      Config
	root     []RouteRegistrar
	platform []RouteRegistrar
	tenant   []RouteRegistrar
}

// New creates a router over a fresh engine with the common middleware chain
func New(cfg Config, log *zap.Logger) *Router {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v1"
	}
	engine := gin.New()
	engine.Use(middleware.Recovery(log), middleware.RequestID())
	if cfg.ServiceName != "" {
		engine.Use(middleware.Tracing(cfg.ServiceName)...)
	}
	engine.Use(middleware.Logger(log))
	return &Router{engine: engine, cfg: cfg}
}

// Root registers routes served at the engine root without authentication
func (r *Router) Root(registrars ...RouteRegistrar) *Router {
	r.root = append(r.root, registrars...)
	return r
}

// Platform registers authenticated routes that are not scoped to a tenant
func (r *Router) Platform(registrars ...RouteRegistrar) *Router {
	r.platform = append(r.platform, registrars...)
	return r
}

// Tenant registers authenticated routes that require a tenant header
func (r *Router) Tenant(registrars ...RouteRegistrar) *Router {
	r.tenant = append(r.tenant, registrars...)
	return r
}

// Setup registers every route and returns the engine
func (r *Router) Setup() *gin.Engine {
	for _, reg := range r.root {
		reg.RegisterRoutes(&r.engine.RouterGroup)
	}

	api := r.engine.Group("/api/"+r.cfg.APIVersion, middleware.JWT(r.cfg.JWT))
	for _, reg := range r.platform {
		reg.RegisterRoutes(api)
	}

	scoped := api.Group("", middleware.RequireTenant())
	for _, reg := range r.tenant {
		reg.RegisterRoutes(scoped)
	}
	return r.engine
}
