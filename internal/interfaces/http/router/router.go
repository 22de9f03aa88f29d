package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine       *gin.Engine
	apiVersion   string
	registrars   []RouteRegistrar
	public       []RouteRegistrar
	apiMiddle    []gin.HandlerFunc
	publicMiddle []gin.HandlerFunc
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
		public:     make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Use adds middleware applied only to the versioned API group
func (r *Router) Use(middleware ...gin.HandlerFunc) *Router {
	r.apiMiddle = append(r.apiMiddle, middleware...)
	return r
}

// UsePublic adds middleware applied only to the public root group
func (r *Router) UsePublic(middleware ...gin.HandlerFunc) *Router {
	r.publicMiddle = append(r.publicMiddle, middleware...)
	return r
}

// Register adds a RouteRegistrar under the versioned API prefix
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// RegisterPublic adds a RouteRegistrar at the engine root, outside the
// versioned API prefix. Webhook receivers live here so the platform can
// deliver to the exact URL registered during subscription setup.
func (r *Router) RegisterPublic(registrar RouteRegistrar) *Router {
	r.public = append(r.public, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/"+r.apiVersion, r.apiMiddle...)

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}

	root := r.engine.Group("", r.publicMiddle...)
	for _, registrar := range r.public {
		registrar.RegisterRoutes(root)
	}
}
