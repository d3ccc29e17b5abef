package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registrar attaches a set of routes under an API group.
type Registrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars and mounts them under a versioned
// /api/<version> prefix in one pass.
type Router struct {
	engine     *gin.Engine
	version    string
	registrars []Registrar
}

type Option func(*Router)

// WithAPIVersion overrides the default "v1" prefix segment.
func WithAPIVersion(version string) Option {
	return func(r *Router) { r.version = version }
}

func NewRouter(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{engine: engine, version: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues a registrar for Setup.
func (r *Router) Register(reg Registrar) *Router {
	r.registrars = append(r.registrars, reg)
	return r
}

// Setup mounts every queued registrar onto the engine.
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.version)
	for _, reg := range r.registrars {
		reg.RegisterRoutes(api)
	}
}

// DomainGroup declares one domain's routes before an engine exists,
// so wiring stays testable without spinning up gin.
type DomainGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use appends middleware that runs before every route in the group.
func (dg *DomainGroup) Use(mw ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, mw...)
	return dg
}

func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPut, path, handlers)
}

func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodDelete, path, handlers)
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, route{method: method, path: path, handlers: handlers})
	return dg
}

// RegisterRoutes implements Registrar.
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, rt := range dg.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
	}
}

func (dg *DomainGroup) Name() string { return dg.name }
