package router

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// Router mounts the typed gateway API under /bff/<version>. /api is left
// to the backend proxy.
type Router struct {
	engine   *gin.Engine
	basePath string
	version  string
	sections []*Section
}

// Option configures a Router
type Option func(*Router)

// WithVersion sets the version segment, "v1" by default
func WithVersion(version string) Option {
	return func(r *Router) {
		r.version = version
	}
}

// WithBasePath moves the gateway off "/bff"
func WithBasePath(path string) Option {
	return func(r *Router) {
		r.basePath = strings.TrimSuffix(path, "/")
	}
}

// New creates a Router for engine
func New(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{engine: engine, basePath: "/bff", version: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mount queues sections for Setup
func (r *Router) Mount(sections ...*Section) *Router {
	r.sections = append(r.sections, sections...)
	return r
}

// Prefix is the versioned mount point, e.g. /bff/v1
func (r *Router) Prefix() string {
	return r.basePath + "/" + r.version
}

// Setup registers every queued section with the engine
func (r *Router) Setup() {
	api := r.engine.Group(r.Prefix())
	for _, s := range r.sections {
		s.Mount(api)
	}
}

// Routes lists "METHOD path" for every queued route, sorted
func (r *Router) Routes() []string {
	var out []string
	for _, s := range r.sections {
		out = s.collect(r.Prefix(), out)
	}
	sort.Strings(out)
	return out
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// Section is a slice of the API sharing a prefix and middleware, such as
// the shopper's cart or the admin console.
type Section struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
	children   []*Section
}

// NewSection creates an empty section
func NewSection(name, prefix string) *Section {
	return &Section{name: name, prefix: prefix}
}

// Name returns the section name
func (s *Section) Name() string { return s.name }

// Prefix returns the section prefix relative to its parent
func (s *Section) Prefix() string { return s.prefix }

// Use appends middleware for the section and its children. Nil entries
// are skipped so optional limits can be passed straight through.
func (s *Section) Use(middleware ...gin.HandlerFunc) *Section {
	for _, m := range middleware {
		if m != nil {
			s.middleware = append(s.middleware, m)
		}
	}
	return s
}

// Handle queues a route
func (s *Section) Handle(method, path string, handlers ...gin.HandlerFunc) *Section {
	s.routes = append(s.routes, route{method: method, path: path, handlers: handlers})
	return s
}

func (s *Section) GET(path string, handlers ...gin.HandlerFunc) *Section {
	return s.Handle(http.MethodGet, path, handlers...)
}

func (s *Section) POST(path string, handlers ...gin.HandlerFunc) *Section {
	return s.Handle(http.MethodPost, path, handlers...)
}

func (s *Section) PUT(path string, handlers ...gin.HandlerFunc) *Section {
	return s.Handle(http.MethodPut, path, handlers...)
}

func (s *Section) PATCH(path string, handlers ...gin.HandlerFunc) *Section {
	return s.Handle(http.MethodPatch, path, handlers...)
}

func (s *Section) DELETE(path string, handlers ...gin.HandlerFunc) *Section {
	return s.Handle(http.MethodDelete, path, handlers...)
}

// Sub creates a nested section that inherits this one's middleware
func (s *Section) Sub(name, prefix string) *Section {
	child := NewSection(name, prefix)
	s.children = append(s.children, child)
	return child
}

// Mount adds the section and its children below rg
func (s *Section) Mount(rg *gin.RouterGroup) {
	g := rg.Group(s.prefix, s.middleware...)
	for _, rt := range s.routes {
		g.Handle(rt.method, rt.path, rt.handlers...)
	}
	for _, child := range s.children {
		child.Mount(g)
	}
}

func (s *Section) collect(parent string, out []string) []string {
	base := parent + s.prefix
	for _, rt := range s.routes {
		out = append(out, rt.method+" "+base+rt.path)
	}
	for _, child := range s.children {
		out = child.collect(base, out)
	}
	return out
}
