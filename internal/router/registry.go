package router

import "github.com/gin-gonic/gin"

// Registry collects feature modules and mounts them in one pass. API
// modules land under /api; root modules (health probes) stay on the bare
// engine so load balancers reach them without the API prefix.
type Registry struct {
	Engine *gin.Engine
	API    *gin.RouterGroup
	Root   *gin.RouterGroup

	apiModules  []Module
	rootModules []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{
		Engine: engine,
		API:    engine.Group("/api"),
		Root:   engine.Group(""),
	}
}

func (r *Registry) Add(mod Module) {
	r.apiModules = append(r.apiModules, mod)
}

func (r *Registry) AddRoot(mod Module) {
	r.rootModules = append(r.rootModules, mod)
}

func (r *Registry) RegisterAll() {
	for _, m := range r.rootModules {
		m.Register(r.Root)
	}
	for _, m := range r.apiModules {
		m.Register(r.API)
	}
}
