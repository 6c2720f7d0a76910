// Package module wires the scan history service into the API using modkit
package module

import (
	"net/http"

	modkit "fishguard/internal/modkit"
	"fishguard/internal/modkit/httpkit"
	str "fishguard/internal/platform/strings"

	"fishguard/internal/services/history/domain"
	histhttp "fishguard/internal/services/history/http"
	"fishguard/internal/services/history/repo"
	"fishguard/internal/services/history/service"
)

// Ports exposed by the history module
type Ports struct {
	History domain.Port
}

// Module implements the history module
type Module struct {
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     Ports
	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)
}

// New constructs the history module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("history"), modkit.WithPrefix("/history"),
	}, opts...)...)

	svc := service.New(deps.PG, repo.NewPG())

	m := &Module{
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		ports:     Ports{History: svc},
		subrouter: b.Subrouter,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		histhttp.Register(r, svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

// Ports returns the module ports for cross-module lookups
func (m *Module) Ports() any { return m.ports }
