// Package api provides the HTTP API for the application
package api

import (
	"fishguard/internal/platform/config"
	"fishguard/internal/platform/logger"
	phttp "fishguard/internal/platform/net/http"
	"fishguard/internal/platform/store"

	"fishguard/internal/modkit"
	"fishguard/internal/modkit/httpkit"
	"fishguard/internal/modkit/module"
	"fishguard/internal/modkit/swaggerkit"

	metamod "fishguard/internal/services/api/meta/module"
	histmod "fishguard/internal/services/history/module"
	scanmod "fishguard/internal/services/scan/module"
	wlmod "fishguard/internal/services/whitelist/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router and returns the scan
// module ports so the owning process can start the refresher and cache sweeper
func Mount(r phttp.Router, opt Options) scanmod.Ports {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	// Construct the scan module first; meta reports its corpus stats
	scan := scanmod.New(deps)
	engine := scan.Ports().(scanmod.Ports)

	meta := metamod.New(deps, modkit.WithPorts(metamod.Ports{
		EngineStats: func() any { return engine.Debug.Stats() },
	}))

	mods := []module.Module{
		meta,
		scan,
		wlmod.New(deps),
		histmod.New(deps),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})

	return engine
}
