// Package http provides http transport for the scan pipeline
package http

import (
	stdhttp "net/http"

	"fishguard/internal/modkit/httpkit"
	perr "fishguard/internal/platform/errors"
	"fishguard/internal/services/scan/domain"
)

// Register mounts scan endpoints on the given router
func Register(r httpkit.Router, scanner domain.ScannerPort, dbg domain.DebugPort) {
	h := &handlers{scanner: scanner, dbg: dbg}

	// full classification pipeline
	httpkit.PostJSON[urlInput](r, "/", h.scan)

	// corpus-only lookup, bypassing cache and whitelist
	httpkit.PostJSON[urlInput](r, "/debug/check", h.check)

	r.Get("/debug/stats", httpkit.Call(h.stats))
	httpkit.PostJSON[keywordInput](r, "/debug/search", h.search)
	r.Post("/debug/refresh", httpkit.Call(h.refresh))
}

type handlers struct {
	scanner domain.ScannerPort
	dbg     domain.DebugPort
}

type urlInput struct {
	URL string `json:"url"`
}

type keywordInput struct {
	Keyword string `json:"keyword"`
}

func (h *handlers) scan(r *stdhttp.Request, in urlInput) (any, error) {
	if in.URL == "" {
		return nil, perr.InvalidArgf("url is required")
	}
	return h.scanner.Scan(r.Context(), in.URL), nil
}

func (h *handlers) check(r *stdhttp.Request, in urlInput) (any, error) {
	if in.URL == "" {
		return nil, perr.InvalidArgf("url is required")
	}
	return h.dbg.CheckURL(in.URL), nil
}

func (h *handlers) stats(_ *stdhttp.Request) (any, error) {
	return h.dbg.Stats(), nil
}

func (h *handlers) search(_ *stdhttp.Request, in keywordInput) (any, error) {
	if in.Keyword == "" {
		return nil, perr.InvalidArgf("keyword is required")
	}
	return h.dbg.Search(in.Keyword), nil
}

func (h *handlers) refresh(r *stdhttp.Request) (any, error) {
	return h.dbg.ForceUpdate(r.Context())
}
