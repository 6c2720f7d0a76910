// Package http provides http transport for scan history
package http

import (
	stdhttp "net/http"

	"fishguard/internal/modkit/httpkit"
	"fishguard/internal/services/history/domain"
)

// Register mounts history endpoints on the given router
func Register(r httpkit.Router, hist domain.Port) {
	h := &handlers{hist: hist}

	r.Get("/", httpkit.Call(h.list))
	r.Post("/clear", httpkit.Call(h.clear))
	r.Get("/threats", httpkit.Call(h.threats))
	r.Post("/threats/reset", httpkit.Call(h.reset))
}

type handlers struct {
	hist domain.Port
}

type countPayload struct {
	Count int `json:"count"`
}

func (h *handlers) list(r *stdhttp.Request) (any, error) {
	entries, err := h.hist.List(r.Context())
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.Entry{}
	}
	return entries, nil
}

func (h *handlers) clear(r *stdhttp.Request) (any, error) {
	if err := h.hist.Clear(r.Context()); err != nil {
		return nil, err
	}
	return map[string]bool{"cleared": true}, nil
}

func (h *handlers) threats(r *stdhttp.Request) (any, error) {
	n, err := h.hist.ThreatCount(r.Context())
	if err != nil {
		return nil, err
	}
	return countPayload{Count: n}, nil
}

func (h *handlers) reset(r *stdhttp.Request) (any, error) {
	if err := h.hist.ResetThreats(r.Context()); err != nil {
		return nil, err
	}
	return countPayload{Count: 0}, nil
}
