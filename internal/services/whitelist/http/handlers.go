// Package http provides http transport for the whitelist
package http

import (
	stdhttp "net/http"

	"fishguard/internal/modkit/httpkit"
	perr "fishguard/internal/platform/errors"
	"fishguard/internal/services/whitelist/domain"
)

// Register mounts whitelist endpoints on the given router
func Register(r httpkit.Router, wl domain.Port) {
	h := &handlers{wl: wl}

	r.Get("/", httpkit.Call(h.list))
	httpkit.PostJSON[urlInput](r, "/add", h.add)
	httpkit.PostJSON[urlInput](r, "/remove", h.remove)
}

type handlers struct {
	wl domain.Port
}

type urlInput struct {
	URL string `json:"url"`
}

type listPayload struct {
	Domains []string `json:"domains"`
}

func (h *handlers) list(r *stdhttp.Request) (any, error) {
	ds, err := h.wl.List(r.Context())
	if err != nil {
		return nil, err
	}
	return listPayload{Domains: ds}, nil
}

func (h *handlers) add(r *stdhttp.Request, in urlInput) (any, error) {
	if in.URL == "" {
		return nil, perr.InvalidArgf("url is required")
	}
	if err := h.wl.Add(r.Context(), in.URL); err != nil {
		return nil, err
	}
	return h.list(r)
}

func (h *handlers) remove(r *stdhttp.Request, in urlInput) (any, error) {
	if in.URL == "" {
		return nil, perr.InvalidArgf("url is required")
	}
	if err := h.wl.Remove(r.Context(), in.URL); err != nil {
		return nil, err
	}
	return h.list(r)
}
