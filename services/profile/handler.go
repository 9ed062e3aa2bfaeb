package profile

import (
	"errors"
	"log/slog"
	"net/http"

	"homemeter-backend/lib/webutil"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) Handler {
	return Handler{service: service}
}

// ServeHTTP proxies the profile database query. Unlike the trigger
// endpoints this one is read-only and unauthenticated.
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		webutil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	raw, err := h.service.Raw(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "profile query failed", "err", err)
		webutil.WriteError(w, http.StatusInternalServerError, "request failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

// ServeName serves the display name the homepage card shows. This is
// the cached path, the raw proxy above never touches the cache.
func (h Handler) ServeName(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		webutil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name, err := h.service.DisplayName(r.Context())
	if errors.Is(err, NoProfile) {
		webutil.WriteError(w, http.StatusNotFound, "no profile found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "profile name lookup failed", "err", err)
		webutil.WriteError(w, http.StatusInternalServerError, "request failed")
		return
	}

	webutil.WriteJson(w, http.StatusOK, map[string]string{"name": name})
}
