package consumption

import (
	"errors"
	"log/slog"
	"net/http"

	"homemeter-backend/lib/cronauth"
	"homemeter-backend/lib/scrapers/mbusportal"
	"homemeter-backend/lib/webutil"
)

type Handler struct {
	guard   cronauth.Guard
	service Service
}

func NewHandler(guard cronauth.Guard, service Service) Handler {
	return Handler{guard: guard, service: service}
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		webutil.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	err := h.guard.Authorize(r)
	if errors.Is(err, cronauth.InvalidBody) {
		webutil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err != nil {
		webutil.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err = h.service.Ingest(r.Context())
	if errors.Is(err, mbusportal.MissingSession) {
		slog.ErrorContext(r.Context(), "ingestion failed", "err", err)
		webutil.WriteError(w, http.StatusUnauthorized, "missing session information")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "ingestion failed", "err", err)
		webutil.WriteError(w, http.StatusInternalServerError, "request failed")
		return
	}

	webutil.WriteSuccess(w)
}
