package report

import (
	"errors"
	"log/slog"
	"net/http"

	"homemeter-backend/lib/cronauth"
	"homemeter-backend/lib/timezone"
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

	err = h.service.Send(r.Context(), timezone.Now())
	if errors.Is(err, NoData) {
		webutil.WriteError(w, http.StatusNotFound, "no records found for the previous month")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "report dispatch failed", "err", err)
		webutil.WriteError(w, http.StatusInternalServerError, "request failed")
		return
	}

	webutil.WriteSuccess(w)
}
