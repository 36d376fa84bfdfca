package handlers

import (
	"net/http"

	"veogen/web"
)

// Index serves the embedded single-page form.
func (a *App) Index(w http.ResponseWriter, r *http.Request) {
	data, err := web.Assets.ReadFile("index.html")
	if err != nil {
		a.Logger.Error().Err(err).Msg("handlers: missing embedded page")
		a.error(w, http.StatusInternalServerError, "internal", "page unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
