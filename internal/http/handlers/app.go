package handlers

import (
	"encoding/json"
	"net/http"

	"veogen/internal/infra"
	"veogen/internal/runner"
)

// App bundles the dependencies shared by the HTTP handlers.
type App struct {
	Logger        infra.Logger
	Runner        *runner.Runner
	MaxImageBytes int64
}

func NewApp(logger infra.Logger, r *runner.Runner, maxImageBytes int64) *App {
	return &App{Logger: logger, Runner: r, MaxImageBytes: maxImageBytes}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	var env errorEnvelope
	env.Error.Code = code
	env.Error.Message = message
	a.json(w, status, env)
}
