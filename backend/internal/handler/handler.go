package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/itchan-dev/postwall/backend/internal/service"
	"github.com/itchan-dev/postwall/shared/config"
	"github.com/itchan-dev/postwall/shared/logger"
)

// HealthChecker is the dependency probed by the readiness endpoint.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Renderer turns post descriptions into safe html.
type Renderer interface {
	Render(text string) string
}

type Handler struct {
	post     service.PostService
	cfg      *config.Config
	health   HealthChecker
	renderer Renderer
}

func New(post service.PostService, cfg *config.Config, health HealthChecker, renderer Renderer) *Handler {
	return &Handler{post: post, cfg: cfg, health: health, renderer: renderer}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
