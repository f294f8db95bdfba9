package api

import (
	"net/http"

	"resume-forge/internal/config"
	"resume-forge/internal/database"
	"resume-forge/internal/extract"
	"resume-forge/internal/generation"
	"resume-forge/internal/metrics"
	"resume-forge/internal/quota"
	"resume-forge/internal/storage"
	"resume-forge/internal/websocket"
)

type Server struct {
	config     *config.Config
	store      *database.Store
	storage    *storage.LocalStorage
	extractor  extract.Extractor
	generation *generation.Service
	quota      *quota.Gate
	wsHub      *websocket.Hub
	metrics    *metrics.Collector
}

func NewServer(
	cfg *config.Config,
	store *database.Store,
	localStorage *storage.LocalStorage,
	extractor extract.Extractor,
	generationSvc *generation.Service,
	quotaGate *quota.Gate,
	wsHub *websocket.Hub,
	collector *metrics.Collector,
) *Server {
	return &Server{
		config:     cfg,
		store:      store,
		storage:    localStorage,
		extractor:  extractor,
		generation: generationSvc,
		quota:      quotaGate,
		wsHub:      wsHub,
		metrics:    collector,
	}
}

// @Summary      Health check
// @Description  Reports whether the service and its database are reachable.
// @Tags         system
// @Produce      json
// @Success      200  {object}  Envelope
// @Failure      503  {object}  Envelope
// @Router       /health [get]
func (s *Server) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.store.GetPool().Ping(r.Context()); err != nil {
		s.fail(w, r, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	s.respond(w, r, http.StatusOK, "ok", nil)
}
