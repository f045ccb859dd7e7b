package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/finnvold/lineup-bingo/internal/room"
	"github.com/finnvold/lineup-bingo/internal/ws"
)

// SetupRoutes wires the websocket endpoint, health check and the static
// client UI.
func SetupRoutes(r *room.Room, staticDir string, log *zap.Logger) http.Handler {
	router := chi.NewRouter()

	router.Get("/ws", ws.Handler(r, log))
	router.Get("/healthz", Healthz)
	router.Handle("/*", http.FileServer(http.Dir(staticDir)))
	return router
}
