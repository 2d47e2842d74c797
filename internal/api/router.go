package api

import (
	"net/http"

	"autodrive-service/internal/api/handlers"
	"autodrive-service/internal/autodrive"
	"autodrive-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(engine *autodrive.Engine, suggestions *services.SuggestionService) http.Handler {
	mux := http.NewServeMux()

	driveHandler := &handlers.DriveHandler{Engine: engine}
	suggestionHandler := &handlers.SuggestionHandler{Service: suggestions}

	mux.HandleFunc("/health", handlers.Health)

	mux.HandleFunc("/drive/start", driveHandler.Start)
	mux.HandleFunc("/drive/stop", driveHandler.Stop)
	mux.HandleFunc("/drive/pause", driveHandler.Pause)
	mux.HandleFunc("/drive/resume", driveHandler.Resume)
	mux.HandleFunc("/drive/seek", driveHandler.Seek)
	mux.HandleFunc("/drive/speed", driveHandler.Speed)
	mux.HandleFunc("/drive/interaction", driveHandler.Interaction)
	mux.HandleFunc("/drive/status", driveHandler.Status)

	mux.HandleFunc("/suggestions", suggestionHandler.Suggest)
	mux.HandleFunc("/suggestions/resolve", suggestionHandler.Resolve)

	return loggingMiddleware(mux)
}
