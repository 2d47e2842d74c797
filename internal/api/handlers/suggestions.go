package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"autodrive-service/internal/api/dto"
	"autodrive-service/internal/services"
)

// SuggestionHandler exposes the type-ahead search feature.
type SuggestionHandler struct {
	Service *services.SuggestionService
}

// Suggest returns candidate places for a partial query.
func (h *SuggestionHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, r, http.StatusBadRequest, "q is required")
		return
	}

	suggestions, err := h.Service.Suggest(r.Context(), query)
	if err != nil {
		log.Printf("suggest failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListSuggestionResponse{Suggestions: make([]dto.SuggestionResponse, 0, len(suggestions))}
	for _, s := range suggestions {
		res.Suggestions = append(res.Suggestions, dto.SuggestionResponse{
			Title:    s.Title,
			Subtitle: s.Subtitle,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Resolve geocodes a chosen suggestion into coordinates.
func (h *SuggestionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	title := strings.TrimSpace(r.URL.Query().Get("title"))
	subtitle := strings.TrimSpace(r.URL.Query().Get("subtitle"))
	if title == "" {
		writeError(w, r, http.StatusBadRequest, "title is required")
		return
	}

	coord, err := h.Service.Resolve(r.Context(), title, subtitle)
	if errors.Is(err, services.ErrRateLimited) {
		writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, retry shortly")
		return
	}
	if err != nil {
		log.Printf("resolve failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ResolveResponse{
		Title:    title,
		Subtitle: subtitle,
		Coord:    dto.CoordinateDTO{Lat: coord.Lat, Lon: coord.Lon},
	})
}
