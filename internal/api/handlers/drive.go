package handlers

import (
	"log"
	"net/http"

	"autodrive-service/internal/api/dto"
	"autodrive-service/internal/autodrive"
	"autodrive-service/internal/domain"
)

// DriveHandler exposes the engine's control surface to the presentation
// layer. Handlers translate wire requests into engine calls; all drive
// semantics live in the engine itself.
type DriveHandler struct {
	Engine *autodrive.Engine
}

// Start begins an automated drive over the posted route polyline.
func (h *DriveHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.StartDriveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.Polyline) < 2 {
		writeError(w, r, http.StatusBadRequest, "polyline must contain at least 2 coordinates")
		return
	}

	polyline := make([]domain.Coordinates, 0, len(req.Polyline))
	for _, c := range req.Polyline {
		polyline = append(polyline, domain.Coordinates{Lat: c.Lat, Lon: c.Lon})
	}

	if err := h.Engine.Start(r.Context(), domain.Route{Polyline: polyline}); err != nil {
		log.Printf("drive start failed: %v", err)
		writeError(w, r, http.StatusServiceUnavailable, err.Error())
		return
	}

	h.writeStatus(w, r)
}

// Stop ends the drive and returns the engine to idle.
func (h *DriveHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	h.Engine.Stop()
	h.writeStatus(w, r)
}

func (h *DriveHandler) Pause(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := h.Engine.Pause(); err != nil {
		writeError(w, r, http.StatusConflict, err.Error())
		return
	}
	h.writeStatus(w, r)
}

func (h *DriveHandler) Resume(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := h.Engine.Resume(); err != nil {
		writeError(w, r, http.StatusConflict, err.Error())
		return
	}
	h.writeStatus(w, r)
}

// Seek jumps the camera to a point index (clamped by the engine).
func (h *DriveHandler) Seek(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.SeekRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Engine.Seek(req.Index); err != nil {
		writeError(w, r, http.StatusConflict, err.Error())
		return
	}
	h.writeStatus(w, r)
}

// Speed changes the playback cadence.
func (h *DriveHandler) Speed(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.SpeedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	speed, ok := domain.ParseDriveSpeed(req.Speed)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "speed must be slow, normal or fast")
		return
	}

	h.Engine.SetSpeed(speed)
	h.writeStatus(w, r)
}

// Interaction flags whether the user is manipulating the view; playback
// holds position while the flag is set.
func (h *DriveHandler) Interaction(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.InteractionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.Engine.SetUserInteracting(req.Active)
	h.writeStatus(w, r)
}

// Status reports the observable drive state.
func (h *DriveHandler) Status(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	h.writeStatus(w, r)
}

func (h *DriveHandler) writeStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.Engine.Snapshot()

	res := dto.DriveStatusResponse{
		State:         snap.State.Phase.String(),
		Message:       snap.State.Message,
		CurrentIndex:  snap.CurrentIndex,
		TotalPoints:   snap.TotalPoints,
		ProgressRatio: snap.ProgressRatio,
	}
	if s := snap.CurrentScene; s != nil {
		res.CurrentScene = &dto.SceneResponse{
			PanoID:   s.PanoID,
			ImageURL: s.ImageURL,
			Location: dto.CoordinateDTO{Lat: s.Location.Lat, Lon: s.Location.Lon},
		}
	}

	writeJSON(w, r, http.StatusOK, res)
}
