package dto

type CoordinateDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type StartDriveRequest struct {
	Polyline []CoordinateDTO `json:"polyline"`
}

type SeekRequest struct {
	Index int `json:"index"`
}

type SpeedRequest struct {
	Speed string `json:"speed"`
}

type InteractionRequest struct {
	Active bool `json:"active"`
}

type SceneResponse struct {
	PanoID   string        `json:"pano_id"`
	ImageURL string        `json:"image_url"`
	Location CoordinateDTO `json:"location"`
}

type DriveStatusResponse struct {
	State         string         `json:"state"`
	Message       string         `json:"message,omitempty"`
	CurrentIndex  int            `json:"current_index"`
	TotalPoints   int            `json:"total_points"`
	ProgressRatio float64        `json:"progress_ratio"`
	CurrentScene  *SceneResponse `json:"current_scene,omitempty"`
}
