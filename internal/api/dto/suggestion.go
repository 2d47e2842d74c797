package dto

type SuggestionResponse struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

type ListSuggestionResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions"`
}

type ResolveResponse struct {
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle"`
	Coord    CoordinateDTO `json:"coord"`
}
