package dto

// AskRequest carries one user question. SessionId is an opaque,
// caller-chosen key; a fresh one is generated when absent.
type AskRequest struct {
	Question  string `json:"question" validate:"required"`
	SessionId string `json:"session_id,omitempty"`
}

type AskResponse struct {
	Answer         string  `json:"answer"`
	RouteType      string  `json:"route_type"`
	ProcessingTime float64 `json:"processing_time"`
	SessionId      string  `json:"session_id"`
}

type ReloadResponse struct {
	RepCount int `json:"rep_count"`
}
