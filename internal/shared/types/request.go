package types

// ReplayMode selects which proxy a replay runs through
type ReplayMode string

const (
	ReplaySync  ReplayMode = "sync"
	ReplayAsync ReplayMode = "async"
)

// ReplayResponse describes an instrumented replay of a captured stream
type ReplayResponse struct {
	TraceID         string         `json:"trace_id,omitempty"`
	Mode            ReplayMode     `json:"mode"`
	Chunks          int            `json:"chunks"`
	Status          string         `json:"status"`
	Error           string         `json:"error,omitempty"`
	Attributes      map[string]any `json:"attributes"`
	ExtraAttributes map[string]any `json:"extra_attributes"`
}

// ErrorResponse is returned for rejected requests
type ErrorResponse struct {
	Error string `json:"error"`
}
