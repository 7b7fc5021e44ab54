package v1

import "time"

type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunRequest is the body of POST /runs.
type RunRequest struct {
	Base      int    `json:"base"`
	Terms     int    `json:"terms"`
	Workers   int    `json:"workers"`
	Mechanism string `json:"mechanism"`
}

type RunStats struct {
	Iterations int `json:"iterations"`
	Spawned    int `json:"spawned"`
	MaxLive    int `json:"maxLive"`
}

type Run struct {
	Id         string     `json:"id"`
	Base       int        `json:"base"`
	Terms      int        `json:"terms"`
	Workers    int        `json:"workers"`
	Mechanism  string     `json:"mechanism"`
	Status     RunStatus  `json:"status"`
	Total      Float      `json:"total"`
	Completed  int        `json:"completed"`
	Failed     int        `json:"failed"`
	Error      *string    `json:"error,omitempty"`
	Stats      RunStats   `json:"stats"`
	CreatedAt  time.Time  `json:"createdAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

type RunListResponse struct {
	Runs   []Run `json:"runs"`
	Total  int   `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

type Term struct {
	Term  int     `json:"term"`
	Slot  int     `json:"slot"`
	Value float64 `json:"value"`
	Error *string `json:"error,omitempty"`
}

type TermListResponse struct {
	RunId string `json:"runId"`
	Terms []Term `json:"terms"`
}

type Error struct {
	Error string `json:"error"`
}

// ListRunsParams defines the query of GET /runs.
type ListRunsParams struct {
	Status *[]string `form:"status"`
	Limit  *int      `form:"limit"`
	Offset *int      `form:"offset"`
}
