// Package jobs records render jobs in the studio database.
package jobs

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("job not found")

const (
	KindRemix = "remix"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Job struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	SourceID  string    `json:"source_id,omitempty"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Finished reports whether the job reached a terminal status.
func (j *Job) Finished() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}
