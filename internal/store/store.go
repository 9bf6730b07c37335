// Package store persists a history of conversion runs. History is
// reporting only: nothing here feeds back into scanning or skip
// decisions.
package store

import "time"

// Run is one invocation of the converter.
type Run struct {
	ID         string
	Root       string
	Policy     string
	StartedAt  time.Time
	FinishedAt time.Time
	Found      int
	Skipped    int
	Succeeded  int
	Failed     int
	SpaceSaved int64
}

// FileRecord is the outcome of one file within a run.
type FileRecord struct {
	ID         string
	RunID      string
	Input      string
	Output     string
	Status     string // "succeeded" or "failed"
	Error      string
	InputSize  int64
	OutputSize int64
	DurationMS int64
}

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)
