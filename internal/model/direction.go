package model

import (
	"time"

	"github.com/google/uuid"
)

// TestWindow is an optional availability window for starting a test.
// Both bounds are absolute UTC timestamps.
type TestWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the window is open at the given instant.
func (w *TestWindow) Contains(now time.Time) bool {
	return !now.Before(w.Start) && !now.After(w.End)
}

// Direction represents an exam track composed of subjects.
type Direction struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	IsActive        bool        `json:"is_active"`
	IsFree          bool        `json:"is_free"`
	Price           int         `json:"price"`
	DurationSeconds int         `json:"duration_seconds"`
	TestWindow      *TestWindow `json:"test_window,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// WindowOpen reports whether a session may be started now. A direction
// without a configured window is always open.
func (d *Direction) WindowOpen(now time.Time) bool {
	if d.TestWindow == nil {
		return true
	}
	return d.TestWindow.Contains(now)
}
