package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowOpenWithoutWindow(t *testing.T) {
	d := &Direction{}
	assert.True(t, d.WindowOpen(time.Now().UTC()))
}

func TestWindowOpenBounds(t *testing.T) {
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	d := &Direction{TestWindow: &TestWindow{Start: start, End: end}}

	assert.False(t, d.WindowOpen(start.Add(-time.Second)))
	assert.True(t, d.WindowOpen(start))
	assert.True(t, d.WindowOpen(start.Add(time.Hour)))
	assert.True(t, d.WindowOpen(end))
	assert.False(t, d.WindowOpen(end.Add(time.Second)))
}
