package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CheatKind identifies a suspicious-behavior observation. The set is
// extensible; a flag is evidence, never a verdict.
type CheatKind string

const (
	CheatVisibilityLoss      CheatKind = "visibility-loss"
	CheatIPAddressChange     CheatKind = "ip-address-change"
	CheatAnswerTooFast       CheatKind = "answer-too-fast"
	CheatMultipleConnections CheatKind = "multiple-concurrent-connections"
)

// CheatFlag is one append-only entry in a session's suspicion log.
type CheatFlag struct {
	ID         int64           `json:"id"`
	SessionID  uuid.UUID       `json:"session_id"`
	Kind       CheatKind       `json:"kind"`
	Detail     json.RawMessage `json:"detail,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// ReportCheatRequest is the payload for client-reported observations.
// Server-detected kinds (IP change, answer timing) are never accepted from
// the client.
type ReportCheatRequest struct {
	Kind   CheatKind       `json:"kind" binding:"required,oneof=visibility-loss multiple-concurrent-connections"`
	Detail json.RawMessage `json:"detail" binding:"omitempty"`
}
