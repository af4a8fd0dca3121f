package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus enumerates test session states. Completed and abandoned are
// terminal; no transition leaves them.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusAbandoned SessionStatus = "abandoned"
)

// Terminal reports whether the status is final.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusAbandoned
}

// SnapshotQuestion is the frozen, scoring-relevant copy of a catalog question
// taken at session start. Later catalog edits never reach it.
type SnapshotQuestion struct {
	ID          uuid.UUID         `json:"id"`
	SubjectID   uuid.UUID         `json:"subject_id"`
	SubjectName string            `json:"subject_name"`
	SubjectType SubjectType       `json:"subject_type"`
	Text        string            `json:"text"`
	Options     map[string]string `json:"options"`
	Correct     string            `json:"correct"`
	Points      decimal.Decimal   `json:"points"`
}

// StudentQuestion is a snapshot question with the correct label stripped,
// safe to send to the test taker.
type StudentQuestion struct {
	ID          uuid.UUID         `json:"id"`
	SubjectID   uuid.UUID         `json:"subject_id"`
	SubjectName string            `json:"subject_name"`
	Text        string            `json:"text"`
	Options     map[string]string `json:"options"`
}

// TestSession is a single timed exam attempt.
type TestSession struct {
	ID          uuid.UUID          `json:"id"`
	UserID      uuid.UUID          `json:"user_id"`
	DirectionID uuid.UUID          `json:"direction_id"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     *time.Time         `json:"end_time,omitempty"`
	TimeLimit   int                `json:"time_limit"`
	TimeLeft    int                `json:"time_left"`
	Answers     map[string]string  `json:"answers"`
	Questions   []SnapshotQuestion `json:"-"`
	IsPaid      bool               `json:"is_paid"`
	IPAddress   string             `json:"-"`
	Status      SessionStatus      `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// RemainingSeconds returns the authoritative server-side remaining time:
// the persisted time_left decremented by the wall-clock elapsed since the
// last observation (updated_at), clamped to [0, time_limit].
func (s *TestSession) RemainingSeconds(now time.Time) int {
	if s.Status != SessionStatusActive {
		return s.TimeLeft
	}
	left := s.TimeLeft
	if elapsed := int(now.Sub(s.UpdatedAt).Seconds()); elapsed > 0 {
		left -= elapsed
	}
	if left < 0 {
		left = 0
	}
	if left > s.TimeLimit {
		left = s.TimeLimit
	}
	return left
}

// QuestionByID looks up a snapshot question. The second return value is
// false when the question is not part of the snapshot.
func (s *TestSession) QuestionByID(id uuid.UUID) (*SnapshotQuestion, bool) {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i], true
		}
	}
	return nil, false
}

// StudentQuestions returns the snapshot without correct labels.
func (s *TestSession) StudentQuestions() []StudentQuestion {
	out := make([]StudentQuestion, len(s.Questions))
	for i, q := range s.Questions {
		out[i] = StudentQuestion{
			ID:          q.ID,
			SubjectID:   q.SubjectID,
			SubjectName: q.SubjectName,
			Text:        q.Text,
			Options:     q.Options,
		}
	}
	return out
}

// SessionState is the client-facing view of a session. TimeLeft is always
// the server-computed value.
type SessionState struct {
	ID          uuid.UUID         `json:"id"`
	DirectionID uuid.UUID         `json:"direction_id"`
	Status      SessionStatus     `json:"status"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     *time.Time        `json:"end_time,omitempty"`
	TimeLeft    int               `json:"time_left"`
	Answers     map[string]string `json:"answers"`
	Questions   []StudentQuestion `json:"questions"`
	IsPaid      bool              `json:"is_paid"`
}

// SubmitAnswerRequest is the payload for answering a question.
type SubmitAnswerRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Answer     string    `json:"answer" binding:"required,oneof=A B C D"`
}

// StartSessionRequest is the payload for starting a session.
type StartSessionRequest struct {
	DirectionID uuid.UUID `json:"direction_id" binding:"required"`
}

// SubjectScore is the per-subject slice of a result.
type SubjectScore struct {
	Score   decimal.Decimal `json:"score"`
	Correct int             `json:"correct"`
	Total   int             `json:"total"`
}
