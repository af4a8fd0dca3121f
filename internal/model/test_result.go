package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TestResult is the scored outcome of a completed session. Immutable after
// creation except rank and percentile, which are recomputed whenever the
// direction's completed result set changes.
type TestResult struct {
	ID             uuid.UUID               `json:"id"`
	TestSessionID  uuid.UUID               `json:"test_session_id"`
	UserID         uuid.UUID               `json:"user_id"`
	DirectionID    uuid.UUID               `json:"direction_id"`
	TotalScore     decimal.Decimal         `json:"total_score"`
	SubjectScores  map[string]SubjectScore `json:"subject_scores"`
	CorrectAnswers int                     `json:"correct_answers"`
	TotalQuestions int                     `json:"total_questions"`
	TimeSpent      int                     `json:"time_spent"`
	Rank           int                     `json:"rank"`
	Percentile     decimal.Decimal         `json:"percentile"`
	CreatedAt      time.Time               `json:"created_at"`
}
