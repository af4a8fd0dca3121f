package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Difficulty enumerates question difficulty tiers.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// OptionLabels are the four valid answer labels.
var OptionLabels = []string{"A", "B", "C", "D"}

// IsOptionLabel reports whether s is one of A..D.
func IsOptionLabel(s string) bool {
	for _, l := range OptionLabels {
		if s == l {
			return true
		}
	}
	return false
}

// Question is a catalog question. The catalog is mutable; sessions never
// reference it directly after start — see SnapshotQuestion.
type Question struct {
	ID            uuid.UUID         `json:"id"`
	SubjectID     uuid.UUID         `json:"subject_id"`
	Text          string            `json:"text"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	ImageURL      string            `json:"image_url,omitempty"`
	Points        decimal.Decimal   `json:"points"`
	Difficulty    Difficulty        `json:"difficulty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
