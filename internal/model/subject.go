package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubjectType distinguishes core-scored subjects from supplementary ones.
type SubjectType string

const (
	SubjectTypeMain      SubjectType = "main"
	SubjectTypeMandatory SubjectType = "mandatory"
)

// Subject is a scored component of a direction.
type Subject struct {
	ID                uuid.UUID       `json:"id"`
	DirectionID       uuid.UUID       `json:"direction_id"`
	Name              string          `json:"name"`
	Type              SubjectType     `json:"type"`
	QuestionCount     int             `json:"question_count"`
	PointsPerQuestion decimal.Decimal `json:"points_per_question"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
