package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SubjectRepository handles subject data access.
type SubjectRepository struct {
	pool *pgxpool.Pool
}

// NewSubjectRepository creates a new SubjectRepository.
func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

// ListByDirection retrieves all subjects of a direction, main subjects first.
func (r *SubjectRepository) ListByDirection(ctx context.Context, directionID uuid.UUID) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, direction_id, name, type, question_count, points_per_question::text,
		        created_at, updated_at
		 FROM subjects
		 WHERE direction_id = $1
		 ORDER BY type, name`, directionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		var points string
		if err := rows.Scan(&s.ID, &s.DirectionID, &s.Name, &s.Type, &s.QuestionCount,
			&points, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if s.PointsPerQuestion, err = decimal.NewFromString(points); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}
