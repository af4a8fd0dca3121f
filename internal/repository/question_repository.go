package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// QuestionRepository handles catalog question data access. The catalog is
// queried only at snapshot time; existing sessions never come back here.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// SampleBySubject selects n uniformly random questions for a subject.
func (r *QuestionRepository) SampleBySubject(ctx context.Context, subjectID uuid.UUID, n int) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, subject_id, text, options, correct_answer, COALESCE(image_url, ''),
		        points::text, difficulty, created_at, updated_at
		 FROM questions
		 WHERE subject_id = $1
		 ORDER BY random()
		 LIMIT $2`, subjectID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		var options []byte
		var points string
		if err := rows.Scan(&q.ID, &q.SubjectID, &q.Text, &options, &q.CorrectAnswer,
			&q.ImageURL, &points, &q.Difficulty, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, err
		}
		if q.Points, err = decimal.NewFromString(points); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
