package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ResultRepository handles test result data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

const resultColumns = `id, test_session_id, user_id, direction_id, total_score::text,
	subject_scores, correct_answers, total_questions, time_spent,
	COALESCE(rank, 0), COALESCE(percentile, 0)::text, created_at`

func scanResult(row pgx.Row) (*model.TestResult, error) {
	res := &model.TestResult{}
	var total, percentile string
	var subjectScores []byte
	err := row.Scan(&res.ID, &res.TestSessionID, &res.UserID, &res.DirectionID,
		&total, &subjectScores, &res.CorrectAnswers, &res.TotalQuestions,
		&res.TimeSpent, &res.Rank, &percentile, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	if res.TotalScore, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	if res.Percentile, err = decimal.NewFromString(percentile); err != nil {
		return nil, err
	}
	if len(subjectScores) > 0 {
		if err := json.Unmarshal(subjectScores, &res.SubjectScores); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// InsertTx inserts a result inside the completion transaction. The unique
// constraint on test_session_id makes result creation exactly-once; a
// duplicate insert hits DO NOTHING and surfaces as pgx.ErrNoRows, in which
// case the caller reads the already-committed result.
func (r *ResultRepository) InsertTx(ctx context.Context, tx pgx.Tx, res *model.TestResult) error {
	subjectScores, err := json.Marshal(res.SubjectScores)
	if err != nil {
		return err
	}
	return tx.QueryRow(ctx,
		`INSERT INTO test_results
		   (test_session_id, user_id, direction_id, total_score, subject_scores,
		    correct_answers, total_questions, time_spent)
		 VALUES ($1, $2, $3, $4::numeric, $5::jsonb, $6, $7, $8)
		 ON CONFLICT (test_session_id) DO NOTHING
		 RETURNING id, created_at`,
		res.TestSessionID, res.UserID, res.DirectionID, res.TotalScore.String(),
		subjectScores, res.CorrectAnswers, res.TotalQuestions, res.TimeSpent,
	).Scan(&res.ID, &res.CreatedAt)
}

// GetBySessionID retrieves the result for a session.
func (r *ResultRepository) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*model.TestResult, error) {
	return scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM test_results WHERE test_session_id = $1`, sessionID))
}

// ScoreRow is the minimal projection the ranking recomputation needs.
type ScoreRow struct {
	ID    uuid.UUID
	Score decimal.Decimal
}

// ListScoresByDirectionTx returns all completed scores for a direction,
// read through the caller's transaction so the ranking write sees the same
// snapshot. Scores come back as text so decimal comparison stays exact.
func (r *ResultRepository) ListScoresByDirectionTx(ctx context.Context, tx pgx.Tx, directionID uuid.UUID) ([]ScoreRow, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, total_score::text
		 FROM test_results
		 WHERE direction_id = $1
		 ORDER BY total_score DESC, created_at`, directionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []ScoreRow
	for rows.Next() {
		var row ScoreRow
		var raw string
		if err := rows.Scan(&row.ID, &raw); err != nil {
			return nil, err
		}
		if row.Score, err = decimal.NewFromString(raw); err != nil {
			return nil, err
		}
		scores = append(scores, row)
	}
	return scores, rows.Err()
}

// BulkUpdateRanks writes recomputed rank/percentile pairs in one statement.
func (r *ResultRepository) BulkUpdateRanks(ctx context.Context, tx pgx.Tx, ids []uuid.UUID, ranks []int, percentiles []string) error {
	_, err := tx.Exec(ctx,
		`UPDATE test_results AS r
		 SET rank = t.rnk, percentile = t.pct
		 FROM (
			SELECT u.id, u.rnk, u.pct
			FROM UNNEST($1::uuid[], $2::int[], $3::numeric[]) AS u (id, rnk, pct)
		 ) AS t
		 WHERE r.id = t.id`,
		ids, ranks, percentiles)
	return err
}

// ListByDirection returns a direction's results ordered by rank, paginated.
func (r *ResultRepository) ListByDirection(ctx context.Context, directionID uuid.UUID, page, perPage int) ([]model.TestResult, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM test_results WHERE direction_id = $1`, directionID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+`
		 FROM test_results
		 WHERE direction_id = $1
		 ORDER BY rank, created_at
		 LIMIT $2 OFFSET $3`, directionID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []model.TestResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *res)
	}
	return results, total, rows.Err()
}

// ListByUser returns a user's results, newest first.
func (r *ResultRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.TestResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+`
		 FROM test_results
		 WHERE user_id = $1
		 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.TestResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}
