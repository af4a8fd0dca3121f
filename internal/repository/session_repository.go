package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository handles test session data access. Mutating methods are
// transaction-scoped: the service locks the row once and applies the whole
// state transition inside a single transaction.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, user_id, direction_id, start_time, end_time, time_limit,
	time_left, answers, questions, is_paid, COALESCE(ip_address, ''), status, created_at, updated_at`

func scanSession(row pgx.Row) (*model.TestSession, error) {
	s := &model.TestSession{}
	var answers, questions []byte
	err := row.Scan(&s.ID, &s.UserID, &s.DirectionID, &s.StartTime, &s.EndTime,
		&s.TimeLimit, &s.TimeLeft, &answers, &questions, &s.IsPaid, &s.IPAddress,
		&s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Answers = map[string]string{}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &s.Answers); err != nil {
			return nil, err
		}
	}
	if err := json.Unmarshal(questions, &s.Questions); err != nil {
		return nil, err
	}
	return s, nil
}

// CreateTx inserts a new active session with its frozen question snapshot.
// The partial unique index on (user_id, direction_id) WHERE status='active'
// enforces the one-active-session invariant; a conflicting insert hits
// DO NOTHING and surfaces as pgx.ErrNoRows.
func (r *SessionRepository) CreateTx(ctx context.Context, tx pgx.Tx, s *model.TestSession) error {
	questions, err := json.Marshal(s.Questions)
	if err != nil {
		return err
	}
	return tx.QueryRow(ctx,
		`INSERT INTO test_sessions
		   (user_id, direction_id, time_limit, time_left, answers, questions, is_paid, ip_address, status)
		 VALUES ($1, $2, $3, $4, '{}'::jsonb, $5::jsonb, $6, $7, $8)
		 ON CONFLICT (user_id, direction_id) WHERE status = 'active' DO NOTHING
		 RETURNING id, start_time, created_at, updated_at`,
		s.UserID, s.DirectionID, s.TimeLimit, s.TimeLeft, questions, s.IsPaid,
		s.IPAddress, model.SessionStatusActive,
	).Scan(&s.ID, &s.StartTime, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a session without locking.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.TestSession, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE id = $1`, id))
}

// GetForUpdateTx retrieves a session with a row lock, serializing all
// concurrent mutation (submit, complete, expiry) on that session.
func (r *SessionRepository) GetForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.TestSession, error) {
	return scanSession(tx.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM test_sessions WHERE id = $1 FOR UPDATE`, id))
}

// UpdateAnswersTx persists the answer map and the ticked clock. updated_at
// becomes the new last-observation point for the session clock.
func (r *SessionRepository) UpdateAnswersTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, answers map[string]string, timeLeft int) error {
	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`UPDATE test_sessions
		 SET answers = $1::jsonb, time_left = $2, updated_at = NOW()
		 WHERE id = $3`,
		raw, timeLeft, id)
	return err
}

// FinishTx performs the terminal compare-and-swap: active → completed or
// abandoned. Returns false when another writer already moved the session out
// of active, in which case the caller treats its transition as a no-op.
func (r *SessionRepository) FinishTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.SessionStatus, endTime time.Time, timeLeft int) (bool, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE test_sessions
		 SET status = $1, end_time = $2, time_left = $3, updated_at = NOW()
		 WHERE id = $4 AND status = $5`,
		status, endTime, timeLeft, id, model.SessionStatusActive)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// StaleSession identifies a session abandoned by the sweep.
type StaleSession struct {
	ID     uuid.UUID
	UserID uuid.UUID
}

// AbandonStale marks as abandoned every active session whose clock would have
// reached zero more than grace ago without any observation. Returns the
// affected sessions so the sweep can apply the attempt-restore policy.
func (r *SessionRepository) AbandonStale(ctx context.Context, grace time.Duration) ([]StaleSession, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE test_sessions
		 SET status = $1, end_time = NOW(), time_left = 0, updated_at = NOW()
		 WHERE status = $2
		   AND updated_at + make_interval(secs => time_left + $3) < NOW()
		 RETURNING id, user_id`,
		model.SessionStatusAbandoned, model.SessionStatusActive, int(grace.Seconds()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []StaleSession
	for rows.Next() {
		var s StaleSession
		if err := rows.Scan(&s.ID, &s.UserID); err != nil {
			return nil, err
		}
		stale = append(stale, s)
	}
	return stale, rows.Err()
}

// ListCheatFlags returns a session's cheat flags in append order.
func (r *SessionRepository) ListCheatFlags(ctx context.Context, sessionID uuid.UUID) ([]model.CheatFlag, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, kind, detail, recorded_at
		 FROM session_cheat_flags
		 WHERE session_id = $1
		 ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []model.CheatFlag
	for rows.Next() {
		var f model.CheatFlag
		if err := rows.Scan(&f.ID, &f.SessionID, &f.Kind, &f.Detail, &f.RecordedAt); err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}
	return flags, rows.Err()
}
