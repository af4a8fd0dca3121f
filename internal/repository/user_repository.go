package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, full_name, email, phone, password_hash, role, is_blocked,
	free_test_used, test_attempts, max_test_attempts, allowed_directions, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	var allowed []byte
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.PasswordHash, &u.Role,
		&u.IsBlocked, &u.FreeTestUsed, &u.TestAttempts, &u.MaxTestAttempts,
		&allowed, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(allowed) > 0 {
		if err := json.Unmarshal(allowed, &u.AllowedDirections); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO users (full_name, email, phone, password_hash, role, max_test_attempts)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		u.FullName, u.Email, u.Phone, u.PasswordHash, u.Role, u.MaxTestAttempts,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

// ConsumeAttemptTx increments the user's consumed-attempt counter if the cap
// allows it. Returns pgx.ErrNoRows when attempts are exhausted. Runs inside
// the session-creation transaction so both succeed or neither does.
func (r *UserRepository) ConsumeAttemptTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	var attempts int
	return tx.QueryRow(ctx,
		`UPDATE users
		 SET test_attempts = test_attempts + 1, updated_at = NOW()
		 WHERE id = $1 AND (max_test_attempts = $2 OR test_attempts < max_test_attempts)
		 RETURNING test_attempts`,
		userID, model.UnlimitedAttempts,
	).Scan(&attempts)
}

// RestoreAttempt returns one consumed attempt to the user's quota. Used by
// the abandonment sweep when the restore policy is enabled.
func (r *UserRepository) RestoreAttempt(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET test_attempts = GREATEST(test_attempts - 1, 0), updated_at = NOW()
		 WHERE id = $1`, userID)
	return err
}

// MarkFreeTestUsedTx consumes the user's single free attempt.
func (r *UserRepository) MarkFreeTestUsedTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx,
		`UPDATE users SET free_test_used = TRUE, updated_at = NOW() WHERE id = $1`, userID)
	return err
}
