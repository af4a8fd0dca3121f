package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRepository reads payment records. Payment processing itself lives in
// an external collaborator; the engine only checks confirmation status.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// HasConfirmed reports whether the user holds a confirmed payment for the
// direction.
func (r *PaymentRepository) HasConfirmed(ctx context.Context, userID, directionID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM payments
		   WHERE user_id = $1 AND direction_id = $2 AND status = $3
		 )`, userID, directionID, model.PaymentStatusConfirmed).Scan(&exists)
	return exists, err
}
