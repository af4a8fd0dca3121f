package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DirectionRepository handles direction (exam track) data access.
type DirectionRepository struct {
	pool *pgxpool.Pool
}

// NewDirectionRepository creates a new DirectionRepository.
func NewDirectionRepository(pool *pgxpool.Pool) *DirectionRepository {
	return &DirectionRepository{pool: pool}
}

const directionColumns = `id, name, description, is_active, is_free, price,
	duration_seconds, test_window, created_at, updated_at`

func scanDirection(row pgx.Row) (*model.Direction, error) {
	d := &model.Direction{}
	var window []byte
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.IsActive, &d.IsFree, &d.Price,
		&d.DurationSeconds, &window, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(window) > 0 && string(window) != "null" {
		w := &model.TestWindow{}
		if err := json.Unmarshal(window, w); err != nil {
			return nil, err
		}
		d.TestWindow = w
	}
	return d, nil
}

// GetByID retrieves a direction by ID.
func (r *DirectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Direction, error) {
	return scanDirection(r.pool.QueryRow(ctx,
		`SELECT `+directionColumns+` FROM directions WHERE id = $1`, id))
}

// ListActive retrieves all active directions ordered by name.
func (r *DirectionRepository) ListActive(ctx context.Context) ([]model.Direction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+directionColumns+` FROM directions WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var directions []model.Direction
	for rows.Next() {
		d, err := scanDirection(rows)
		if err != nil {
			return nil, err
		}
		directions = append(directions, *d)
	}
	return directions, rows.Err()
}
