//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/imtihan/imtihan-backend/internal/config"
	"github.com/imtihan/imtihan-backend/internal/repository"
	"github.com/imtihan/imtihan-backend/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// TestAbandonSweep drives the stale-session sweep against the database: an
// active session whose clock ran out past the grace period flips to
// abandoned, never produces a result, and returns the consumed attempt when
// the restore policy is on.
func TestAbandonSweep(t *testing.T) {
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	defer pool.Close()

	var userID string
	var attemptsBefore int
	if err := pool.QueryRow(ctx,
		`SELECT id, test_attempts FROM users WHERE email = $1`, studentEmail).
		Scan(&userID, &attemptsBefore); err != nil {
		t.Fatalf("load student: %v", err)
	}

	// An active session whose 600s budget ran out 2 minutes ago.
	var staleID string
	if err := pool.QueryRow(ctx,
		`INSERT INTO test_sessions (user_id, direction_id, time_limit, time_left, answers, questions, status)
		 VALUES ($1, $2, 3600, 600, '{}'::jsonb, '[]'::jsonb, 'active')
		 RETURNING id`, userID, directionID).Scan(&staleID); err != nil {
		t.Fatalf("insert stale session: %v", err)
	}
	if _, err := pool.Exec(ctx,
		`UPDATE test_sessions SET updated_at = NOW() - make_interval(secs => 720) WHERE id = $1`,
		staleID); err != nil {
		t.Fatalf("age session: %v", err)
	}

	cfg := &config.Config{
		AbandonGrace:            time.Minute,
		RestoreAttemptOnAbandon: true,
	}
	svc := service.NewSessionService(pool,
		repository.NewSessionRepository(pool), repository.NewUserRepository(pool),
		nil, nil, nil, nil, nil, nil, cfg, zerolog.Nop())

	n, err := svc.AbandonStale(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 abandoned session, got %d", n)
	}

	var status string
	if err := pool.QueryRow(ctx,
		`SELECT status FROM test_sessions WHERE id = $1`, staleID).Scan(&status); err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if status != "abandoned" {
		t.Errorf("expected abandoned, got %s", status)
	}

	var results int
	if err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM test_results WHERE test_session_id = $1`, staleID).Scan(&results); err != nil {
		t.Fatalf("count results: %v", err)
	}
	if results != 0 {
		t.Errorf("abandoned session must not be scored, found %d results", results)
	}

	var attemptsAfter int
	if err := pool.QueryRow(ctx,
		`SELECT test_attempts FROM users WHERE email = $1`, studentEmail).Scan(&attemptsAfter); err != nil {
		t.Fatalf("reload student: %v", err)
	}
	if attemptsAfter != attemptsBefore-1 {
		t.Errorf("expected attempt restored (%d to %d), got %d",
			attemptsBefore, attemptsBefore-1, attemptsAfter)
	}

	// A second sweep finds nothing new.
	n, err = svc.AbandonStale(ctx)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if n != 0 {
		t.Errorf("expected nothing left to abandon, got %d", n)
	}
}
