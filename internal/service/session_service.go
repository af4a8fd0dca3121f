package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/config"
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/imtihan/imtihan-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SessionService owns the test session lifecycle: start, answer submission
// under the server-side clock, completion (explicit or forced by expiry), and
// state reads. All per-session mutation is serialized by a row lock; terminal
// transitions are compare-and-swap, first writer wins.
type SessionService struct {
	pool        *pgxpool.Pool
	sessionRepo *repository.SessionRepository
	userRepo    *repository.UserRepository
	dirRepo     *repository.DirectionRepository
	resultRepo  *repository.ResultRepository
	snapshotSvc *SnapshotService
	paymentSvc  *PaymentService
	cheatSvc    *CheatService
	rdb         *redis.Client
	cfg         *config.Config
	log         zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	pool *pgxpool.Pool,
	sessionRepo *repository.SessionRepository,
	userRepo *repository.UserRepository,
	dirRepo *repository.DirectionRepository,
	resultRepo *repository.ResultRepository,
	snapshotSvc *SnapshotService,
	paymentSvc *PaymentService,
	cheatSvc *CheatService,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		pool:        pool,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		dirRepo:     dirRepo,
		resultRepo:  resultRepo,
		snapshotSvc: snapshotSvc,
		paymentSvc:  paymentSvc,
		cheatSvc:    cheatSvc,
		rdb:         rdb,
		cfg:         cfg,
		log:         log.With().Str("component", "session_service").Logger(),
	}
}

// Start opens a new session for (user, direction). The attempt counter is
// consumed in the same transaction that creates the session row, so both
// happen or neither does. The question snapshot is taken before the
// transaction; it is read-only catalog work.
func (s *SessionService) Start(ctx context.Context, userID, directionID uuid.UUID, clientIP string) (*model.TestSession, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.IsBlocked {
		return nil, ErrUserBlocked
	}

	direction, err := s.dirRepo.GetByID(ctx, directionID)
	if err != nil {
		return nil, fmt.Errorf("get direction: %w", err)
	}
	if !direction.IsActive {
		return nil, ErrDirectionInactive
	}

	now := time.Now().UTC()
	if !direction.WindowOpen(now) {
		return nil, ErrWindowClosed
	}

	// Fast-path check. The authoritative check is the guarded UPDATE below.
	if !user.HasAttemptsLeft() {
		return nil, ErrAttemptsExhausted
	}

	isPaid, usesFreeTest, err := s.paymentSvc.Authorize(ctx, user, direction)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.snapshotSvc.Snapshot(ctx, directionID)
	if err != nil {
		return nil, err
	}

	sess := &model.TestSession{
		UserID:      userID,
		DirectionID: directionID,
		TimeLimit:   direction.DurationSeconds,
		TimeLeft:    direction.DurationSeconds,
		Answers:     map[string]string{},
		Questions:   snapshot,
		IsPaid:      isPaid,
		IPAddress:   clientIP,
		Status:      model.SessionStatusActive,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.userRepo.ConsumeAttemptTx(ctx, tx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptsExhausted
		}
		return nil, fmt.Errorf("consume attempt: %w", err)
	}
	if usesFreeTest {
		if err := s.userRepo.MarkFreeTestUsedTx(ctx, tx, userID); err != nil {
			return nil, fmt.Errorf("mark free test: %w", err)
		}
	}

	if err := s.sessionRepo.CreateTx(ctx, tx, sess); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionConflict
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.log.Info().
		Str("session_id", sess.ID.String()).
		Str("user_id", userID.String()).
		Str("direction_id", directionID.String()).
		Int("questions", len(snapshot)).
		Bool("is_paid", isPaid).
		Msg("Session started")

	return sess, nil
}

// SubmitAnswer upserts one answer into an active session. Later submissions
// for the same question overwrite earlier ones. The clock is checked
// server-side first: an expired session is force-completed and the submission
// is rejected with ErrTimeExpired, leaving the session terminal and scored.
func (s *SessionService) SubmitAnswer(ctx context.Context, userID, sessionID, questionID uuid.UUID, answer, clientIP string) (*model.TestSession, error) {
	if !model.IsOptionLabel(answer) {
		return nil, ErrInvalidAnswer
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	sess, err := s.sessionRepo.GetForUpdateTx(ctx, tx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.UserID != userID {
		return nil, ErrNotSessionOwner
	}
	if sess.Status.Terminal() {
		return nil, ErrSessionNotActive
	}

	now := time.Now().UTC()
	lastObserved := sess.UpdatedAt
	remaining := sess.RemainingSeconds(now)

	if remaining == 0 {
		// Expiry wins. Complete with whatever was recorded, then reject
		// this submission.
		if _, err := s.completeLocked(ctx, tx, sess, now, 0); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit forced completion: %w", err)
		}
		s.enqueueRanking(ctx, sess.DirectionID)
		return nil, ErrTimeExpired
	}

	if _, ok := sess.QuestionByID(questionID); !ok {
		return nil, ErrUnknownQuestion
	}

	sess.Answers[questionID.String()] = answer
	if err := s.sessionRepo.UpdateAnswersTx(ctx, tx, sess.ID, sess.Answers, remaining); err != nil {
		return nil, fmt.Errorf("update answers: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	sess.TimeLeft = remaining
	sess.UpdatedAt = now

	s.observeSubmission(ctx, sess, questionID, now.Sub(lastObserved), clientIP)
	return sess, nil
}

// observeSubmission feeds timing and origin observations to the cheat
// recorder. Purely additive; it can never fail the submission.
func (s *SessionService) observeSubmission(ctx context.Context, sess *model.TestSession, questionID uuid.UUID, gap time.Duration, clientIP string) {
	if gap >= 0 && gap < s.cfg.FastAnswerThreshold {
		s.cheatSvc.Record(ctx, sess, model.CheatAnswerTooFast, map[string]any{
			"question_id": questionID.String(),
			"gap_ms":      gap.Milliseconds(),
		})
	}
	if clientIP != "" && sess.IPAddress != "" && clientIP != sess.IPAddress {
		s.cheatSvc.Record(ctx, sess, model.CheatIPAddressChange, map[string]any{
			"session_ip": sess.IPAddress,
			"request_ip": clientIP,
		})
	}
}

// Complete finishes an active session and scores it. Idempotent: completing
// an already-completed session returns the existing result without
// recomputation. Completing an abandoned session fails.
func (s *SessionService) Complete(ctx context.Context, userID, sessionID uuid.UUID) (*model.TestResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	sess, err := s.sessionRepo.GetForUpdateTx(ctx, tx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.UserID != userID {
		return nil, ErrNotSessionOwner
	}

	if sess.Status == model.SessionStatusCompleted {
		return s.resultRepo.GetBySessionID(ctx, sessionID)
	}
	if sess.Status == model.SessionStatusAbandoned {
		return nil, ErrSessionNotActive
	}

	now := time.Now().UTC()
	result, err := s.completeLocked(ctx, tx, sess, now, sess.RemainingSeconds(now))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.enqueueRanking(ctx, sess.DirectionID)
	return result, nil
}

// completeLocked performs the terminal transition and scoring under the row
// lock already held by the caller's transaction. The status CAS keeps the
// transition exactly-once even if a competing writer slipped in between
// lock acquisition attempts: the loser reads the committed result instead.
func (s *SessionService) completeLocked(ctx context.Context, tx pgx.Tx, sess *model.TestSession, now time.Time, remaining int) (*model.TestResult, error) {
	won, err := s.sessionRepo.FinishTx(ctx, tx, sess.ID, model.SessionStatusCompleted, now, remaining)
	if err != nil {
		return nil, fmt.Errorf("finish session: %w", err)
	}
	if !won {
		return s.resultRepo.GetBySessionID(ctx, sess.ID)
	}

	sess.Status = model.SessionStatusCompleted
	sess.EndTime = &now
	sess.TimeLeft = remaining

	result := ScoreSession(sess)
	if err := s.resultRepo.InsertTx(ctx, tx, result); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Result already exists; keep it, never double-create.
			return s.resultRepo.GetBySessionID(ctx, sess.ID)
		}
		return nil, fmt.Errorf("insert result: %w", err)
	}

	s.log.Info().
		Str("session_id", sess.ID.String()).
		Str("total_score", result.TotalScore.String()).
		Int("correct", result.CorrectAnswers).
		Int("total", result.TotalQuestions).
		Msg("Session completed")

	return result, nil
}

// enqueueRanking asks the ranking worker to recompute the direction. Called
// after commit so the worker always sees the inserted result.
func (s *SessionService) enqueueRanking(ctx context.Context, directionID uuid.UUID) {
	if err := s.rdb.RPush(ctx, config.WorkerKey.RankDirectionsQueue, directionID.String()).Err(); err != nil {
		s.log.Error().Err(err).
			Str("direction_id", directionID.String()).
			Msg("Ranking enqueue failed; ranks stale until next completion")
	}
}

// GetState returns the client-facing session state with the server-computed
// remaining time. Reading is also the lazy tick: an expired-but-still-active
// session is force-completed here before the state is reported.
func (s *SessionService) GetState(ctx context.Context, userID uuid.UUID, isAdmin bool, sessionID uuid.UUID) (*model.SessionState, error) {
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !isAdmin && sess.UserID != userID {
		return nil, ErrNotSessionOwner
	}

	now := time.Now().UTC()
	remaining := sess.RemainingSeconds(now)

	if sess.Status == model.SessionStatusActive && remaining == 0 {
		if err := s.forceExpire(ctx, sess.ID); err != nil {
			return nil, err
		}
		if sess, err = s.sessionRepo.GetByID(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("reload session: %w", err)
		}
		remaining = sess.TimeLeft
	}

	return &model.SessionState{
		ID:          sess.ID,
		DirectionID: sess.DirectionID,
		Status:      sess.Status,
		StartTime:   sess.StartTime,
		EndTime:     sess.EndTime,
		TimeLeft:    remaining,
		Answers:     sess.Answers,
		Questions:   sess.StudentQuestions(),
		IsPaid:      sess.IsPaid,
	}, nil
}

// forceExpire completes an expired session through the same locked path as an
// explicit completion. A concurrent terminal transition makes this a no-op.
func (s *SessionService) forceExpire(ctx context.Context, sessionID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	sess, err := s.sessionRepo.GetForUpdateTx(ctx, tx, sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if sess.Status.Terminal() {
		return nil
	}

	now := time.Now().UTC()
	if sess.RemainingSeconds(now) > 0 {
		// Raced with an answer submission that refreshed the clock.
		return nil
	}
	if _, err := s.completeLocked(ctx, tx, sess, now, 0); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit forced completion: %w", err)
	}
	s.enqueueRanking(ctx, sess.DirectionID)
	return nil
}

// GetResult returns the session's result. Owner or admin only.
func (s *SessionService) GetResult(ctx context.Context, userID uuid.UUID, isAdmin bool, sessionID uuid.UUID) (*model.TestResult, error) {
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !isAdmin && sess.UserID != userID {
		return nil, ErrNotSessionOwner
	}

	// Lazy tick: an expired active session gets its result on first read.
	if sess.Status == model.SessionStatusActive {
		if sess.RemainingSeconds(time.Now().UTC()) > 0 {
			return nil, ErrResultNotReady
		}
		if err := s.forceExpire(ctx, sess.ID); err != nil {
			return nil, err
		}
	}

	result, err := s.resultRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotReady
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	return result, nil
}

// ReportCheat records a client-reported observation. Ownership is verified;
// beyond that the recorder accepts everything, active or terminal.
func (s *SessionService) ReportCheat(ctx context.Context, userID, sessionID uuid.UUID, req *model.ReportCheatRequest) error {
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if sess.UserID != userID {
		return ErrNotSessionOwner
	}

	var detail any
	if len(req.Detail) > 0 {
		detail = req.Detail
	}
	s.cheatSvc.Record(ctx, sess, req.Kind, detail)
	return nil
}

// RecordConcurrentConnection flags a request whose token is not the user's
// latest login. Detection input comes from the handler; this only records.
func (s *SessionService) RecordConcurrentConnection(ctx context.Context, sessionID uuid.UUID, tokenID string) {
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return
	}
	s.cheatSvc.Record(ctx, sess, model.CheatMultipleConnections, map[string]any{
		"token_id": tokenID,
	})
}

// CheatFlags returns the session's append-only flag log for administrators.
func (s *SessionService) CheatFlags(ctx context.Context, sessionID uuid.UUID) ([]model.CheatFlag, error) {
	return s.sessionRepo.ListCheatFlags(ctx, sessionID)
}

// AbandonStale sweeps sessions whose clock ran out more than the grace period
// ago with no client contact, and applies the attempt-restore policy.
func (s *SessionService) AbandonStale(ctx context.Context) (int, error) {
	stale, err := s.sessionRepo.AbandonStale(ctx, s.cfg.AbandonGrace)
	if err != nil {
		return 0, fmt.Errorf("abandon stale: %w", err)
	}

	if s.cfg.RestoreAttemptOnAbandon {
		for _, sess := range stale {
			if err := s.userRepo.RestoreAttempt(ctx, sess.UserID); err != nil {
				s.log.Error().Err(err).
					Str("user_id", sess.UserID.String()).
					Msg("Attempt restore failed")
			}
		}
	}
	return len(stale), nil
}
