package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/config"
	"github.com/imtihan/imtihan-backend/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// CheatWorker drains the cheat flag queue into Postgres in batches. The
// request path only ever touches Redis; this worker is the sole writer of
// session_cheat_flags.
type CheatWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewCheatWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *CheatWorker {
	return &CheatWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "cheat_worker").Logger(),
	}
}

func (w *CheatWorker) Start(ctx context.Context) {
	w.log.Info().Msg("CheatWorker started")

	buffer := make([]*service.CheatEvent, 0, BatchSize)
	lastFlushTime := time.Now()

	for {
		// Flush on size or age.
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlushTime) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlushTime = time.Now()
			}
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistCheatsQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue // Queue empty, loop back to check the flush timer
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		var event service.CheatEvent
		if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
			// Malformed JSON cannot be retried. Log and discard.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed JSON")
			continue
		}

		buffer = append(buffer, &event)
	}
}

// flushSafe attempts bulk insert, then fallback insert, then requeue.
func (w *CheatWorker) flushSafe(ctx context.Context, batch []*service.CheatEvent) {
	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}
}

func (w *CheatWorker) bulkInsert(ctx context.Context, batch []*service.CheatEvent) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, e := range batch {
		sessionID, err := uuid.Parse(e.SessionID)
		if err != nil {
			// Trigger the fallback, which drops the bad row individually.
			return err
		}
		rows = append(rows, []interface{}{
			sessionID, string(e.Kind), []byte(e.Detail), time.Unix(e.Timestamp, 0).UTC(),
		})
	}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"session_cheat_flags"},
		[]string{"session_id", "kind", "detail", "recorded_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *CheatWorker) fallbackInsert(ctx context.Context, batch []*service.CheatEvent) {
	requeueList := make([]*service.CheatEvent, 0)

	for _, e := range batch {
		sessionID, err := uuid.Parse(e.SessionID)
		if err != nil {
			w.log.Error().Str("session_id", e.SessionID).Msg("Dropping cheat event with invalid UUID")
			continue
		}

		_, err = w.pool.Exec(ctx,
			`INSERT INTO session_cheat_flags (session_id, kind, detail, recorded_at)
             VALUES ($1, $2, $3::jsonb, $4)`,
			sessionID, string(e.Kind), []byte(e.Detail), time.Unix(e.Timestamp, 0).UTC(),
		)
		if err != nil {
			w.log.Error().Err(err).Str("session_id", e.SessionID).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, e)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *CheatWorker) requeue(ctx context.Context, items []*service.CheatEvent) {
	pipe := w.rdb.Pipeline()
	for _, e := range items {
		data, _ := json.Marshal(e)
		pipe.RPush(ctx, config.WorkerKey.PersistCheatsQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue items to Redis. Data loss occurred.")
	} else {
		w.log.Info().Int("count", len(items)).Msg("Requeued failed items back to Redis")
		// Avoid thrashing while the database is down.
		time.Sleep(2 * time.Second)
	}
}

func (w *CheatWorker) shutdown(buffer []*service.CheatEvent) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
