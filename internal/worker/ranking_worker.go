package worker

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/config"
	"github.com/imtihan/imtihan-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	RankPollTimeout = 1 * time.Second
	RankRetryDelay  = 3 * time.Second
)

// RankingWorker recomputes rank and percentile for whole directions. The
// request path only enqueues a direction ID after a result commit; this
// worker is the sole writer of the rank and percentile columns. A
// per-direction advisory lock serializes recomputations across instances.
type RankingWorker struct {
	pool       *pgxpool.Pool
	rdb        *redis.Client
	resultRepo *repository.ResultRepository
	log        zerolog.Logger
}

func NewRankingWorker(pool *pgxpool.Pool, rdb *redis.Client, resultRepo *repository.ResultRepository, log zerolog.Logger) *RankingWorker {
	return &RankingWorker{
		pool:       pool,
		rdb:        rdb,
		resultRepo: resultRepo,
		log:        log.With().Str("component", "ranking_worker").Logger(),
	}
}

func (w *RankingWorker) Start(ctx context.Context) {
	w.log.Info().Msg("RankingWorker started")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, err := w.rdb.BLPop(ctx, RankPollTimeout, config.WorkerKey.RankDirectionsQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(RankRetryDelay)
			continue
		}
		if len(item) < 2 {
			continue
		}

		directionID, err := uuid.Parse(item[1])
		if err != nil {
			w.log.Error().Str("data", item[1]).Msg("Discarding invalid direction ID")
			continue
		}

		// A burst of completions enqueues the same direction many times;
		// one recomputation covers them all.
		w.drainDuplicates(ctx, directionID.String())

		if err := w.recompute(ctx, directionID); err != nil {
			w.log.Error().Err(err).
				Str("direction_id", directionID.String()).
				Msg("Recompute failed, requeueing")
			w.rdb.RPush(ctx, config.WorkerKey.RankDirectionsQueue, directionID.String())
			time.Sleep(RankRetryDelay)
		}
	}
}

// drainDuplicates removes queued repeats of the direction about to be ranked.
func (w *RankingWorker) drainDuplicates(ctx context.Context, directionID string) {
	if err := w.rdb.LRem(ctx, config.WorkerKey.RankDirectionsQueue, 0, directionID).Err(); err != nil {
		w.log.Warn().Err(err).Msg("Dedupe failed, recomputing anyway")
	}
}

// recompute re-ranks every result in the direction and bulk-writes the new
// standings. The advisory lock keys on the direction so two instances never
// interleave partial rank updates for the same leaderboard.
func (w *RankingWorker) recompute(ctx context.Context, directionID uuid.UUID) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryKey(directionID)); err != nil {
		return err
	}

	scores, err := w.resultRepo.ListScoresByDirectionTx(ctx, tx, directionID)
	if err != nil {
		return err
	}
	if len(scores) == 0 {
		return tx.Commit(ctx)
	}

	ids := make([]uuid.UUID, len(scores))
	for i, s := range scores {
		ids[i] = s.ID
	}
	ranks, percentiles := computeRankings(scores)

	if err := w.resultRepo.BulkUpdateRanks(ctx, tx, ids, ranks, percentiles); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	w.log.Info().
		Str("direction_id", directionID.String()).
		Int("results", len(scores)).
		Msg("Direction re-ranked")
	return nil
}

// computeRankings assigns competition ranks ("1224") and percentiles over
// scores already sorted from highest to lowest. Equal scores share a rank;
// the next distinct score takes the rank its position implies. Percentile is
// the share of results strictly below, as a 0 to 100 value with 2 decimals.
func computeRankings(scores []repository.ScoreRow) ([]int, []string) {
	n := len(scores)
	ranks := make([]int, n)
	percentiles := make([]string, n)

	total := decimal.NewFromInt(int64(n))
	hundred := decimal.NewFromInt(100)

	i := 0
	for i < n {
		j := i
		for j < n && scores[j].Score.Equal(scores[i].Score) {
			j++
		}
		// scores[i:j] share the same score; everything from j down is
		// strictly lower.
		pct := decimal.NewFromInt(int64(n - j)).Mul(hundred).Div(total).Round(2)
		for k := i; k < j; k++ {
			ranks[k] = i + 1
			percentiles[k] = pct.String()
		}
		i = j
	}
	return ranks, percentiles
}

// advisoryKey folds a direction UUID into the bigint keyspace of
// pg_advisory_xact_lock.
func advisoryKey(id uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(id[:])
	return int64(h.Sum64())
}
