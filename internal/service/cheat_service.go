package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/imtihan/imtihan-backend/internal/config"
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CheatEvent is the queue and pub/sub payload for one recorded flag.
type CheatEvent struct {
	SessionID   string          `json:"session_id"`
	UserID      string          `json:"user_id"`
	DirectionID string          `json:"direction_id"`
	Kind        model.CheatKind `json:"kind"`
	Detail      json.RawMessage `json:"detail,omitempty"`
	Timestamp   int64           `json:"timestamp"`
}

// CheatService accumulates suspicious-event observations. It only records
// evidence; judgment belongs to a policy layer elsewhere. Recording is
// log-and-continue: a failure here must never block an answer submission.
type CheatService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewCheatService creates a new CheatService.
func NewCheatService(rdb *redis.Client, log zerolog.Logger) *CheatService {
	return &CheatService{
		rdb: rdb,
		log: log.With().Str("component", "cheat_service").Logger(),
	}
}

// Record appends a timestamped flag to the session's suspicion log via the
// persistence queue, and publishes it to the direction's live monitor
// channel. Never returns an error.
func (s *CheatService) Record(ctx context.Context, sess *model.TestSession, kind model.CheatKind, detail any) {
	var rawDetail json.RawMessage
	if detail != nil {
		raw, err := json.Marshal(detail)
		if err != nil {
			s.log.Warn().Err(err).Str("kind", string(kind)).Msg("Cheat detail marshal failed, recording without detail")
		} else {
			rawDetail = raw
		}
	}

	event := CheatEvent{
		SessionID:   sess.ID.String(),
		UserID:      sess.UserID.String(),
		DirectionID: sess.DirectionID.String(),
		Kind:        kind,
		Detail:      rawDetail,
		Timestamp:   time.Now().UTC().Unix(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error().Err(err).Msg("Cheat event marshal failed, observation dropped")
		return
	}

	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistCheatsQueue, payload).Err(); err != nil {
		s.log.Error().Err(err).
			Str("session_id", event.SessionID).
			Str("kind", string(kind)).
			Msg("Cheat event enqueue failed, observation dropped")
	}

	channel := config.CacheKey.DirectionMonitorChannel(event.DirectionID)
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Monitor publish failed")
	}
}
