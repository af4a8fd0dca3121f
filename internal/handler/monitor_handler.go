package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/imtihan/imtihan-backend/internal/config"
	"github.com/imtihan/imtihan-backend/internal/middleware"
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/imtihan/imtihan-backend/internal/response"
	"github.com/imtihan/imtihan-backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	monitorWriteWait = 10 * time.Second
	monitorPingEvery = 30 * time.Second
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams live cheat-flag events to administrators over
// WebSocket. Events arrive via the direction's Redis pub/sub channel, so a
// proctor sees flags from every server instance, not just this one.
type MonitorHandler struct {
	rdb      *redis.Client
	dirSvc   *service.DirectionService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, dirSvc *service.DirectionService, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		rdb:      rdb,
		dirSvc:   dirSvc,
		log:      log.With().Str("component", "monitor_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// MonitorDirection godoc
// WS /ws/v1/directions/:id/monitor?token=...
// Upgrades to WebSocket and relays the direction's live cheat-flag feed.
func (h *MonitorHandler) MonitorDirection(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	if claims.Role != model.RoleAdmin {
		response.Fail(c, http.StatusForbidden, response.ErrAdminAccessOnly)
		return
	}

	directionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if _, err := h.dirSvc.Get(c.Request.Context(), directionID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("direction_id", directionID.String()).
		Str("admin_id", claims.UserID.String()).
		Logger()
	wsLog.Info().Msg("Admin attached to live monitor")

	reqCtx := c.Request.Context()
	pubsub := h.rdb.Subscribe(reqCtx, config.CacheKey.DirectionMonitorChannel(directionID.String()))
	defer pubsub.Close()
	events := pubsub.Channel()

	// Read pump: the admin never sends data, but reads are needed to notice
	// a closed connection and to handle control frames.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(monitorPingEvery)
	defer pingTicker.Stop()

	for {
		select {
		case <-reqCtx.Done():
			wsLog.Info().Msg("Admin disconnected from live monitor")
			return

		case <-closed:
			wsLog.Info().Msg("Monitor connection closed")
			return

		case msg, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(monitorWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				wsLog.Warn().Err(err).Msg("Relay write failed")
				return
			}

		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(monitorWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
