package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/middleware"
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/imtihan/imtihan-backend/internal/response"
	"github.com/imtihan/imtihan-backend/internal/service"
	"github.com/imtihan/imtihan-backend/internal/validator"
	"github.com/jackc/pgx/v5"
)

// SessionHandler handles the test session lifecycle endpoints.
type SessionHandler struct {
	sessionService *service.SessionService
	authService    *service.AuthService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService, authService *service.AuthService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		authService:    authService,
	}
}

// Start godoc
// POST /api/v1/sessions
// Opens a new test session for the authenticated student.
func (h *SessionHandler) Start(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessionService.Start(c.Request.Context(), claims.UserID, req.DirectionID, c.ClientIP())
	if err != nil {
		h.failStart(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"session": sessionView(sess),
	})
}

func (h *SessionHandler) failStart(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrUserBlocked):
		response.Fail(c, http.StatusForbidden, response.ErrUserBlocked)
	case errors.Is(err, service.ErrDirectionInactive):
		response.Fail(c, http.StatusConflict, response.ErrDirectionInactive)
	case errors.Is(err, service.ErrWindowClosed):
		response.Fail(c, http.StatusConflict, response.ErrWindowClosed)
	case errors.Is(err, service.ErrAttemptsExhausted):
		response.Fail(c, http.StatusConflict, response.ErrAttemptsExhausted)
	case errors.Is(err, service.ErrPaymentRequired):
		response.Fail(c, http.StatusPaymentRequired, response.ErrPaymentRequired)
	case errors.Is(err, service.ErrSessionConflict):
		response.Fail(c, http.StatusConflict, response.ErrSessionConflict)
	case errors.Is(err, service.ErrInsufficientQuestions):
		response.Fail(c, http.StatusConflict, response.ErrInsufficientQuestions)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// SubmitAnswer godoc
// PUT /api/v1/sessions/:id/answers
// Records one answer. Resubmitting a question overwrites the earlier answer.
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.observeConnection(c, claims, sessionID)

	sess, err := h.sessionService.SubmitAnswer(c.Request.Context(),
		claims.UserID, sessionID, req.QuestionID, req.Answer, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotSessionOwner):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		case errors.Is(err, service.ErrSessionNotActive):
			response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
		case errors.Is(err, service.ErrTimeExpired):
			// The session was force-completed; point the client at the result.
			response.FailWithData(c, http.StatusConflict, response.ErrTimeExpired, gin.H{
				"session_id": sessionID,
				"status":     model.SessionStatusCompleted,
			})
		case errors.Is(err, service.ErrUnknownQuestion):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrUnknownQuestion)
		case errors.Is(err, service.ErrInvalidAnswer):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrInvalidPayload)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"time_left": sess.TimeLeft,
		"answers":   sess.Answers,
	})
}

// Complete godoc
// POST /api/v1/sessions/:id/complete
// Finishes the session and returns its result. Idempotent.
func (h *SessionHandler) Complete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.sessionService.Complete(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotSessionOwner):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		case errors.Is(err, service.ErrSessionNotActive):
			response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"result": result,
	})
}

// GetState godoc
// GET /api/v1/sessions/:id
// Returns the session state with the server-computed remaining time.
func (h *SessionHandler) GetState(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	h.observeConnection(c, claims, sessionID)

	state, err := h.sessionService.GetState(c.Request.Context(),
		claims.UserID, claims.Role == model.RoleAdmin, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotSessionOwner):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session": state,
	})
}

// GetResult godoc
// GET /api/v1/sessions/:id/result
// Returns the scored result of a finished session.
func (h *SessionHandler) GetResult(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.sessionService.GetResult(c.Request.Context(),
		claims.UserID, claims.Role == model.RoleAdmin, sessionID)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotSessionOwner):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		case errors.Is(err, service.ErrResultNotReady):
			response.Fail(c, http.StatusConflict, response.ErrResultNotReady)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"result": result,
	})
}

// ReportCheat godoc
// POST /api/v1/sessions/:id/flags
// Records a client-reported suspicious-behavior observation.
func (h *SessionHandler) ReportCheat(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReportCheatRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.ReportCheat(c.Request.Context(), claims.UserID, sessionID, &req); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotSessionOwner):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{})
}

// observeConnection flags the request when its token is not the user's most
// recent login. Detection only; the request itself proceeds normally.
func (h *SessionHandler) observeConnection(c *gin.Context, claims *service.Claims, sessionID uuid.UUID) {
	current := h.authService.CurrentLoginID(c.Request.Context(), claims.UserID)
	if current != "" && claims.ID != "" && current != claims.ID {
		h.sessionService.RecordConcurrentConnection(c.Request.Context(), sessionID, claims.ID)
	}
}

func sessionView(sess *model.TestSession) gin.H {
	return gin.H{
		"id":           sess.ID,
		"direction_id": sess.DirectionID,
		"status":       sess.Status,
		"start_time":   sess.StartTime,
		"time_limit":   sess.TimeLimit,
		"time_left":    sess.TimeLeft,
		"is_paid":      sess.IsPaid,
		"questions":    sess.StudentQuestions(),
	}
}
