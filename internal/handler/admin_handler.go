package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/imtihan/imtihan-backend/internal/response"
	"github.com/imtihan/imtihan-backend/internal/service"
	"github.com/jackc/pgx/v5"
)

// AdminHandler serves proctoring and review endpoints.
type AdminHandler struct {
	sessionService *service.SessionService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(sessionService *service.SessionService) *AdminHandler {
	return &AdminHandler{sessionService: sessionService}
}

// GetSessionFlags godoc
// GET /api/v1/admin/sessions/:id/flags
// Returns a session's cheat flag log in append order.
func (h *AdminHandler) GetSessionFlags(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	flags, err := h.sessionService.CheatFlags(c.Request.Context(), sessionID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if flags == nil {
		flags = []model.CheatFlag{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"flags": flags,
	})
}

// GetSessionState godoc
// GET /api/v1/admin/sessions/:id
// Returns any session's state for review.
func (h *AdminHandler) GetSessionState(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	state, err := h.sessionService.GetState(c.Request.Context(), uuid.Nil, true, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session": state,
	})
}
