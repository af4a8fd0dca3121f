package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/response"
	"github.com/imtihan/imtihan-backend/internal/service"
	"github.com/jackc/pgx/v5"
)

// DirectionHandler serves the exam catalog.
type DirectionHandler struct {
	directionService *service.DirectionService
}

// NewDirectionHandler creates a new DirectionHandler.
func NewDirectionHandler(directionService *service.DirectionService) *DirectionHandler {
	return &DirectionHandler{directionService: directionService}
}

// List godoc
// GET /api/v1/directions
// Returns active directions with their window state.
func (h *DirectionHandler) List(c *gin.Context) {
	directions, err := h.directionService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"directions": directions,
	})
}

// Get godoc
// GET /api/v1/directions/:id
// Returns one direction with its subject plan.
func (h *DirectionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	direction, err := h.directionService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"direction": direction,
	})
}
