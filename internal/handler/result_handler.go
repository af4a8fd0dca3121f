package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/middleware"
	"github.com/imtihan/imtihan-backend/internal/response"
	"github.com/imtihan/imtihan-backend/internal/service"
)

// ResultHandler serves ranked result listings.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// Leaderboard godoc
// GET /api/v1/directions/:id/leaderboard?page=&per_page=
// Returns the direction's results ordered by rank.
func (h *ResultHandler) Leaderboard(c *gin.Context) {
	directionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	results, total, err := h.resultService.Leaderboard(c.Request.Context(), directionID, page, perPage)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{
		"results": results,
	}, &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: int(total),
		TotalPages: (int(total) + perPage - 1) / perPage,
	})
}

// History godoc
// GET /api/v1/results
// Returns the authenticated user's results, newest first.
func (h *ResultHandler) History(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	results, err := h.resultService.History(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"results": results,
	})
}
