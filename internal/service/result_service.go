package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/imtihan/imtihan-backend/internal/repository"
)

// ResultService serves ranked result listings.
type ResultService struct {
	resultRepo *repository.ResultRepository
}

// NewResultService creates a new ResultService.
func NewResultService(resultRepo *repository.ResultRepository) *ResultService {
	return &ResultService{resultRepo: resultRepo}
}

// Leaderboard returns a direction's results by rank, paginated. Rank and
// percentile may lag a just-finished session until the ranking worker catches
// up; the scores themselves are always current.
func (s *ResultService) Leaderboard(ctx context.Context, directionID uuid.UUID, page, perPage int) ([]model.TestResult, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return s.resultRepo.ListByDirection(ctx, directionID, page, perPage)
}

// History returns the user's own results, newest first.
func (s *ResultService) History(ctx context.Context, userID uuid.UUID) ([]model.TestResult, error) {
	return s.resultRepo.ListByUser(ctx, userID)
}
