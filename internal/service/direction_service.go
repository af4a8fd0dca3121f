package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/imtihan/imtihan-backend/internal/repository"
)

// DirectionService serves the exam catalog: directions and their subjects.
type DirectionService struct {
	dirRepo     *repository.DirectionRepository
	subjectRepo *repository.SubjectRepository
}

// NewDirectionService creates a new DirectionService.
func NewDirectionService(dirRepo *repository.DirectionRepository, subjectRepo *repository.SubjectRepository) *DirectionService {
	return &DirectionService{dirRepo: dirRepo, subjectRepo: subjectRepo}
}

// DirectionView is a catalog entry with the computed window state.
type DirectionView struct {
	model.Direction
	WindowOpen bool            `json:"window_open"`
	Subjects   []model.Subject `json:"subjects,omitempty"`
}

// List returns the active catalog with window state evaluated now.
func (s *DirectionService) List(ctx context.Context) ([]DirectionView, error) {
	directions, err := s.dirRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	views := make([]DirectionView, len(directions))
	for i, d := range directions {
		views[i] = DirectionView{Direction: d, WindowOpen: d.WindowOpen(now)}
	}
	return views, nil
}

// Get returns one direction with its subject plan. Inactive directions are
// visible here so a student can see a track that closed after they enrolled;
// starting a session on one still fails.
func (s *DirectionService) Get(ctx context.Context, id uuid.UUID) (*DirectionView, error) {
	direction, err := s.dirRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	subjects, err := s.subjectRepo.ListByDirection(ctx, id)
	if err != nil {
		return nil, err
	}
	return &DirectionView{
		Direction:  *direction,
		WindowOpen: direction.WindowOpen(time.Now().UTC()),
		Subjects:   subjects,
	}, nil
}
