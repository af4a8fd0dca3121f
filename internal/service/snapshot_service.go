package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/imtihan/imtihan-backend/internal/repository"
)

// SnapshotService resolves a direction's question set into an immutable
// answer-key snapshot at session start. The snapshot is the only thing a
// session ever scores against; the live catalog is not consulted again.
type SnapshotService struct {
	subjectRepo  *repository.SubjectRepository
	questionRepo *repository.QuestionRepository
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(subjectRepo *repository.SubjectRepository, questionRepo *repository.QuestionRepository) *SnapshotService {
	return &SnapshotService{subjectRepo: subjectRepo, questionRepo: questionRepo}
}

// Snapshot selects question_count random questions per subject and freezes
// their scoring-relevant fields. Selection is random at creation but
// reproducible afterwards because the result is embedded in the session row.
func (s *SnapshotService) Snapshot(ctx context.Context, directionID uuid.UUID) ([]model.SnapshotQuestion, error) {
	subjects, err := s.subjectRepo.ListByDirection(ctx, directionID)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	if len(subjects) == 0 {
		return nil, fmt.Errorf("direction %s has no subjects: %w", directionID, ErrInsufficientQuestions)
	}

	var snapshot []model.SnapshotQuestion
	for _, subject := range subjects {
		questions, err := s.questionRepo.SampleBySubject(ctx, subject.ID, subject.QuestionCount)
		if err != nil {
			return nil, fmt.Errorf("sample questions for %s: %w", subject.Name, err)
		}
		if len(questions) < subject.QuestionCount {
			return nil, fmt.Errorf("subject %s has %d of %d required questions: %w",
				subject.Name, len(questions), subject.QuestionCount, ErrInsufficientQuestions)
		}

		for _, q := range questions {
			points := q.Points
			if points.IsZero() {
				points = subject.PointsPerQuestion
			}
			snapshot = append(snapshot, model.SnapshotQuestion{
				ID:          q.ID,
				SubjectID:   subject.ID,
				SubjectName: subject.Name,
				SubjectType: subject.Type,
				Text:        q.Text,
				Options:     q.Options,
				Correct:     q.CorrectAnswer,
				Points:      points,
			})
		}
	}
	return snapshot, nil
}
