package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotQuestion(subject string, points string, correct string) model.SnapshotQuestion {
	return model.SnapshotQuestion{
		ID:          uuid.New(),
		SubjectID:   uuid.New(),
		SubjectName: subject,
		SubjectType: model.SubjectTypeMain,
		Text:        "q",
		Options:     map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"},
		Correct:     correct,
		Points:      decimal.RequireFromString(points),
	}
}

func TestScoreSessionMixedAnswers(t *testing.T) {
	q1 := snapshotQuestion("Math", "2.5", "A")
	q2 := snapshotQuestion("Math", "2.5", "B")
	q3 := snapshotQuestion("Logic", "1.5", "C")
	q4 := snapshotQuestion("Logic", "1.5", "D")

	sess := &model.TestSession{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		TimeLimit: 3600,
		TimeLeft:  1200,
		Questions: []model.SnapshotQuestion{q1, q2, q3, q4},
		Answers: map[string]string{
			q1.ID.String(): "A", // correct
			q2.ID.String(): "C", // wrong
			q3.ID.String(): "C", // correct
			// q4 unanswered
		},
	}

	result := ScoreSession(sess)

	assert.True(t, result.TotalScore.Equal(decimal.RequireFromString("4")),
		"got %s", result.TotalScore)
	assert.Equal(t, 2, result.CorrectAnswers)
	assert.Equal(t, 4, result.TotalQuestions)
	assert.Equal(t, 2400, result.TimeSpent)

	require.Contains(t, result.SubjectScores, "Math")
	require.Contains(t, result.SubjectScores, "Logic")

	math := result.SubjectScores["Math"]
	assert.True(t, math.Score.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, 1, math.Correct)
	assert.Equal(t, 2, math.Total)

	logic := result.SubjectScores["Logic"]
	assert.True(t, logic.Score.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, 1, logic.Correct)
	assert.Equal(t, 2, logic.Total)
}

func TestScoreSessionDecimalExactness(t *testing.T) {
	// 3 x 0.1 must be exactly 0.3, not 0.30000000000000004.
	var questions []model.SnapshotQuestion
	answers := map[string]string{}
	for i := 0; i < 3; i++ {
		q := snapshotQuestion("Math", "0.1", "A")
		questions = append(questions, q)
		answers[q.ID.String()] = "A"
	}

	sess := &model.TestSession{
		ID:        uuid.New(),
		TimeLimit: 600,
		TimeLeft:  0,
		Questions: questions,
		Answers:   answers,
	}

	result := ScoreSession(sess)
	assert.Equal(t, "0.3", result.TotalScore.String())
}

func TestScoreSessionAllUnanswered(t *testing.T) {
	q1 := snapshotQuestion("Math", "2.5", "A")
	q2 := snapshotQuestion("Math", "2.5", "B")

	sess := &model.TestSession{
		ID:        uuid.New(),
		TimeLimit: 3600,
		TimeLeft:  3600,
		Questions: []model.SnapshotQuestion{q1, q2},
		Answers:   map[string]string{},
	}

	result := ScoreSession(sess)

	assert.True(t, result.TotalScore.IsZero())
	assert.Equal(t, 0, result.CorrectAnswers)
	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 0, result.TimeSpent)
	assert.Equal(t, 2, result.SubjectScores["Math"].Total)
	assert.Equal(t, 0, result.SubjectScores["Math"].Correct)
}

func TestScoreSessionIgnoresStrayAnswers(t *testing.T) {
	q := snapshotQuestion("Math", "1.0", "A")

	sess := &model.TestSession{
		ID:        uuid.New(),
		TimeLimit: 600,
		TimeLeft:  100,
		Questions: []model.SnapshotQuestion{q},
		Answers: map[string]string{
			q.ID.String():       "A",
			uuid.New().String(): "B", // not in the snapshot
		},
	}

	result := ScoreSession(sess)
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, 1, result.TotalQuestions)
}
