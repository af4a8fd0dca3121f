package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRemainingSecondsTicksFromLastObservation(t *testing.T) {
	now := time.Now().UTC()
	sess := &TestSession{
		Status:    SessionStatusActive,
		TimeLimit: 3600,
		TimeLeft:  1000,
		UpdatedAt: now.Add(-40 * time.Second),
	}

	assert.Equal(t, 960, sess.RemainingSeconds(now))
}

func TestRemainingSecondsClampsAtZero(t *testing.T) {
	now := time.Now().UTC()
	sess := &TestSession{
		Status:    SessionStatusActive,
		TimeLimit: 3600,
		TimeLeft:  30,
		UpdatedAt: now.Add(-5 * time.Minute),
	}

	assert.Equal(t, 0, sess.RemainingSeconds(now))
}

func TestRemainingSecondsClampsAtLimit(t *testing.T) {
	// A clock skewed into the future must never report more than the limit.
	now := time.Now().UTC()
	sess := &TestSession{
		Status:    SessionStatusActive,
		TimeLimit: 3600,
		TimeLeft:  5000,
		UpdatedAt: now,
	}

	assert.Equal(t, 3600, sess.RemainingSeconds(now))
}

func TestRemainingSecondsFrozenWhenTerminal(t *testing.T) {
	now := time.Now().UTC()
	sess := &TestSession{
		Status:    SessionStatusCompleted,
		TimeLimit: 3600,
		TimeLeft:  120,
		UpdatedAt: now.Add(-time.Hour),
	}

	assert.Equal(t, 120, sess.RemainingSeconds(now))
}

func TestTerminalStatus(t *testing.T) {
	assert.False(t, SessionStatusActive.Terminal())
	assert.True(t, SessionStatusCompleted.Terminal())
	assert.True(t, SessionStatusAbandoned.Terminal())
}

func TestQuestionByID(t *testing.T) {
	q1 := SnapshotQuestion{ID: uuid.New(), Text: "first"}
	q2 := SnapshotQuestion{ID: uuid.New(), Text: "second"}
	sess := &TestSession{Questions: []SnapshotQuestion{q1, q2}}

	got, ok := sess.QuestionByID(q2.ID)
	assert.True(t, ok)
	assert.Equal(t, "second", got.Text)

	_, ok = sess.QuestionByID(uuid.New())
	assert.False(t, ok)
}

func TestStudentQuestionsStripCorrectLabel(t *testing.T) {
	sess := &TestSession{
		Questions: []SnapshotQuestion{{
			ID:          uuid.New(),
			SubjectName: "Math",
			Text:        "q",
			Options:     map[string]string{"A": "1", "B": "2"},
			Correct:     "A",
		}},
	}

	stripped := sess.StudentQuestions()
	assert.Len(t, stripped, 1)
	assert.Equal(t, "q", stripped[0].Text)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, stripped[0].Options)
}
