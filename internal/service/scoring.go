package service

import (
	"github.com/imtihan/imtihan-backend/internal/model"
	"github.com/shopspring/decimal"
)

// ScoreSession grades a session against its frozen snapshot. Unanswered
// questions score zero and count toward total_questions only. Point sums use
// exact decimal accumulation; no float drift regardless of question count.
//
// Pure: it reads the session and produces a result, touching nothing else.
func ScoreSession(sess *model.TestSession) *model.TestResult {
	total := decimal.Zero
	correct := 0
	subjectScores := make(map[string]model.SubjectScore)

	for _, q := range sess.Questions {
		ss := subjectScores[q.SubjectName]
		ss.Total++
		if answer, ok := sess.Answers[q.ID.String()]; ok && answer == q.Correct {
			ss.Score = ss.Score.Add(q.Points)
			ss.Correct++
			total = total.Add(q.Points)
			correct++
		}
		subjectScores[q.SubjectName] = ss
	}

	timeSpent := sess.TimeLimit - sess.TimeLeft
	if timeSpent < 0 {
		timeSpent = 0
	}

	return &model.TestResult{
		TestSessionID:  sess.ID,
		UserID:         sess.UserID,
		DirectionID:    sess.DirectionID,
		TotalScore:     total,
		SubjectScores:  subjectScores,
		CorrectAnswers: correct,
		TotalQuestions: len(sess.Questions),
		TimeSpent:      timeSpent,
		Percentile:     decimal.Zero,
	}
}
