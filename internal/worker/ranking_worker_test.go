package worker

import (
	"testing"

	"github.com/google/uuid"
	"github.com/imtihan/imtihan-backend/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoreRows(scores ...string) []repository.ScoreRow {
	rows := make([]repository.ScoreRow, len(scores))
	for i, s := range scores {
		rows[i] = repository.ScoreRow{
			ID:    uuid.New(),
			Score: decimal.RequireFromString(s),
		}
	}
	return rows
}

func assertPercentile(t *testing.T, want, got string) {
	t.Helper()
	if !decimal.RequireFromString(want).Equal(decimal.RequireFromString(got)) {
		t.Errorf("percentile: want %s, got %s", want, got)
	}
}

func TestComputeRankingsTiedScores(t *testing.T) {
	// Input is sorted highest first, as the repository returns it.
	rows := scoreRows("9.0", "8.5", "8.5")

	ranks, percentiles := computeRankings(rows)
	require.Len(t, ranks, 3)
	require.Len(t, percentiles, 3)

	assert.Equal(t, []int{1, 2, 2}, ranks)
	// 9.0 beats 2 of 3 results; the tied 8.5s beat nobody.
	assertPercentile(t, "66.67", percentiles[0])
	assertPercentile(t, "0", percentiles[1])
	assertPercentile(t, "0", percentiles[2])
}

func TestComputeRankingsCompetitionGaps(t *testing.T) {
	rows := scoreRows("10", "10", "8", "8", "5")

	ranks, percentiles := computeRankings(rows)

	// Two share first, two share third, last is fifth. Rank 2 and 4 are
	// never assigned.
	assert.Equal(t, []int{1, 1, 3, 3, 5}, ranks)
	assertPercentile(t, "60", percentiles[0])
	assertPercentile(t, "60", percentiles[1])
	assertPercentile(t, "20", percentiles[2])
	assertPercentile(t, "20", percentiles[3])
	assertPercentile(t, "0", percentiles[4])
}

func TestComputeRankingsSingleResult(t *testing.T) {
	rows := scoreRows("7.5")

	ranks, percentiles := computeRankings(rows)

	assert.Equal(t, []int{1}, ranks)
	assertPercentile(t, "0", percentiles[0])
}

func TestComputeRankingsAllTied(t *testing.T) {
	rows := scoreRows("6", "6", "6", "6")

	ranks, percentiles := computeRankings(rows)

	assert.Equal(t, []int{1, 1, 1, 1}, ranks)
	for _, p := range percentiles {
		assertPercentile(t, "0", p)
	}
}
