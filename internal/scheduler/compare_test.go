package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareCandidates(t *testing.T) {
	clean := Candidate{UserID: 1, Name: "Alice Adams", Score: 1}
	loaded := Candidate{UserID: 2, Name: "Ben Baker", Score: 5, HasSameDayShift: true, SameDayCount: 1}
	unavailable := Candidate{UserID: 3, Name: "Carla Carter", Score: 9, HasUnavailability: true}

	t.Run("unavailability sorts last regardless of score", func(t *testing.T) {
		assert.Negative(t, CompareCandidates(clean, unavailable))
		assert.Negative(t, CompareCandidates(loaded, unavailable))
		assert.Positive(t, CompareCandidates(unavailable, clean))
	})

	t.Run("same-day load sorts after clean candidates", func(t *testing.T) {
		assert.Negative(t, CompareCandidates(clean, loaded))
	})

	t.Run("score breaks remaining ties descending", func(t *testing.T) {
		high := Candidate{UserID: 4, Name: "Zoe Young", Score: 7}
		low := Candidate{UserID: 5, Name: "Amy Adams", Score: 2}
		assert.Negative(t, CompareCandidates(high, low))
	})

	t.Run("name breaks final ties ascending", func(t *testing.T) {
		a := Candidate{UserID: 6, Name: "Amy Adams", Score: 3}
		b := Candidate{UserID: 7, Name: "Ben Baker", Score: 3}
		assert.Negative(t, CompareCandidates(a, b))
		assert.Zero(t, CompareCandidates(a, a))
	})
}

func TestSortCandidatesOrderIndependent(t *testing.T) {
	a := Candidate{UserID: 1, Name: "Alice Adams", Score: 2}
	b := Candidate{UserID: 2, Name: "Ben Baker", Score: 4, HasSameDayShift: true}
	c := Candidate{UserID: 3, Name: "Carla Carter", Score: 8, HasUnavailability: true}
	d := Candidate{UserID: 4, Name: "Dan Diaz", Score: 2}

	expected := []Candidate{a, d, b, c}

	first := []Candidate{c, b, a, d}
	second := []Candidate{d, a, b, c}

	SortCandidates(first)
	SortCandidates(second)

	assert.Equal(t, expected, first)
	assert.Equal(t, expected, second)
}

func TestRecommendationMerged(t *testing.T) {
	frequent := Candidate{UserID: 1, Name: "Alice Adams", Score: 3}
	duplicate := Candidate{UserID: 1, Name: "Alice Adams"}
	other := Candidate{UserID: 2, Name: "Ben Baker"}

	recommendation := &Recommendation{
		Frequent:  []Candidate{frequent},
		Available: []Candidate{duplicate, other},
	}

	merged := recommendation.Merged()
	assert.Len(t, merged, 2)
	// The frequent entry wins the dedupe, keeping its score.
	assert.Equal(t, 3, merged[0].Score)
	assert.Equal(t, int64(1), merged[0].UserID)
	assert.Equal(t, int64(2), merged[1].UserID)
}
