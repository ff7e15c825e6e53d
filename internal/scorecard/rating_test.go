package scorecard_test

import (
	"encoding/json"
	"testing"

	"github.com/godilite/qa-scorecard/internal/scorecard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRating(t *testing.T) {
	i, ok := scorecard.Graded(2).Index()
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	_, ok = scorecard.NotApplicable().Index()
	assert.False(t, ok)
	assert.True(t, scorecard.Rating{}.IsNotApplicable())
	assert.NotEqual(t, scorecard.Graded(0), scorecard.NotApplicable())
	assert.Equal(t, "N/A", scorecard.NotApplicable().String())
}

func TestRatingSet_JSON(t *testing.T) {
	t.Run("decodes boundary input", func(t *testing.T) {
		var rs scorecard.RatingSet
		err := json.Unmarshal([]byte(`{"communication": 2, "empathy": "N/A", "knowledge": 1.0, "escalation": null}`), &rs)
		require.NoError(t, err)

		assert.Equal(t, scorecard.RatingSet{
			"communication": scorecard.Graded(2),
			"empathy":       scorecard.NotApplicable(),
			"knowledge":     scorecard.Graded(1),
			"escalation":    scorecard.NotApplicable(),
		}, rs)
	})

	t.Run("encodes not applicable as a string", func(t *testing.T) {
		data, err := json.Marshal(scorecard.RatingSet{"a": scorecard.NotApplicable()})
		require.NoError(t, err)
		assert.JSONEq(t, `{"a": "N/A"}`, string(data))
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		for _, in := range []string{`{"a": 1.5}`, `{"a": -1}`, `{"a": "skip"}`, `{"a": true}`} {
			var rs scorecard.RatingSet
			assert.Error(t, json.Unmarshal([]byte(in), &rs), in)
		}
	})
}

func TestRatingSet_Indexes(t *testing.T) {
	rubric := tier2Rubric()

	t.Run("not applicable is the slot past the last option", func(t *testing.T) {
		rs := scorecard.RatingSet{
			"communication": scorecard.Graded(1),
			"escalation":    scorecard.NotApplicable(),
			"unknown":       scorecard.Graded(0),
		}
		assert.Equal(t, map[string]int{"communication": 1, "escalation": 3}, rs.Indexes(rubric))
	})

	t.Run("decodes persisted values", func(t *testing.T) {
		rs := scorecard.RatingSetFromIndexes(rubric, map[string]int{
			"communication": 4,
			"knowledge":     0,
			"legacy":        4,
		})
		assert.Equal(t, scorecard.RatingSet{
			"communication": scorecard.NotApplicable(),
			"knowledge":     scorecard.Graded(0),
			"legacy":        scorecard.Graded(4),
		}, rs)

		s, ok := scorecard.Calculate(rubric, rs)
		require.True(t, ok)
		assert.Equal(t, 100, s)
	})
}
