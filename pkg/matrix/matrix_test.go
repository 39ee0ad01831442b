package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	cases := []struct {
		urgency, importance int
		want                Quadrant
	}{
		{5, 5, Q1},
		{4, 4, Q1},
		{1, 5, Q2},
		{3, 4, Q2},
		{5, 1, Q3},
		{4, 3, Q3},
		{1, 1, Q4},
		{3, 3, Q4},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, For(tc.urgency, tc.importance),
			"For(%d, %d)", tc.urgency, tc.importance)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(-2))
	assert.Equal(t, 1, Clamp(0))
	assert.Equal(t, 3, Clamp(3))
	assert.Equal(t, 5, Clamp(5))
	assert.Equal(t, 5, Clamp(17))
}

func TestSortRankOrder(t *testing.T) {
	assert.Less(t, Q1.SortRank(), Q2.SortRank())
	assert.Less(t, Q2.SortRank(), Q3.SortRank())
	assert.Less(t, Q3.SortRank(), Q4.SortRank())

	// Unknown quadrants sort after everything recognized.
	assert.Greater(t, Quadrant("Q9").SortRank(), Q4.SortRank())
	assert.Greater(t, Quadrant("").SortRank(), Q4.SortRank())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Urgent & Important", Q1.Label())
	assert.Equal(t, "", Quadrant("nope").Label())
	assert.False(t, Quadrant("nope").Valid())
	assert.True(t, Q3.Valid())
}
