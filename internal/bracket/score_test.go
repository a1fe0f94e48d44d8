package bracket

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScore(t *testing.T) {
	testCases := []struct {
		name     string
		setsA    []int
		setsB    []int
		wantErr  bool
		wonA     int
		wonB     int
		expected Side
	}{
		{name: "straight sets", setsA: []int{6, 6}, setsB: []int{3, 4}, wonA: 2, wonB: 0, expected: SideA},
		{name: "three sets for B", setsA: []int{6, 3, 4}, setsB: []int{4, 6, 6}, wonA: 1, wonB: 2, expected: SideB},
		{name: "split sets", setsA: []int{6, 2}, setsB: []int{2, 6}, wonA: 1, wonB: 1, expected: SideNone},
		{name: "equal games in a set", setsA: []int{5}, setsB: []int{5}, expected: SideNone},
		{name: "unequal lengths", setsA: []int{6, 6}, setsB: []int{3}, wantErr: true},
		{name: "no sets", setsA: []int{}, setsB: []int{}, wantErr: true},
		{name: "negative value", setsA: []int{6, -1}, setsB: []int{3, 6}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			score, err := NewScore(tc.setsA, tc.setsB)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wonA, score.SetsWonA)
			assert.Equal(t, tc.wonB, score.SetsWonB)
			assert.Equal(t, tc.expected, score.Leader())
		})
	}
}

func TestNewScoreCopiesInput(t *testing.T) {
	a := []int{6, 6}
	score, err := NewScore(a, []int{1, 2})
	require.NoError(t, err)

	a[0] = 0
	assert.Equal(t, Sets{6, 6}, score.SetsA)
}

func TestResolveWinner(t *testing.T) {
	pairA, pairB := uuid.New(), uuid.New()
	m := &Match{ID: uuid.New(), PairAID: &pairA, PairBID: &pairB}

	score, err := NewScore([]int{6, 6}, []int{4, 2})
	require.NoError(t, err)

	winner, err := ResolveWinner(m, score, nil)
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, pairA, *winner)

	// Explicit winner overrides the majority
	winner, err = ResolveWinner(m, score, &pairB)
	require.NoError(t, err)
	assert.Equal(t, pairB, *winner)

	outsider := uuid.New()
	_, err = ResolveWinner(m, score, &outsider)
	assert.ErrorIs(t, err, ErrValidation)

	tie, err := NewScore([]int{6, 3}, []int{3, 6})
	require.NoError(t, err)
	winner, err = ResolveWinner(m, tie, nil)
	require.NoError(t, err)
	assert.Nil(t, winner)
}

func TestSetsScanValue(t *testing.T) {
	v, err := Sets{6, 7}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[6,7]", v)

	var s Sets
	require.NoError(t, s.Scan("[6,7]"))
	assert.Equal(t, Sets{6, 7}, s)

	require.NoError(t, s.Scan([]byte("[]")))
	assert.Nil(t, s)

	assert.Error(t, s.Scan(42))
}
