package bracket

import (
	"testing"

	"github.com/AdamBeresnev/padel-club/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvance(t *testing.T) {
	final := &Match{ID: uuid.New(), Status: MatchScheduled}
	pairA, pairB := uuid.New(), uuid.New()

	semi1 := &Match{ID: uuid.New(), WinnerID: &pairA, WinnerNextMatchID: &final.ID, WinnerNextSlot: utils.Ptr(1)}
	semi2 := &Match{ID: uuid.New(), WinnerID: &pairB, WinnerNextMatchID: &final.ID, WinnerNextSlot: utils.Ptr(2)}

	cascade, err := Advance(semi1, final)
	require.NoError(t, err)
	assert.False(t, cascade)
	require.NotNil(t, final.PairAID)
	assert.Equal(t, pairA, *final.PairAID)
	assert.Nil(t, final.PairBID)

	_, err = Advance(semi2, final)
	require.NoError(t, err)
	assert.Equal(t, pairB, *final.PairBID)
	assert.True(t, final.IsPlayable())
}

func TestAdvanceReplacesWinnerOnlyBeforeStart(t *testing.T) {
	next := &Match{ID: uuid.New(), Status: MatchScheduled}
	first, second := uuid.New(), uuid.New()
	from := &Match{ID: uuid.New(), WinnerID: &first, WinnerNextMatchID: &next.ID, WinnerNextSlot: utils.Ptr(2)}

	_, err := Advance(from, next)
	require.NoError(t, err)

	from.WinnerID = &second
	_, err = Advance(from, next)
	require.NoError(t, err)
	assert.Equal(t, second, *next.PairBID)

	next.Status = MatchCompleted
	from.WinnerID = &first
	_, err = Advance(from, next)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, second, *next.PairBID)
}

func TestAdvanceThroughBye(t *testing.T) {
	final := &Match{ID: uuid.New(), Status: MatchScheduled}
	bye := &Match{ID: uuid.New(), Status: MatchScheduled, IsBye: true, WinnerNextMatchID: &final.ID, WinnerNextSlot: utils.Ptr(2)}
	pair := uuid.New()
	feeder := &Match{ID: uuid.New(), WinnerID: &pair, WinnerNextMatchID: &bye.ID, WinnerNextSlot: utils.Ptr(1)}

	cascade, err := Advance(feeder, bye)
	require.NoError(t, err)
	assert.True(t, cascade)
	assert.Equal(t, MatchCompleted, bye.Status)
	assert.Equal(t, pair, *bye.WinnerID)

	_, err = Advance(bye, final)
	require.NoError(t, err)
	assert.Equal(t, pair, *final.PairBID)
}

func TestAdvanceRejectsUnlinkedMatches(t *testing.T) {
	pair := uuid.New()
	other := &Match{ID: uuid.New()}

	_, err := Advance(&Match{ID: uuid.New()}, other)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = Advance(&Match{ID: uuid.New(), WinnerID: &pair}, other)
	assert.ErrorIs(t, err, ErrInvalidState)
}
