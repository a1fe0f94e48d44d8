package bracket

import (
	"fmt"

	"github.com/AdamBeresnev/padel-club/internal/utils"
)

// Advance moves the winner of from into its destination slot of next. A bye
// destination completes with the same winner, and the returned flag tells the
// caller to keep advancing from next.
//
// Replacing a different pair already sitting in the slot is only allowed while
// next has not started.
func Advance(from, next *Match) (bool, error) {
	if from.WinnerID == nil {
		return false, fmt.Errorf("%w: match %s has no winner", ErrInvalidState, from.ID)
	}
	if from.WinnerNextMatchID == nil || from.WinnerNextSlot == nil || *from.WinnerNextMatchID != next.ID {
		return false, fmt.Errorf("%w: match %s does not feed match %s", ErrInvalidState, from.ID, next.ID)
	}

	slot, err := next.slot(*from.WinnerNextSlot)
	if err != nil {
		return false, err
	}
	winner := *from.WinnerID
	if utils.SameID(*slot, &winner) {
		return false, nil
	}
	if *slot != nil && next.Status != MatchScheduled && !next.IsBye {
		return false, fmt.Errorf("%w: match %s already started with another pair", ErrInvalidState, next.ID)
	}
	*slot = &winner

	if !next.IsBye {
		return false, nil
	}
	next.Status = MatchCompleted
	next.WinnerID = &winner
	next.ResultsConfirmed = true
	return next.WinnerNextMatchID != nil, nil
}
