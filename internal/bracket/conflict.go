package bracket

import "github.com/google/uuid"

type ConflictType string

const (
	ConflictNone                ConflictType = ""
	ConflictDifferentResults    ConflictType = "different_results"
	ConflictPendingConfirmation ConflictType = "pending_confirmation"
)

// DetectConflict classifies the submissions of a match. A match is in
// conflict when it has several submissions and none was accepted, or a single
// unconfirmed submission on a match whose results are not confirmed.
func DetectConflict(m *Match, subs []ResultSubmission) ConflictType {
	switch {
	case len(subs) > 1:
		for _, s := range subs {
			if s.Status == SubmissionAccepted {
				return ConflictNone
			}
		}
	case len(subs) == 1:
		if subs[0].Confirmed || m.ResultsConfirmed {
			return ConflictNone
		}
	default:
		return ConflictNone
	}

	// nil winners count as their own claim
	claims := make(map[uuid.UUID]struct{})
	for _, s := range subs {
		if s.WinnerID == nil {
			claims[uuid.Nil] = struct{}{}
			continue
		}
		claims[*s.WinnerID] = struct{}{}
	}
	if len(claims) > 1 {
		return ConflictDifferentResults
	}
	return ConflictPendingConfirmation
}
