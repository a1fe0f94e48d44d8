package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/AdamBeresnev/padel-club/internal/live"
	"github.com/AdamBeresnev/padel-club/internal/store"
	users "github.com/AdamBeresnev/padel-club/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	store       *store.MatchStore
	opts        options
}

func NewMatchService(db *sqlx.DB, tournaments *store.TournamentStore, store *store.MatchStore, opts ...Option) *MatchService {
	return &MatchService{db: db, tournaments: tournaments, store: store, opts: newOptions(opts)}
}

type SubmitResultRequest struct {
	MatchID  uuid.UUID
	ScoresA  []int
	ScoresB  []int
	WinnerID *uuid.UUID
}

type SubmitResultOutcome struct {
	Match      *bracket.Match            `json:"match"`
	Submission *bracket.ResultSubmission `json:"submission,omitempty"`
	// AlreadyCompleted is set when the match was final before this call.
	AlreadyCompleted    bool `json:"already_completed"`
	TournamentCompleted bool `json:"tournament_completed"`
	Changed             bool `json:"changed"`
}

type MatchData struct {
	Match       *bracket.Match             `json:"match"`
	Submissions []bracket.ResultSubmission `json:"submissions"`
	Conflict    bracket.ConflictType       `json:"conflict,omitempty"`
}

func (s *MatchService) GetMatchData(ctx context.Context, id uuid.UUID) (*MatchData, error) {
	match, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	subs, err := s.store.GetSubmissions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get submissions: %w", err)
	}
	return &MatchData{Match: match, Submissions: subs, Conflict: bracket.DetectConflict(match, subs)}, nil
}

// submitterRole decides how much weight the actor's result carries. Managers
// of the tournament write final results, anyone else reports as a player and
// must be one of the registered players when the pairs name them.
func (s *MatchService) submitterRole(ctx context.Context, tx *sqlx.Tx, actor *users.User, t *bracket.Tournament, m *bracket.Match) (bracket.Role, error) {
	if actor == nil {
		return "", bracket.ErrForbidden
	}
	if actor.CanManage(t.OwnerID) {
		return actor.Role, nil
	}

	linked := false
	for _, pairID := range []*uuid.UUID{m.PairAID, m.PairBID} {
		if pairID == nil {
			continue
		}
		reg, err := s.tournaments.GetRegistrationTx(ctx, tx, *pairID)
		if err != nil {
			return "", err
		}
		for _, p := range []*uuid.UUID{reg.PlayerAID, reg.PlayerBID} {
			if p == nil {
				continue
			}
			linked = true
			if *p == actor.ID {
				return bracket.RolePlayer, nil
			}
		}
	}
	if linked {
		return "", fmt.Errorf("%w: only players of the match can report its result", bracket.ErrForbidden)
	}
	return bracket.RolePlayer, nil
}

// SubmitResult records one reported outcome. Organizer results are final and
// written straight to the match; player results are kept as submissions and
// complete the match unconfirmed.
func (s *MatchService) SubmitResult(ctx context.Context, actor *users.User, req SubmitResultRequest) (*SubmitResultOutcome, error) {
	score, err := bracket.NewScore(req.ScoresA, req.ScoresB)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, req.MatchID)
	if err != nil {
		return nil, err
	}
	tournament, err := s.tournaments.GetTournamentTx(ctx, tx, match.TournamentID)
	if err != nil {
		return nil, err
	}
	role, err := s.submitterRole(ctx, tx, actor, tournament, match)
	if err != nil {
		return nil, err
	}
	if !match.IsPlayable() {
		return nil, fmt.Errorf("%w: match %s is not playable yet", bracket.ErrInvalidState, match.ID)
	}
	if tournament.Status != bracket.TournamentInProgress && match.Status != bracket.MatchCompleted {
		return nil, fmt.Errorf("%w: tournament is %s, results are taken while it is %s",
			bracket.ErrInvalidState, tournament.Status, bracket.TournamentInProgress)
	}
	winner, err := bracket.ResolveWinner(match, score, req.WinnerID)
	if err != nil {
		return nil, err
	}

	now := s.opts.clock.Now().UTC()
	outcome := &SubmitResultOutcome{Match: match}

	if match.Status == bracket.MatchCompleted {
		outcome.AlreadyCompleted = true
		if role.IsAuthority() || match.ResultsConfirmed {
			s.opts.metrics.IncResultsSubmitted(string(role), "already_completed")
			return outcome, nil
		}
		// a late report on an unconfirmed match only adds to the evidence
		sub := newSubmission(match, actor, role, score, winner, now)
		if err := s.store.CreateSubmission(ctx, tx, sub); err != nil {
			return nil, fmt.Errorf("failed to create submission: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		outcome.Submission = sub
		outcome.Changed = true
		s.opts.metrics.IncResultsSubmitted(string(role), "recorded")
		s.opts.live.Publish(live.Event{Type: live.MatchUpdated, TournamentID: match.TournamentID, Payload: match})
		return outcome, nil
	}

	previous := match.Status
	match.ApplyScore(score, winner, now)
	match.ResultsConfirmed = role.IsAuthority() && winner != nil

	if !role.IsAuthority() {
		sub := newSubmission(match, actor, role, score, winner, now)
		if err := s.store.CreateSubmission(ctx, tx, sub); err != nil {
			return nil, fmt.Errorf("failed to create submission: %w", err)
		}
		outcome.Submission = sub
	}

	if err := s.store.UpdateMatchTx(ctx, tx, match, previous); err != nil {
		return nil, fmt.Errorf("failed to update match: %w", err)
	}

	if match.Status == bracket.MatchCompleted {
		if err := promoteWinner(ctx, tx, s.store, match); err != nil {
			return nil, err
		}
		if outcome.TournamentCompleted, err = completeIfFinished(ctx, tx, s.tournaments, s.store, tournament); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	outcome.Changed = true

	result := "in_progress"
	if match.Status == bracket.MatchCompleted {
		result = "completed"
	}
	s.opts.metrics.IncResultsSubmitted(string(role), result)
	slog.Info("match result submitted", "match_id", match.ID, "role", role, "status", match.Status, "confirmed", match.ResultsConfirmed)
	s.opts.live.Publish(live.Event{Type: live.MatchUpdated, TournamentID: match.TournamentID, Payload: match})
	return outcome, nil
}

func newSubmission(m *bracket.Match, actor *users.User, role bracket.Role, score bracket.Score, winner *uuid.UUID, now time.Time) *bracket.ResultSubmission {
	return &bracket.ResultSubmission{
		ID:            uuid.New(),
		MatchID:       m.ID,
		SubmittedBy:   &actor.ID,
		SubmitterRole: role,
		SetsA:         score.SetsA,
		SetsB:         score.SetsB,
		ScoreA:        score.SetsWonA,
		ScoreB:        score.SetsWonB,
		WinnerID:      winner,
		Status:        bracket.SubmissionPending,
		CreatedAt:     now,
	}
}

// promoteWinner moves the winner of a completed match into its destination
// and keeps going through byes. Every elimination completion goes through
// here.
func promoteWinner(ctx context.Context, tx *sqlx.Tx, matches *store.MatchStore, from *bracket.Match) error {
	for cur := from; cur.WinnerNextMatchID != nil; {
		next, err := matches.GetMatchTx(ctx, tx, *cur.WinnerNextMatchID)
		if err != nil {
			return fmt.Errorf("failed to get next match: %w", err)
		}
		previous := next.Status

		cascade, err := bracket.Advance(cur, next)
		if err != nil {
			return err
		}
		if err := matches.UpdateMatchTx(ctx, tx, next, previous); err != nil {
			return fmt.Errorf("failed to update next match: %w", err)
		}
		if !cascade {
			return nil
		}
		cur = next
	}
	return nil
}

// completeIfFinished closes a running tournament once no playable match is
// left open.
func completeIfFinished(ctx context.Context, tx *sqlx.Tx, tournaments *store.TournamentStore, matches *store.MatchStore, t *bracket.Tournament) (bool, error) {
	if t.Status != bracket.TournamentInProgress {
		return false, nil
	}
	open, err := matches.CountOpenMatchesTx(ctx, tx, t.ID)
	if err != nil {
		return false, err
	}
	if open > 0 {
		return false, nil
	}
	if err := tournaments.UpdateTournamentStatusTx(ctx, tx, t.ID, bracket.TournamentCompleted); err != nil {
		return false, fmt.Errorf("failed to update tournament status: %w", err)
	}
	t.Status = bracket.TournamentCompleted
	slog.Info("tournament completed", "tournament_id", t.ID)
	return true, nil
}
