package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/AdamBeresnev/padel-club/internal/live"
	"github.com/AdamBeresnev/padel-club/internal/store"
	users "github.com/AdamBeresnev/padel-club/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ConflictService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	matches     *store.MatchStore
	opts        options
}

func NewConflictService(db *sqlx.DB, tournaments *store.TournamentStore, matches *store.MatchStore, opts ...Option) *ConflictService {
	return &ConflictService{db: db, tournaments: tournaments, matches: matches, opts: newOptions(opts)}
}

type Conflict struct {
	Match       bracket.Match              `json:"match"`
	Type        bracket.ConflictType       `json:"type"`
	Submissions []bracket.ResultSubmission `json:"submissions"`
}

// ListConflicts returns the matches of a tournament whose results are in
// dispute, in bracket order.
func (s *ConflictService) ListConflicts(ctx context.Context, tournamentID uuid.UUID) ([]Conflict, error) {
	if _, err := s.tournaments.GetTournament(ctx, tournamentID); err != nil {
		return nil, err
	}
	matches, err := s.matches.GetMatches(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	subs, err := s.matches.GetTournamentSubmissions(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	byMatch := make(map[uuid.UUID][]bracket.ResultSubmission)
	for _, sub := range subs {
		byMatch[sub.MatchID] = append(byMatch[sub.MatchID], sub)
	}

	conflicts := []Conflict{}
	for _, m := range matches {
		matchSubs := byMatch[m.ID]
		if kind := bracket.DetectConflict(&m, matchSubs); kind != bracket.ConflictNone {
			conflicts = append(conflicts, Conflict{Match: m, Type: kind, Submissions: matchSubs})
		}
	}
	return conflicts, nil
}

type ResolveConflictRequest struct {
	MatchID              uuid.UUID
	AcceptedSubmissionID uuid.UUID
	Note                 *string
}

type ResolveConflictOutcome struct {
	Match               *bracket.Match             `json:"match"`
	Submissions         []bracket.ResultSubmission `json:"submissions"`
	TournamentCompleted bool                       `json:"tournament_completed"`
	Changed             bool                       `json:"changed"`
}

// ResolveConflict makes one submission the result of its match and rejects
// the others. Choosing another submission later flips the marks, and a
// changed winner is promoted again while the next match has not started.
func (s *ConflictService) ResolveConflict(ctx context.Context, actor *users.User, req ResolveConflictRequest) (*ResolveConflictOutcome, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.matches.GetMatchTx(ctx, tx, req.MatchID)
	if err != nil {
		return nil, err
	}
	tournament, err := s.tournaments.GetTournamentTx(ctx, tx, match.TournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(actor, tournament); err != nil {
		return nil, err
	}

	sub, err := s.matches.GetSubmissionTx(ctx, tx, req.AcceptedSubmissionID)
	if err != nil {
		return nil, err
	}
	if sub.MatchID != match.ID {
		return nil, fmt.Errorf("submission %s of match %s: %w", sub.ID, match.ID, bracket.ErrNotFound)
	}
	if sub.WinnerID == nil {
		return nil, &bracket.ValidationError{Field: "accepted_submission_id", Reason: "submission does not name a winner"}
	}
	if !match.HasPair(*sub.WinnerID) {
		return nil, fmt.Errorf("%w: winner of submission %s no longer plays match %s", bracket.ErrInvalidState, sub.ID, match.ID)
	}

	match.ApplyScore(sub.Score(), sub.WinnerID, s.opts.clock.Now().UTC())
	match.ResultsConfirmed = true
	match.ConflictResolved = true

	if err := s.matches.UpdateMatchTx(ctx, tx, match); err != nil {
		return nil, fmt.Errorf("failed to update match: %w", err)
	}
	if err := s.matches.ResolveSubmissionsTx(ctx, tx, match.ID, sub.ID, req.Note); err != nil {
		return nil, fmt.Errorf("failed to mark submissions: %w", err)
	}
	if err := promoteWinner(ctx, tx, s.matches, match); err != nil {
		return nil, err
	}
	finished, err := completeIfFinished(ctx, tx, s.tournaments, s.matches, tournament)
	if err != nil {
		return nil, err
	}

	subs, err := s.matches.GetSubmissionsTx(ctx, tx, match.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.opts.metrics.IncConflictsResolved()
	slog.Info("conflict resolved", "match_id", match.ID, "submission_id", sub.ID, "winner_id", *match.WinnerID)
	outcome := &ResolveConflictOutcome{Match: match, Submissions: subs, TournamentCompleted: finished, Changed: true}
	s.opts.live.Publish(live.Event{Type: live.ConflictResolved, TournamentID: match.TournamentID, Payload: outcome})
	return outcome, nil
}
