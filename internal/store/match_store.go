package store

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	createRoundsQuery = `INSERT INTO rounds (id, tournament_id, category_id, stage, number, name)
		VALUES (:id, :tournament_id, :category_id, :stage, :number, :name)`

	createMatchesQuery = `INSERT INTO matches (id, tournament_id, category_id, round_id, stage, round_number, round_label,
			sequence, pair_a_id, pair_b_id, court, scheduled_at, status, sets_a, sets_b, score_a, score_b, winner_id,
			results_confirmed, conflict_resolved, ended_at, winner_next_match_id, winner_next_slot, is_bye)
		VALUES (:id, :tournament_id, :category_id, :round_id, :stage, :round_number, :round_label,
			:sequence, :pair_a_id, :pair_b_id, :court, :scheduled_at, :status, :sets_a, :sets_b, :score_a, :score_b, :winner_id,
			:results_confirmed, :conflict_resolved, :ended_at, :winner_next_match_id, :winner_next_slot, :is_bye)`

	updateMatchQuery = `
		UPDATE matches SET
		pair_a_id = ?,
		pair_b_id = ?,
		status = ?,
		sets_a = ?,
		sets_b = ?,
		score_a = ?,
		score_b = ?,
		winner_id = ?,
		results_confirmed = ?,
		conflict_resolved = ?,
		ended_at = ?
		WHERE id = ?
	`
)

// MatchStore persists rounds, matches and result submissions.
type MatchStore struct {
	db *sqlx.DB
}

func NewMatchStore(db *sqlx.DB) *MatchStore {
	return &MatchStore{db: db}
}

func (s *MatchStore) CreateRounds(ctx context.Context, tx *sqlx.Tx, rounds []bracket.Round) error {
	if len(rounds) == 0 {
		return nil
	}
	return bulkInsert(ctx, tx, createRoundsQuery, rounds)
}

func (s *MatchStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []bracket.Match) error {
	if len(matches) == 0 {
		return nil
	}
	return bulkInsert(ctx, tx, createMatchesQuery, matches)
}

func (s *MatchStore) GetRounds(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Round, error) {
	var rounds []bracket.Round
	err := s.db.SelectContext(ctx, &rounds, "SELECT * FROM rounds WHERE tournament_id = ? ORDER BY category_id, stage ASC, number ASC", tournamentID)
	return rounds, err
}

func (s *MatchStore) GetMatch(ctx context.Context, id uuid.UUID) (*bracket.Match, error) {
	return getMatch(ctx, s.db, id)
}

func (s *MatchStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Match, error) {
	return getMatch(ctx, tx, id)
}

func getMatch(ctx context.Context, q queryer, id uuid.UUID) (*bracket.Match, error) {
	var match bracket.Match
	if err := q.GetContext(ctx, &match, "SELECT * FROM matches WHERE id = ?", id); err != nil {
		return nil, notFound(err, "match "+id.String())
	}
	return &match, nil
}

func (s *MatchStore) GetMatches(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Match, error) {
	var matches []bracket.Match
	err := s.db.SelectContext(ctx, &matches, `SELECT * FROM matches WHERE tournament_id = ?
		ORDER BY category_id, stage ASC, round_number ASC, sequence ASC`, tournamentID)
	return matches, err
}

func (s *MatchStore) CountMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int, error) {
	var n int
	err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM matches WHERE tournament_id = ?", tournamentID)
	return n, err
}

func (s *MatchStore) CountCategoryMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, categoryID *uuid.UUID) (int, error) {
	var n int
	err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM matches WHERE tournament_id = ? AND category_id IS ?", tournamentID, categoryID)
	return n, err
}

// CountCompletedMatchesTx counts played matches. Byes complete on their own
// and are left out.
func (s *MatchStore) CountCompletedMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int, error) {
	var n int
	err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM matches WHERE tournament_id = ? AND status = ? AND is_bye = 0",
		tournamentID, bracket.MatchCompleted)
	return n, err
}

// CountOpenMatchesTx counts matches that are not byes and still wait for a
// result.
func (s *MatchStore) CountOpenMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int, error) {
	var n int
	err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM matches WHERE tournament_id = ? AND status <> ? AND is_bye = 0",
		tournamentID, bracket.MatchCompleted)
	return n, err
}

// UpdateMatchTx writes the mutable fields of a match. When expected is not
// empty the row is only written while its status is one of them, and a
// mismatch fails with ErrInvalidState.
func (s *MatchStore) UpdateMatchTx(ctx context.Context, tx *sqlx.Tx, match *bracket.Match, expected ...bracket.MatchStatus) error {
	query := updateMatchQuery
	args := []any{
		match.PairAID, match.PairBID, match.Status, match.SetsA, match.SetsB, match.ScoreA, match.ScoreB,
		match.WinnerID, match.ResultsConfirmed, match.ConflictResolved, match.EndedAt, match.ID,
	}
	if len(expected) > 0 {
		guard, guardArgs, err := sqlx.In(" AND status IN (?)", expected)
		if err != nil {
			return err
		}
		query, args = tx.Rebind(query+guard), append(args, guardArgs...)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if len(expected) > 0 {
			return fmt.Errorf("%w: match %s changed status concurrently", bracket.ErrInvalidState, match.ID)
		}
		return fmt.Errorf("match %s: %w", match.ID, bracket.ErrNotFound)
	}
	return nil
}

// DeleteBracketTx removes every submission, match and round of a tournament.
func (s *MatchStore) DeleteBracketTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM result_submissions
		WHERE match_id IN (SELECT id FROM matches WHERE tournament_id = ?)`, tournamentID); err != nil {
		return 0, fmt.Errorf("failed to delete submissions: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM matches WHERE tournament_id = ?", tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM rounds WHERE tournament_id = ?", tournamentID); err != nil {
		return 0, fmt.Errorf("failed to delete rounds: %w", err)
	}
	return int(deleted), nil
}
