package store

import (
	"context"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	createSubmissionQuery = `
		INSERT INTO result_submissions (id, match_id, submitted_by, submitter_role, sets_a, sets_b,
			score_a, score_b, winner_id, confirmed, status, resolution_note, created_at)
		VALUES (:id, :match_id, :submitted_by, :submitter_role, :sets_a, :sets_b,
			:score_a, :score_b, :winner_id, :confirmed, :status, :resolution_note, :created_at)
	`
	// One statement flips every submission of the match so a re-resolution
	// never leaves an earlier choice confirmed.
	resolveSubmissionsQuery = `
		UPDATE result_submissions SET
		confirmed = (id = ?),
		status = CASE WHEN id = ? THEN 'accepted' ELSE 'rejected' END,
		resolution_note = CASE WHEN id = ? THEN NULL ELSE ? END
		WHERE match_id = ?
	`
)

func (s *MatchStore) CreateSubmission(ctx context.Context, tx *sqlx.Tx, submission *bracket.ResultSubmission) error {
	_, err := tx.NamedExecContext(ctx, createSubmissionQuery, submission)
	return err
}

func (s *MatchStore) GetSubmissionTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.ResultSubmission, error) {
	var submission bracket.ResultSubmission
	if err := tx.GetContext(ctx, &submission, "SELECT * FROM result_submissions WHERE id = ?", id); err != nil {
		return nil, notFound(err, "submission "+id.String())
	}
	return &submission, nil
}

func (s *MatchStore) GetSubmissions(ctx context.Context, matchID uuid.UUID) ([]bracket.ResultSubmission, error) {
	return getSubmissions(ctx, s.db, matchID)
}

func (s *MatchStore) GetSubmissionsTx(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) ([]bracket.ResultSubmission, error) {
	return getSubmissions(ctx, tx, matchID)
}

func getSubmissions(ctx context.Context, q queryer, matchID uuid.UUID) ([]bracket.ResultSubmission, error) {
	var submissions []bracket.ResultSubmission
	err := q.SelectContext(ctx, &submissions, "SELECT * FROM result_submissions WHERE match_id = ? ORDER BY created_at ASC, id ASC", matchID)
	return submissions, err
}

// GetTournamentSubmissions lists every submission for the matches of a
// tournament, grouped by match.
func (s *MatchStore) GetTournamentSubmissions(ctx context.Context, tournamentID uuid.UUID) ([]bracket.ResultSubmission, error) {
	var submissions []bracket.ResultSubmission
	err := s.db.SelectContext(ctx, &submissions, `SELECT rs.* FROM result_submissions rs
		JOIN matches m ON m.id = rs.match_id
		WHERE m.tournament_id = ?
		ORDER BY rs.match_id, rs.created_at ASC, rs.id ASC`, tournamentID)
	return submissions, err
}

// ResolveSubmissionsTx accepts one submission of a match and rejects the
// rest, attaching note to the rejected ones.
func (s *MatchStore) ResolveSubmissionsTx(ctx context.Context, tx *sqlx.Tx, matchID, acceptedID uuid.UUID, note *string) error {
	res, err := tx.ExecContext(ctx, resolveSubmissionsQuery, acceptedID, acceptedID, acceptedID, note, matchID)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, "submissions of match "+matchID.String())
}
