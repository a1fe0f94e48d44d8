package store

import (
	"context"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	createRegistrationQuery = `
		INSERT INTO registrations (id, tournament_id, category_id, player_a_name, player_a_id,
			player_b_name, player_b_id, skill_rank, sequence, confirmed, payment_status, created_at)
		VALUES (:id, :tournament_id, :category_id, :player_a_name, :player_a_id,
			:player_b_name, :player_b_id, :skill_rank, :sequence, :confirmed, :payment_status, :created_at)
	`
	confirmRegistrationQuery = `
		UPDATE registrations SET
		confirmed = 1,
		payment_status = ?
		WHERE id = ?
	`
)

// NextRegistrationSequenceTx returns the registration order number for the
// next pair of the tournament.
func (s *TournamentStore) NextRegistrationSequenceTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int, error) {
	var next int
	err := tx.GetContext(ctx, &next, "SELECT COALESCE(MAX(sequence), 0) + 1 FROM registrations WHERE tournament_id = ?", tournamentID)
	return next, err
}

func (s *TournamentStore) CountRegistrationsTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int, error) {
	var n int
	err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM registrations WHERE tournament_id = ?", tournamentID)
	return n, err
}

// CountUncategorizedRegistrationsTx counts the pairs registered without a
// category.
func (s *TournamentStore) CountUncategorizedRegistrationsTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (int, error) {
	var n int
	err := tx.GetContext(ctx, &n, "SELECT COUNT(*) FROM registrations WHERE tournament_id = ? AND category_id IS NULL", tournamentID)
	return n, err
}

// CountConfirmedRegistrationsTx counts the confirmed pairs of one category.
// A nil category counts pairs without a category.
func (s *TournamentStore) CountConfirmedRegistrationsTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, categoryID *uuid.UUID) (int, error) {
	var n int
	err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM registrations
		WHERE tournament_id = ? AND category_id IS ? AND confirmed = 1`, tournamentID, categoryID)
	return n, err
}

func (s *TournamentStore) CreateRegistration(ctx context.Context, tx *sqlx.Tx, registration *bracket.Registration) error {
	_, err := tx.NamedExecContext(ctx, createRegistrationQuery, registration)
	return err
}

func (s *TournamentStore) GetRegistrationTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Registration, error) {
	var registration bracket.Registration
	if err := tx.GetContext(ctx, &registration, "SELECT * FROM registrations WHERE id = ?", id); err != nil {
		return nil, notFound(err, "registration "+id.String())
	}
	return &registration, nil
}

func (s *TournamentStore) ConfirmRegistrationTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, payment bracket.PaymentStatus) error {
	res, err := tx.ExecContext(ctx, confirmRegistrationQuery, payment, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, "registration "+id.String())
}

func (s *TournamentStore) GetRegistrations(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Registration, error) {
	var registrations []bracket.Registration
	err := s.db.SelectContext(ctx, &registrations, "SELECT * FROM registrations WHERE tournament_id = ? ORDER BY sequence ASC", tournamentID)
	return registrations, err
}

// GetConfirmedRegistrationsTx lists the confirmed pairs of one category, in
// registration order. A nil category selects pairs without a category.
func (s *TournamentStore) GetConfirmedRegistrationsTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID, categoryID *uuid.UUID) ([]bracket.Registration, error) {
	var registrations []bracket.Registration
	err := tx.SelectContext(ctx, &registrations, `SELECT * FROM registrations
		WHERE tournament_id = ? AND category_id IS ? AND confirmed = 1
		ORDER BY sequence ASC`, tournamentID, categoryID)
	return registrations, err
}
