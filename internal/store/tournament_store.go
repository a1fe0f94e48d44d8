package store

import (
	"context"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, owner_id, name, format, status, capacity)
        VALUES (:id, :owner_id, :name, :format, :status, :capacity)`, tournament)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return getTournament(ctx, s.db, id)
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Tournament, error) {
	return getTournament(ctx, tx, id)
}

func getTournament(ctx context.Context, q queryer, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := q.GetContext(ctx, &tournament, "SELECT * FROM tournaments WHERE id = ?", id); err != nil {
		return nil, notFound(err, "tournament "+id.String())
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentsByOwner(ctx context.Context, ownerID uuid.UUID) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments WHERE owner_id = ? ORDER BY created_at DESC", ownerID)
	return tournaments, err
}

func (s *TournamentStore) UpdateTournamentStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status bracket.TournamentStatus) error {
	res, err := tx.ExecContext(ctx, "UPDATE tournaments SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(res, "tournament "+id.String())
}

func (s *TournamentStore) CreateCategories(ctx context.Context, tx *sqlx.Tx, categories []bracket.Category) error {
	if len(categories) == 0 {
		return nil
	}
	return bulkInsert(ctx, tx, `INSERT INTO categories (id, tournament_id, name) VALUES (:id, :tournament_id, :name)`, categories)
}

func (s *TournamentStore) GetCategories(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Category, error) {
	return getCategories(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetCategoriesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.Category, error) {
	return getCategories(ctx, tx, tournamentID)
}

func getCategories(ctx context.Context, q queryer, tournamentID uuid.UUID) ([]bracket.Category, error) {
	var categories []bracket.Category
	err := q.SelectContext(ctx, &categories, "SELECT * FROM categories WHERE tournament_id = ? ORDER BY name ASC", tournamentID)
	return categories, err
}
