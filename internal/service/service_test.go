package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/AdamBeresnev/padel-club/internal/metrics"
	"github.com/AdamBeresnev/padel-club/internal/store"
	users "github.com/AdamBeresnev/padel-club/internal/user"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	// every connection to :memory: is a separate database
	database.SetMaxOpenConns(1)

	driver, err := sqlite3.WithInstance(database.DB, &sqlite3.Config{})
	require.NoError(t, err, "Failed to create migrate driver instance")

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"sqlite3",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to apply migrations")
	}

	return database
}

type fixture struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	matches     *store.MatchStore
	clock       *clockwork.FakeClock
	metrics     *metrics.Mock

	tournamentService *TournamentService
	bracketService    *BracketService
	matchService      *MatchService
	conflictService   *ConflictService

	organizer *users.User
	player    *users.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:          db,
		tournaments: store.NewTournamentStore(db),
		matches:     store.NewMatchStore(db),
		clock:       clockwork.NewFakeClock(),
		metrics:     metrics.NewMock(),
		organizer:   &users.User{ID: uuid.New(), Username: "organizer", Role: bracket.RoleOrganizer},
		player:      &users.User{ID: uuid.New(), Username: "player", Role: bracket.RolePlayer},
	}
	opts := []Option{WithClock(f.clock), WithMetrics(f.metrics)}
	f.tournamentService = NewTournamentService(db, f.tournaments, f.matches, opts...)
	f.bracketService = NewBracketService(db, f.tournaments, f.matches, opts...)
	f.matchService = NewMatchService(db, f.tournaments, f.matches, opts...)
	f.conflictService = NewConflictService(db, f.tournaments, f.matches, opts...)
	return f
}

// closedTournament creates a tournament with pairs confirmed pairs in every
// category (or in the tournament when categories is empty) and closes
// registration.
func (f *fixture) closedTournament(t *testing.T, format bracket.TournamentFormat, pairs int, categories ...string) (*bracket.Tournament, []bracket.Category) {
	t.Helper()
	ctx := context.Background()

	tournament, err := f.tournamentService.CreateTournament(ctx, f.organizer, CreateTournamentInput{
		Name:       "Copa " + string(format),
		Format:     format,
		Capacity:   64,
		Categories: categories,
	})
	require.NoError(t, err)

	cats, err := f.tournaments.GetCategories(ctx, tournament.ID)
	require.NoError(t, err)

	_, err = f.tournamentService.TransitionStatus(ctx, f.organizer, tournament.ID, bracket.TournamentRegistrationOpen)
	require.NoError(t, err)

	if len(cats) == 0 {
		f.registerPairs(t, tournament.ID, nil, pairs)
	}
	for _, c := range cats {
		f.registerPairs(t, tournament.ID, &c.ID, pairs)
	}

	tournament, err = f.tournamentService.TransitionStatus(ctx, f.organizer, tournament.ID, bracket.TournamentRegistrationClosed)
	require.NoError(t, err)
	return tournament, cats
}

func (f *fixture) registerPairs(t *testing.T, tournamentID uuid.UUID, categoryID *uuid.UUID, n int) []*bracket.Registration {
	t.Helper()
	ctx := context.Background()
	var regs []*bracket.Registration
	for i := 0; i < n; i++ {
		reg, err := f.tournamentService.Register(ctx, tournamentID, RegisterInput{
			CategoryID:  categoryID,
			PlayerAName: fmt.Sprintf("Jugador %dA", i+1),
			PlayerBName: fmt.Sprintf("Jugador %dB", i+1),
			SkillRank:   i + 1,
		})
		require.NoError(t, err)
		reg, err = f.tournamentService.ConfirmRegistration(ctx, f.organizer, reg.ID, bracket.PaymentPaid)
		require.NoError(t, err)
		regs = append(regs, reg)
	}
	return regs
}

func (f *fixture) generate(t *testing.T, tournamentID uuid.UUID) *GenerateResult {
	t.Helper()
	result, err := f.bracketService.GenerateBrackets(context.Background(), f.organizer, GenerateRequest{TournamentID: tournamentID})
	require.NoError(t, err)
	return result
}

// rounds returns the persisted matches grouped by round number.
func (f *fixture) rounds(t *testing.T, tournamentID uuid.UUID) map[int][]bracket.Match {
	t.Helper()
	matches, err := f.matches.GetMatches(context.Background(), tournamentID)
	require.NoError(t, err)
	byRound := make(map[int][]bracket.Match)
	for _, m := range matches {
		byRound[m.RoundNumber] = append(byRound[m.RoundNumber], m)
	}
	return byRound
}

func (f *fixture) match(t *testing.T, id uuid.UUID) *bracket.Match {
	t.Helper()
	m, err := f.matches.GetMatch(context.Background(), id)
	require.NoError(t, err)
	return m
}

func (f *fixture) status(t *testing.T, tournamentID uuid.UUID) bracket.TournamentStatus {
	t.Helper()
	tournament, err := f.tournaments.GetTournament(context.Background(), tournamentID)
	require.NoError(t, err)
	return tournament.Status
}
