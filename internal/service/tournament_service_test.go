package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	users "github.com/AdamBeresnev/padel-club/internal/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTournament(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tournament, err := f.tournamentService.CreateTournament(ctx, f.organizer, CreateTournamentInput{
		Name:       "  Torneo de Otoño ",
		Format:     bracket.GroupStage,
		Capacity:   32,
		Categories: []string{"Masculino 3ra", "Femenino 2da"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Torneo de Otoño", tournament.Name)
	assert.Equal(t, f.organizer.ID, tournament.OwnerID)
	assert.Equal(t, bracket.TournamentDraft, tournament.Status)
	assert.False(t, tournament.CreatedAt.IsZero())

	cats, err := f.tournaments.GetCategories(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Femenino 2da", cats[0].Name)

	owned, err := f.tournamentService.ListTournaments(ctx, f.organizer.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func TestCreateTournamentRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name  string
		actor *users.User
		in    CreateTournamentInput
		want  error
	}{
		{"player", f.player, CreateTournamentInput{Name: "x", Format: bracket.RoundRobin, Capacity: 4}, bracket.ErrForbidden},
		{"anonymous", nil, CreateTournamentInput{Name: "x", Format: bracket.RoundRobin, Capacity: 4}, bracket.ErrForbidden},
		{"blank name", f.organizer, CreateTournamentInput{Name: " ", Format: bracket.RoundRobin, Capacity: 4}, bracket.ErrValidation},
		{"unknown format", f.organizer, CreateTournamentInput{Name: "x", Format: "KING_OF_THE_COURT", Capacity: 4}, bracket.ErrValidation},
		{"capacity", f.organizer, CreateTournamentInput{Name: "x", Format: bracket.RoundRobin, Capacity: 1}, bracket.ErrValidation},
		{"duplicate category", f.organizer, CreateTournamentInput{
			Name: "x", Format: bracket.RoundRobin, Capacity: 4, Categories: []string{"Mixto", "Mixto"},
		}, bracket.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tournamentService.CreateTournament(ctx, tt.actor, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTransitionStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tournament, err := f.tournamentService.CreateTournament(ctx, f.organizer, CreateTournamentInput{
		Name: "Nocturno", Format: bracket.SingleElimination, Capacity: 8,
	})
	require.NoError(t, err)

	_, err = f.tournamentService.TransitionStatus(ctx, f.organizer, tournament.ID, bracket.TournamentInProgress)
	assert.ErrorIs(t, err, bracket.ErrInvalidState)

	_, err = f.tournamentService.TransitionStatus(ctx, f.player, tournament.ID, bracket.TournamentRegistrationOpen)
	assert.ErrorIs(t, err, bracket.ErrForbidden)

	admin := &users.User{ID: uuid.New(), Role: bracket.RoleAdmin}
	got, err := f.tournamentService.TransitionStatus(ctx, admin, tournament.ID, bracket.TournamentRegistrationOpen)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentRegistrationOpen, got.Status)
	assert.Equal(t, bracket.TournamentRegistrationOpen, f.status(t, tournament.ID))

	// in progress is only reached through the draw
	_, err = f.tournamentService.TransitionStatus(ctx, f.organizer, tournament.ID, bracket.TournamentRegistrationClosed)
	require.NoError(t, err)
	_, err = f.tournamentService.TransitionStatus(ctx, f.organizer, tournament.ID, bracket.TournamentInProgress)
	assert.ErrorIs(t, err, bracket.ErrInvalidState)

	_, err = f.tournamentService.TransitionStatus(ctx, f.organizer, uuid.New(), bracket.TournamentRegistrationOpen)
	assert.ErrorIs(t, err, bracket.ErrNotFound)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tournament, err := f.tournamentService.CreateTournament(ctx, f.organizer, CreateTournamentInput{
		Name: "Express", Format: bracket.RoundRobin, Capacity: 2,
	})
	require.NoError(t, err)

	pair := RegisterInput{PlayerAName: "Lucía", PlayerBName: "Marta", SkillRank: 3}

	_, err = f.tournamentService.Register(ctx, tournament.ID, pair)
	assert.ErrorIs(t, err, bracket.ErrInvalidState, "draft tournaments take no registrations")

	_, err = f.tournamentService.TransitionStatus(ctx, f.organizer, tournament.ID, bracket.TournamentRegistrationOpen)
	require.NoError(t, err)

	first, err := f.tournamentService.Register(ctx, tournament.ID, pair)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sequence)
	assert.Equal(t, bracket.PaymentPending, first.PaymentStatus)
	assert.False(t, first.Confirmed)
	assert.Equal(t, f.clock.Now().UTC(), first.CreatedAt)

	second, err := f.tournamentService.Register(ctx, tournament.ID, RegisterInput{PlayerAName: "Eva", PlayerBName: "Inés"})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Sequence)

	_, err = f.tournamentService.Register(ctx, tournament.ID, RegisterInput{PlayerAName: "Olga", PlayerBName: "Rosa"})
	assert.ErrorIs(t, err, bracket.ErrInvalidState)

	_, err = f.tournamentService.Register(ctx, tournament.ID, RegisterInput{PlayerAName: "Olga"})
	assert.ErrorIs(t, err, bracket.ErrValidation)

	_, err = f.tournamentService.Register(ctx, tournament.ID, RegisterInput{
		PlayerAName: "Olga", PlayerBName: "Rosa", CategoryID: &tournament.ID,
	})
	assert.ErrorIs(t, err, bracket.ErrNotFound)
}

func TestRegisterCategories(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tournament, err := f.tournamentService.CreateTournament(ctx, f.organizer, CreateTournamentInput{
		Name: "Club", Format: bracket.SingleElimination, Capacity: 16, Categories: []string{"Mixto"},
	})
	require.NoError(t, err)
	_, err = f.tournamentService.TransitionStatus(ctx, f.organizer, tournament.ID, bracket.TournamentRegistrationOpen)
	require.NoError(t, err)
	cats, err := f.tournaments.GetCategories(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, cats, 1)

	_, err = f.tournamentService.Register(ctx, tournament.ID, RegisterInput{PlayerAName: "A", PlayerBName: "B"})
	assert.ErrorIs(t, err, bracket.ErrValidation)

	other := uuid.New()
	_, err = f.tournamentService.Register(ctx, tournament.ID, RegisterInput{PlayerAName: "A", PlayerBName: "B", CategoryID: &other})
	assert.ErrorIs(t, err, bracket.ErrNotFound)

	reg, err := f.tournamentService.Register(ctx, tournament.ID, RegisterInput{PlayerAName: "A", PlayerBName: "B", CategoryID: &cats[0].ID})
	require.NoError(t, err)
	assert.Equal(t, &cats[0].ID, reg.CategoryID)

	added, err := f.tournamentService.AddCategory(ctx, f.organizer, tournament.ID, "Veteranos")
	require.NoError(t, err)
	assert.Equal(t, "Veteranos", added.Name)

	_, err = f.tournamentService.AddCategory(ctx, f.organizer, tournament.ID, "Mixto")
	assert.ErrorIs(t, err, bracket.ErrValidation)
}

func TestAddFirstCategoryAfterRegistrations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tournament, err := f.tournamentService.CreateTournament(ctx, f.organizer, CreateTournamentInput{
		Name: "Sin categorías", Format: bracket.SingleElimination, Capacity: 16,
	})
	require.NoError(t, err)

	// categories can still be introduced while nobody registered
	_, err = f.tournamentService.AddCategory(ctx, f.organizer, tournament.ID, "Femenino")
	require.NoError(t, err)

	plain, err := f.tournamentService.CreateTournament(ctx, f.organizer, CreateTournamentInput{
		Name: "Abierto", Format: bracket.SingleElimination, Capacity: 16,
	})
	require.NoError(t, err)
	_, err = f.tournamentService.TransitionStatus(ctx, f.organizer, plain.ID, bracket.TournamentRegistrationOpen)
	require.NoError(t, err)
	f.registerPairs(t, plain.ID, nil, 4)

	_, err = f.tournamentService.AddCategory(ctx, f.organizer, plain.ID, "Masculino")
	assert.ErrorIs(t, err, bracket.ErrInvalidState)

	cats, err := f.tournaments.GetCategories(ctx, plain.ID)
	require.NoError(t, err)
	assert.Empty(t, cats)

	// every confirmed pair is still drawn
	_, err = f.tournamentService.TransitionStatus(ctx, f.organizer, plain.ID, bracket.TournamentRegistrationClosed)
	require.NoError(t, err)
	result := f.generate(t, plain.ID)
	assert.Equal(t, 3, result.MatchesCreated)
	assert.Equal(t, bracket.TournamentInProgress, result.Status)
}

func TestConfirmRegistration(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tournament, err := f.tournamentService.CreateTournament(ctx, f.organizer, CreateTournamentInput{
		Name: "Pagos", Format: bracket.SingleElimination, Capacity: 8,
	})
	require.NoError(t, err)
	_, err = f.tournamentService.TransitionStatus(ctx, f.organizer, tournament.ID, bracket.TournamentRegistrationOpen)
	require.NoError(t, err)
	reg, err := f.tournamentService.Register(ctx, tournament.ID, RegisterInput{PlayerAName: "A", PlayerBName: "B"})
	require.NoError(t, err)

	_, err = f.tournamentService.ConfirmRegistration(ctx, f.player, reg.ID, "")
	assert.ErrorIs(t, err, bracket.ErrForbidden)

	_, err = f.tournamentService.ConfirmRegistration(ctx, f.organizer, reg.ID, bracket.PaymentRefunded)
	assert.ErrorIs(t, err, bracket.ErrValidation)

	_, err = f.tournamentService.ConfirmRegistration(ctx, f.organizer, uuid.New(), "")
	assert.ErrorIs(t, err, bracket.ErrNotFound)

	confirmed, err := f.tournamentService.ConfirmRegistration(ctx, f.organizer, reg.ID, "")
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed)
	assert.Equal(t, bracket.PaymentPaid, confirmed.PaymentStatus)

	data, err := f.tournamentService.GetTournamentData(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, data.Registrations, 1)
	assert.True(t, data.Registrations[0].Confirmed)
}

func TestGetTournamentData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tournament, cats := f.closedTournament(t, bracket.SingleElimination, 2, "Mixto")
	f.generate(t, tournament.ID)

	data, err := f.tournamentService.GetTournamentData(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, tournament.ID, data.Tournament.ID)
	assert.Equal(t, bracket.TournamentInProgress, data.Tournament.Status)
	assert.Equal(t, cats, data.Categories)
	assert.Len(t, data.Registrations, 2)
	require.Len(t, data.Rounds, 1)
	require.Len(t, data.Matches, 1)
	assert.Equal(t, &cats[0].ID, data.Matches[0].CategoryID)
	assert.Equal(t, data.Rounds[0].ID, data.Matches[0].RoundID)

	_, err = f.tournamentService.GetTournamentData(ctx, uuid.New())
	assert.ErrorIs(t, err, bracket.ErrNotFound)
}
