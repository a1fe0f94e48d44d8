package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/AdamBeresnev/padel-club/internal/store"
	users "github.com/AdamBeresnev/padel-club/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type TournamentService struct {
	db      *sqlx.DB
	store   *store.TournamentStore
	matches *store.MatchStore
	opts    options
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, matches *store.MatchStore, opts ...Option) *TournamentService {
	return &TournamentService{db: db, store: store, matches: matches, opts: newOptions(opts)}
}

type CreateTournamentInput struct {
	Name       string
	Format     bracket.TournamentFormat
	Capacity   int
	Categories []string
}

type RegisterInput struct {
	CategoryID  *uuid.UUID
	PlayerAName string
	PlayerAID   *uuid.UUID
	PlayerBName string
	PlayerBID   *uuid.UUID
	SkillRank   int
}

type TournamentData struct {
	Tournament    *bracket.Tournament    `json:"tournament"`
	Categories    []bracket.Category     `json:"categories"`
	Registrations []bracket.Registration `json:"registrations"`
	Rounds        []bracket.Round        `json:"rounds"`
	Matches       []bracket.Match        `json:"matches"`
}

func (s *TournamentService) CreateTournament(ctx context.Context, actor *users.User, in CreateTournamentInput) (*bracket.Tournament, error) {
	if actor == nil || !actor.Role.IsAuthority() {
		return nil, bracket.ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &bracket.ValidationError{Field: "name", Reason: "is required"}
	}
	if _, err := bracket.ParseFormat(string(in.Format)); err != nil {
		return nil, err
	}
	if in.Capacity < 2 {
		return nil, &bracket.ValidationError{Field: "capacity", Reason: "must allow at least two pairs"}
	}

	tournament := &bracket.Tournament{
		ID:       uuid.New(),
		OwnerID:  actor.ID,
		Name:     name,
		Format:   in.Format,
		Status:   bracket.TournamentDraft,
		Capacity: in.Capacity,
	}
	categories, err := newCategories(tournament.ID, in.Categories)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	if err := s.store.CreateCategories(ctx, tx, categories); err != nil {
		return nil, fmt.Errorf("failed to create categories: %w", err)
	}

	created, err := s.store.GetTournamentTx(ctx, tx, tournament.ID)
	if err != nil {
		return nil, err
	}
	return created, tx.Commit()
}

func newCategories(tournamentID uuid.UUID, names []string) ([]bracket.Category, error) {
	seen := make(map[string]bool)
	var categories []bracket.Category
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, &bracket.ValidationError{Field: "categories", Reason: "category name is required"}
		}
		if seen[n] {
			return nil, &bracket.ValidationError{Field: "categories", Reason: fmt.Sprintf("duplicate category %q", n)}
		}
		seen[n] = true
		categories = append(categories, bracket.Category{ID: uuid.New(), TournamentID: tournamentID, Name: n})
	}
	return categories, nil
}

// AddCategory is only possible before the draw, and a tournament whose
// pairs registered without categories cannot start using them.
func (s *TournamentService) AddCategory(ctx context.Context, actor *users.User, tournamentID uuid.UUID, name string) (*bracket.Category, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(actor, tournament); err != nil {
		return nil, err
	}
	switch tournament.Status {
	case bracket.TournamentInProgress, bracket.TournamentCompleted:
		return nil, fmt.Errorf("%w: tournament is %s", bracket.ErrInvalidState, tournament.Status)
	}

	existing, err := s.store.GetCategoriesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		// the first category would leave pairs registered without one out
		// of every draw
		n, err := s.store.CountUncategorizedRegistrationsTx(ctx, tx, tournamentID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, fmt.Errorf("%w: %d pairs are registered without a category", bracket.ErrInvalidState, n)
		}
	}
	names := []string{name}
	for _, c := range existing {
		names = append(names, c.Name)
	}
	categories, err := newCategories(tournamentID, names)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateCategories(ctx, tx, categories[:1]); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &categories[0], tx.Commit()
}

// TransitionStatus applies a manual status change.
func (s *TournamentService) TransitionStatus(ctx context.Context, actor *users.User, tournamentID uuid.UUID, to bracket.TournamentStatus) (*bracket.Tournament, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(actor, tournament); err != nil {
		return nil, err
	}
	if !tournament.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: cannot move tournament from %s to %s", bracket.ErrInvalidState, tournament.Status, to)
	}
	if to == bracket.TournamentRegistrationOpen && tournament.Status == bracket.TournamentRegistrationClosed {
		n, err := s.matches.CountMatchesTx(ctx, tx, tournamentID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, fmt.Errorf("%w: tournament has %d matches, reset the draw to reopen registration", bracket.ErrInvalidState, n)
		}
	}
	if err := s.store.UpdateTournamentStatusTx(ctx, tx, tournamentID, to); err != nil {
		return nil, err
	}
	tournament.Status = to
	return tournament, tx.Commit()
}

func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	var data TournamentData
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.store.GetTournament(gctx, id)
		data.Tournament = t
		return err
	})
	g.Go(func() (err error) {
		data.Categories, err = s.store.GetCategories(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		data.Registrations, err = s.store.GetRegistrations(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		data.Rounds, err = s.matches.GetRounds(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		data.Matches, err = s.matches.GetMatches(gctx, id)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *TournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return s.store.GetTournament(ctx, id)
}

func (s *TournamentService) ListTournaments(ctx context.Context, ownerID uuid.UUID) ([]bracket.Tournament, error) {
	return s.store.GetTournamentsByOwner(ctx, ownerID)
}

// Register enters a pair while registration is open and the tournament has
// room left.
func (s *TournamentService) Register(ctx context.Context, tournamentID uuid.UUID, in RegisterInput) (*bracket.Registration, error) {
	in.PlayerAName = strings.TrimSpace(in.PlayerAName)
	in.PlayerBName = strings.TrimSpace(in.PlayerBName)
	if in.PlayerAName == "" || in.PlayerBName == "" {
		return nil, &bracket.ValidationError{Field: "players", Reason: "both player names are required"}
	}
	if in.SkillRank < 0 {
		return nil, &bracket.ValidationError{Field: "skill_rank", Reason: "must not be negative"}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != bracket.TournamentRegistrationOpen {
		return nil, fmt.Errorf("%w: registration is not open", bracket.ErrInvalidState)
	}

	categories, err := s.store.GetCategoriesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := checkCategory(categories, in.CategoryID); err != nil {
		return nil, err
	}

	count, err := s.store.CountRegistrationsTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if count >= tournament.Capacity {
		return nil, fmt.Errorf("%w: tournament is full (%d pairs)", bracket.ErrInvalidState, tournament.Capacity)
	}

	seq, err := s.store.NextRegistrationSequenceTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	registration := &bracket.Registration{
		ID:            uuid.New(),
		TournamentID:  tournamentID,
		CategoryID:    in.CategoryID,
		PlayerAName:   in.PlayerAName,
		PlayerAID:     in.PlayerAID,
		PlayerBName:   in.PlayerBName,
		PlayerBID:     in.PlayerBID,
		SkillRank:     in.SkillRank,
		Sequence:      seq,
		PaymentStatus: bracket.PaymentPending,
		CreatedAt:     s.opts.clock.Now().UTC(),
	}
	if err := s.store.CreateRegistration(ctx, tx, registration); err != nil {
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}
	return registration, tx.Commit()
}

// checkCategory requires a category of the tournament when it has any, and
// none otherwise.
func checkCategory(categories []bracket.Category, id *uuid.UUID) error {
	if len(categories) == 0 {
		if id != nil {
			return fmt.Errorf("category %s: %w", id, bracket.ErrNotFound)
		}
		return nil
	}
	if id == nil {
		return &bracket.ValidationError{Field: "category_id", Reason: "tournament has categories, one must be chosen"}
	}
	for _, c := range categories {
		if c.ID == *id {
			return nil
		}
	}
	return fmt.Errorf("category %s: %w", id, bracket.ErrNotFound)
}

// ConfirmRegistration marks a pair as paid up so it enters the draw.
func (s *TournamentService) ConfirmRegistration(ctx context.Context, actor *users.User, registrationID uuid.UUID, payment bracket.PaymentStatus) (*bracket.Registration, error) {
	switch payment {
	case "":
		payment = bracket.PaymentPaid
	case bracket.PaymentPending, bracket.PaymentPaid:
	default:
		return nil, &bracket.ValidationError{Field: "payment_status", Reason: fmt.Sprintf("cannot confirm with %q", payment)}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	registration, err := s.store.GetRegistrationTx(ctx, tx, registrationID)
	if err != nil {
		return nil, err
	}
	tournament, err := s.store.GetTournamentTx(ctx, tx, registration.TournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(actor, tournament); err != nil {
		return nil, err
	}
	switch tournament.Status {
	case bracket.TournamentInProgress, bracket.TournamentCompleted:
		return nil, fmt.Errorf("%w: draw already made", bracket.ErrInvalidState)
	}

	if err := s.store.ConfirmRegistrationTx(ctx, tx, registrationID, payment); err != nil {
		return nil, err
	}
	registration.Confirmed = true
	registration.PaymentStatus = payment
	return registration, tx.Commit()
}
