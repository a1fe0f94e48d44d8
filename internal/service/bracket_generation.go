package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/AdamBeresnev/padel-club/internal/draw"
	"github.com/AdamBeresnev/padel-club/internal/live"
	"github.com/AdamBeresnev/padel-club/internal/store"
	users "github.com/AdamBeresnev/padel-club/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BracketService struct {
	db          *sqlx.DB
	tournaments *store.TournamentStore
	matches     *store.MatchStore
	opts        options
}

func NewBracketService(db *sqlx.DB, tournaments *store.TournamentStore, matches *store.MatchStore, opts ...Option) *BracketService {
	return &BracketService{db: db, tournaments: tournaments, matches: matches, opts: newOptions(opts)}
}

type GenerateRequest struct {
	TournamentID uuid.UUID
	// Categories limits the draw to these categories. Empty means all of them.
	Categories  []uuid.UUID
	Seeding     draw.Seeding
	BracketType bracket.TournamentFormat
}

type CategoryOutcome struct {
	CategoryID     *uuid.UUID `json:"category_id,omitempty"`
	Name           string     `json:"name,omitempty"`
	MatchesCreated int        `json:"matches_created"`
	RoundsCreated  int        `json:"rounds_created"`
	Error          string     `json:"error,omitempty"`

	err error
}

func (c CategoryOutcome) Succeeded() bool {
	return c.err == nil
}

type GenerateResult struct {
	MatchesCreated      int                      `json:"matches_created"`
	RoundsCreated       int                      `json:"rounds_created"`
	CategoriesProcessed int                      `json:"categories_processed"`
	Categories          []CategoryOutcome        `json:"categories"`
	Warnings            []string                 `json:"warnings"`
	Status              bracket.TournamentStatus `json:"status"`
	Changed             bool                     `json:"changed"`
}

// target is one draw of a generation call: a category, or the whole
// tournament when it has none.
type target struct {
	id   *uuid.UUID
	name string
}

// GenerateBrackets draws every requested category in its own transaction.
// Categories succeed or fail independently; the error is only returned when
// none of them was written.
func (s *BracketService) GenerateBrackets(ctx context.Context, actor *users.User, req GenerateRequest) (result *GenerateResult, err error) {
	start := s.opts.clock.Now()
	defer func() {
		s.opts.metrics.ObserveGenerationDuration(s.opts.clock.Since(start).Seconds())
		if err != nil {
			s.opts.metrics.IncGenerationFailures(failureReason(err))
		}
	}()

	tournament, err := s.tournaments.GetTournament(ctx, req.TournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(actor, tournament); err != nil {
		return nil, err
	}

	format := tournament.Format
	if req.BracketType != "" {
		if format, err = bracket.ParseFormat(string(req.BracketType)); err != nil {
			return nil, err
		}
	}
	gen, err := draw.ForFormat(format)
	if err != nil {
		return nil, err
	}

	opts := s.opts.draw
	if req.Seeding != "" {
		if opts.Seeding, err = draw.ParseSeeding(string(req.Seeding)); err != nil {
			return nil, err
		}
	}

	all, err := s.tournaments.GetCategories(ctx, tournament.ID)
	if err != nil {
		return nil, err
	}
	targets, err := selectTargets(all, req.Categories)
	if err != nil {
		return nil, err
	}

	if err := s.precheck(ctx, tournament.ID, len(req.Categories) == 0); err != nil {
		return nil, err
	}

	result = &GenerateResult{Warnings: []string{}}
	var firstErr error
	for _, tg := range targets {
		outcome, warnings := s.generateTarget(ctx, tournament.ID, tg, gen, opts)
		result.Categories = append(result.Categories, outcome)
		result.Warnings = append(result.Warnings, warnings...)
		if !outcome.Succeeded() {
			if firstErr == nil {
				firstErr = outcome.err
			}
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", tg.label(), outcome.Error))
			continue
		}
		result.CategoriesProcessed++
		result.MatchesCreated += outcome.MatchesCreated
		result.RoundsCreated += outcome.RoundsCreated
		s.opts.metrics.IncBracketsGenerated(string(format))
		s.opts.metrics.AddMatchesCreated(outcome.MatchesCreated)
	}

	if result.CategoriesProcessed == 0 {
		result.Status = tournament.Status
		return result, firstErr
	}
	result.Changed = true

	status, err := s.startIfComplete(ctx, tournament.ID, targets)
	if err != nil {
		return result, fmt.Errorf("brackets written but tournament status not updated: %w", err)
	}
	result.Status = status

	slog.Info("brackets generated",
		"tournament_id", tournament.ID,
		"generator", gen.Name(),
		"seeding", opts.Seeding,
		"matches", result.MatchesCreated,
		"rounds", result.RoundsCreated,
		"categories", result.CategoriesProcessed,
	)
	s.opts.live.Publish(live.Event{Type: live.BracketGenerated, TournamentID: tournament.ID, Payload: result})
	return result, nil
}

func (t target) label() string {
	if t.id == nil {
		return "tournament"
	}
	return "category " + t.name
}

func selectTargets(all []bracket.Category, requested []uuid.UUID) ([]target, error) {
	if len(all) == 0 {
		if len(requested) > 0 {
			return nil, fmt.Errorf("category %s: %w", requested[0], bracket.ErrNotFound)
		}
		return []target{{}}, nil
	}

	byID := make(map[uuid.UUID]bracket.Category, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	if len(requested) == 0 {
		targets := make([]target, 0, len(all))
		for _, c := range all {
			targets = append(targets, target{id: &c.ID, name: c.Name})
		}
		return targets, nil
	}

	seen := make(map[uuid.UUID]bool)
	var targets []target
	for _, id := range requested {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("category %s: %w", id, bracket.ErrNotFound)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		targets = append(targets, target{id: &c.ID, name: c.Name})
	}
	return targets, nil
}

// precheck fails the whole call before any write. The per category
// transactions check again under the write lock. Existing matches are
// checked before the status because a successful draw moves the tournament
// on, and a repeated call must still answer ErrAlreadyGenerated.
func (s *BracketService) precheck(ctx context.Context, tournamentID uuid.UUID, wholeTournament bool) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tournament, err := s.tournaments.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return err
	}
	if wholeTournament {
		n, err := s.matches.CountMatchesTx(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: tournament has %d matches", bracket.ErrAlreadyGenerated, n)
		}
	}
	if tournament.Status != bracket.TournamentRegistrationClosed {
		return fmt.Errorf("%w: tournament is %s, registration must be closed", bracket.ErrInvalidState, tournament.Status)
	}
	return nil
}

func (s *BracketService) generateTarget(ctx context.Context, tournamentID uuid.UUID, tg target, gen draw.Generator, opts draw.Options) (CategoryOutcome, []string) {
	outcome := CategoryOutcome{CategoryID: tg.id, Name: tg.name}
	plan, err := s.writeDraw(ctx, tournamentID, tg.id, gen, opts)
	if err != nil {
		outcome.err = err
		outcome.Error = err.Error()
		slog.Warn("category draw failed", "tournament_id", tournamentID, "category", tg.label(), "error", err)
		return outcome, nil
	}
	outcome.MatchesCreated = len(plan.Matches)
	outcome.RoundsCreated = len(plan.Rounds)

	warnings := make([]string, 0, len(plan.Warnings))
	for _, w := range plan.Warnings {
		if tg.id != nil {
			w = tg.name + ": " + w
		}
		warnings = append(warnings, w)
	}
	return outcome, warnings
}

// writeDraw checks, generates and inserts one category as a single unit.
func (s *BracketService) writeDraw(ctx context.Context, tournamentID uuid.UUID, categoryID *uuid.UUID, gen draw.Generator, opts draw.Options) (*draw.Plan, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	existing, err := s.matches.CountCategoryMatchesTx(ctx, tx, tournamentID, categoryID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: %d matches exist", bracket.ErrAlreadyGenerated, existing)
	}

	tournament, err := s.tournaments.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != bracket.TournamentRegistrationClosed {
		return nil, fmt.Errorf("%w: tournament is %s", bracket.ErrInvalidState, tournament.Status)
	}

	regs, err := s.tournaments.GetConfirmedRegistrationsTx(ctx, tx, tournamentID, categoryID)
	if err != nil {
		return nil, err
	}

	plan, err := gen.Generate(draw.Params{
		TournamentID: tournamentID,
		CategoryID:   categoryID,
		Entrants:     draw.EntrantsFromRegistrations(regs),
		Options:      opts,
	})
	if err != nil {
		return nil, err
	}

	if err := s.matches.CreateRounds(ctx, tx, plan.Rounds); err != nil {
		return nil, fmt.Errorf("failed to create rounds: %w", err)
	}
	if err := s.matches.CreateMatches(ctx, tx, plan.Matches); err != nil {
		return nil, fmt.Errorf("failed to create matches: %w", err)
	}
	return plan, tx.Commit()
}

// startIfComplete moves the tournament to IN_PROGRESS once every category
// that can be drawn has its draw. A category with too few confirmed pairs
// cannot gain any while registration is closed, so it does not hold the
// tournament back.
func (s *BracketService) startIfComplete(ctx context.Context, tournamentID uuid.UUID, requested []target) (bracket.TournamentStatus, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	tournament, err := s.tournaments.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return "", err
	}
	if tournament.Status != bracket.TournamentRegistrationClosed {
		return tournament.Status, nil
	}

	categories, err := s.tournaments.GetCategoriesTx(ctx, tx, tournamentID)
	if err != nil {
		return "", err
	}
	ids := []*uuid.UUID{nil}
	if len(categories) > 0 {
		ids = ids[:0]
		for _, c := range categories {
			ids = append(ids, &c.ID)
		}
	}
	drawn := 0
	for _, id := range ids {
		n, err := s.matches.CountCategoryMatchesTx(ctx, tx, tournamentID, id)
		if err != nil {
			return "", err
		}
		if n > 0 {
			drawn++
			continue
		}
		confirmed, err := s.tournaments.CountConfirmedRegistrationsTx(ctx, tx, tournamentID, id)
		if err != nil {
			return "", err
		}
		if confirmed >= draw.MinEntrants {
			return tournament.Status, nil
		}
	}
	if drawn == 0 {
		return tournament.Status, nil
	}

	if err := s.tournaments.UpdateTournamentStatusTx(ctx, tx, tournamentID, bracket.TournamentInProgress); err != nil {
		return "", err
	}
	return bracket.TournamentInProgress, tx.Commit()
}

type ResetResult struct {
	MatchesDeleted int                      `json:"matches_deleted"`
	Status         bracket.TournamentStatus `json:"status"`
	Changed        bool                     `json:"changed"`
}

// ResetBrackets deletes the draw of a tournament and sends it back to DRAFT.
// It is refused once any match has been played.
func (s *BracketService) ResetBrackets(ctx context.Context, actor *users.User, tournamentID uuid.UUID) (*ResetResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.tournaments.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireManager(actor, tournament); err != nil {
		return nil, err
	}

	completed, err := s.matches.CountCompletedMatchesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if completed > 0 {
		return nil, fmt.Errorf("%w: %d matches already completed", bracket.ErrInvalidState, completed)
	}

	deleted, err := s.matches.DeleteBracketTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	if tournament.Status != bracket.TournamentDraft {
		if err := s.tournaments.UpdateTournamentStatusTx(ctx, tx, tournamentID, bracket.TournamentDraft); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	result := &ResetResult{
		MatchesDeleted: deleted,
		Status:         bracket.TournamentDraft,
		Changed:        deleted > 0 || tournament.Status != bracket.TournamentDraft,
	}
	if result.Changed {
		slog.Info("brackets reset", "tournament_id", tournamentID, "matches_deleted", deleted)
		s.opts.live.Publish(live.Event{Type: live.BracketReset, TournamentID: tournamentID, Payload: result})
	}
	return result, nil
}
