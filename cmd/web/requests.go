package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/AdamBeresnev/padel-club/internal/draw"
	"github.com/AdamBeresnev/padel-club/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && err != io.EOF {
		return &bracket.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}

func urlID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, &bracket.ValidationError{Field: name, Reason: "not a valid id"}
	}
	return id, nil
}

type createTournamentRequest struct {
	Name       string   `json:"name"`
	Format     string   `json:"format"`
	Capacity   int      `json:"capacity"`
	Categories []string `json:"categories"`
}

func (req createTournamentRequest) input() (service.CreateTournamentInput, error) {
	format, err := bracket.ParseFormat(req.Format)
	if err != nil {
		return service.CreateTournamentInput{}, err
	}
	return service.CreateTournamentInput{
		Name:       req.Name,
		Format:     format,
		Capacity:   req.Capacity,
		Categories: req.Categories,
	}, nil
}

type statusRequest struct {
	Status string `json:"status"`
}

func (req statusRequest) status() (bracket.TournamentStatus, error) {
	switch s := bracket.TournamentStatus(req.Status); s {
	case bracket.TournamentDraft, bracket.TournamentRegistrationOpen, bracket.TournamentRegistrationClosed,
		bracket.TournamentInProgress, bracket.TournamentCompleted:
		return s, nil
	}
	return "", &bracket.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", req.Status)}
}

type categoryRequest struct {
	Name string `json:"name"`
}

type registerRequest struct {
	CategoryID  *uuid.UUID `json:"category_id"`
	PlayerAName string     `json:"player_a_name"`
	PlayerAID   *uuid.UUID `json:"player_a_id"`
	PlayerBName string     `json:"player_b_name"`
	PlayerBID   *uuid.UUID `json:"player_b_id"`
	SkillRank   int        `json:"skill_rank"`
}

func (req registerRequest) input() service.RegisterInput {
	return service.RegisterInput{
		CategoryID:  req.CategoryID,
		PlayerAName: req.PlayerAName,
		PlayerAID:   req.PlayerAID,
		PlayerBName: req.PlayerBName,
		PlayerBID:   req.PlayerBID,
		SkillRank:   req.SkillRank,
	}
}

type confirmRequest struct {
	PaymentStatus string `json:"payment_status"`
}

type generateRequest struct {
	Categories    []uuid.UUID `json:"categories"`
	SeedingMethod string      `json:"seeding_method"`
	BracketType   string      `json:"bracket_type"`
}

func (req generateRequest) input(tournamentID uuid.UUID) (service.GenerateRequest, error) {
	out := service.GenerateRequest{TournamentID: tournamentID, Categories: req.Categories}
	if req.SeedingMethod != "" {
		seeding, err := draw.ParseSeeding(req.SeedingMethod)
		if err != nil {
			return out, err
		}
		out.Seeding = seeding
	}
	if req.BracketType != "" {
		format, err := bracket.ParseFormat(req.BracketType)
		if err != nil {
			return out, err
		}
		out.BracketType = format
	}
	return out, nil
}

type submitResultRequest struct {
	ScoresA  []int      `json:"scores_a"`
	ScoresB  []int      `json:"scores_b"`
	WinnerID *uuid.UUID `json:"winner_id"`
}

type resolveConflictRequest struct {
	AcceptedSubmissionID uuid.UUID `json:"accepted_submission_id"`
	Note                 *string   `json:"note"`
}

func (req resolveConflictRequest) input(matchID uuid.UUID) (service.ResolveConflictRequest, error) {
	if req.AcceptedSubmissionID == uuid.Nil {
		return service.ResolveConflictRequest{}, &bracket.ValidationError{Field: "accepted_submission_id", Reason: "is required"}
	}
	return service.ResolveConflictRequest{
		MatchID:              matchID,
		AcceptedSubmissionID: req.AcceptedSubmissionID,
		Note:                 req.Note,
	}, nil
}

type roleRequest struct {
	Role string `json:"role"`
}
