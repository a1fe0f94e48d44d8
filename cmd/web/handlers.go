package main

import (
	"net/http"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	"github.com/AdamBeresnev/padel-club/internal/httputil"
	"github.com/AdamBeresnev/padel-club/internal/middleware"
	"github.com/AdamBeresnev/padel-club/internal/service"
)

func (app *application) listTournaments(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetAuthenticatedUser(r.Context())
	tournaments, err := app.tournaments.ListTournaments(r.Context(), user.ID)
	if err != nil {
		httputil.Error(w, "Failed to list tournaments", err)
		return
	}
	if tournaments == nil {
		tournaments = []bracket.Tournament{}
	}
	httputil.WriteJSON(w, http.StatusOK, tournaments)
}

func (app *application) createTournament(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if err := decode(r, &req); err != nil {
		httputil.Error(w, "Invalid tournament", err)
		return
	}
	in, err := req.input()
	if err != nil {
		httputil.Error(w, "Invalid tournament", err)
		return
	}

	tournament, err := app.tournaments.CreateTournament(r.Context(), middleware.GetAuthenticatedUser(r.Context()), in)
	if err != nil {
		httputil.Error(w, "Failed to create tournament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, tournament)
}

func (app *application) getTournament(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httputil.Error(w, "Invalid tournament ID", err)
		return
	}
	data, err := app.tournaments.GetTournamentData(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to get tournament", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, data)
}

func (app *application) transitionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httputil.Error(w, "Invalid tournament ID", err)
		return
	}
	var req statusRequest
	if err := decode(r, &req); err != nil {
		httputil.Error(w, "Invalid status", err)
		return
	}
	to, err := req.status()
	if err != nil {
		httputil.Error(w, "Invalid status", err)
		return
	}

	tournament, err := app.tournaments.TransitionStatus(r.Context(), middleware.GetAuthenticatedUser(r.Context()), id, to)
	if err != nil {
		httputil.Error(w, "Failed to change status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tournament)
}

func (app *application) addCategory(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httputil.Error(w, "Invalid tournament ID", err)
		return
	}
	var req categoryRequest
	if err := decode(r, &req); err != nil {
		httputil.Error(w, "Invalid category", err)
		return
	}

	category, err := app.tournaments.AddCategory(r.Context(), middleware.GetAuthenticatedUser(r.Context()), id, req.Name)
	if err != nil {
		httputil.Error(w, "Failed to add category", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, category)
}

func (app *application) register(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httputil.Error(w, "Invalid tournament ID", err)
		return
	}
	var req registerRequest
	if err := decode(r, &req); err != nil {
		httputil.Error(w, "Invalid registration", err)
		return
	}

	registration, err := app.tournaments.Register(r.Context(), id, req.input())
	if err != nil {
		httputil.Error(w, "Failed to register", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, registration)
}

func (app *application) confirmRegistration(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httputil.Error(w, "Invalid registration ID", err)
		return
	}
	var req confirmRequest
	if err := decode(r, &req); err != nil {
		httputil.Error(w, "Invalid confirmation", err)
		return
	}

	registration, err := app.tournaments.ConfirmRegistration(r.Context(), middleware.GetAuthenticatedUser(r.Context()), id, bracket.PaymentStatus(req.PaymentStatus))
	if err != nil {
		httputil.Error(w, "Failed to confirm registration", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, registration)
}

func (app *application) generateBrackets(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httputil.Error(w, "Invalid tournament ID", err)
		return
	}
	var req generateRequest
	if err := decode(r, &req); err != nil {
		httputil.Error(w, "Invalid generation request", err)
		return
	}
	in, err := req.input(id)
	if err != nil {
		httputil.Error(w, "Invalid generation request", err)
		return
	}

	result, err := app.brackets.GenerateBrackets(r.Context(), middleware.GetAuthenticatedUser(r.Context()), in)
	switch {
	case err != nil && result != nil && result.Changed:
		// the draws are written, only the follow up status change failed
		httputil.InternalServerError(w, "Brackets generated with errors", err)
	case err != nil && result != nil:
		httputil.ErrorWithDetails(w, "Failed to generate brackets", err, result.Categories)
	case err != nil:
		httputil.Error(w, "Failed to generate brackets", err)
	default:
		httputil.WriteJSON(w, http.StatusCreated, result)
	}
}

func (app *application) resetBrackets(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httputil.Error(w, "Invalid tournament ID", err)
		return
	}

	result, err := app.brackets.ResetBrackets(r.Context(), middleware.GetAuthenticatedUser(r.Context()), id)
	if err != nil {
		httputil.Error(w, "Failed to reset brackets", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (app *application) listConflicts(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httputil.Error(w, "Invalid tournament ID", err)
		return
	}

	conflicts, err := app.conflicts.ListConflicts(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to list conflicts", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, conflicts)
}

func (app *application) getMatch(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httputil.Error(w, "Invalid match ID", err)
		return
	}

	data, err := app.matches.GetMatchData(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to get match", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, data)
}

func (app *application) submitResult(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httputil.Error(w, "Invalid match ID", err)
		return
	}
	var req submitResultRequest
	if err := decode(r, &req); err != nil {
		httputil.Error(w, "Invalid result", err)
		return
	}

	outcome, err := app.matches.SubmitResult(r.Context(), middleware.GetAuthenticatedUser(r.Context()), service.SubmitResultRequest{
		MatchID:  id,
		ScoresA:  req.ScoresA,
		ScoresB:  req.ScoresB,
		WinnerID: req.WinnerID,
	})
	if err != nil {
		httputil.Error(w, "Failed to submit result", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

func (app *application) resolveConflict(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httputil.Error(w, "Invalid match ID", err)
		return
	}
	var req resolveConflictRequest
	if err := decode(r, &req); err != nil {
		httputil.Error(w, "Invalid resolution", err)
		return
	}
	in, err := req.input(id)
	if err != nil {
		httputil.Error(w, "Invalid resolution", err)
		return
	}

	outcome, err := app.conflicts.ResolveConflict(r.Context(), middleware.GetAuthenticatedUser(r.Context()), in)
	if err != nil {
		httputil.Error(w, "Failed to resolve conflict", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

func (app *application) setRole(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httputil.Error(w, "Invalid user ID", err)
		return
	}
	var req roleRequest
	if err := decode(r, &req); err != nil {
		httputil.Error(w, "Invalid role", err)
		return
	}

	user, err := app.users.SetRole(r.Context(), middleware.GetAuthenticatedUser(r.Context()), id, bracket.Role(req.Role))
	if err != nil {
		httputil.Error(w, "Failed to set role", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

func (app *application) serveLive(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httputil.Error(w, "Invalid tournament ID", err)
		return
	}
	// fail before the upgrade so unknown tournaments get a plain 404
	if _, err := app.tournaments.GetTournament(r.Context(), id); err != nil {
		httputil.Error(w, "Failed to get tournament", err)
		return
	}
	app.live.Serve(w, r, id)
}
