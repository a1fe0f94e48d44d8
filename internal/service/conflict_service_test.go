package service

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/padel-club/internal/bracket"
	users "github.com/AdamBeresnev/padel-club/internal/user"
	"github.com/AdamBeresnev/padel-club/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// disputedSemi makes two players report opposite winners for the first
// semifinal of a four pair knockout.
func disputedSemi(t *testing.T, f *fixture) (tournamentID uuid.UUID, semi bracket.Match, forA, forB *bracket.ResultSubmission) {
	t.Helper()
	tournament, _ := f.closedTournament(t, bracket.SingleElimination, 4)
	f.generate(t, tournament.ID)
	semi = f.rounds(t, tournament.ID)[1][0]

	rival := &users.User{ID: uuid.New(), Username: "rival", Role: bracket.RolePlayer}
	forA = f.submit(t, f.player, semi.ID, []int{6, 6}, []int{3, 3}).Submission
	f.clock.Advance(time.Minute)
	forB = f.submit(t, rival, semi.ID, []int{3, 3}, []int{6, 6}).Submission
	require.NotNil(t, forA)
	require.NotNil(t, forB)
	return tournament.ID, semi, forA, forB
}

func submissionStatuses(subs []bracket.ResultSubmission) map[uuid.UUID]bracket.SubmissionStatus {
	out := make(map[uuid.UUID]bracket.SubmissionStatus, len(subs))
	for _, s := range subs {
		out[s.ID] = s.Status
	}
	return out
}

func TestListConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tournamentID, semi, forA, forB := disputedSemi(t, f)

	conflicts, err := f.conflictService.ListConflicts(ctx, tournamentID)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, semi.ID, conflicts[0].Match.ID)
	assert.Equal(t, bracket.ConflictDifferentResults, conflicts[0].Type)
	require.Len(t, conflicts[0].Submissions, 2)
	assert.Equal(t, forA.ID, conflicts[0].Submissions[0].ID)
	assert.Equal(t, forB.ID, conflicts[0].Submissions[1].ID)

	_, err = f.conflictService.ListConflicts(ctx, uuid.New())
	assert.ErrorIs(t, err, bracket.ErrNotFound)
}

func TestListConflictsEmpty(t *testing.T) {
	f := newFixture(t)
	tournament, _ := f.closedTournament(t, bracket.RoundRobin, 3)
	f.generate(t, tournament.ID)

	conflicts, err := f.conflictService.ListConflicts(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.NotNil(t, conflicts)
	assert.Empty(t, conflicts)
}

func TestResolveConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tournamentID, semi, forA, forB := disputedSemi(t, f)
	final := f.rounds(t, tournamentID)[2][0]

	// the first report already sent pair A forward
	assert.Equal(t, semi.PairAID, f.match(t, final.ID).PairAID)

	outcome, err := f.conflictService.ResolveConflict(ctx, f.organizer, ResolveConflictRequest{
		MatchID:              semi.ID,
		AcceptedSubmissionID: forB.ID,
		Note:                 utils.Ptr("video of the last point"),
	})
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.Equal(t, semi.PairBID, outcome.Match.WinnerID)
	assert.True(t, outcome.Match.ResultsConfirmed)
	assert.True(t, outcome.Match.ConflictResolved)
	assert.Equal(t, bracket.Sets{3, 3}, outcome.Match.SetsA)
	assert.Equal(t, 2, outcome.Match.ScoreB)

	statuses := submissionStatuses(outcome.Submissions)
	assert.Equal(t, bracket.SubmissionAccepted, statuses[forB.ID])
	assert.Equal(t, bracket.SubmissionRejected, statuses[forA.ID])
	for _, s := range outcome.Submissions {
		if s.ID == forA.ID {
			require.NotNil(t, s.ResolutionNote)
			assert.Equal(t, "video of the last point", *s.ResolutionNote)
			assert.False(t, s.Confirmed)
		} else {
			assert.Nil(t, s.ResolutionNote)
			assert.True(t, s.Confirmed)
		}
	}

	assert.Equal(t, semi.PairBID, f.match(t, final.ID).PairAID)

	conflicts, err := f.conflictService.ListConflicts(ctx, tournamentID)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
	assert.Equal(t, 1, f.metrics.ConflictsResolved())
}

func TestResolveConflictChangesItsMind(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tournamentID, semi, forA, forB := disputedSemi(t, f)
	final := f.rounds(t, tournamentID)[2][0]

	resolve := func(sub *bracket.ResultSubmission) *ResolveConflictOutcome {
		outcome, err := f.conflictService.ResolveConflict(ctx, f.organizer, ResolveConflictRequest{
			MatchID: semi.ID, AcceptedSubmissionID: sub.ID,
		})
		require.NoError(t, err)
		return outcome
	}

	resolve(forA)
	outcome := resolve(forA)
	assert.Equal(t, semi.PairAID, outcome.Match.WinnerID)
	assert.Equal(t, semi.PairAID, f.match(t, final.ID).PairAID)

	outcome = resolve(forB)
	statuses := submissionStatuses(outcome.Submissions)
	assert.Equal(t, bracket.SubmissionAccepted, statuses[forB.ID])
	assert.Equal(t, bracket.SubmissionRejected, statuses[forA.ID])

	confirmed := 0
	for _, s := range outcome.Submissions {
		if s.Confirmed {
			confirmed++
		}
	}
	assert.Equal(t, 1, confirmed)
	assert.Equal(t, semi.PairBID, f.match(t, final.ID).PairAID)
	assert.Equal(t, 3, f.metrics.ConflictsResolved())
}

func TestResolveConflictAfterNextMatchStarted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tournamentID, semi, forA, forB := disputedSemi(t, f)
	rounds := f.rounds(t, tournamentID)
	otherSemi, final := rounds[1][1], rounds[2][0]

	_, err := f.conflictService.ResolveConflict(ctx, f.organizer, ResolveConflictRequest{
		MatchID: semi.ID, AcceptedSubmissionID: forA.ID,
	})
	require.NoError(t, err)
	f.submit(t, f.organizer, otherSemi.ID, []int{6, 6}, []int{1, 1})

	// one set each, the final is under way
	started := f.submit(t, f.organizer, final.ID, []int{6, 2}, []int{3, 6})
	require.Equal(t, bracket.MatchInProgress, started.Match.Status)

	_, err = f.conflictService.ResolveConflict(ctx, f.organizer, ResolveConflictRequest{
		MatchID: semi.ID, AcceptedSubmissionID: forB.ID,
	})
	assert.ErrorIs(t, err, bracket.ErrInvalidState)

	got := f.match(t, semi.ID)
	assert.Equal(t, semi.PairAID, got.WinnerID)
	data, err := f.matchService.GetMatchData(ctx, semi.ID)
	require.NoError(t, err)
	statuses := submissionStatuses(data.Submissions)
	assert.Equal(t, bracket.SubmissionAccepted, statuses[forA.ID])
	assert.Equal(t, bracket.SubmissionRejected, statuses[forB.ID])
	assert.Equal(t, semi.PairAID, f.match(t, final.ID).PairAID)
}

func TestResolveConflictRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tournamentID, semi, forA, _ := disputedSemi(t, f)
	otherSemi := f.rounds(t, tournamentID)[1][1]
	elsewhere := f.submit(t, f.player, otherSemi.ID, []int{6}, []int{0}).Submission

	_, err := f.conflictService.ResolveConflict(ctx, f.player, ResolveConflictRequest{
		MatchID: semi.ID, AcceptedSubmissionID: forA.ID,
	})
	assert.ErrorIs(t, err, bracket.ErrForbidden)

	_, err = f.conflictService.ResolveConflict(ctx, f.organizer, ResolveConflictRequest{
		MatchID: semi.ID, AcceptedSubmissionID: elsewhere.ID,
	})
	assert.ErrorIs(t, err, bracket.ErrNotFound)

	_, err = f.conflictService.ResolveConflict(ctx, f.organizer, ResolveConflictRequest{
		MatchID: semi.ID, AcceptedSubmissionID: uuid.New(),
	})
	assert.ErrorIs(t, err, bracket.ErrNotFound)

	_, err = f.conflictService.ResolveConflict(ctx, f.organizer, ResolveConflictRequest{
		MatchID: uuid.New(), AcceptedSubmissionID: forA.ID,
	})
	assert.ErrorIs(t, err, bracket.ErrNotFound)

	assert.Zero(t, f.metrics.ConflictsResolved())
}

func TestResolveConflictTieSubmission(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tournament, _ := f.closedTournament(t, bracket.RoundRobin, 2)
	f.generate(t, tournament.ID)
	m := f.rounds(t, tournament.ID)[1][0]

	tie := f.submit(t, f.player, m.ID, []int{6, 3}, []int{3, 6}).Submission
	require.NotNil(t, tie)
	assert.Nil(t, tie.WinnerID)

	_, err := f.conflictService.ResolveConflict(ctx, f.organizer, ResolveConflictRequest{
		MatchID: m.ID, AcceptedSubmissionID: tie.ID,
	})
	assert.ErrorIs(t, err, bracket.ErrValidation)
}
