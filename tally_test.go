package main

import (
	"math/rand"
	"testing"
)

// installRound places a hand-built round on the room, bypassing selection so
// scoring can be tested for both truth and lie outcomes.
func installRound(r *Room, actor *Player, isTruth bool) *Round {
	round := &Round{
		Number:         r.roundNumber,
		ActingPlayerID: actor.ID,
		Statement:      "I once swapped salt for sugar at a bake sale",
		IsTruth:        isTruth,
		votes:          make(map[string]Vote),
	}
	r.currentRound = round
	return round
}

func TestSubmitVoteRejections(t *testing.T) {
	r := playingRoom(t, 3, "Alice", "Bob", "Carol")
	roster := r.rosterLocked()
	alice, bob := roster[0], roster[1]

	r.currentRound = nil
	if _, err := submitVoteLocked(r, bob, VoteTruth); errKind(err) != ErrGameNotActive {
		t.Fatalf("no-round kind = %q, want %q", errKind(err), ErrGameNotActive)
	}

	installRound(r, alice, true)

	if _, err := submitVoteLocked(r, alice, VoteTruth); errKind(err) != ErrSelfVote {
		t.Fatalf("self-vote kind = %q, want %q", errKind(err), ErrSelfVote)
	}

	if _, err := submitVoteLocked(r, bob, VoteTruth); err != nil {
		t.Fatal(err)
	}
	if _, err := submitVoteLocked(r, bob, VoteLie); errKind(err) != ErrAlreadyVoted {
		t.Fatalf("double-vote kind = %q, want %q", errKind(err), ErrAlreadyVoted)
	}
	if len(r.currentRound.votes) != 1 {
		t.Fatalf("tally = %d after rejected double vote, want 1", len(r.currentRound.votes))
	}

	r.currentRound.closed = true
	carol := roster[2]
	if _, err := submitVoteLocked(r, carol, VoteLie); errKind(err) != ErrVotingClosed {
		t.Fatalf("closed-round kind = %q, want %q", errKind(err), ErrVotingClosed)
	}
}

func TestAllVotesInBoundary(t *testing.T) {
	r := playingRoom(t, 3, "Alice", "Bob", "Carol")
	roster := r.rosterLocked()
	alice, bob, carol := roster[0], roster[1], roster[2]

	installRound(r, alice, true)

	status, err := submitVoteLocked(r, bob, VoteTruth)
	if err != nil {
		t.Fatal(err)
	}
	if status.AllVotesIn || status.VotesReceived != 1 || status.TotalVoters != 2 {
		t.Fatalf("status after first vote = %+v", status)
	}

	status, err = submitVoteLocked(r, carol, VoteLie)
	if err != nil {
		t.Fatal(err)
	}
	if !status.AllVotesIn || status.VotesReceived != 2 {
		t.Fatalf("status after final vote = %+v", status)
	}
}

func TestResolveTruthRoundScoring(t *testing.T) {
	r := playingRoom(t, 3, "Alice", "Bob", "Carol")
	roster := r.rosterLocked()
	alice, bob, carol := roster[0], roster[1], roster[2]

	installRound(r, alice, true)
	if _, err := submitVoteLocked(r, bob, VoteTruth); err != nil {
		t.Fatal(err)
	}
	if _, err := submitVoteLocked(r, carol, VoteLie); err != nil {
		t.Fatal(err)
	}

	result, err := resolveRoundLocked(r)
	if err != nil {
		t.Fatal(err)
	}

	if bob.Score != 1 || carol.Score != 0 {
		t.Fatalf("scores = bob %d, carol %d; want 1, 0", bob.Score, carol.Score)
	}
	if alice.Score != 0 {
		t.Fatalf("acting player scored %d on a truth round, want 0", alice.Score)
	}
	if result.TruthVotes != 1 || result.LieVotes != 1 {
		t.Fatalf("tallies = %d truth / %d lie", result.TruthVotes, result.LieVotes)
	}
	if result.PointsAwarded[bob.ID] != 1 {
		t.Fatalf("points awarded = %v", result.PointsAwarded)
	}
	if r.roundNumber != 2 {
		t.Fatalf("round number = %d after resolution, want 2", r.roundNumber)
	}
}

func TestResolveLieRoundBonus(t *testing.T) {
	r := playingRoom(t, 3, "Alice", "Bob", "Carol")
	roster := r.rosterLocked()
	alice, bob, carol := roster[0], roster[1], roster[2]

	installRound(r, alice, false)
	if _, err := submitVoteLocked(r, bob, VoteTruth); err != nil {
		t.Fatal(err)
	}
	if _, err := submitVoteLocked(r, carol, VoteTruth); err != nil {
		t.Fatal(err)
	}

	result, err := resolveRoundLocked(r)
	if err != nil {
		t.Fatal(err)
	}

	// Both voters were fooled: no guesser points, two bonus points for Alice.
	if bob.Score != 0 || carol.Score != 0 {
		t.Fatalf("fooled voters scored: bob %d, carol %d", bob.Score, carol.Score)
	}
	if alice.Score != 2 {
		t.Fatalf("lie bonus = %d, want 2 (one per truth vote)", alice.Score)
	}
	if result.PointsAwarded[alice.ID] != 2 {
		t.Fatalf("points awarded = %v", result.PointsAwarded)
	}

	for _, v := range result.Voters {
		if v.Correct {
			t.Fatalf("voter %s marked correct on a lie they believed", v.Player.Name)
		}
	}
}

func TestResolveLieRoundMixedVotes(t *testing.T) {
	r := playingRoom(t, 3, "Alice", "Bob", "Carol")
	roster := r.rosterLocked()
	alice, bob, carol := roster[0], roster[1], roster[2]

	installRound(r, alice, false)
	if _, err := submitVoteLocked(r, bob, VoteLie); err != nil {
		t.Fatal(err)
	}
	if _, err := submitVoteLocked(r, carol, VoteTruth); err != nil {
		t.Fatal(err)
	}

	if _, err := resolveRoundLocked(r); err != nil {
		t.Fatal(err)
	}

	if bob.Score != 1 {
		t.Fatalf("correct lie-guesser score = %d, want 1", bob.Score)
	}
	if alice.Score != 1 {
		t.Fatalf("bonus = %d with one truth vote, want 1", alice.Score)
	}
	if carol.Score != 0 {
		t.Fatalf("fooled voter score = %d, want 0", carol.Score)
	}
}

func TestResolveRoundExactlyOnce(t *testing.T) {
	r := playingRoom(t, 3, "Alice", "Bob")
	roster := r.rosterLocked()
	alice, bob := roster[0], roster[1]

	installRound(r, alice, true)
	if _, err := submitVoteLocked(r, bob, VoteTruth); err != nil {
		t.Fatal(err)
	}

	if _, err := resolveRoundLocked(r); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveRoundLocked(r); errKind(err) != ErrVotingClosed {
		t.Fatalf("second resolution kind = %q, want %q", errKind(err), ErrVotingClosed)
	}

	if bob.Score != 1 {
		t.Fatalf("score = %d after duplicate resolution attempt, want 1", bob.Score)
	}
}

func TestScoreboardOrderingStable(t *testing.T) {
	r := playingRoom(t, 3, "Alice", "Bob", "Carol", "Dave")
	roster := r.rosterLocked()

	roster[0].Score = 1
	roster[1].Score = 3
	roster[2].Score = 1
	roster[3].Score = 0

	board := scoreboardLocked(r)

	for i := 1; i < len(board); i++ {
		if board[i].Score > board[i-1].Score {
			t.Fatalf("scoreboard not non-increasing: %+v", board)
		}
	}

	// Alice and Carol are tied; join order must be preserved.
	if board[1].Name != "Alice" || board[2].Name != "Carol" {
		t.Fatalf("tie order broken: %s before %s", board[1].Name, board[2].Name)
	}
}

func TestGameCompletionOnExhaustion(t *testing.T) {
	r := playingRoom(t, 3, "Alice", "Bob")
	roster := r.rosterLocked()
	alice, bob := roster[0], roster[1]

	// Leave exactly one unused statement in the room.
	for _, p := range roster {
		for _, i := range p.UnusedIndices() {
			p.MarkStatementUsed(i)
		}
	}
	alice.used = map[int]bool{0: true, 1: true}

	installRound(r, alice, true)
	alice.MarkStatementUsed(2)

	if _, err := submitVoteLocked(r, bob, VoteTruth); err != nil {
		t.Fatal(err)
	}

	result, err := resolveRoundLocked(r)
	if err != nil {
		t.Fatal(err)
	}

	if !result.GameComplete {
		t.Fatal("game not complete with every pool exhausted")
	}
	if r.phase != PhaseComplete {
		t.Fatalf("phase = %q, want %q", r.phase, PhaseComplete)
	}
}

func TestGameNotCompleteWhileStatementsRemain(t *testing.T) {
	r := playingRoom(t, 3, "Alice", "Bob")
	roster := r.rosterLocked()
	alice, bob := roster[0], roster[1]

	installRound(r, alice, true)
	alice.MarkStatementUsed(0)

	if _, err := submitVoteLocked(r, bob, VoteLie); err != nil {
		t.Fatal(err)
	}

	result, err := resolveRoundLocked(r)
	if err != nil {
		t.Fatal(err)
	}

	if result.GameComplete {
		t.Fatal("game complete with unused statements remaining")
	}
}

func TestAdvanceRoundForcesCompletion(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	gen := stubLieGen{text: "I once hosted a trivia night by accident"}

	r := playingRoom(t, 3, "Alice", "Bob")
	for _, p := range r.rosterLocked() {
		for _, i := range p.UnusedIndices() {
			p.MarkStatementUsed(i)
		}
	}

	if _, err := advanceRoundLocked(r, rng, gen); errKind(err) != ErrNoRoundsRemaining {
		t.Fatalf("advance on exhausted pools kind = %q, want %q", errKind(err), ErrNoRoundsRemaining)
	}
	if r.phase != PhaseComplete {
		t.Fatalf("phase = %q after forced completion, want %q", r.phase, PhaseComplete)
	}

	if _, err := advanceRoundLocked(r, rng, gen); errKind(err) != ErrNoRoundsRemaining {
		t.Fatalf("advance on complete game kind = %q, want %q", errKind(err), ErrNoRoundsRemaining)
	}
}

func TestFinalReport(t *testing.T) {
	r := playingRoom(t, 3, "Alice", "Bob")
	roster := r.rosterLocked()
	roster[0].Score = 2
	roster[1].Score = 5
	r.roundNumber = 7

	report := finalReportLocked(r)

	if report.Winner == nil || report.Winner.Name != "Bob" {
		t.Fatalf("winner = %+v, want Bob", report.Winner)
	}
	if report.TotalRounds != 6 {
		t.Fatalf("total rounds = %d, want 6", report.TotalRounds)
	}
	if report.TotalStatements != 6 {
		t.Fatalf("total statements = %d, want 6", report.TotalStatements)
	}
}
