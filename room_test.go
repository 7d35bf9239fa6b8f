package main

import (
	"fmt"
	"testing"
)

func fillStatements(t *testing.T, p *Player, count int) {
	t.Helper()

	for i := 0; i < count; i++ {
		if err := p.AddStatement(fmt.Sprintf("a sufficiently long statement %d from %s", i, p.Name)); err != nil {
			t.Fatal(err)
		}
	}
}

func TestAddPlayerRules(t *testing.T) {
	r := newRoom("ABC123", 2)

	alice := newPlayer("c1", "Alice", true)
	if err := r.addPlayerLocked(alice); err != nil {
		t.Fatal(err)
	}

	if err := r.addPlayerLocked(newPlayer("c2", "alice", false)); errKind(err) != ErrNameTaken {
		t.Fatalf("case-insensitive duplicate name kind = %q, want %q", errKind(err), ErrNameTaken)
	}

	bob := newPlayer("c2", "Bob", false)
	if err := r.addPlayerLocked(bob); err != nil {
		t.Fatal(err)
	}

	if err := r.addPlayerLocked(newPlayer("c3", "Carol", false)); errKind(err) != ErrRoomFull {
		t.Fatalf("full room kind = %q, want %q", errKind(err), ErrRoomFull)
	}

	fillStatements(t, alice, 3)
	fillStatements(t, bob, 3)
	if err := r.startGameLocked(); err != nil {
		t.Fatal(err)
	}

	r2 := newRoom("XYZ789", 10)
	r2.phase = PhasePlaying
	if err := r2.addPlayerLocked(newPlayer("c4", "Dave", false)); errKind(err) != ErrGameInProgress {
		t.Fatalf("mid-game join kind = %q, want %q", errKind(err), ErrGameInProgress)
	}
}

func TestHostTransferFollowsJoinOrder(t *testing.T) {
	r := newRoom("ABC123", 10)

	alice := newPlayer("c1", "Alice", true)
	bob := newPlayer("c2", "Bob", false)
	carol := newPlayer("c3", "Carol", false)

	for _, p := range []*Player{alice, bob, carol} {
		if err := r.addPlayerLocked(p); err != nil {
			t.Fatal(err)
		}
	}

	r.removePlayerLocked(alice.ID)

	if host := r.hostLocked(); host == nil || host.ID != bob.ID {
		t.Fatal("host did not transfer to the next player in join order")
	}

	hosts := 0
	for _, p := range r.rosterLocked() {
		if p.IsHost {
			hosts++
		}
	}
	if hosts != 1 {
		t.Fatalf("host count = %d, want exactly 1", hosts)
	}

	r.removePlayerLocked(bob.ID)
	if host := r.hostLocked(); host == nil || host.ID != carol.ID {
		t.Fatal("host did not transfer to the last remaining player")
	}
}

func TestAllPlayersReadyRequiresTwoPlayers(t *testing.T) {
	r := newRoom("ABC123", 10)

	alice := newPlayer("c1", "Alice", true)
	if err := r.addPlayerLocked(alice); err != nil {
		t.Fatal(err)
	}
	fillStatements(t, alice, 5)

	if r.allPlayersReadyLocked() {
		t.Fatal("single-player roster must never be ready")
	}

	bob := newPlayer("c2", "Bob", false)
	if err := r.addPlayerLocked(bob); err != nil {
		t.Fatal(err)
	}

	if r.allPlayersReadyLocked() {
		t.Fatal("ready with a player below the statement minimum")
	}

	fillStatements(t, bob, 3)
	if !r.allPlayersReadyLocked() {
		t.Fatal("not ready with all players at the minimum")
	}
}

func TestStartGameResetsScoresAndUsage(t *testing.T) {
	r := newRoom("ABC123", 10)

	alice := newPlayer("c1", "Alice", true)
	bob := newPlayer("c2", "Bob", false)
	for _, p := range []*Player{alice, bob} {
		if err := r.addPlayerLocked(p); err != nil {
			t.Fatal(err)
		}
		fillStatements(t, p, 3)
	}

	alice.Score = 4
	alice.MarkStatementUsed(0)

	if err := r.startGameLocked(); err != nil {
		t.Fatal(err)
	}

	if r.phase != PhasePlaying {
		t.Fatalf("phase = %q, want %q", r.phase, PhasePlaying)
	}
	if alice.Score != 0 {
		t.Fatalf("score = %d after start, want 0", alice.Score)
	}
	if len(alice.UnusedIndices()) != 3 {
		t.Fatal("usage history not reset at game start")
	}
}

func TestStartGameNotReady(t *testing.T) {
	r := newRoom("ABC123", 10)

	if err := r.addPlayerLocked(newPlayer("c1", "Alice", true)); err != nil {
		t.Fatal(err)
	}

	if err := r.startGameLocked(); errKind(err) != ErrNotReady {
		t.Fatalf("start kind = %q, want %q", errKind(err), ErrNotReady)
	}
}

func TestResetReturnsToLobby(t *testing.T) {
	r := newRoom("ABC123", 10)

	alice := newPlayer("c1", "Alice", true)
	bob := newPlayer("c2", "Bob", false)
	for _, p := range []*Player{alice, bob} {
		if err := r.addPlayerLocked(p); err != nil {
			t.Fatal(err)
		}
		fillStatements(t, p, 3)
	}

	if err := r.startGameLocked(); err != nil {
		t.Fatal(err)
	}
	alice.Score = 2
	r.roundNumber = 4

	r.resetLocked()

	if r.phase != PhaseLobby {
		t.Fatalf("phase = %q after reset, want %q", r.phase, PhaseLobby)
	}
	if r.roundNumber != 1 {
		t.Fatalf("round number = %d after reset, want 1", r.roundNumber)
	}
	if alice.Score != 0 || alice.StatementCount() != 0 {
		t.Fatal("reset must clear scores and statements")
	}
}

func TestRoomInfoOmitsStatementTexts(t *testing.T) {
	r := newRoom("ABC123", 10)

	alice := newPlayer("c1", "Alice", true)
	if err := r.addPlayerLocked(alice); err != nil {
		t.Fatal(err)
	}
	fillStatements(t, alice, 3)

	info := r.infoLocked()

	if info.PlayerCount != 1 || len(info.Players) != 1 {
		t.Fatalf("player count = %d/%d, want 1", info.PlayerCount, len(info.Players))
	}
	if info.Players[0].StatementCount != 3 {
		t.Fatalf("statement count = %d, want 3", info.Players[0].StatementCount)
	}
	if info.Host == nil || info.Host.ID != alice.ID {
		t.Fatal("host missing from room info")
	}
}
