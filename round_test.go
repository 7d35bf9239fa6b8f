package main

import (
	"math/rand"
	"testing"
)

type stubLieGen struct {
	text string
}

func (g stubLieGen) GenerateLie(_ *Player) string {
	return g.text
}

func playingRoom(t *testing.T, statements int, names ...string) *Room {
	t.Helper()

	r := newRoom("ABC123", 10)
	for i, name := range names {
		p := newPlayer(name+"-conn", name, i == 0)
		if err := r.addPlayerLocked(p); err != nil {
			t.Fatal(err)
		}
		fillStatements(t, p, statements)
	}

	if err := r.startGameLocked(); err != nil {
		t.Fatal(err)
	}

	return r
}

func TestPrepareRoundInvariants(t *testing.T) {
	gen := stubLieGen{text: "I once juggled flaming torches on a unicycle"}

	for seed := int64(0); seed < 25; seed++ {
		rng := rand.New(rand.NewSource(seed))
		r := playingRoom(t, 3, "Alice", "Bob")

		round, ok := prepareRoundLocked(r, rng, gen)
		if !ok {
			t.Fatalf("seed %d: round preparation failed with statements remaining", seed)
		}

		actor := r.players[round.ActingPlayerID]
		if actor == nil {
			t.Fatalf("seed %d: acting player not in roster", seed)
		}

		if round.IsTruth {
			found := false
			for _, s := range actor.Statements() {
				if s == round.Statement {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("seed %d: truth round statement not from actor's pool", seed)
			}
			if len(actor.UnusedIndices()) != 2 {
				t.Fatalf("seed %d: truth statement not marked used", seed)
			}
		} else {
			if round.Statement != gen.text {
				t.Fatalf("seed %d: lie round statement = %q", seed, round.Statement)
			}
			if len(actor.UnusedIndices()) != 3 {
				t.Fatalf("seed %d: lie round must not consume statements", seed)
			}
		}

		if round.closed || len(round.votes) != 0 {
			t.Fatalf("seed %d: new round not open and empty", seed)
		}
		if r.currentRound != round {
			t.Fatalf("seed %d: round not installed on room", seed)
		}
	}
}

func TestPrepareRoundSkipsExhaustedPlayers(t *testing.T) {
	gen := stubLieGen{text: "I once found a secret garden behind a gym"}

	for seed := int64(0); seed < 25; seed++ {
		rng := rand.New(rand.NewSource(seed))
		r := playingRoom(t, 3, "Alice", "Bob", "Carol")

		// Exhaust everyone but Carol.
		var carol *Player
		for _, p := range r.rosterLocked() {
			if p.Name == "Carol" {
				carol = p
				continue
			}
			for _, i := range p.UnusedIndices() {
				p.MarkStatementUsed(i)
			}
		}

		round, ok := prepareRoundLocked(r, rng, gen)
		if !ok {
			t.Fatalf("seed %d: preparation failed with Carol unexhausted", seed)
		}
		if round.ActingPlayerID != carol.ID {
			t.Fatalf("seed %d: selected an exhausted player", seed)
		}
	}
}

func TestPrepareRoundExhaustion(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	gen := stubLieGen{text: "irrelevant lie text here"}

	r := playingRoom(t, 3, "Alice", "Bob")
	for _, p := range r.rosterLocked() {
		for _, i := range p.UnusedIndices() {
			p.MarkStatementUsed(i)
		}
	}

	if _, ok := prepareRoundLocked(r, rng, gen); ok {
		t.Fatal("round prepared from fully exhausted pools")
	}
}

func TestTruthLieSplit(t *testing.T) {
	// Over many seeded draws the split should land near 60/40. Wide margins
	// keep this robust while still catching an inverted or constant branch.
	gen := stubLieGen{text: "I once trained a parrot to answer the phone"}
	rng := rand.New(rand.NewSource(42))

	truths := 0
	const rounds = 1000

	for i := 0; i < rounds; i++ {
		r := playingRoom(t, 3, "Alice", "Bob")
		round, ok := prepareRoundLocked(r, rng, gen)
		if !ok {
			t.Fatal("round preparation failed")
		}
		if round.IsTruth {
			truths++
		}
	}

	if truths < rounds/2 || truths > rounds*7/10 {
		t.Fatalf("truth rounds = %d of %d, want roughly 60%%", truths, rounds)
	}
}
