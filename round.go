/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"math/rand"
)

// Vote is a single player's guess about the current statement.
type Vote string

const (
	VoteTruth Vote = "truth"
	VoteLie   Vote = "lie"
)

func (v Vote) valid() bool {
	return v == VoteTruth || v == VoteLie
}

// Probability that a round uses one of the acting player's real statements
// instead of a fabricated lie.
const truthProbability = 0.6

// Round is one statement-and-vote cycle with a single acting player.
// Once closed, a round is never mutated again.
type Round struct {
	Number         int
	ActingPlayerID string
	Statement      string
	IsTruth        bool

	votes  map[string]Vote // voter player ID -> guess
	closed bool
}

// RoundInfo is the public view of a round: the statement and actor, but
// never the truth flag while voting is open.
type RoundInfo struct {
	Number       int        `json:"number"`
	ActingPlayer PlayerInfo `json:"acting_player"`
	Statement    string     `json:"statement"`
}

func (rd *Round) infoFor(actor *Player) RoundInfo {
	return RoundInfo{
		Number:       rd.Number,
		ActingPlayer: actor.Info(),
		Statement:    rd.Statement,
	}
}

// prepareRoundLocked implements round selection: the acting player is chosen
// uniformly from players that still have unused statements, then the round is
// a truth with probability truthProbability, falling back to a generated lie
// when the actor's unused pool is empty. Truth statements are marked used at
// selection time. Returns false when every player's pool is exhausted, which
// is the game-completion condition.
func prepareRoundLocked(r *Room, rng *rand.Rand, gen LieGenerator) (*Round, bool) {
	var pool []*Player
	for _, p := range r.rosterLocked() {
		if p.HasUnusedStatements() {
			pool = append(pool, p)
		}
	}

	if len(pool) == 0 {
		return nil, false
	}

	actor := pool[rng.Intn(len(pool))]

	round := &Round{
		Number:         r.roundNumber,
		ActingPlayerID: actor.ID,
		votes:          make(map[string]Vote),
	}

	unused := actor.UnusedIndices()
	if rng.Float64() < truthProbability && len(unused) > 0 {
		index := unused[rng.Intn(len(unused))]
		round.Statement = actor.Statements()[index]
		round.IsTruth = true
		actor.MarkStatementUsed(index)
	} else {
		round.Statement = gen.GenerateLie(actor)
		round.IsTruth = false
	}

	r.currentRound = round
	r.touchLocked()

	return round, true
}
