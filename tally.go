/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"math/rand"
	"sort"
)

// VoteStatus reports progress of the current round's vote after a submission.
type VoteStatus struct {
	VotesReceived int  `json:"votes_received"`
	TotalVoters   int  `json:"total_voters"`
	AllVotesIn    bool `json:"all_votes_in"`
}

// submitVoteLocked records one player's guess for the current round. The
// returned status carries the all-votes-in signal that triggers resolution;
// because vote insertion and the threshold check happen under the room lock,
// exactly one submission observes the transition.
func submitVoteLocked(r *Room, voter *Player, vote Vote) (VoteStatus, error) {
	if r.phase != PhasePlaying || r.currentRound == nil {
		return VoteStatus{}, gameErr(ErrGameNotActive, "no round is in progress")
	}

	round := r.currentRound

	if round.closed {
		return VoteStatus{}, gameErr(ErrVotingClosed, "voting is already complete for this round")
	}
	if voter.ID == round.ActingPlayerID {
		return VoteStatus{}, gameErr(ErrSelfVote, "cannot vote on your own statement")
	}
	if _, ok := round.votes[voter.ID]; ok {
		return VoteStatus{}, gameErr(ErrAlreadyVoted, "already voted this round")
	}

	round.votes[voter.ID] = vote
	r.touchLocked()

	totalVoters := len(r.players) - 1

	return VoteStatus{
		VotesReceived: len(round.votes),
		TotalVoters:   totalVoters,
		AllVotesIn:    len(round.votes) >= totalVoters,
	}, nil
}

// VoterResult is one voter's guess and whether it was correct.
type VoterResult struct {
	Player  PlayerInfo `json:"player"`
	Vote    Vote       `json:"vote"`
	Correct bool       `json:"correct"`
}

// RoundResult summarizes a resolved round.
type RoundResult struct {
	Statement     string         `json:"statement"`
	IsTruth       bool           `json:"is_truth"`
	ActingPlayer  PlayerInfo     `json:"acting_player"`
	TruthVotes    int            `json:"truth_votes"`
	LieVotes      int            `json:"lie_votes"`
	Voters        []VoterResult  `json:"voters"`
	PointsAwarded map[string]int `json:"points_awarded"` // player ID -> points this round
	Scoreboard    []PlayerInfo   `json:"scoreboard"`
	GameComplete  bool           `json:"game_complete"`
}

// resolveRoundLocked closes the current round and applies scoring: +1 to each
// correct guesser, plus one point to the acting player per truth vote cast
// against a lie. Resolution is idempotent-guarded; a closed round cannot be
// resolved twice.
func resolveRoundLocked(r *Room) (*RoundResult, error) {
	if r.currentRound == nil {
		return nil, gameErr(ErrGameNotActive, "no round is in progress")
	}

	round := r.currentRound

	if round.closed {
		return nil, gameErr(ErrVotingClosed, "round already resolved")
	}
	round.closed = true

	actor := r.players[round.ActingPlayerID]

	result := &RoundResult{
		Statement:     round.Statement,
		IsTruth:       round.IsTruth,
		PointsAwarded: make(map[string]int),
	}
	if actor != nil {
		result.ActingPlayer = actor.Info()
	}

	for _, voter := range r.rosterLocked() {
		vote, ok := round.votes[voter.ID]
		if !ok {
			continue
		}

		if vote == VoteTruth {
			result.TruthVotes++
		} else {
			result.LieVotes++
		}

		correct := (vote == VoteTruth && round.IsTruth) || (vote == VoteLie && !round.IsTruth)
		if correct {
			voter.Score++
			result.PointsAwarded[voter.ID]++
		}

		result.Voters = append(result.Voters, VoterResult{
			Player:  voter.Info(),
			Vote:    vote,
			Correct: correct,
		})
	}

	// A lie scores one bonus point per player fooled into voting truth.
	if !round.IsTruth && actor != nil && result.TruthVotes > 0 {
		actor.Score += result.TruthVotes
		result.PointsAwarded[actor.ID] += result.TruthVotes
	}

	r.roundNumber++

	if !r.anyUnusedStatementsLocked() {
		result.GameComplete = true
		r.phase = PhaseComplete
	}

	result.Scoreboard = scoreboardLocked(r)
	r.touchLocked()

	return result, nil
}

// advanceRoundLocked prepares the next round, forcing completion when every
// statement pool is exhausted.
func advanceRoundLocked(r *Room, rng *rand.Rand, gen LieGenerator) (*Round, error) {
	if r.phase == PhaseComplete {
		return nil, gameErr(ErrNoRoundsRemaining, "game is already complete")
	}
	if r.phase != PhasePlaying {
		return nil, gameErr(ErrGameNotActive, "game has not been started")
	}

	round, ok := prepareRoundLocked(r, rng, gen)
	if !ok {
		r.phase = PhaseComplete
		return nil, gameErr(ErrNoRoundsRemaining, "no more rounds available")
	}

	return round, nil
}

// scoreboardLocked returns the roster sorted by descending score. The sort is
// stable over join order, so ties keep their prior relative position.
func scoreboardLocked(r *Room) []PlayerInfo {
	board := make([]PlayerInfo, 0, len(r.players))
	for _, p := range r.rosterLocked() {
		board = append(board, p.Info())
	}

	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Score > board[j].Score
	})

	return board
}

// FinalReport summarizes a finished game.
type FinalReport struct {
	Winner          *PlayerInfo  `json:"winner,omitempty"`
	Scoreboard      []PlayerInfo `json:"scoreboard"`
	TotalRounds     int          `json:"total_rounds"`
	TotalPlayers    int          `json:"total_players"`
	TotalStatements int          `json:"total_statements"`
}

func finalReportLocked(r *Room) *FinalReport {
	report := &FinalReport{
		Scoreboard:   scoreboardLocked(r),
		TotalRounds:  r.roundNumber - 1,
		TotalPlayers: len(r.players),
	}

	for _, p := range r.players {
		report.TotalStatements += p.StatementCount()
	}

	if len(report.Scoreboard) > 0 {
		report.Winner = &report.Scoreboard[0]
	}

	return report
}
