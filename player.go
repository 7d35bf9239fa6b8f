/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	minStatementLength = 10
	maxStatementLength = 500
	maxStatements      = 5
	minStatements      = 3
)

// Player holds the data we store server-side for one roster member.
// ID is stable across reconnects; ConnectionID is rebound each time the
// player's transport connection changes.
type Player struct {
	ID           string
	ConnectionID string
	Name         string
	IsHost       bool
	Score        int
	IsConnected  bool
	JoinedAt     time.Time

	statements []string
	used       map[int]bool
}

func newPlayer(connectionID, name string, isHost bool) *Player {
	return &Player{
		ID:           uuid.New().String(),
		ConnectionID: connectionID,
		Name:         name,
		IsHost:       isHost,
		IsConnected:  true,
		JoinedAt:     time.Now(),
		used:         make(map[int]bool),
	}
}

// AddStatement appends a truth statement after validating it against the
// player's existing pool.
func (p *Player) AddStatement(text string) error {
	trimmed := strings.TrimSpace(text)

	if trimmed == "" {
		return gameErr(ErrInvalidStatement, "statement cannot be empty")
	}

	// Limits are in characters, not bytes.
	length := utf8.RuneCountInString(trimmed)
	if length < minStatementLength {
		return gameErr(ErrInvalidStatement, "statement must be at least %d characters long", minStatementLength)
	}
	if length > maxStatementLength {
		return gameErr(ErrInvalidStatement, "statement must be at most %d characters long", maxStatementLength)
	}
	if len(p.statements) >= maxStatements {
		return gameErr(ErrStatementLimitReached, "cannot submit more than %d statements", maxStatements)
	}
	for _, s := range p.statements {
		if strings.EqualFold(s, trimmed) {
			return gameErr(ErrDuplicateStatement, "you have already submitted this statement")
		}
	}

	p.statements = append(p.statements, trimmed)

	return nil
}

// RemoveStatement deletes the statement at index, shifting usage marks for
// the statements after it.
func (p *Player) RemoveStatement(index int) error {
	if index < 0 || index >= len(p.statements) {
		return gameErr(ErrInvalidStatement, "invalid statement index: %d", index)
	}

	p.statements = append(p.statements[:index], p.statements[index+1:]...)

	shifted := make(map[int]bool, len(p.used))
	for i := range p.used {
		switch {
		case i < index:
			shifted[i] = true
		case i > index:
			shifted[i-1] = true
		}
	}
	p.used = shifted

	return nil
}

// StatementCount reports how many statements the player has submitted.
func (p *Player) StatementCount() int {
	return len(p.statements)
}

// Statements returns a copy of the player's statement pool.
func (p *Player) Statements() []string {
	out := make([]string, len(p.statements))
	copy(out, p.statements)
	return out
}

// UnusedIndices lists the indices of statements not yet played this game,
// in submission order.
func (p *Player) UnusedIndices() []int {
	indices := make([]int, 0, len(p.statements))
	for i := range p.statements {
		if !p.used[i] {
			indices = append(indices, i)
		}
	}
	return indices
}

func (p *Player) HasUnusedStatements() bool {
	return len(p.UnusedIndices()) > 0
}

// MarkStatementUsed records that the statement at index has been played and
// must never be selected again this game.
func (p *Player) MarkStatementUsed(index int) {
	if index >= 0 && index < len(p.statements) {
		p.used[index] = true
	}
}

// ResetForNewGame clears score and usage history but keeps submitted statements.
func (p *Player) ResetForNewGame() {
	p.Score = 0
	p.used = make(map[int]bool)
}

// ClearStatements wipes the statement pool entirely (host-initiated reset).
func (p *Player) ClearStatements() {
	p.statements = nil
	p.used = make(map[int]bool)
}

// Ready reports whether this player has submitted enough statements to play.
func (p *Player) Ready() bool {
	return len(p.statements) >= minStatements
}

// Rebind attaches the player to a new connection after a reconnect.
func (p *Player) Rebind(connectionID string) {
	p.ConnectionID = connectionID
	p.IsConnected = true
}

// PlayerInfo is the public view of a player, safe to broadcast to the room.
type PlayerInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	IsHost         bool   `json:"is_host"`
	StatementCount int    `json:"statement_count"`
	Score          int    `json:"score"`
	Ready          bool   `json:"ready"`
	IsConnected    bool   `json:"is_connected"`
}

func (p *Player) Info() PlayerInfo {
	return PlayerInfo{
		ID:             p.ID,
		Name:           p.Name,
		IsHost:         p.IsHost,
		StatementCount: len(p.statements),
		Score:          p.Score,
		Ready:          p.Ready(),
		IsConnected:    p.IsConnected,
	}
}

// PrivateInfo extends the public view with the player's own statements.
// Never sent to anyone but the player themselves.
type PrivateInfo struct {
	PlayerInfo
	Statements  []string `json:"statements"`
	UsedIndices []int    `json:"used_indices"`
}

func (p *Player) Private() PrivateInfo {
	usedIndices := make([]int, 0, len(p.used))
	for i := range p.statements {
		if p.used[i] {
			usedIndices = append(usedIndices, i)
		}
	}

	return PrivateInfo{
		PlayerInfo:  p.Info(),
		Statements:  p.Statements(),
		UsedIndices: usedIndices,
	}
}
