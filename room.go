/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"strings"
	"sync"
	"time"
)

// Phase represents the lifecycle state of a room.
type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhasePlaying  Phase = "playing"
	PhaseComplete Phase = "complete"
)

// Room is one isolated game session identified by a short code. All mutable
// state below mu is guarded by it; operations on different rooms never share
// state and run concurrently.
type Room struct {
	Code       string
	MaxPlayers int
	CreatedAt  time.Time

	mu           sync.Mutex
	players      map[string]*Player
	order        []string // player IDs in join order
	phase        Phase
	roundNumber  int
	currentRound *Round
	lastActivity time.Time
	evicted      bool
}

func newRoom(code string, maxPlayers int) *Room {
	now := time.Now()
	return &Room{
		Code:         code,
		MaxPlayers:   maxPlayers,
		CreatedAt:    now,
		players:      make(map[string]*Player),
		phase:        PhaseLobby,
		roundNumber:  1,
		lastActivity: now,
	}
}

func (r *Room) touchLocked() {
	r.lastActivity = time.Now()
}

// openLocked refuses operations that resolved the room before the sweeper
// evicted it. Such callers were already blocked on r.mu when the room left
// the manager's tables, so anything they wrote would be silently lost.
func (r *Room) openLocked() error {
	if r.evicted {
		return gameErr(ErrRoomNotFound, "room %s not found", r.Code)
	}
	return nil
}

// addPlayerLocked inserts a new player, enforcing the lobby-only, room-size,
// and unique-name rules.
func (r *Room) addPlayerLocked(p *Player) error {
	if r.phase != PhaseLobby {
		return gameErr(ErrGameInProgress, "game already in progress")
	}
	if len(r.players) >= r.MaxPlayers {
		return gameErr(ErrRoomFull, "room %s is full", r.Code)
	}
	if r.playerByNameLocked(p.Name) != nil {
		return gameErr(ErrNameTaken, "the name %q is already taken", p.Name)
	}

	r.players[p.ID] = p
	r.order = append(r.order, p.ID)
	r.touchLocked()

	return nil
}

// removePlayerLocked drops a player from the roster. If the removed player
// was host, host status transfers to the next player in join order.
func (r *Room) removePlayerLocked(playerID string) bool {
	p, ok := r.players[playerID]
	if !ok {
		return false
	}

	delete(r.players, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if p.IsHost && len(r.order) > 0 {
		r.players[r.order[0]].IsHost = true
	}

	r.touchLocked()

	return true
}

func (r *Room) playerByNameLocked(name string) *Player {
	for _, p := range r.players {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

// hostLocked returns the current host, or nil for an empty roster.
func (r *Room) hostLocked() *Player {
	for _, p := range r.players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

// rosterLocked returns all players in join order.
func (r *Room) rosterLocked() []*Player {
	players := make([]*Player, 0, len(r.order))
	for _, id := range r.order {
		players = append(players, r.players[id])
	}
	return players
}

// allPlayersReadyLocked is true iff at least two players are present and
// every one of them has submitted the minimum number of statements.
func (r *Room) allPlayersReadyLocked() bool {
	if len(r.players) < 2 {
		return false
	}

	for _, p := range r.players {
		if !p.Ready() {
			return false
		}
	}

	return true
}

// startGameLocked transitions the room into play, resetting every player's
// score and usage history. The first round is prepared by the caller.
func (r *Room) startGameLocked() error {
	if !r.allPlayersReadyLocked() {
		return gameErr(ErrNotReady, "all players must submit at least %d statements", minStatements)
	}

	for _, p := range r.players {
		p.ResetForNewGame()
	}

	r.phase = PhasePlaying
	r.roundNumber = 1
	r.currentRound = nil
	r.touchLocked()

	return nil
}

// resetLocked returns the room to the lobby, wiping statements, scores, and
// usage history.
func (r *Room) resetLocked() {
	for _, p := range r.players {
		p.ResetForNewGame()
		p.ClearStatements()
	}

	r.phase = PhaseLobby
	r.roundNumber = 1
	r.currentRound = nil
	r.touchLocked()
}

// anyUnusedStatementsLocked reports whether any player still has a statement
// left to play. Game completion is exactly the negation of this.
func (r *Room) anyUnusedStatementsLocked() bool {
	for _, p := range r.players {
		if p.HasUnusedStatements() {
			return true
		}
	}
	return false
}

// RoomInfo is the public view of a room, safe to broadcast to its members.
type RoomInfo struct {
	Code            string       `json:"code"`
	Players         []PlayerInfo `json:"players"`
	Phase           Phase        `json:"phase"`
	RoundNumber     int          `json:"round_number"`
	MaxPlayers      int          `json:"max_players"`
	PlayerCount     int          `json:"player_count"`
	Host            *PlayerInfo  `json:"host,omitempty"`
	AllPlayersReady bool         `json:"all_players_ready"`
	CreatedAt       time.Time    `json:"created_at"`
}

func (r *Room) infoLocked() RoomInfo {
	players := make([]PlayerInfo, 0, len(r.order))
	for _, p := range r.rosterLocked() {
		players = append(players, p.Info())
	}

	info := RoomInfo{
		Code:            r.Code,
		Players:         players,
		Phase:           r.phase,
		RoundNumber:     r.roundNumber,
		MaxPlayers:      r.MaxPlayers,
		PlayerCount:     len(r.players),
		AllPlayersReady: r.allPlayersReadyLocked(),
		CreatedAt:       r.CreatedAt,
	}

	if host := r.hostLocked(); host != nil {
		hostInfo := host.Info()
		info.Host = &hostInfo
	}

	return info
}
