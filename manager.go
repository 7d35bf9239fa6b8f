/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	crand "crypto/rand"
	"math/rand"
	"strings"
	"sync"
	"time"
)

type session struct {
	playerID string
	roomCode string
}

// GameManager owns the room-code→Room and connection-id→session lookup
// tables and sequences every externally-triggered operation. All cross-room
// state lives behind gm.mu; per-room state is guarded by each room's own
// lock, so operations on different rooms run concurrently. Lock order is
// always gm.mu before room.mu.
type GameManager struct {
	mu    sync.Mutex
	rooms map[string]*Room
	conns map[string]session

	rng         *rand.Rand
	gen         LieGenerator
	maxPlayers  int
	gamesPlayed int
}

// lockedSource makes a math/rand source safe for use across rooms.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source64
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}

// newGameManager wires the orchestrator. rng and gen are injectable so tests
// can pin selection outcomes; pass nil for production defaults.
func newGameManager(maxPlayers int, rng *rand.Rand, gen LieGenerator) *GameManager {
	if rng == nil {
		src := rand.NewSource(time.Now().UnixNano()).(rand.Source64)
		rng = rand.New(&lockedSource{src: src})
	}
	if gen == nil {
		gen = newLieGenerator(rng)
	}

	return &GameManager{
		rooms:      make(map[string]*Room),
		conns:      make(map[string]session),
		rng:        rng,
		gen:        gen,
		maxPlayers: maxPlayers,
	}
}

const roomCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newRoomCode generates a crypto-random 6-character room code and ensures it
// doesn't collide with a live room. Caller must hold gm.mu.
func (gm *GameManager) newRoomCodeLocked() string {
	for {
		buf := make([]byte, 6)
		if _, err := crand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 6)
		for i := range out {
			out[i] = roomCodeChars[int(buf[i])%len(roomCodeChars)]
		}
		code := string(out)

		if _, exists := gm.rooms[code]; !exists {
			return code
		}
	}
}

// lookup resolves a connection to its room and player. The room is returned
// unlocked.
func (gm *GameManager) lookup(connectionID string) (*Room, string, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	sess, ok := gm.conns[connectionID]
	if !ok {
		return nil, "", gameErr(ErrPlayerNotFound, "player not found")
	}

	room, ok := gm.rooms[sess.roomCode]
	if !ok {
		return nil, "", gameErr(ErrRoomNotFound, "room %s not found", sess.roomCode)
	}

	return room, sess.playerID, nil
}

func (gm *GameManager) roomByCode(code string) (*Room, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	room, ok := gm.rooms[strings.ToUpper(code)]
	if !ok {
		return nil, gameErr(ErrRoomNotFound, "room %s not found", strings.ToUpper(code))
	}

	return room, nil
}

// CreateResult is returned from CreateRoom.
type CreateResult struct {
	RoomCode string      `json:"room_code"`
	Room     RoomInfo    `json:"room"`
	Player   PlayerInfo  `json:"player"`
	You      PrivateInfo `json:"you"`
}

// CreateRoom opens a new room with the creating player as host.
func (gm *GameManager) CreateRoom(connectionID, playerName string) (*CreateResult, error) {
	player := newPlayer(connectionID, playerName, true)

	gm.mu.Lock()
	code := gm.newRoomCodeLocked()
	room := newRoom(code, gm.maxPlayers)
	gm.rooms[code] = room
	gm.conns[connectionID] = session{playerID: player.ID, roomCode: code}
	gm.mu.Unlock()

	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.addPlayerLocked(player); err != nil {
		return nil, err
	}

	return &CreateResult{
		RoomCode: code,
		Room:     room.infoLocked(),
		Player:   player.Info(),
		You:      player.Private(),
	}, nil
}

// JoinResult is returned from JoinRoom.
type JoinResult struct {
	Room   RoomInfo    `json:"room"`
	Player PlayerInfo  `json:"player"`
	You    PrivateInfo `json:"you"`
}

// JoinRoom adds a player to an existing lobby.
func (gm *GameManager) JoinRoom(connectionID, roomCode, playerName string) (*JoinResult, error) {
	room, err := gm.roomByCode(roomCode)
	if err != nil {
		return nil, err
	}

	player := newPlayer(connectionID, playerName, false)

	room.mu.Lock()
	err = room.openLocked()
	if err == nil {
		err = room.addPlayerLocked(player)
	}
	info := room.infoLocked()
	room.mu.Unlock()

	if err != nil {
		return nil, err
	}

	gm.mu.Lock()
	gm.conns[connectionID] = session{playerID: player.ID, roomCode: room.Code}
	gm.mu.Unlock()

	return &JoinResult{
		Room:   info,
		Player: player.Info(),
		You:    player.Private(),
	}, nil
}

// StatementResult is returned from statement submission and removal.
type StatementResult struct {
	Room   RoomInfo    `json:"room"`
	Player PlayerInfo  `json:"player"`
	You    PrivateInfo `json:"you"`
}

// SubmitStatement appends a truth statement to the calling player's pool.
// Only allowed while the room is in the lobby.
func (gm *GameManager) SubmitStatement(connectionID, text string) (*StatementResult, error) {
	room, playerID, err := gm.lookup(connectionID)
	if err != nil {
		return nil, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.openLocked(); err != nil {
		return nil, err
	}
	if room.phase != PhaseLobby {
		return nil, gameErr(ErrGameInProgress, "cannot submit statements after the game has started")
	}

	player, ok := room.players[playerID]
	if !ok {
		return nil, gameErr(ErrPlayerNotFound, "player not found in room %s", room.Code)
	}

	if err := player.AddStatement(text); err != nil {
		return nil, err
	}
	room.touchLocked()

	return &StatementResult{
		Room:   room.infoLocked(),
		Player: player.Info(),
		You:    player.Private(),
	}, nil
}

// RemoveStatement deletes a pending statement by index while in the lobby.
func (gm *GameManager) RemoveStatement(connectionID string, index int) (*StatementResult, error) {
	room, playerID, err := gm.lookup(connectionID)
	if err != nil {
		return nil, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.openLocked(); err != nil {
		return nil, err
	}
	if room.phase != PhaseLobby {
		return nil, gameErr(ErrGameInProgress, "cannot remove statements after the game has started")
	}

	player, ok := room.players[playerID]
	if !ok {
		return nil, gameErr(ErrPlayerNotFound, "player not found in room %s", room.Code)
	}

	if err := player.RemoveStatement(index); err != nil {
		return nil, err
	}
	room.touchLocked()

	return &StatementResult{
		Room:   room.infoLocked(),
		Player: player.Info(),
		You:    player.Private(),
	}, nil
}

// StartResult is returned from StartGame.
type StartResult struct {
	Room  RoomInfo  `json:"room"`
	Round RoundInfo `json:"round"`
}

// StartGame begins play. Host only; requires every player ready.
func (gm *GameManager) StartGame(connectionID string) (*StartResult, error) {
	room, playerID, err := gm.lookup(connectionID)
	if err != nil {
		return nil, err
	}

	result, err := startGame(room, playerID, gm.rng, gm.gen)
	if err != nil {
		return nil, err
	}

	gm.mu.Lock()
	gm.gamesPlayed++
	gm.mu.Unlock()

	return result, nil
}

// startGame runs the start transition under the room lock. The caller bumps
// manager counters afterwards; taking gm.mu with room.mu held would invert
// the lock order and wedge against the sweeper.
func startGame(room *Room, playerID string, rng *rand.Rand, gen LieGenerator) (*StartResult, error) {
	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.openLocked(); err != nil {
		return nil, err
	}

	player, ok := room.players[playerID]
	if !ok {
		return nil, gameErr(ErrPlayerNotFound, "player not found in room %s", room.Code)
	}
	if !player.IsHost {
		return nil, gameErr(ErrNotHost, "only the host can start the game")
	}
	if room.phase == PhasePlaying {
		return nil, gameErr(ErrGameInProgress, "game already in progress")
	}

	if err := room.startGameLocked(); err != nil {
		return nil, err
	}

	round, ok := prepareRoundLocked(room, rng, gen)
	if !ok {
		// Unreachable when every player is ready, but never leave the room
		// in a started state with no round.
		room.phase = PhaseComplete
		return nil, gameErr(ErrNoRoundsRemaining, "no rounds available")
	}

	return &StartResult{
		Room:  room.infoLocked(),
		Round: round.infoFor(room.players[round.ActingPlayerID]),
	}, nil
}

// SubmitVote records the calling player's guess for the current round.
func (gm *GameManager) SubmitVote(connectionID string, vote Vote) (VoteStatus, error) {
	if !vote.valid() {
		return VoteStatus{}, gameErr(ErrGameNotActive, "vote must be either %q or %q", VoteTruth, VoteLie)
	}

	room, playerID, err := gm.lookup(connectionID)
	if err != nil {
		return VoteStatus{}, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.openLocked(); err != nil {
		return VoteStatus{}, err
	}

	player, ok := room.players[playerID]
	if !ok {
		return VoteStatus{}, gameErr(ErrPlayerNotFound, "player not found in room %s", room.Code)
	}

	return submitVoteLocked(room, player, vote)
}

// EndRound resolves the current round, applying scores. Triggered by the
// transport when a vote submission reports all votes in.
func (gm *GameManager) EndRound(roomCode string) (*RoundResult, error) {
	room, err := gm.roomByCode(roomCode)
	if err != nil {
		return nil, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.openLocked(); err != nil {
		return nil, err
	}

	return resolveRoundLocked(room)
}

// NextRound advances to the next round, or reports exhaustion.
func (gm *GameManager) NextRound(roomCode string) (*RoundInfo, error) {
	room, err := gm.roomByCode(roomCode)
	if err != nil {
		return nil, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.openLocked(); err != nil {
		return nil, err
	}

	round, err := advanceRoundLocked(room, gm.rng, gm.gen)
	if err != nil {
		return nil, err
	}

	info := round.infoFor(room.players[round.ActingPlayerID])

	return &info, nil
}

// EndGame produces the final report for a completed game.
func (gm *GameManager) EndGame(roomCode string) (*FinalReport, error) {
	room, err := gm.roomByCode(roomCode)
	if err != nil {
		return nil, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.openLocked(); err != nil {
		return nil, err
	}

	room.phase = PhaseComplete
	room.touchLocked()

	return finalReportLocked(room), nil
}

// ResetGame returns the room to the lobby. Host only.
func (gm *GameManager) ResetGame(connectionID string) (*RoomInfo, error) {
	room, playerID, err := gm.lookup(connectionID)
	if err != nil {
		return nil, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.openLocked(); err != nil {
		return nil, err
	}

	player, ok := room.players[playerID]
	if !ok {
		return nil, gameErr(ErrPlayerNotFound, "player not found in room %s", room.Code)
	}
	if !player.IsHost {
		return nil, gameErr(ErrNotHost, "only the host can reset the game")
	}

	room.resetLocked()
	info := room.infoLocked()

	return &info, nil
}

// DisconnectResult describes the roster after a player's connection drops.
type DisconnectResult struct {
	RoomCode   string       `json:"room_code"`
	PlayerName string       `json:"player_name"`
	RoomExists bool         `json:"room_exists"`
	Players    []PlayerInfo `json:"players"`
}

// Disconnect marks the player disconnected but keeps them in the roster;
// a disconnected player still occupies their turn slot and can be voted on.
func (gm *GameManager) Disconnect(connectionID string) *DisconnectResult {
	gm.mu.Lock()
	sess, ok := gm.conns[connectionID]
	if ok {
		delete(gm.conns, connectionID)
	}
	room := gm.rooms[sess.roomCode]
	gm.mu.Unlock()

	if !ok || room == nil {
		return &DisconnectResult{}
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	player, exists := room.players[sess.playerID]
	if !exists {
		return &DisconnectResult{RoomCode: room.Code, RoomExists: true}
	}

	player.IsConnected = false
	room.touchLocked()

	info := room.infoLocked()

	return &DisconnectResult{
		RoomCode:   room.Code,
		PlayerName: player.Name,
		RoomExists: true,
		Players:    info.Players,
	}
}

// LeaveRoom removes the player from the roster entirely. An emptied room is
// deleted immediately.
func (gm *GameManager) LeaveRoom(connectionID string) *DisconnectResult {
	gm.mu.Lock()
	sess, ok := gm.conns[connectionID]
	if ok {
		delete(gm.conns, connectionID)
	}
	room := gm.rooms[sess.roomCode]
	gm.mu.Unlock()

	if !ok || room == nil {
		return &DisconnectResult{}
	}

	room.mu.Lock()
	player := room.players[sess.playerID]
	name := ""
	if player != nil {
		name = player.Name
	}
	room.removePlayerLocked(sess.playerID)
	empty := len(room.players) == 0
	info := room.infoLocked()
	room.mu.Unlock()

	if empty {
		gm.mu.Lock()
		delete(gm.rooms, room.Code)
		gm.mu.Unlock()

		return &DisconnectResult{RoomCode: room.Code, PlayerName: name}
	}

	return &DisconnectResult{
		RoomCode:   room.Code,
		PlayerName: name,
		RoomExists: true,
		Players:    info.Players,
	}
}

// ReconnectResult is a snapshot sufficient to resume a client's UI after a
// reconnect. Other players' statement texts are never included.
type ReconnectResult struct {
	Room       RoomInfo     `json:"room"`
	You        PrivateInfo  `json:"you"`
	Round      *RoundInfo   `json:"round,omitempty"`
	Scoreboard []PlayerInfo `json:"scoreboard,omitempty"`
}

// Reconnect rebinds an existing player, found by case-insensitive name, to a
// new connection.
func (gm *GameManager) Reconnect(connectionID, roomCode, playerName string) (*ReconnectResult, error) {
	room, err := gm.roomByCode(roomCode)
	if err != nil {
		return nil, err
	}

	room.mu.Lock()

	if err := room.openLocked(); err != nil {
		room.mu.Unlock()
		return nil, err
	}

	player := room.playerByNameLocked(playerName)
	if player == nil {
		room.mu.Unlock()
		return nil, gameErr(ErrPlayerNotFound, "player %q not found in room %s", playerName, room.Code)
	}

	player.Rebind(connectionID)
	room.touchLocked()

	result := &ReconnectResult{
		Room: room.infoLocked(),
		You:  player.Private(),
	}

	if room.phase != PhaseLobby {
		result.Scoreboard = scoreboardLocked(room)

		if round := room.currentRound; round != nil && !round.closed {
			if actor, ok := room.players[round.ActingPlayerID]; ok {
				info := round.infoFor(actor)
				result.Round = &info
			}
		}
	}

	playerID := player.ID
	room.mu.Unlock()

	gm.mu.Lock()
	gm.conns[connectionID] = session{playerID: playerID, roomCode: room.Code}
	gm.mu.Unlock()

	return result, nil
}

// Stats reports orchestrator-level counters.
type Stats struct {
	ActiveRooms      int `json:"active_rooms"`
	ActivePlayers    int `json:"active_players"`
	TotalGamesPlayed int `json:"total_games_played"`
}

func (gm *GameManager) Stats() Stats {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	return Stats{
		ActiveRooms:      len(gm.rooms),
		ActivePlayers:    len(gm.conns),
		TotalGamesPlayed: gm.gamesPlayed,
	}
}

// sweepLoop periodically evicts rooms idle for longer than timeout. Each
// room's own lock is taken while checking, so a room is never evicted while
// an operation on it is in flight.
func (gm *GameManager) sweepLoop(ctx context.Context, cfg *Config) {
	ticker := time.NewTicker(cfg.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, code := range gm.sweepOnce(cfg.roomTimeout) {
				logf(cfg, "GAMES: Evicted idle room %s", code)
			}
		}
	}
}

// sweepOnce evicts every room idle for longer than timeout and releases the
// associated player sessions. Returns the evicted room codes.
func (gm *GameManager) sweepOnce(timeout time.Duration) []string {
	cutoff := time.Now().Add(-timeout)

	gm.mu.Lock()
	defer gm.mu.Unlock()

	var evicted []string

	for code, room := range gm.rooms {
		room.mu.Lock()
		idle := room.lastActivity.Before(cutoff)
		empty := len(room.players) == 0

		if !idle && !empty {
			room.mu.Unlock()
			continue
		}

		// Mark the room before releasing its lock so operations that
		// resolved it ahead of this sweep are refused, not lost.
		room.evicted = true
		delete(gm.rooms, code)
		for _, p := range room.players {
			delete(gm.conns, p.ConnectionID)
		}
		room.mu.Unlock()

		evicted = append(evicted, code)
	}

	return evicted
}
