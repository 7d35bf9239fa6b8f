// Bluffbox truth-or-lie party game
//
// Players join a shared room and submit short true statements about
// themselves. Each round, one player's statement (or a fabricated lie) is put
// to an anonymous truth/lie vote. Correct guesses score a point; a successful
// lie scores the acting player a point per person fooled.
//
// Features:
// - WebSockets per connection, rooms addressed by 6-character codes
// - Room creator becomes host; host status transfers in join order
// - 3-5 truth statements per player, gated to the lobby phase
// - 60/40 truth/lie rounds over each player's unused statement pool
// - Voting closes when every eligible voter has cast exactly one vote
// - Reconnection by room code + name, preserving score and usage history
// - Idle rooms swept after a configurable timeout
// - In-browser QR button to share a room, backed by go-qrcode

package main

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

var (
	playerNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\s\-_]{1,50}$`)
	roomCodePattern   = regexp.MustCompile(`^[A-Z0-9]{6}$`)
)

func validPlayerName(name string) bool {
	return playerNamePattern.MatchString(strings.TrimSpace(name))
}

func validRoomCode(code string) bool {
	return roomCodePattern.MatchString(strings.ToUpper(strings.TrimSpace(code)))
}

// ClientMessage is the envelope for every event coming from clients.
type ClientMessage struct {
	Type       string `json:"type"`
	PlayerName string `json:"player_name,omitempty"`
	RoomCode   string `json:"room_code,omitempty"`
	Statement  string `json:"statement,omitempty"`
	Index      *int   `json:"index,omitempty"`
	Vote       string `json:"vote,omitempty"`
}

// ServerMessage is the envelope for every event sent to clients.
type ServerMessage struct {
	Type      string `json:"type"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Data      any    `json:"data,omitempty"`
}

func event(kind string, data any) ServerMessage {
	return ServerMessage{Type: kind, Success: true, Data: data}
}

func failure(kind string, err error) ServerMessage {
	return ServerMessage{
		Type:      kind,
		Error:     err.Error(),
		ErrorKind: string(errKind(err)),
	}
}

type Client struct {
	conn *websocket.Conn
	send chan any
	id   string
}

// GameServer bridges websocket connections to the GameManager. It tracks
// which room each connection belongs to so results can be broadcast to all
// room members or replied to the triggering connection only.
type GameServer struct {
	cfg *Config
	gm  *GameManager

	mu      sync.Mutex
	clients map[string]*Client // connection ID -> client
	members map[string]string  // connection ID -> room code
}

func newGameServer(cfg *Config, gm *GameManager) *GameServer {
	return &GameServer{
		cfg:     cfg,
		gm:      gm,
		clients: make(map[string]*Client),
		members: make(map[string]string),
	}
}

func (s *GameServer) register(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients[c.id] = c
}

func (s *GameServer) unregister(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c.id]; ok {
		delete(s.clients, c.id)
		delete(s.members, c.id)
		close(c.send)
	}
}

func (s *GameServer) joinRoom(connID, roomCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.members[connID] = roomCode
}

func (s *GameServer) roomOf(connID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.members[connID]
}

// broadcast sends msg to every member of the room. Connections with a full
// send buffer are dropped, matching slow-reader handling elsewhere.
func (s *GameServer) broadcast(roomCode string, msg ServerMessage) {
	if roomCode == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, code := range s.members {
		if code != roomCode {
			continue
		}
		client, ok := s.clients[id]
		if !ok {
			continue
		}

		select {
		case client.send <- msg:
		default:
			delete(s.clients, id)
			delete(s.members, id)
			close(client.send)
		}
	}
}

// broadcastOthers sends msg to every room member except connID.
func (s *GameServer) broadcastOthers(roomCode, connID string, msg ServerMessage) {
	if roomCode == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, code := range s.members {
		if code != roomCode || id == connID {
			continue
		}
		client, ok := s.clients[id]
		if !ok {
			continue
		}

		select {
		case client.send <- msg:
		default:
			delete(s.clients, id)
			delete(s.members, id)
			close(client.send)
		}
	}
}

func (s *GameServer) reply(c *Client, msg ServerMessage) {
	select {
	case c.send <- msg:
	default:
		s.unregister(c)
	}
}

// handleMessage dispatches one client event to the orchestrator and fans the
// results out. The manager resolves all state under its locks; broadcasting
// happens strictly afterwards.
func (s *GameServer) handleMessage(c *Client, msg ClientMessage) {
	switch msg.Type {
	case "create-room":
		if !validPlayerName(msg.PlayerName) {
			s.reply(c, failure("room-created", gameErr(ErrInvalidStatement, "player name must be 1-50 letters, numbers, spaces, hyphens, or underscores")))
			return
		}

		result, err := s.gm.CreateRoom(c.id, strings.TrimSpace(msg.PlayerName))
		if err != nil {
			s.reply(c, failure("room-created", err))
			return
		}

		s.joinRoom(c.id, result.RoomCode)
		s.reply(c, event("room-created", result))
		logf(s.cfg, "GAMES: Room %s created by %q", result.RoomCode, msg.PlayerName)

	case "join-room":
		if !validRoomCode(msg.RoomCode) || !validPlayerName(msg.PlayerName) {
			s.reply(c, failure("joined-room", gameErr(ErrRoomNotFound, "invalid room code or player name")))
			return
		}

		result, err := s.gm.JoinRoom(c.id, msg.RoomCode, strings.TrimSpace(msg.PlayerName))
		if err != nil {
			s.reply(c, failure("joined-room", err))
			return
		}

		s.joinRoom(c.id, result.Room.Code)
		s.reply(c, event("joined-room", result))
		s.broadcastOthers(result.Room.Code, c.id, event("player-joined", result.Room))
		logf(s.cfg, "GAMES: Player %q joined room %s", msg.PlayerName, result.Room.Code)

	case "submit-truth":
		result, err := s.gm.SubmitStatement(c.id, msg.Statement)
		if err != nil {
			s.reply(c, failure("truth-submitted", err))
			return
		}

		s.reply(c, event("truth-submitted", result.You))
		s.broadcast(result.Room.Code, event("player-updated", result.Room))

	case "remove-truth":
		if msg.Index == nil {
			s.reply(c, failure("truth-removed", gameErr(ErrInvalidStatement, "statement index is required")))
			return
		}

		result, err := s.gm.RemoveStatement(c.id, *msg.Index)
		if err != nil {
			s.reply(c, failure("truth-removed", err))
			return
		}

		s.reply(c, event("truth-removed", result.You))
		s.broadcast(result.Room.Code, event("player-updated", result.Room))

	case "start-game":
		result, err := s.gm.StartGame(c.id)
		if err != nil {
			s.reply(c, failure("game-started", err))
			return
		}

		s.broadcast(result.Room.Code, event("game-started", result))
		logf(s.cfg, "GAMES: Game started in room %s", result.Room.Code)

	case "submit-vote":
		status, err := s.gm.SubmitVote(c.id, Vote(msg.Vote))
		if err != nil {
			s.reply(c, failure("vote-submitted", err))
			return
		}

		s.reply(c, event("vote-submitted", status))

		roomCode := s.roomOf(c.id)

		if !status.AllVotesIn {
			s.broadcast(roomCode, event("vote-status-updated", status))
			return
		}

		roundResult, err := s.gm.EndRound(roomCode)
		if err != nil {
			// Another submission already triggered resolution.
			return
		}

		s.broadcast(roomCode, event("round-ended", roundResult))

		if roundResult.GameComplete {
			report, err := s.gm.EndGame(roomCode)
			if err != nil {
				return
			}
			s.broadcast(roomCode, event("game-ended", report))
			logf(s.cfg, "GAMES: Game complete in room %s", roomCode)
		}

	case "next-round":
		roomCode := s.roomOf(c.id)

		round, err := s.gm.NextRound(roomCode)
		if err != nil {
			if errKind(err) == ErrNoRoundsRemaining {
				if report, endErr := s.gm.EndGame(roomCode); endErr == nil {
					s.broadcast(roomCode, event("game-ended", report))
					return
				}
			}
			s.reply(c, failure("new-round", err))
			return
		}

		s.broadcast(roomCode, event("new-round", round))

	case "reset-game":
		result, err := s.gm.ResetGame(c.id)
		if err != nil {
			s.reply(c, failure("game-reset", err))
			return
		}

		s.broadcast(result.Code, event("game-reset", result))
		logf(s.cfg, "GAMES: Game reset in room %s", result.Code)

	case "reconnect-player":
		if !validRoomCode(msg.RoomCode) || !validPlayerName(msg.PlayerName) {
			s.reply(c, failure("reconnected", gameErr(ErrRoomNotFound, "invalid room code or player name")))
			return
		}

		result, err := s.gm.Reconnect(c.id, msg.RoomCode, strings.TrimSpace(msg.PlayerName))
		if err != nil {
			s.reply(c, failure("reconnected", err))
			return
		}

		s.joinRoom(c.id, result.Room.Code)
		s.reply(c, event("reconnected", result))
		s.broadcastOthers(result.Room.Code, c.id, event("player-reconnected", result.Room))
		logf(s.cfg, "GAMES: Player %q reconnected to room %s", msg.PlayerName, result.Room.Code)

	case "leave-room":
		result := s.gm.LeaveRoom(c.id)

		s.mu.Lock()
		delete(s.members, c.id)
		s.mu.Unlock()

		if result.RoomExists {
			s.broadcast(result.RoomCode, event("player-left", result))
		}

	default:
		// ignore unknown types
	}
}

// handleDisconnect marks the player disconnected without removing them from
// the roster, so they keep their turn slot and can still be voted on.
func (s *GameServer) handleDisconnect(c *Client) {
	result := s.gm.Disconnect(c.id)

	if result.RoomExists && result.PlayerName != "" {
		s.broadcast(result.RoomCode, event("player-disconnected", result))
		logf(s.cfg, "GAMES: Player %q disconnected from room %s", result.PlayerName, result.RoomCode)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func newConnectionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	return hex.EncodeToString(buf)
}

func serveWS(cfg *Config, s *GameServer) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: websocket upgrade from %s: %v", realIP(r), err)
			return
		}

		client := &Client{
			conn: conn,
			send: make(chan any, 8),
			id:   newConnectionID(),
		}

		s.register(client)

		go client.writePump()
		client.readPump(s)
	}
}

func (c *Client) readPump(s *GameServer) {
	defer func() {
		s.handleDisconnect(c)
		s.unregister(c)
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		s.handleMessage(c, msg)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for a room's join URL using go-qrcode.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if !validRoomCode(code) {
		http.Error(w, "invalid room code", http.StatusBadRequest)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:code/qr; strip trailing "/qr" to get the join URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// registerBluffboxGame sets up routes so that:
//   - $path/:code       → HTML client, pre-filled with the room code
//   - $path/:code/qr    → PNG QR code for that room's join URL
//   - /ws               → WebSocket carrying all game events
func registerBluffboxGame(cfg *Config, path string, mux *httprouter.Router, s *GameServer) {
	mux.GET(cfg.prefix+"/ws", serveWS(cfg, s))
	mux.GET(cfg.prefix+path+"/:code", serveClientPage(cfg))
	mux.GET(cfg.prefix+path+"/:code/qr", qrHandler)
}
