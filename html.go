/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
)

// Single-page client for the game. Room codes arriving via the URL are
// pre-filled into the join form.
const clientHTML = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Bluffbox</title>
<style>
  body { font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; max-width: 40rem; }
  h1 { margin-bottom: 0.5rem; }
  #status { margin-bottom: 1rem; font-size: 0.9rem; color: #555; }
  section { margin: 1rem 0; padding: 1rem; border: 1px solid #ddd; border-radius: 6px; }
  button { margin: 0.25rem; padding: 0.5rem 1rem; cursor: pointer; }
  input { padding: 0.4rem; margin: 0.25rem; }
  ul { padding-left: 1.25rem; }
  .hidden { display: none; }
  #statement-box { width: 100%; box-sizing: border-box; }
</style>
</head>
<body>
<h1>Bluffbox</h1>
<div id="status">Connecting…</div>

<section id="lobby-forms">
  <input id="name" placeholder="Your name" maxlength="50">
  <input id="code" placeholder="Room code" maxlength="6" style="text-transform:uppercase">
  <div>
    <button onclick="createRoom()">Create room</button>
    <button onclick="joinRoom()">Join room</button>
    <button onclick="reconnect()">Reconnect</button>
  </div>
</section>

<section id="room" class="hidden">
  <h2>Room <span id="room-code"></span> <a id="qr-link" target="_blank">[QR]</a></h2>
  <ul id="players"></ul>
  <div id="truths">
    <input id="statement-box" placeholder="A true statement about yourself (10-500 chars)">
    <button onclick="submitTruth()">Submit truth</button>
    <ul id="my-truths"></ul>
  </div>
  <button id="start" class="hidden" onclick="send({type:'start-game'})">Start game</button>
  <button id="reset" class="hidden" onclick="send({type:'reset-game'})">Reset game</button>
</section>

<section id="round" class="hidden">
  <h2>Round <span id="round-number"></span></h2>
  <p><b id="actor"></b> says:</p>
  <blockquote id="statement"></blockquote>
  <button onclick="send({type:'submit-vote', vote:'truth'})">Truth</button>
  <button onclick="send({type:'submit-vote', vote:'lie'})">Lie</button>
  <button id="next" class="hidden" onclick="send({type:'next-round'})">Next round</button>
  <div id="results"></div>
</section>

<script>
(function() {
  const proto = (location.protocol === 'https:') ? 'wss://' : 'ws://';
  const ws = new WebSocket(proto + location.host + '/ws');
  const statusEl = document.getElementById('status');
  const show = (id, on) => document.getElementById(id).classList.toggle('hidden', !on);
  const text = (id, value) => document.getElementById(id).textContent = value;

  window.send = (msg) => ws.send(JSON.stringify(msg));
  window.createRoom = () => send({type: 'create-room', player_name: name()});
  window.joinRoom = () => send({type: 'join-room', player_name: name(), room_code: code()});
  window.reconnect = () => send({type: 'reconnect-player', player_name: name(), room_code: code()});
  window.submitTruth = () => {
    const box = document.getElementById('statement-box');
    send({type: 'submit-truth', statement: box.value});
    box.value = '';
  };

  function name() { return document.getElementById('name').value.trim(); }
  function code() { return document.getElementById('code').value.trim().toUpperCase(); }

  const parts = location.pathname.split('/');
  if (parts.length >= 3 && parts[parts.length - 2] === 'game') {
    document.getElementById('code').value = parts[parts.length - 1];
  }

  function renderRoom(room) {
    show('room', true);
    text('room-code', room.code);
    document.getElementById('qr-link').href = '/game/' + room.code + '/qr';
    const list = document.getElementById('players');
    list.innerHTML = '';
    room.players.forEach(p => {
      const li = document.createElement('li');
      li.textContent = p.name + (p.is_host ? ' (host)' : '') + ': ' +
        p.statement_count + ' truths, ' + p.score + ' pts' +
        (p.is_connected ? '' : ' [offline]');
      list.appendChild(li);
    });
    show('start', room.all_players_ready);
  }

  function renderMine(you) {
    const list = document.getElementById('my-truths');
    list.innerHTML = '';
    (you.statements || []).forEach((s, i) => {
      const li = document.createElement('li');
      li.textContent = s + ' ';
      const btn = document.createElement('button');
      btn.textContent = 'x';
      btn.onclick = () => send({type: 'remove-truth', index: i});
      li.appendChild(btn);
      list.appendChild(li);
    });
  }

  function renderRound(round) {
    show('round', true);
    document.getElementById('results').innerHTML = '';
    show('next', false);
    text('round-number', round.number);
    text('actor', round.acting_player.name);
    text('statement', round.statement);
  }

  ws.onopen = () => statusEl.textContent = 'Connected.';
  ws.onclose = () => statusEl.textContent = 'Disconnected.';

  ws.onmessage = (e) => {
    const msg = JSON.parse(e.data);
    if (!msg.success && msg.error) {
      statusEl.textContent = msg.error;
      return;
    }
    const d = msg.data || {};
    switch (msg.type) {
      case 'room-created':
      case 'joined-room':
        renderRoom(d.room);
        renderMine(d.you);
        show('lobby-forms', false);
        break;
      case 'reconnected':
        renderRoom(d.room);
        renderMine(d.you);
        show('lobby-forms', false);
        if (d.round) renderRound(d.round);
        break;
      case 'player-joined':
      case 'player-updated':
      case 'player-disconnected':
      case 'player-reconnected':
      case 'game-reset':
        renderRoom(d.room || d);
        break;
      case 'truth-submitted':
      case 'truth-removed':
        renderMine(d);
        break;
      case 'game-started':
        renderRoom(d.room);
        renderRound(d.round);
        break;
      case 'new-round':
        renderRound(d);
        break;
      case 'vote-status-updated':
        statusEl.textContent = d.votes_received + '/' + d.total_voters + ' votes in';
        break;
      case 'round-ended': {
        const truth = d.is_truth ? 'the truth' : 'a lie';
        const lines = ['That was ' + truth + '.',
          'Truth votes: ' + d.truth_votes + ', lie votes: ' + d.lie_votes];
        (d.scoreboard || []).forEach(p => lines.push(p.name + ': ' + p.score));
        document.getElementById('results').innerText = lines.join('\n');
        show('next', !d.game_complete);
        show('reset', d.game_complete);
        break;
      }
      case 'game-ended':
        statusEl.textContent = d.winner ? ('Winner: ' + d.winner.name) : 'Game over';
        show('reset', true);
        break;
    }
  };
})();
</script>
</body>
</html>
`

func serveClientPage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(clientHTML))
	}
}

func serveHomePage(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(clientHTML))
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: Amazonbot
Disallow: /

User-agent: Applebot-Extended
Disallow: /

User-agent: Bytespider
Disallow: /

User-agent: CCBot
Disallow: /

User-agent: ClaudeBot
Disallow: /

User-agent: Google-Extended
Disallow: /

User-agent: GPTBot
Disallow: /

User-agent: meta-externalagent
Disallow: /`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}
