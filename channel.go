/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Browser channels
//
// Every /corpse/:channel URL is a chat channel of its own, with its own game
// session. Players connect over a websocket, type the same commands the
// Discord bot accepts (/join, /start, /play, /reveal, /clear), and every
// reply is broadcast to everyone connected to that channel.
//
// - First visit to /corpse redirects to a random 8-char channel id
// - Players are identified by cookie; display names come from ?name=
// - A QR code at /corpse/:channel/qr shares the channel with phones nearby
// - Channels with nobody connected are closed after the idle timeout; the
//   game in that channel survives and is there when someone reconnects

package main

import (
	"crypto/rand"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"

	"github.com/dogarrowtype/exquisite-corpse-game-discord-bot/internal/command"
)

const (
	maxNameLength   = 32
	channelIDLength = 8
)

// Messages coming from clients
type InboundMessage struct {
	Line string `json:"line"` // e.g. "/play the quick brown fox"
}

// Messages sent to clients
type OutboundMessage struct {
	Type    string   `json:"type"`              // "session_info", "message", "roster"
	Channel string   `json:"channel,omitempty"` // session_info
	Name    string   `json:"name,omitempty"`    // session_info: your name; message: who ran the command
	Command string   `json:"command,omitempty"` // message
	Text    string   `json:"text,omitempty"`    // message
	Players []string `json:"players,omitempty"` // roster: connected names
}

type Client struct {
	conn   *websocket.Conn
	send   chan OutboundMessage
	userID string
	name   string
}

type commandRequest struct {
	client *Client
	msg    InboundMessage
}

// Hub fans one browser channel's traffic in to the dispatcher and the
// replies back out to every connected client.
type Hub struct {
	id      string
	clients map[*Client]bool
	names   map[string]string // userID -> display name, kept after disconnect for mentions

	register chan *Client
	unreg    chan *Client
	commands chan commandRequest
	done     chan struct{}
	closing  sync.Once

	mu sync.RWMutex

	createdAt  time.Time
	lastActive time.Time
}

func newHub(channelID string) *Hub {
	now := time.Now()
	return &Hub{
		id:         channelID,
		clients:    make(map[*Client]bool),
		names:      make(map[string]string),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		commands:   make(chan commandRequest),
		done:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
	}
}

// sessionKey keeps browser channel ids apart from Discord channel ids in the
// shared store.
func (h *Hub) sessionKey() string {
	return "web:" + h.id
}

// Mention renders a player for replies in this channel.
func (h *Hub) Mention(userID string) string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if name, ok := h.names[userID]; ok {
		return "@" + name
	}
	return "@" + shortID(userID)
}

func (h *Hub) run(dispatcher *command.Dispatcher) {
	for {
		select {
		case <-h.done:
			return

		case c := <-h.register:
			// closeAll closes done before taking mu, so checking done under
			// mu means c is either rejected here or closed by closeAll.
			h.mu.Lock()
			select {
			case <-h.done:
				h.mu.Unlock()
				close(c.send)
				return
			default:
			}

			h.lastActive = time.Now()
			h.clients[c] = true
			h.names[c.userID] = c.name

			// c.send is fresh and buffered, so this never blocks.
			c.send <- OutboundMessage{
				Type:    "session_info",
				Channel: h.id,
				Name:    c.name,
			}

			h.broadcastRosterLocked()
			h.mu.Unlock()

		case c := <-h.unreg:
			h.mu.Lock()
			h.lastActive = time.Now()

			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.broadcastRosterLocked()
			h.mu.Unlock()

		case req := <-h.commands:
			h.handleCommand(dispatcher, req)
		}
	}
}

func (h *Hub) handleCommand(dispatcher *command.Dispatcher, req commandRequest) {
	name, args := command.Parse(req.msg.Line)
	if name == "" {
		return
	}

	// Dispatch takes the read lock through Mention, so it runs unlocked.
	reply := dispatcher.Dispatch(h, command.Request{
		Channel: h.sessionKey(),
		User:    req.client.userID,
		Name:    name,
		Args:    args,
	})

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	for _, text := range reply.Messages {
		h.broadcastLocked(OutboundMessage{
			Type:    "message",
			Name:    req.client.name,
			Command: string(name),
			Text:    text,
		})
	}
}

// broadcastLocked assumes h.mu is already held. Clients that cannot keep up
// are dropped.
func (h *Hub) broadcastLocked(msg OutboundMessage) {
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *Hub) broadcastRosterLocked() {
	seen := make(map[string]bool, len(h.clients))
	players := make([]string, 0, len(h.clients))
	for c := range h.clients {
		if seen[c.userID] {
			continue
		}
		seen[c.userID] = true
		players = append(players, c.name)
	}

	h.broadcastLocked(OutboundMessage{
		Type:    "roster",
		Players: players,
	})
}

// closeAll disconnects all clients of this hub and stops its loop.
func (h *Hub) closeAll() {
	h.closing.Do(func() {
		close(h.done)
	})

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		if c.conn != nil {
			_ = c.conn.Close()
		}
		delete(h.clients, c)
	}
}

func (h *Hub) numClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const playerCookieName = "corpse_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

func shortID(userID string) string {
	if len(userID) > 8 {
		return userID[:8]
	}
	return userID
}

// displayName cleans up a requested name, falling back to one derived from
// the player's id.
func displayName(requested, userID string) string {
	name := strings.Join(strings.Fields(requested), " ")
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)

	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}

	if name == "" {
		return "player-" + shortID(userID)
	}
	return name
}

// ChannelManager holds a set of hubs keyed by channel id, so each
// $path/$channel is its own isolated channel.
type ChannelManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration
	dispatcher  *command.Dispatcher
	stop        chan struct{}
	stopOnce    sync.Once
}

func newChannelManager(dispatcher *command.Dispatcher, idleTimeout time.Duration) *ChannelManager {
	cm := &ChannelManager{
		hubs:        make(map[string]*Hub),
		idleTimeout: idleTimeout,
		dispatcher:  dispatcher,
		stop:        make(chan struct{}),
	}
	if idleTimeout > 0 {
		go cm.reaperLoop()
	}
	return cm
}

func (cm *ChannelManager) getHub(channelID string) *Hub {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if hub, ok := cm.hubs[channelID]; ok {
		return hub
	}

	hub := newHub(channelID)
	cm.hubs[channelID] = hub
	go hub.run(cm.dispatcher)

	log.Debug().Str("component", "GAMES").Str("channel", channelID).Msg("opened browser channel")

	return hub
}

// newChannelID generates a crypto-random channel id and ensures it doesn't
// collide with open channels.
func (cm *ChannelManager) newChannelID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, channelIDLength)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, channelIDLength)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		cm.mu.Lock()
		_, exists := cm.hubs[id]
		cm.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reap closes hubs that nobody is connected to and that have been idle
// since before cutoff. Their game sessions stay in the store.
func (cm *ChannelManager) reap(cutoff time.Time) int {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	reaped := 0
	for id, hub := range cm.hubs {
		hub.mu.RLock()
		last := hub.lastActive
		connected := len(hub.clients)
		hub.mu.RUnlock()

		if connected == 0 && last.Before(cutoff) {
			delete(cm.hubs, id)
			go hub.closeAll()
			reaped++
		}
	}

	return reaped
}

func (cm *ChannelManager) reaperLoop() {
	ticker := time.NewTicker(cm.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-cm.stop:
			return
		case <-ticker.C:
			if n := cm.reap(time.Now().Add(-cm.idleTimeout)); n > 0 {
				log.Debug().Str("component", "GAMES").Int("channels", n).Msg("closed idle browser channels")
			}
		}
	}
}

// Close stops the reaper and disconnects every client.
func (cm *ChannelManager) Close() {
	cm.stopOnce.Do(func() {
		close(cm.stop)
	})

	cm.mu.Lock()
	defer cm.mu.Unlock()

	for id, hub := range cm.hubs {
		delete(cm.hubs, id)
		hub.closeAll()
	}
}

// WebSocket handler that picks the hub based on :channel
func serveWSForManager(cm *ChannelManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		channelID := ps.ByName("channel")
		if channelID == "" {
			http.Error(w, "missing channel id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)

		hub := cm.getHub(channelID)

		conn, err := upgrader.Upgrade(w, r, w.Header())
		if err != nil {
			log.Debug().Str("component", "SERVE").Err(err).Str("remote", realIP(r)).Msg("websocket upgrade failed")
			return
		}

		client := &Client{
			conn:   conn,
			send:   make(chan OutboundMessage, 16),
			userID: playerID,
			name:   displayName(r.URL.Query().Get("name"), playerID),
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = conn.Close()
			return
		}

		log.Debug().Str("component", "GAMES").Str("channel", channelID).Str("player", client.name).Int("connected", hub.numClients()).Msg("player connected")

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg InboundMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		select {
		case h.commands <- commandRequest{client: c, msg: msg}:
		case <-h.done:
			return
		}
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

// qrHandler generates a PNG QR code for the current channel URL.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	channelID := ps.ByName("channel")
	if channelID == "" {
		http.Error(w, "missing channel id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}

	// We are at /.../:channel/qr; strip trailing "/qr" to get the channel URL.
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

// redirectNewChannel handles GET /path by generating a new random channel
// id and redirecting to /path/:channel.
func redirectNewChannel(cfg *Config, path string, cm *ChannelManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		channelID := cm.newChannelID()
		log.Debug().Str("component", "GAMES").Str("channel", channelID).Msg("created browser channel")
		http.Redirect(w, r, cfg.prefix+path+"/"+channelID, http.StatusTemporaryRedirect)
	}
}

// registerCorpseChannels sets up routes so that:
//   - $path                  → redirects to a new random channel
//   - $path/:channel         → HTML client
//   - $path/:channel/ws      → WebSocket for that channel
//   - $path/:channel/qr      → PNG QR code for that channel URL
func registerCorpseChannels(cfg *Config, path string, mux *httprouter.Router, dispatcher *command.Dispatcher) *ChannelManager {
	cm := newChannelManager(dispatcher, cfg.sessionTimeout)

	mux.GET(cfg.prefix+path, redirectNewChannel(cfg, path, cm))

	mux.GET(cfg.prefix+path+"/:channel", serveEmbedded(cfg, "text/html; charset=utf-8", indexHTML, true))

	mux.GET(cfg.prefix+"/assets/corpse/app.css", serveEmbedded(cfg, "text/css; charset=utf-8", corpseCSS, false))
	mux.GET(cfg.prefix+"/assets/corpse/app.js", serveEmbedded(cfg, "application/javascript; charset=utf-8", corpseJS, false))

	mux.GET(cfg.prefix+path+"/:channel/ws", serveWSForManager(cm))

	mux.GET(cfg.prefix+path+"/:channel/qr", qrHandler)

	return cm
}
