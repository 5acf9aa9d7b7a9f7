package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// Hub manages all connected clients and routes them to sessions
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	sessions   *SessionManager
	seats      *SeatAuth
	baseMatch  MatchSetup // template for create requests
	publicURL  string
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
}

// NewHub creates a new Hub
func NewHub(sessions *SessionManager, seats *SeatAuth, baseMatch MatchSetup, publicURL string) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		sessions:   sessions,
		seats:      seats,
		baseMatch:  baseMatch,
		publicURL:  strings.TrimSuffix(publicURL, "/"),
		ipConns:    make(map[string]int),
	}
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			client.detach()
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}

// BuildSetup turns a create request into a match setup. Human slots come
// first, then bots.
func (h *Hub) BuildSetup(msg CreateMsg) (MatchSetup, error) {
	setup := h.baseMatch
	if msg.Mode != "" {
		var mode GameMode
		if err := mode.UnmarshalText([]byte(msg.Mode)); err != nil {
			return MatchSetup{}, err
		}
		setup = DefaultMatchSetup(mode)
	}
	if msg.Arena != "" {
		setup.Arena = msg.Arena
	}

	humans, bots := msg.Humans, msg.Bots
	if humans == 0 && bots == 0 && len(setup.Players) > 0 {
		return setup, nil
	}
	if humans < 0 || bots < 0 {
		return MatchSetup{}, fmt.Errorf("player counts must not be negative")
	}
	if humans == 0 && bots == 0 {
		humans = 1
	}
	if humans+bots > MaxPlayersPerMatch {
		return MatchSetup{}, fmt.Errorf("match allows at most %d players", MaxPlayersPerMatch)
	}
	setup.Players = make([]PlayerSetup, 0, humans+bots)
	for i := 0; i < humans; i++ {
		setup.Players = append(setup.Players, PlayerSetup{Name: fmt.Sprintf("P%d", i+1), Vehicle: msg.Vehicle})
	}
	for i := 0; i < bots; i++ {
		setup.Players = append(setup.Players, PlayerSetup{Name: fmt.Sprintf("Bot %d", i+1), Bot: true, Vehicle: msg.Vehicle})
	}
	return setup, nil
}

// IssueSeat checks the host PIN and signs a seat token for a human slot
func (h *Hub) IssueSeat(sid string, slot int, pin, ip string) (string, error) {
	sess := h.sessions.GetSession(sid)
	if sess == nil {
		return "", fmt.Errorf("session not found")
	}
	setup := sess.Game.Setup()
	if slot < 0 || slot >= len(setup.Players) {
		return "", fmt.Errorf("no slot %d", slot)
	}
	if setup.Players[slot].Bot {
		return "", fmt.Errorf("slot %d is a bot", slot)
	}
	if err := h.seats.CheckHostPin(pin, ip); err != nil {
		log.Warn().Str("sid", sid).Int("slot", slot).Str("ip", ip).Err(err).Msg("seat refused")
		return "", err
	}
	return h.seats.IssueSeat(sid, slot)
}

// ControllerURL is the page a controller opens for a seat token
func (h *Hub) ControllerURL(sid, token string) string {
	return h.publicURL + "/" + sid + "?seat=" + token
}
