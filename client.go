package main

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50
	maxSessionNameLen = 30
	binaryMarker      = 0xFF
)

// Client represents a WebSocket connection. It is a renderer once it
// joins a session and a controller once it attaches to a seat.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	msgCount   int
	msgResetAt time.Time

	mu        sync.Mutex
	sessionID string
	slot      int // controller slot, -1 for renderers
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
		slot:       -1,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("ip", c.remoteAddr).Msg("ws error")
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Warn().Str("ip", c.remoteAddr).Msg("rate limit exceeded, disconnecting")
			break
		}

		if msgType == websocket.BinaryMessage {
			if in, ok := decodeBinaryInput(message); ok {
				c.applyInput(in)
			}
			continue
		}
		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Binary marker prefix from SendBinary
			var err error
			if len(message) > 0 && message[0] == binaryMarker {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("marshal error")
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }() // send on a closed channel after unregister
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message.
// Prefixes a marker byte so WritePump can distinguish it from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = binaryMarker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Debug().Err(err).Str("ip", c.remoteAddr).Msg("unmarshal error")
		return
	}

	switch env.T {
	case MsgList:
		c.handleList()
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgSeat:
		c.handleSeat(env.D)
	case MsgControl:
		c.handleControl(env.D)
	case MsgInput:
		c.handleInput(env.D)
	case MsgLeave:
		c.detach()
	default:
		c.sendError("unknown message type")
	}
}

func (c *Client) handleList() {
	c.SendJSON(Envelope{T: MsgSessions, Data: c.hub.sessions.ListSessions()})
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("bad create request")
			return
		}
	}
	if len(msg.Name) > maxSessionNameLen {
		msg.Name = msg.Name[:maxSessionNameLen]
	}
	setup, err := c.hub.BuildSetup(msg)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	sess, err := c.hub.sessions.CreateSession(msg.Name, setup)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.SendJSON(Envelope{T: MsgCreated, Data: map[string]string{"sid": sess.ID}})
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("bad join request")
		return
	}
	sess := c.hub.sessions.GetSession(msg.SessionID)
	if sess == nil {
		c.sendError("session not found")
		return
	}
	c.detach()
	c.mu.Lock()
	c.sessionID = sess.ID
	c.slot = -1
	c.mu.Unlock()
	sess.Game.AddClient(c)
	c.SendJSON(Envelope{T: MsgJoined, Data: map[string]any{
		"sid":     sess.ID,
		"match":   sess.Game.MatchID(),
		"players": sess.Game.PlayerCount(),
	}})
	log.Debug().Str("sid", sess.ID).Str("ip", c.remoteAddr).Msg("renderer joined")
}

func (c *Client) handleSeat(data json.RawMessage) {
	var msg SeatMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("bad seat request")
		return
	}
	token, err := c.hub.IssueSeat(msg.SessionID, msg.Slot, msg.Pin, c.remoteAddr)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.SendJSON(Envelope{T: MsgSeatOK, Data: SeatOKMsg{SessionID: msg.SessionID, Slot: msg.Slot, Token: token}})
}

func (c *Client) handleControl(data json.RawMessage) {
	var msg ControlMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("bad control request")
		return
	}
	sid, slot, err := c.hub.seats.ValidateSeat(msg.Token)
	if err != nil {
		c.sendError("invalid seat token")
		return
	}
	sess := c.hub.sessions.GetSession(sid)
	if sess == nil {
		c.sendError("session not found")
		return
	}
	c.detach()
	if err := sess.Game.SetController(slot, c); err != nil {
		c.sendError(err.Error())
		return
	}
	c.mu.Lock()
	c.sessionID = sid
	c.slot = slot
	c.mu.Unlock()
	c.SendJSON(Envelope{T: MsgControlOK, Data: map[string]any{"sid": sid, "slot": slot}})
	log.Info().Str("sid", sid).Int("slot", slot).Str("ip", c.remoteAddr).Msg("controller attached")
}

func (c *Client) handleInput(data json.RawMessage) {
	var in ControllerInput
	if err := json.Unmarshal(data, &in); err != nil {
		return
	}
	c.applyInput(in)
}

// applyInput forwards controller input to the seat's game
func (c *Client) applyInput(in ControllerInput) {
	c.mu.Lock()
	sid, slot := c.sessionID, c.slot
	c.mu.Unlock()
	if sid == "" || slot < 0 {
		return
	}
	sess := c.hub.sessions.GetSession(sid)
	if sess == nil {
		return
	}
	in.Accel = Clamp(in.Accel, -1, 1)
	in.Turn = Clamp(in.Turn, -1, 1)
	in.Strafe = Clamp(in.Strafe, -1, 1)
	sess.Game.HandleInput(slot, in)
}

// detach leaves the current session, as renderer or controller
func (c *Client) detach() {
	c.mu.Lock()
	sid, slot := c.sessionID, c.slot
	c.sessionID, c.slot = "", -1
	c.mu.Unlock()
	if sid == "" {
		return
	}
	sess := c.hub.sessions.GetSession(sid)
	if sess == nil {
		return
	}
	if slot >= 0 {
		sess.Game.RemoveController(slot, c)
		log.Info().Str("sid", sid).Int("slot", slot).Msg("controller detached")
	} else {
		sess.Game.RemoveClient(c)
	}
}
