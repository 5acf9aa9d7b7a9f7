package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	DefaultTickRate       = 60 // physics ticks per second
	DefaultBroadcastEvery = 3  // ticks between state frames
)

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg any)
	SendBinary(data []byte)
}

// GameOptions tune the loop of a Game
type GameOptions struct {
	TickRate       int
	BroadcastEvery int
	OnEnd          func(MatchOutcome) // called once, outside the game lock
	OnKill         func(KillReport)   // called under the game lock
}

// Game runs one World on a ticker and fans its output out to clients
type Game struct {
	mu          sync.Mutex
	world       *World
	input       *InputState
	events      *EventBuffer
	clients     map[Broadcaster]bool
	controllers map[int]Broadcaster // slot -> controller
	opts        GameOptions
	stop        chan struct{}
	stopOnce    sync.Once
	ended       bool
	lastActive  time.Time
}

// NewGame creates a game around a match setup
func NewGame(setup MatchSetup, tables *GameTables, seed int64, opts GameOptions) (*Game, error) {
	if opts.TickRate <= 0 {
		opts.TickRate = DefaultTickRate
	}
	if opts.BroadcastEvery <= 0 {
		opts.BroadcastEvery = DefaultBroadcastEvery
	}
	input := NewInputState()
	events := &EventBuffer{}
	world, err := NewWorld(setup, tables, WorldOptions{Seed: seed, Input: input, Sink: events, OnKill: opts.OnKill})
	if err != nil {
		return nil, err
	}
	return &Game{
		world:       world,
		input:       input,
		events:      events,
		clients:     make(map[Broadcaster]bool),
		controllers: make(map[int]Broadcaster),
		opts:        opts,
		stop:        make(chan struct{}),
		lastActive:  time.Now(),
	}, nil
}

// Run starts the game loop. It returns at once if Stop already ran.
func (g *Game) Run() {
	select {
	case <-g.stop:
		return
	default:
	}
	ticker := time.NewTicker(time.Second / time.Duration(g.opts.TickRate))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.update()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop, whether or not Run has started
func (g *Game) Stop() {
	g.stopOnce.Do(func() { close(g.stop) })
}

// MatchID returns the id of the running match
func (g *Game) MatchID() string {
	return g.world.MatchID
}

// Setup returns the match setup
func (g *Game) Setup() MatchSetup {
	return g.world.Setup
}

// AddClient registers a renderer or spectator
func (g *Game) AddClient(b Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[b] = true
	g.lastActive = time.Now()
}

// RemoveClient drops a renderer or spectator
func (g *Game) RemoveClient(b Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.clients, b)
	g.lastActive = time.Now()
}

// SetController attaches a controller to a human slot
func (g *Game) SetController(slot int, b Broadcaster) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.world.player(slot)
	if p == nil {
		return fmt.Errorf("no slot %d", slot)
	}
	if p.IsBot {
		return fmt.Errorf("slot %d is a bot", slot)
	}
	g.controllers[slot] = b
	g.lastActive = time.Now()
	g.broadcastMsg(Envelope{T: MsgCtrlOn, Data: map[string]int{"slot": slot}})
	return nil
}

// RemoveController detaches a slot's controller and releases its inputs
func (g *Game) RemoveController(slot int, b Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cur, ok := g.controllers[slot]; !ok || cur != b {
		return
	}
	delete(g.controllers, slot)
	g.applyInput(slot, ControllerInput{})
	g.lastActive = time.Now()
	g.broadcastMsg(Envelope{T: MsgCtrlOff, Data: map[string]int{"slot": slot}})
}

// HandleInput writes a controller's state into the world's named inputs
func (g *Game) HandleInput(slot int, in ControllerInput) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.applyInput(slot, in)
}

func (g *Game) applyInput(slot int, in ControllerInput) {
	g.input.SetAxis(ActionName(slot, "accel"), in.Accel)
	g.input.SetAxis(ActionName(slot, "turn"), in.Turn)
	g.input.SetAxis(ActionName(slot, "strafe"), in.Strafe)
	g.input.SetButton(ActionName(slot, "fire"), in.Fire)
	g.input.SetButton(ActionName(slot, "alt_fire"), in.AltFire)
	g.input.SetButton(ActionName(slot, "repair"), in.Repair)
}

// ClientCount returns the number of attached renderers and controllers
func (g *Game) ClientCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.clients) + len(g.controllers)
}

// PlayerCount returns the number of match slots
func (g *Game) PlayerCount() int {
	return len(g.world.Players)
}

// IdleSince returns when a client last attached or detached
func (g *Game) IdleSince() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastActive
}

// Snapshot returns the current state frame
func (g *Game) Snapshot() StateFrame {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateFrame()
}

// update runs one game tick
func (g *Game) update() {
	g.mu.Lock()
	w := g.world
	w.Step(1.0 / float64(g.opts.TickRate))

	if events := g.events.Drain(); len(events) > 0 {
		g.broadcastMsg(Envelope{T: MsgEvents, Data: events})
	}
	if w.Tick%g.opts.BroadcastEvery == 0 {
		g.broadcastState()
	}

	var outcome *MatchOutcome
	if w.Score.Ended && !g.ended {
		g.ended = true
		outcome = w.Score.Outcome
		g.broadcastMsg(Envelope{T: MsgResult, Data: outcome})
	}
	g.mu.Unlock()

	if outcome != nil && g.opts.OnEnd != nil {
		g.opts.OnEnd(*outcome)
	}
}

func (g *Game) stateFrame() StateFrame {
	w := g.world
	f := StateFrame{
		Tick:        w.Tick,
		Vehicles:    make([]VehicleFrame, 0, len(w.Vehicles)),
		Projectiles: make([]ProjectileFrame, 0, len(w.Projectiles)),
		Scores:      make([]ScoreFrame, 0, len(w.Players)),
		Camera:      CameraFrame{X: round1(w.Camera.X), Y: round1(w.Camera.Y), Zoom: w.Camera.Zoom},
		Elapsed:     round1(w.Score.Elapsed),
		Ended:       w.Score.Ended,
	}
	for _, v := range w.Vehicles {
		f.Vehicles = append(f.Vehicles, v.ToState())
	}
	for _, p := range w.Projectiles {
		if p.Active {
			f.Projectiles = append(f.Projectiles, p.ToState())
		}
	}
	for _, hb := range w.Arena.Sorted() {
		if hb.Role == RoleWeaponBox {
			f.Boxes = append(f.Boxes, BoxFrame{ID: hb.ID, X: round1(hb.X), Y: round1(hb.Y), Weapon: string(hb.Weapon)})
		}
	}
	for _, p := range w.Players {
		f.Scores = append(f.Scores, ScoreFrame{
			Slot:   p.ID,
			Name:   p.Name,
			Score:  round1(Score(w.Setup.Mode, p)),
			Kills:  p.Kills,
			Deaths: p.Deaths,
			Place:  p.Placement,
		})
	}
	return f
}

// broadcastState sends the current state frame, msgpack encoded
func (g *Game) broadcastState() {
	data, err := msgpack.Marshal(g.stateFrame())
	if err != nil {
		log.Error().Err(err).Str("match", g.world.MatchID).Msg("encode state frame")
		return
	}
	for c := range g.clients {
		c.SendBinary(data)
	}
}

// broadcastMsg sends a message to every renderer and controller
func (g *Game) broadcastMsg(msg Envelope) {
	for c := range g.clients {
		c.SendJSON(msg)
	}
	for _, c := range g.controllers {
		c.SendJSON(msg)
	}
}
