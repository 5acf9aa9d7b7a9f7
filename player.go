package main

const (
	NoPlayer         = -1
	KillCreditWindow = 5.0 // seconds a hit keeps kill credit
)

// Player is the identity and game-mode bookkeeping behind a vehicle
type Player struct {
	ID    int
	Name  string
	IsBot bool

	Kills  int
	Deaths int

	NextCheckpoint int // checkpoint id expected next
	Checkpoints    int // checkpoints passed in total
	Laps           int

	ObjectivePoints float64 // seconds held on the hill
	OnHill          bool

	LastHitBy          int     // player id, NoPlayer when none
	LastHitTimer       float64 // seconds since LastHitBy landed
	LastLandedHitTimer float64 // seconds since this player last hit someone

	Lives      int
	Eliminated bool
	Placement  int // 0 until placed

	GunGameLevel int // kills that advanced the gun-game weapon

	Bot BotState
}

// NewPlayer creates a player in a slot
func NewPlayer(id int, name string, isBot bool) *Player {
	p := &Player{
		ID:        id,
		Name:      name,
		IsBot:     isBot,
		LastHitBy: NoPlayer,
	}
	p.Bot = NewBotState()
	return p
}

// RecordHitBy attributes a hit from attacker
func (p *Player) RecordHitBy(attacker int) {
	if attacker == NoPlayer || attacker == p.ID {
		return
	}
	p.LastHitBy = attacker
	p.LastHitTimer = 0
}

// KillCredit returns who gets the kill when p dies to a hit from owner.
// Neutral hits fall back to the last attacker inside the credit window.
func (p *Player) KillCredit(owner int) int {
	if owner == p.ID {
		return NoPlayer
	}
	if owner != NoPlayer {
		return owner
	}
	if p.LastHitBy != NoPlayer && p.LastHitTimer < KillCreditWindow {
		return p.LastHitBy
	}
	return NoPlayer
}

func (p *Player) tickTimers(dt float64) {
	p.LastHitTimer += dt
	p.LastLandedHitTimer += dt
}
