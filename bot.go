package main

import "math"

const (
	BotEngageDistance    = 350.0
	BotDisengageDistance = 500.0
	BotNoHitTimeout      = 3.0 // seconds in combat without landing a hit
	BotCollisionTurnTime = 0.3 // seconds reversing and turning after a crash
	BotCollisionMoveTime = 0.3 // seconds driving straight after that
	BotPathCooldown      = 0.5 // seconds between path requests
	BotArriveDistance    = 40.0
	BotRepairHealthPct   = 35.0
	BotBlindDuration     = 1.0 // seconds driving blind before replanning
	BotMiningChance      = 30.0
	BotStrafeFlipMin     = 1.0
	BotStrafeFlipMax     = 2.5
	BotAimDeadZone       = 0.03 // radians
	BotRandomMargin      = 80.0 // keep random targets off the arena edge
)

// BotMode is a state of the bot behaviour machine
type BotMode int

const (
	BotSleep BotMode = iota
	BotRacing
	BotRunTo
	BotRunRandom
	BotRunBlind
	BotTakeTheHill
	BotMining
	BotRepairing
	BotStopAim
	BotStrafeAim
	BotChasing
	BotSwording
	BotCollisionTurn
	BotCollisionMove
)

var botModeNames = []string{
	"sleep", "racing", "run_to", "run_random", "run_blind", "take_the_hill",
	"mining", "repairing", "stop_aim", "strafe_aim", "chasing", "swording",
	"collision_turn", "collision_move",
}

func (m BotMode) String() string { return enumString(int(m), botModeNames) }

// Movement reports whether the mode belongs to the movement cluster
func (m BotMode) Movement() bool {
	switch m {
	case BotRunTo, BotRunRandom, BotRunBlind, BotTakeTheHill, BotMining, BotRepairing:
		return true
	}
	return false
}

// Combat reports whether the mode belongs to the combat cluster
func (m BotMode) Combat() bool {
	switch m {
	case BotStopAim, BotStrafeAim, BotChasing, BotSwording:
		return true
	}
	return false
}

// BotState is the per-bot decision state
type BotState struct {
	Mode         BotMode
	ResumeMode   BotMode // mode to return to after collision recovery
	ModeTimer    float64 // seconds in the current mode
	PathCooldown float64
	Path         []Vec2
	Target       Vec2
	HasTarget    bool
	StrafeDir    float64
	StrafeTimer  float64
}

// NewBotState returns a sleeping bot
func NewBotState() BotState {
	return BotState{Mode: BotSleep, ResumeMode: BotSleep, StrafeDir: 1}
}

func (b *BotState) setMode(m BotMode) {
	if b.Mode == m {
		return
	}
	b.Mode = m
	b.ModeTimer = 0
	b.Path = nil
	b.PathCooldown = 0
	if m != BotRunTo {
		b.HasTarget = false
	}
}

// homeMode is where a bot goes when it has nothing better to do
func (w *World) homeMode() BotMode {
	switch w.Setup.Mode {
	case ModeCombatRace:
		if w.Arena.Checkpoints > 0 {
			return BotRacing
		}
	case ModeKingOfTheHill:
		if w.Arena.Find(RoleHill) != nil {
			return BotTakeTheHill
		}
	}
	return BotRunRandom
}

// combatMode picks how a vehicle fights
func (w *World) combatMode(v *Vehicle) BotMode {
	if p := v.Weapons.Primary(); p != nil && p.Stats.IsMelee() {
		return BotSwording
	}
	switch v.Movement {
	case MovementCar:
		return BotChasing
	case MovementHover:
		return BotStrafeAim
	}
	if w.rng.Chance(50) {
		return BotStopAim
	}
	return BotChasing
}

// ThinkBot runs one decision step and returns the bot's raw controls
func (w *World) ThinkBot(v *Vehicle, dt float64) Controls {
	b := &v.Player.Bot
	b.ModeTimer += dt
	b.PathCooldown -= dt
	b.StrafeTimer -= dt

	if !v.IsActive() {
		b.Path = nil
		return Controls{}
	}

	if v.Collided && b.Mode != BotCollisionTurn && b.Mode != BotCollisionMove {
		resume := b.Mode
		if resume.Combat() || resume == BotSleep {
			resume = w.homeMode()
		}
		b.setMode(BotCollisionTurn)
		b.ResumeMode = resume
	}

	w.transitionBot(v, b)

	switch b.Mode {
	case BotCollisionTurn:
		return Controls{Accel: -1, Turn: b.StrafeDir}
	case BotCollisionMove:
		return Controls{Accel: 1}
	case BotRacing:
		c := w.race(v, b)
		c.Fire[0] = v.ClosestTarget.Found && v.ClosestTarget.Distance < BotEngageDistance
		return c
	case BotRunTo, BotRunRandom, BotTakeTheHill:
		return w.runToTarget(v, b)
	case BotMining:
		c := w.runToTarget(v, b)
		c.Fire[1] = true
		return c
	case BotRunBlind:
		return w.runBlind(v, b)
	case BotRepairing:
		return Controls{Repair: true}
	case BotStopAim, BotStrafeAim, BotChasing, BotSwording:
		return w.fight(v, b)
	}
	return Controls{}
}

// transitionBot re-evaluates the bot's mode for this tick
func (w *World) transitionBot(v *Vehicle, b *BotState) {
	switch b.Mode {
	case BotSleep:
		b.setMode(w.homeMode())
		return
	case BotCollisionTurn:
		if b.ModeTimer >= BotCollisionTurnTime-lifeEpsilon {
			resume := b.ResumeMode
			b.setMode(BotCollisionMove)
			b.ResumeMode = resume
		}
		return
	case BotCollisionMove:
		if b.ModeTimer >= BotCollisionMoveTime-lifeEpsilon {
			resume := b.ResumeMode
			if w.Setup.Mode == ModeCombatRace && w.Arena.Checkpoints > 0 {
				resume = BotRacing
			}
			b.setMode(resume)
		}
		return
	case BotRacing:
		return
	case BotRepairing:
		if v.Health.Value >= v.Health.Max || w.enemyNear(v) {
			b.setMode(w.homeMode())
		}
		return
	case BotRunBlind:
		if b.ModeTimer >= BotBlindDuration {
			b.setMode(w.homeMode())
		}
	}

	if b.Mode.Combat() {
		t := v.ClosestTarget
		frustrated := b.ModeTimer > BotNoHitTimeout && v.Player.LastLandedHitTimer > BotNoHitTimeout
		if !t.Found || t.Distance > BotDisengageDistance || frustrated {
			b.setMode(BotRunRandom)
		}
		return
	}

	if b.Mode.Movement() {
		if v.Health.Max > 0 && v.Health.Value/v.Health.Max*100 < BotRepairHealthPct && !w.enemyNear(v) {
			b.setMode(BotRepairing)
			return
		}
		if t := v.ClosestTarget; t.Found && t.Distance < BotEngageDistance {
			b.setMode(w.combatMode(v))
			b.StrafeTimer = 0
		}
	}
}

func (w *World) enemyNear(v *Vehicle) bool {
	return v.ClosestVehicle.Found && v.ClosestVehicle.Distance < BotEngageDistance
}

// hasMines reports whether the secondary is a droppable mine with ammo
func hasMines(v *Vehicle) bool {
	in := v.Weapons.Slot(1)
	if in == nil || in.Weapon == nil {
		return false
	}
	s := in.Weapon.Stats
	return s.Fire.TriggerRadius > 0 && s.Fire.ShotSpeed == 0 && (in.Weapon.Ammo == nil || *in.Weapon.Ammo > 0)
}

// botTarget returns the goal of a movement mode, picking a new random
// point when needed
func (w *World) botTarget(v *Vehicle, b *BotState) (Vec2, bool) {
	switch b.Mode {
	case BotTakeTheHill:
		if hill := w.Arena.Find(RoleHill); hill != nil {
			return Vec2{hill.X, hill.Y}, true
		}
		return Vec2{}, false
	case BotRunTo:
		return b.Target, b.HasTarget
	}
	if !b.HasTarget {
		b.Target = Vec2{
			X: w.rng.Range(BotRandomMargin, math.Max(BotRandomMargin, w.Arena.Width-BotRandomMargin)),
			Y: w.rng.Range(BotRandomMargin, math.Max(BotRandomMargin, w.Arena.Height-BotRandomMargin)),
		}
		b.HasTarget = true
		if b.Mode == BotRunRandom && hasMines(v) && w.rng.Chance(BotMiningChance) {
			target := b.Target
			b.setMode(BotMining)
			b.Target, b.HasTarget = target, true
		}
	}
	return b.Target, true
}

func (w *World) runToTarget(v *Vehicle, b *BotState) Controls {
	target, ok := w.botTarget(v, b)
	if !ok {
		b.setMode(BotRunRandom)
		return Controls{}
	}
	c, arrived, planned := w.followPath(v, b, target)
	if !planned {
		b.setMode(BotRunBlind)
		return w.runBlind(v, b)
	}
	if arrived {
		switch b.Mode {
		case BotTakeTheHill:
			return w.holdPosition(v)
		case BotMining:
			b.setMode(BotRunRandom)
		default:
			b.HasTarget = false
			if b.Mode == BotRunTo {
				b.setMode(w.homeMode())
			}
		}
	}
	return c
}

// holdPosition parks and shoots at whatever is in sight
func (w *World) holdPosition(v *Vehicle) Controls {
	c := Controls{}
	if t := v.ClosestTarget; t.Found && t.Distance < BotEngageDistance {
		c.Turn = aimTurn(v, v.Weapons.Slot(0), t.Angle)
		c.Fire[0] = true
	}
	return c
}

// race drives toward the next checkpoint, or the lap line once all are passed
func (w *World) race(v *Vehicle, b *BotState) Controls {
	p := v.Player
	var goal *Hitbox
	if p.NextCheckpoint < w.Arena.Checkpoints {
		goal = w.Arena.CheckpointHitbox(p.NextCheckpoint)
	} else {
		goal = w.Arena.Find(RoleLap)
	}
	if goal == nil {
		b.setMode(BotRunRandom)
		return Controls{}
	}
	target := Vec2{goal.X, goal.Y}
	if !b.HasTarget || b.Target != target {
		b.Target, b.HasTarget = target, true
		b.Path = nil
		b.PathCooldown = 0
	}
	c, _, planned := w.followPath(v, b, target)
	if !planned {
		return steerAt(v, target, false)
	}
	// never brake on a race line
	if c.Accel == 0 {
		c.Accel = 0.5
	}
	return c
}

func (w *World) runBlind(v *Vehicle, b *BotState) Controls {
	if b.HasTarget {
		return steerAt(v, b.Target, false)
	}
	return Controls{Accel: 1}
}

// followPath refreshes the path on cooldown and steers at its first
// waypoint. planned is false when the navigator found no path.
func (w *World) followPath(v *Vehicle, b *BotState, target Vec2) (c Controls, arrived, planned bool) {
	if b.PathCooldown <= 0 || len(b.Path) == 0 {
		b.Path = w.Nav.FindPath(v.Pos(), target)
		b.PathCooldown = BotPathCooldown
		if b.Path == nil {
			return Controls{}, false, false
		}
	}
	for len(b.Path) > 0 && Distance(v.X, v.Y, b.Path[0].X, b.Path[0].Y) < BotArriveDistance {
		b.Path = b.Path[1:]
	}
	if len(b.Path) == 0 {
		return Controls{}, true, true
	}
	return steerAt(v, b.Path[0], len(b.Path) == 1), false, true
}

// steerAt turns toward a point with a fixed turn magnitude and brakes
// early on the final waypoint
func steerAt(v *Vehicle, p Vec2, final bool) Controls {
	diff := NormalizeAngle(math.Atan2(p.Y-v.Y, p.X-v.X) - v.Rotation)
	c := Controls{Accel: 1}
	if math.Abs(diff) > BotAimDeadZone {
		c.Turn = TurnSign(diff)
	}
	if math.Abs(diff) > math.Pi/2 {
		c.Accel = 0.5
	}
	if final && shouldBrake(v, Distance(v.X, v.Y, p.X, p.Y)) {
		c.Accel = 0
	}
	return c
}

// shouldBrake compares time to arrive with time to stop
func shouldBrake(v *Vehicle, dist float64) bool {
	speed := v.Speed()
	if speed <= 0 {
		return false
	}
	decel := speed * profileFor(v.Movement).Longitudinal
	if weight := v.Weight(); weight > 0 {
		decel += v.Engine / weight
	}
	if decel <= 0 {
		return false
	}
	return dist/speed < speed/decel
}

// aimTurn returns the turn that brings an install's mount onto a bearing
func aimTurn(v *Vehicle, in *WeaponInstall, bearing float64) float64 {
	mount := 0.0
	if in != nil && in.Weapon != nil {
		mount = in.MountAngle + in.Weapon.Stats.MountAngle
	}
	diff := NormalizeAngle(bearing - mount - v.Rotation)
	if math.Abs(diff) <= BotAimDeadZone {
		return 0
	}
	return TurnSign(diff)
}

// fight produces combat-cluster controls: aim the primary at the target
// and hold every trigger
func (w *World) fight(v *Vehicle, b *BotState) Controls {
	t := v.ClosestTarget
	c := Controls{Fire: [2]bool{true, !hasMines(v)}}
	c.Turn = aimTurn(v, v.Weapons.Slot(0), t.Angle)
	switch b.Mode {
	case BotStopAim:
	case BotStrafeAim:
		if b.StrafeTimer <= 0 {
			b.StrafeDir = w.rng.Sign()
			b.StrafeTimer = w.rng.Range(BotStrafeFlipMin, BotStrafeFlipMax)
		}
		c.Strafe = b.StrafeDir
	case BotChasing:
		c.Accel = 1
	case BotSwording:
		c.Accel = 1
		c.Turn = TurnSign(NormalizeAngle(t.Angle - v.Rotation))
	}
	return c
}
