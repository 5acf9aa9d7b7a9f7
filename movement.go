package main

import (
	"math"

	"github.com/rs/zerolog/log"
)

const (
	MalfunctionCheckInterval = 1.0  // seconds between malfunction rolls
	MalfunctionDuration      = 0.5  // seconds controls stay dead
	MalfunctionScale         = 0.1  // chance percent per percent of missing health
	IonMalfunctionDecay      = 10.0 // ion chance percent lost per second

	CollisionCooldownTime = 1.0  // seconds between collision damage
	CollisionDamageScale  = 0.05 // damage per unit/s of impact speed
	BoundaryRestitution   = 0.5
	BoundaryDamping       = 0.9
	WallRestitution       = 0.5

	CarStillSpeed    = 1e-3  // a car this slow is stopped and cannot turn
	CarFullTurnSpeed = 120.0 // steering authority ramps up to full by here
	AngularDamping   = 8.0   // per second, with no turn input

	RepairDelay    = 1.0  // seconds of holding repair before it starts
	RepairMaxSpeed = 20.0 // repair only while nearly stationary
)

// frictionProfile is the per-movement-type tuning. Longitudinal and
// lateral coefficients are per second; LateralGrip applies with no slip,
// DriftGrip at full sideways slip.
type frictionProfile struct {
	Longitudinal float64
	LateralGrip  float64
	DriftGrip    float64
	StrafeScale  float64
	PivotTurn    bool // can turn while stationary
}

var frictionProfiles = [...]frictionProfile{
	MovementHover: {Longitudinal: 1.2, LateralGrip: 1.2, DriftGrip: 1.2, StrafeScale: 0.8, PivotTurn: true},
	MovementCar:   {Longitudinal: 0.6, LateralGrip: 6, DriftGrip: 1.5, StrafeScale: 0, PivotTurn: false},
	MovementTank:  {Longitudinal: 2.5, LateralGrip: 12, DriftGrip: 8, StrafeScale: 0.3, PivotTurn: true},
}

func profileFor(m MovementType) frictionProfile {
	if int(m) < 0 || int(m) >= len(frictionProfiles) {
		return frictionProfiles[MovementHover]
	}
	return frictionProfiles[m]
}

// slipPct is |sin| of the angle between heading and velocity, 0 when still
func slipPct(heading, vel Vec2) float64 {
	speed := vel.Len()
	if speed == 0 {
		return 0
	}
	return math.Abs(heading.Cross(vel)) / speed
}

func frictionFactor(coef, dt float64) float64 {
	return 1 - Clamp(coef*dt, 0, 1)
}

// integrateVehicle applies controls, friction and turning, then moves the
// vehicle. It does not resolve collisions.
func integrateVehicle(v *Vehicle, c Controls, dt float64) {
	prof := profileFor(v.Movement)
	weight := v.Weight()
	if weight <= 0 {
		weight = 1
	}
	force := v.Engine / weight

	heading := Heading(v.Rotation)
	left := Heading(v.Rotation + math.Pi/2)

	accel := heading.Scale(c.Accel * force).Add(left.Scale(c.Strafe * force * prof.StrafeScale))
	vel := v.Velocity().Add(accel.Scale(dt))

	slip := slipPct(heading, vel)
	long := vel.Dot(heading) * frictionFactor(prof.Longitudinal, dt)
	lat := vel.Dot(left) * frictionFactor(Lerp(prof.LateralGrip, prof.DriftGrip, slip), dt)
	vel = heading.Scale(long).Add(left.Scale(lat))

	if limit := v.EffectiveMaxVelocity(); vel.Len() > limit {
		vel = vel.Normalize().Scale(limit)
	}

	turn := c.Turn
	if !prof.PivotTurn {
		speed := vel.Len()
		if speed < CarStillSpeed {
			turn = 0
			v.VR = 0
		} else {
			// steering flips in reverse
			turn *= Clamp(speed/CarFullTurnSpeed, 0, 1) * signOf(vel.Dot(heading))
		}
	}
	if turn != 0 {
		v.VR += turn * v.TurnAccel * dt
	} else {
		v.VR *= frictionFactor(AngularDamping, dt)
	}
	v.VR = Clamp(v.VR, -v.MaxTurn, v.MaxTurn)
	v.Rotation = NormalizeAngle(v.Rotation + v.VR*dt)

	v.VX, v.VY = vel.X, vel.Y
	v.PrevX, v.PrevY = v.X, v.Y
	v.X += v.VX * dt
	v.Y += v.VY * dt
}

// effectiveControls applies repair, malfunction and stuck-throttle
// modifiers to raw controls
func effectiveControls(v *Vehicle, c Controls) Controls {
	if v.Repair.Activated {
		c = Controls{Repair: c.Repair}
	}
	if v.Malfunctioning() {
		c = Controls{Repair: c.Repair}
	}
	if v.StuckAccelTimer > 0 {
		c.Accel = 1
	}
	return c
}

// updateRepair advances a held repair
func updateRepair(v *Vehicle, want bool, dt float64) {
	if !want || !v.IsActive() || v.Speed() > RepairMaxSpeed || v.Health.Value >= v.Health.Max {
		v.Repair = RepairState{}
		return
	}
	if !v.Repair.Activated {
		v.Repair = RepairState{Activated: true, Timer: RepairDelay}
	}
	if v.Repair.Timer > 0 {
		v.Repair.Timer -= dt
		return
	}
	v.Health.Value = math.Min(v.Health.Max, v.Health.Value+v.Health.RepairRate*dt)
}

func (w *World) tickMalfunction(v *Vehicle, dt float64) {
	if v.MalfunctionTimer > 0 {
		v.MalfunctionTimer = math.Max(0, v.MalfunctionTimer-dt)
	}
	v.MalfunctionCheckTimer -= dt
	if v.MalfunctionCheckTimer > 0 {
		return
	}
	v.MalfunctionCheckTimer = MalfunctionCheckInterval
	missing := 0.0
	if v.Health.Max > 0 {
		missing = (1 - v.Health.Value/v.Health.Max) * 100
	}
	v.MalfunctionLevel = missing*MalfunctionScale + v.IonMalfunctionPct
	if v.MalfunctionLevel > 0 && w.rng.Chance(v.MalfunctionLevel) {
		v.MalfunctionTimer = MalfunctionDuration
	}
}

// moveVehicles is the movement pass
func (w *World) moveVehicles(dt float64) {
	for _, p := range w.Players {
		p.OnHill = false
	}
	for _, v := range w.Vehicles {
		v.Collided = false
		v.tickEffects(dt)
		switch v.State {
		case VehicleInRespawn:
			w.tickRespawn(v, dt)
			continue
		case VehicleDestroyed:
			continue
		}
		w.tickMalfunction(v, dt)
		integrateVehicle(v, v.Controls, dt)
		w.collideBoundary(v)
		w.collideHitboxes(v, dt)
	}
	if w.Setup.VehicleBounce {
		w.collideVehicles()
	}
	w.flushDespawns()
}

func (w *World) tickRespawn(v *Vehicle, dt float64) {
	if v.Player.Eliminated {
		return
	}
	v.RespawnTimer -= dt
	if v.RespawnTimer > 1e-9 {
		return
	}
	v.RespawnTimer = 0
	v.State = VehicleActive
	v.ResetResources()
	if w.Setup.RefreshAmmo {
		v.Weapons.Refill()
	}
	log.Debug().Int("player", v.Player.ID).Int("spawn", v.SpawnIndex).Msg("vehicle respawned")
}

// nextSpawn returns the next round-robin spawn index, skipping prev
func (w *World) nextSpawn(prev int) int {
	n := len(w.Arena.SpawnPoints)
	idx := w.spawnCursor % n
	w.spawnCursor++
	if idx == prev && n > 1 {
		idx = w.spawnCursor % n
		w.spawnCursor++
	}
	return idx
}

func (w *World) placeAtSpawn(v *Vehicle) {
	v.SpawnIndex = w.nextSpawn(v.SpawnIndex)
	sp := w.Arena.SpawnPoints[v.SpawnIndex]
	v.X, v.Y = sp.X, sp.Y
	v.PrevX, v.PrevY = sp.X, sp.Y
	v.Rotation = sp.Rotation
	v.VX, v.VY, v.VR = 0, 0, 0
}

// killRestart takes a destroyed vehicle out of play and moves it to its
// next spawn point
func (w *World) killRestart(v *Vehicle) {
	v.State = VehicleInRespawn
	v.RespawnTimer = w.Setup.RespawnDuration
	v.clearEffects()
	for _, in := range v.Weapons.Installs {
		if in != nil && in.Weapon != nil {
			in.Weapon.Deployed = false
			in.Weapon.TriggerHeld = false
		}
	}
	w.placeAtSpawn(v)
}

// collisionDamage applies cooldown-gated impact damage
func (w *World) collisionDamage(v *Vehicle, impact float64) {
	if v.CollisionCooldown > 0 || impact <= 0 {
		return
	}
	v.CollisionCooldown = CollisionCooldownTime
	if ApplyDamage(v, impact*CollisionDamageScale, 0, 100, 100, 100, 0) {
		w.resolver.queueKill(v, v.Player.KillCredit(NoPlayer), WeaponNone, -1)
	}
}

func (w *World) collideBoundary(v *Vehicle) {
	ex, ey := orientedHalfExtents(v.Width, v.Height, v.Rotation)
	impact := 0.0
	if v.X-ex < 0 || v.X+ex > w.Arena.Width {
		v.X = Clamp(v.X, ex, w.Arena.Width-ex)
		impact = math.Max(impact, math.Abs(v.VX))
		v.VX = -v.VX * BoundaryRestitution
		v.VY *= BoundaryDamping
	}
	if v.Y-ey < 0 || v.Y+ey > w.Arena.Height {
		v.Y = Clamp(v.Y, ey, w.Arena.Height-ey)
		impact = math.Max(impact, math.Abs(v.VY))
		v.VY = -v.VY * BoundaryRestitution
		v.VX *= BoundaryDamping
	}
	if impact > 0 {
		v.Collided = true
		w.Sink.PlaySound(SoundBounce, v.X, v.Y)
		w.collisionDamage(v, impact)
	}
}

func (w *World) collideHitboxes(v *Vehicle, dt float64) {
	for _, hb := range w.Index.QueryCollider(v.Collider(), 0) {
		if !v.IsActive() {
			return
		}
		hc := hb.Collider()
		if !Intersects(v.Collider(), hc) {
			continue
		}
		switch hb.Obstacle {
		case ObstacleWall:
			w.bounceOffWall(v, hc)
		case ObstacleZone:
			w.applyZone(v, hb, dt)
		case ObstacleOpen:
			w.triggerHitbox(v, hb)
		}
	}
}

func (w *World) bounceOffWall(v *Vehicle, wall Collider) {
	n := ContactNormal(wall, Vec2{v.PrevX, v.PrevY})
	vel := v.Velocity()
	vn := vel.Dot(n)
	if vn < 0 {
		vel = vel.Sub(n.Scale((1 + WallRestitution) * vn))
	}
	v.VX, v.VY = vel.X, vel.Y
	v.X, v.Y = v.PrevX, v.PrevY
	v.Collided = true
	w.Sink.PlaySound(SoundBounce, v.X, v.Y)
	w.collisionDamage(v, math.Abs(vn))
}

func (w *World) applyZone(v *Vehicle, hb *Hitbox, dt float64) {
	if hb.DamageRate > 0 && ApplyDamage(v, hb.DamageRate, 0, 100, 100, 100, dt) {
		w.resolver.queueKill(v, v.Player.KillCredit(NoPlayer), WeaponNone, -1)
	}
	if hb.AccelRate != 0 {
		push := Heading(v.Rotation).Scale(hb.AccelRate * dt)
		v.VX += push.X
		v.VY += push.Y
	}
	if hb.RepairRate > 0 {
		v.Health.Value = math.Min(v.Health.Max, v.Health.Value+hb.RepairRate*dt)
	}
}

func (w *World) triggerHitbox(v *Vehicle, hb *Hitbox) {
	p := v.Player
	switch hb.Role {
	case RoleWeaponBox:
		if w.despawnQueued(hb.ID) {
			return
		}
		w.equipSecondary(v, hb.Weapon)
		w.queueDespawn(hb.ID)
		w.Sink.PlaySound(SoundPickup, hb.X, hb.Y)
		w.Sink.StatusText(p.ID, string(hb.Weapon))
	case RoleHill:
		p.OnHill = true
	case RoleCheckpoint:
		if hb.Checkpoint == p.NextCheckpoint && p.NextCheckpoint < w.Arena.Checkpoints {
			p.NextCheckpoint++
			p.Checkpoints++
		}
	case RoleLap:
		if w.Arena.Checkpoints > 0 && p.NextCheckpoint == w.Arena.Checkpoints {
			p.Laps++
			p.NextCheckpoint = 0
			log.Debug().Int("player", p.ID).Int("laps", p.Laps).Msg("lap completed")
		}
	}
}

// collideVehicles separates overlapping vehicles and exchanges their
// normal velocity
func (w *World) collideVehicles() {
	for i, a := range w.Vehicles {
		if !a.IsActive() {
			continue
		}
		for _, b := range w.Vehicles[i+1:] {
			if !b.IsActive() || !Intersects(a.Collider(), b.Collider()) {
				continue
			}
			n := b.Pos().Sub(a.Pos()).Normalize()
			if n == (Vec2{}) {
				n = Vec2{1, 0}
			}
			rel := a.Velocity().Sub(b.Velocity()).Dot(n)
			if rel <= 0 {
				continue
			}
			ma, mb := a.Weight(), b.Weight()
			if ma <= 0 || mb <= 0 {
				ma, mb = 1, 1
			}
			j := (1 + WallRestitution) * rel / (1/ma + 1/mb)
			a.VX -= n.X * j / ma
			a.VY -= n.Y * j / ma
			b.VX += n.X * j / mb
			b.VY += n.Y * j / mb
			a.X, a.Y = a.PrevX, a.PrevY
			b.X, b.Y = b.PrevX, b.PrevY
			a.Collided, b.Collided = true, true
			w.Sink.PlaySound(SoundBounce, (a.X+b.X)/2, (a.Y+b.Y)/2)
			w.collisionDamage(a, rel)
			w.collisionDamage(b, rel)
		}
	}
}
