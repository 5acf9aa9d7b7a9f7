package main

import (
	"math"
	"slices"
)

const (
	minShotSize       = 1.0
	lifeEpsilon       = 1e-9
	DefaultChainSpeed = 1200.0 // chained shots from weapons without a shot speed
)

// WeaponFire is a projectile or an attached melee swing
type WeaponFire struct {
	ID        int
	OwnerID   int // player id, NoPlayer once neutral
	VehicleID int // firing vehicle, for attached shots
	Weapon    WeaponName
	Slot      int // install slot that fired it, -1 for none
	Source    *Weapon

	X, Y         float64
	VX, VY       float64
	PrevX, PrevY float64
	Rotation     float64
	Age          float64

	Muzzle  Vec2 // firing vehicle centre
	muzzled bool

	Stats       WeaponFireStats // mutable copy
	Active      bool
	ChainHitIDs []int // vehicle ids already hit by this chain
	TargetID    int   // vehicle this chained shot flies at, -1 for none
}

// Pos returns the projectile position
func (p *WeaponFire) Pos() Vec2 { return Vec2{p.X, p.Y} }

// Velocity returns the projectile velocity
func (p *WeaponFire) Velocity() Vec2 { return Vec2{p.VX, p.VY} }

// Collider returns the shot shape
func (p *WeaponFire) Collider() Collider {
	return Collider{
		Pos:      p.Pos(),
		Rotation: p.Rotation,
		Width:    math.Max(p.Stats.ShotWidth, minShotSize),
		Height:   math.Max(p.Stats.ShotHeight, minShotSize),
		Shape:    p.Stats.ShotShape,
	}
}

// Chained reports whether id was already hit along this chain
func (p *WeaponFire) Chained(id int) bool {
	return slices.Contains(p.ChainHitIDs, id)
}

// sweepStart is where the vehicle hit sweep begins this tick: the firing
// vehicle's centre on a fired shot's first tick, the previous position after
func (p *WeaponFire) sweepStart(dt float64) Vec2 {
	if p.muzzled && p.Age <= dt+lifeEpsilon {
		return p.Muzzle
	}
	return Vec2{p.PrevX, p.PrevY}
}

// Expired reports whether the shot outlived its life limit
func (p *WeaponFire) Expired() bool {
	return p.Stats.ShotLifeLimit >= 0 && p.Age >= p.Stats.ShotLifeLimit-lifeEpsilon
}

// ToState converts to protocol state
func (p *WeaponFire) ToState() ProjectileFrame {
	return ProjectileFrame{
		ID:     p.ID,
		X:      round1(p.X),
		Y:      round1(p.Y),
		R:      math.Round(p.Rotation*100) / 100,
		Weapon: string(p.Weapon),
		Owner:  p.OwnerID,
	}
}

func (w *World) addProjectile(p *WeaponFire) {
	p.ID = w.nextProjectileID
	w.nextProjectileID++
	p.Active = true
	p.PrevX, p.PrevY = p.X, p.Y
	w.Projectiles = append(w.Projectiles, p)
	w.metrics.projectileSpawned()
}

func (w *World) removeProjectile(p *WeaponFire) {
	if !p.Active {
		return
	}
	p.Active = false
	w.metrics.projectileRemoved()
}

// compactProjectiles drops removed projectiles after a pass
func (w *World) compactProjectiles() {
	w.Projectiles = slices.DeleteFunc(w.Projectiles, func(p *WeaponFire) bool { return !p.Active })
}

// moveProjectiles is the projectile motion pass
func (w *World) moveProjectiles(dt float64) {
	for _, p := range w.Projectiles {
		if !p.Active {
			continue
		}
		p.PrevX, p.PrevY = p.X, p.Y
		p.Age += dt
		if p.Expired() {
			w.removeProjectile(p)
			continue
		}
		if p.Stats.DamageReductionRate > 0 {
			p.Stats.Damage = math.Max(0, p.Stats.Damage-p.Stats.DamageReductionRate*dt)
		}
		if p.Stats.Attached {
			w.followOwner(p)
			continue
		}
		w.steer(p, dt)
		p.X += p.VX * dt
		p.Y += p.VY * dt
		if p.VX != 0 || p.VY != 0 {
			p.Rotation = math.Atan2(p.VY, p.VX)
		}
		w.keepInBounds(p)
	}
	w.compactProjectiles()
}

// followOwner pins an attached shot to its vehicle, removing it once the
// weapon is put away or the vehicle leaves play
func (w *World) followOwner(p *WeaponFire) {
	v := w.vehicle(p.VehicleID)
	if v == nil || !v.IsActive() || p.Source == nil || !p.Source.Deployed {
		w.removeProjectile(p)
		return
	}
	in := v.Weapons.Slot(p.Slot)
	if in == nil || in.Weapon != p.Source {
		w.removeProjectile(p)
		return
	}
	angle := NormalizeAngle(v.Rotation + in.MountAngle + p.Source.Stats.MountAngle)
	pos := v.Pos().Add(Heading(angle).Scale(p.Stats.AttachedOffset))
	p.X, p.Y = pos.X, pos.Y
	p.VX, p.VY = v.VX, v.VY
	p.Rotation = angle
}

// steer applies acceleration, heat seeking and chain targeting
func (w *World) steer(p *WeaponFire, dt float64) {
	vel := p.Velocity()
	dir := vel.Normalize()
	if dir == (Vec2{}) {
		dir = Heading(p.Rotation)
	}
	if p.Stats.Accel != 0 {
		p.Stats.ShotSpeed = math.Max(0, p.Stats.ShotSpeed+p.Stats.Accel*dt)
		vel = dir.Scale(p.Stats.ShotSpeed)
	}
	if p.Stats.HeatSeeking {
		if t := w.nearestEnemy(p); t != nil {
			bearing := t.Pos().Sub(p.Pos()).Normalize()
			vel = vel.Add(bearing.Scale(p.Stats.HeatSeekingAgility * dt))
			vel = vel.Normalize().Scale(p.Stats.ShotSpeed)
		}
	}
	if p.TargetID >= 0 {
		if t := w.vehicle(p.TargetID); t != nil && t.IsActive() {
			vel = t.Pos().Sub(p.Pos()).Normalize().Scale(vel.Len())
		}
	}
	p.VX, p.VY = vel.X, vel.Y
}

// nearestEnemy returns the closest active vehicle not owned by the shot's owner
func (w *World) nearestEnemy(p *WeaponFire) *Vehicle {
	var best *Vehicle
	bestD := math.MaxFloat64
	for _, v := range w.Vehicles {
		if !v.IsActive() || v.Player.ID == p.OwnerID {
			continue
		}
		if d := DistanceSq(p.X, p.Y, v.X, v.Y); d < bestD {
			best, bestD = v, d
		}
	}
	return best
}

// keepInBounds reflects a shot off the arena edge or removes it
func (w *World) keepInBounds(p *WeaponFire) {
	outX := p.X < 0 || p.X > w.Arena.Width
	outY := p.Y < 0 || p.Y > w.Arena.Height
	if !outX && !outY {
		return
	}
	if p.Stats.Bounces <= 0 {
		w.removeProjectile(p)
		return
	}
	if outX {
		p.VX = -p.VX
		p.X = Clamp(p.X, 0, w.Arena.Width)
	}
	if outY {
		p.VY = -p.VY
		p.Y = Clamp(p.Y, 0, w.Arena.Height)
	}
	p.Stats.Bounces--
	p.OwnerID = NoPlayer
	p.Rotation = math.Atan2(p.VY, p.VX)
	w.Sink.PlaySound(SoundBounce, p.X, p.Y)
}
