package main

import "math"

// AimAngle returns the fire angle of an install: heading plus mount
// offsets, biased toward a tracked target inside the weapon's cone
func AimAngle(v *Vehicle, in *WeaponInstall) float64 {
	stats := in.Weapon.Stats
	aim := v.Rotation + in.MountAngle + stats.MountAngle
	t := v.ClosestTarget
	if t.Found && stats.TrackingAngle > 0 {
		diff := NormalizeAngle(t.Angle - aim)
		if math.Abs(diff) <= stats.TrackingAngle {
			if t.Distance <= TrackingEngageDistance {
				aim += diff
			} else {
				aim += diff * TrackingEngageDistance / t.Distance
			}
		}
	}
	return NormalizeAngle(aim)
}

// canFire reports whether a vehicle may pull its triggers
func canFire(v *Vehicle) bool {
	return v.IsActive() && !v.Repair.Activated && !v.Malfunctioning()
}

// fireWeapons is the weapon firing pass
func (w *World) fireWeapons(dt float64) {
	for _, v := range w.Vehicles {
		armed := canFire(v)
		for slot, in := range v.Weapons.Installs {
			if in == nil || in.Weapon == nil {
				continue
			}
			group := in.FiringGroup
			if group < 0 || group > 1 {
				group = 0
			}
			trigger := armed && v.Controls.Fire[group]
			if !in.Weapon.Step(trigger, dt) {
				continue
			}
			if in.Weapon.Stats.Fire.Attached {
				w.deploy(v, slot, in)
				continue
			}
			w.fireShots(v, slot, in)
		}
	}
}

// fireShots spawns one volley. Multi-shot weapons fan their shots evenly
// across the spread; single shots get a random spread.
func (w *World) fireShots(v *Vehicle, slot int, in *WeaponInstall) {
	stats := in.Weapon.Stats
	aim := AimAngle(v, in)
	n := max(1, stats.ShotCount)
	for i := 0; i < n; i++ {
		angle := aim
		if s := stats.SpreadAngle; s > 0 {
			if n > 1 {
				angle += -s + 2*s*float64(i)/float64(n-1)
			} else {
				angle += w.rng.Range(-s, s)
			}
		}
		w.spawnShot(v, slot, in.Weapon, NormalizeAngle(angle))
	}
	w.Sink.PlaySound(SoundFire, v.X, v.Y)
}

func (w *World) spawnShot(v *Vehicle, slot int, wpn *Weapon, angle float64) *WeaponFire {
	fs := wpn.Stats.Fire
	radius := math.Max(fs.ShotWidth, fs.ShotHeight) / 2
	dir := Heading(angle)
	pos := v.Pos().Add(dir.Scale(v.Width/2 + radius))
	vel := dir.Scale(fs.ShotSpeed)
	p := &WeaponFire{
		OwnerID:   v.Player.ID,
		VehicleID: v.ID,
		Weapon:    wpn.Name,
		Slot:      slot,
		Source:    wpn,
		X:         pos.X,
		Y:         pos.Y,
		VX:        vel.X,
		VY:        vel.Y,
		Rotation:  angle,
		Stats:     fs,
		TargetID:  -1,
		Muzzle:    v.Pos(),
		muzzled:   true,
	}
	w.addProjectile(p)
	return p
}

// deploy spawns the persistent shot of an attached weapon
func (w *World) deploy(v *Vehicle, slot int, in *WeaponInstall) {
	angle := NormalizeAngle(v.Rotation + in.MountAngle + in.Weapon.Stats.MountAngle)
	fs := in.Weapon.Stats.Fire
	pos := v.Pos().Add(Heading(angle).Scale(fs.AttachedOffset))
	w.addProjectile(&WeaponFire{
		OwnerID:   v.Player.ID,
		VehicleID: v.ID,
		Weapon:    in.Weapon.Name,
		Slot:      slot,
		Source:    in.Weapon,
		X:         pos.X,
		Y:         pos.Y,
		VX:        v.VX,
		VY:        v.VY,
		Rotation:  angle,
		Stats:     fs,
		TargetID:  -1,
	})
	w.Sink.PlaySound(SoundFire, v.X, v.Y)
}
