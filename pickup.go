package main

import "github.com/rs/zerolog/log"

const (
	WeaponBoxSize    = 24.0
	WeaponBoxLife    = 20.0 // seconds before an untouched box expires
	WeaponBoxRespawn = 8.0  // seconds between a box leaving and the next
)

// equipSecondary swaps the vehicle's slot 1 weapon
func (w *World) equipSecondary(v *Vehicle, name WeaponName) {
	if name == WeaponNone {
		return
	}
	stats := w.Tables.Weapon(name)
	mount := 0.0
	if in := v.Weapons.Slot(1); in != nil {
		mount = in.MountAngle
	}
	v.Weapons.Install(1, NewWeapon(name, stats), 1, mount)
}

// pickWeapon draws a weapon from the spawn-chance table
func (w *World) pickWeapon() WeaponName {
	total := 0.0
	for _, c := range w.Tables.WeaponSpawnChances {
		total += c.Chance
	}
	if total <= 0 {
		return WeaponNone
	}
	r := w.rng.Range(0, total)
	for _, c := range w.Tables.WeaponSpawnChances {
		if r < c.Chance {
			return c.Weapon
		}
		r -= c.Chance
	}
	return w.Tables.WeaponSpawnChances[len(w.Tables.WeaponSpawnChances)-1].Weapon
}

// updateWeaponBoxes spawns boxes at idle spawners and ages live boxes
func (w *World) updateWeaponBoxes(dt float64) {
	if !w.Setup.WeaponBoxes {
		return
	}
	for _, hb := range w.Arena.Sorted() {
		switch hb.Role {
		case RoleWeaponSpawner:
			if hb.BoxID >= 0 {
				continue
			}
			hb.SpawnTimer -= dt
			if hb.SpawnTimer <= 0 {
				w.spawnWeaponBox(hb)
			}
		case RoleWeaponBox:
			hb.Life -= dt
			if hb.Life <= 0 {
				w.despawnBox(hb.ID)
			}
		}
	}
}

func (w *World) spawnWeaponBox(spawner *Hitbox) {
	name := w.pickWeapon()
	if name == WeaponNone {
		spawner.SpawnTimer = WeaponBoxRespawn
		return
	}
	box := w.Arena.add(HitboxConfig{
		X: spawner.X, Y: spawner.Y,
		Width: WeaponBoxSize, Height: WeaponBoxSize,
		Obstacle: ObstacleOpen, Role: RoleWeaponBox,
	})
	box.Weapon = name
	box.Life = WeaponBoxLife
	box.SpawnerID = spawner.ID
	spawner.BoxID = box.ID
	w.Index.Insert(box)
	log.Debug().Str("weapon", string(name)).Int("box", box.ID).Msg("weapon box spawned")
}

func (w *World) queueDespawn(id int) {
	w.pendingDespawn = append(w.pendingDespawn, id)
}

func (w *World) despawnQueued(id int) bool {
	for _, q := range w.pendingDespawn {
		if q == id {
			return true
		}
	}
	return false
}

// flushDespawns removes boxes picked up during the pass
func (w *World) flushDespawns() {
	for _, id := range w.pendingDespawn {
		w.despawnBox(id)
	}
	w.pendingDespawn = w.pendingDespawn[:0]
}

func (w *World) despawnBox(id int) {
	box, ok := w.Arena.Hitboxes[id]
	if !ok {
		return
	}
	w.Index.Remove(id)
	delete(w.Arena.Hitboxes, id)
	if sp, ok := w.Arena.Hitboxes[box.SpawnerID]; ok && sp.BoxID == id {
		sp.BoxID = -1
		sp.SpawnTimer = WeaponBoxRespawn
	}
}
