package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCarCannotPivot(t *testing.T) {
	car := testVehicle(VehicleCarRacer)
	integrateVehicle(car, Controls{Turn: 1}, 0.1)
	assert.Equal(t, 0.0, car.Rotation, "stationary car keeps its heading")
	assert.Equal(t, 0.0, car.VR)

	for _, class := range []string{VehicleTankHeavy, VehicleHoverScout} {
		v := testVehicle(class)
		integrateVehicle(v, Controls{Turn: 1}, 0.1)
		if v.Rotation <= 0 {
			t.Errorf("%s should pivot in place, rotation %.3f", class, v.Rotation)
		}
	}
}

func TestCarTurnsAtLowSpeed(t *testing.T) {
	for _, vx := range []float64{2, 10} {
		car := testVehicle(VehicleCarRacer)
		car.VX = vx
		integrateVehicle(car, Controls{Turn: 1}, 0.1)
		if car.Rotation <= 0 {
			t.Errorf("car rolling at %.0f should turn, rotation %.4f", vx, car.Rotation)
		}
	}

	slow, fast := testVehicle(VehicleCarRacer), testVehicle(VehicleCarRacer)
	slow.VX, fast.VX = 10, 200
	integrateVehicle(slow, Controls{Turn: 1}, 0.1)
	integrateVehicle(fast, Controls{Turn: 1}, 0.1)
	assert.Less(t, slow.Rotation, fast.Rotation, "authority grows with speed")
}

func TestCarSteeringFlipsInReverse(t *testing.T) {
	forward := testVehicle(VehicleCarRacer)
	forward.VX = 200
	integrateVehicle(forward, Controls{Turn: 1}, 0.1)
	assert.Greater(t, forward.Rotation, 0.0)

	reverse := testVehicle(VehicleCarRacer)
	reverse.VX = -200
	integrateVehicle(reverse, Controls{Turn: 1}, 0.1)
	assert.Less(t, reverse.Rotation, 0.0)
}

func TestIntegrateMovesVehicle(t *testing.T) {
	v := testVehicle(VehicleHoverScout)
	v.X, v.Y = 100, 100
	integrateVehicle(v, Controls{Accel: 1}, 0.1)

	assert.Equal(t, 100.0, v.PrevX)
	assert.Greater(t, v.VX, 0.0)
	assert.InDelta(t, 0, v.VY, 1e-9)
	assert.InDelta(t, 100+v.VX*0.1, v.X, 1e-9)
}

func TestMaxVelocityCap(t *testing.T) {
	v := testVehicle(VehicleHoverScout)
	for i := 0; i < 200; i++ {
		integrateVehicle(v, Controls{Accel: 1}, 0.05)
		require.LessOrEqual(t, v.Speed(), v.MaxVelocity+1e-9)
	}
	assert.Greater(t, v.Speed(), v.MaxVelocity*0.5)

	v.ApplySlowDown(SlowDownEffect{Timer: 5, Pct: 50})
	integrateVehicle(v, Controls{Accel: 1}, 0.05)
	assert.LessOrEqual(t, v.Speed(), v.MaxVelocity*0.5+1e-9)
}

func TestBoundaryBounce(t *testing.T) {
	w := newTestWorld(t, testSetup(ModeDeathmatchKills, 2))
	v := w.Vehicles[0]
	moveTo(v, 5, 1000)
	v.Rotation = 0
	v.VX, v.VY = -100, 10

	w.collideBoundary(v)

	assert.Equal(t, v.Width/2, v.X, "pushed back inside")
	assert.InDelta(t, 50, v.VX, 1e-9)
	assert.InDelta(t, 9, v.VY, 1e-9)
	assert.True(t, v.Collided)
	assert.InDelta(t, v.Shield.Max-5, v.Shield.Value, 1e-9, "impact damage")

	v.X, v.VX = 5, -100
	w.collideBoundary(v)
	assert.InDelta(t, v.Shield.Max-5, v.Shield.Value, 1e-9, "no damage during the cooldown")
}

func TestWallBounce(t *testing.T) {
	s := testSetup(ModeDeathmatchKills, 2)
	s.Arena = testArenaWall
	w := newTestWorld(t, s)
	v := w.Vehicles[0]
	v.Rotation = 0
	v.PrevX, v.PrevY = 960, 1000
	v.X, v.Y = 975, 1000
	v.VX, v.VY = 100, 0

	w.collideHitboxes(v, 0.1)

	assert.InDelta(t, -50, v.VX, 1e-9)
	assert.Equal(t, 960.0, v.X)
	assert.True(t, v.Collided)
	assert.InDelta(t, v.Shield.Max-5, v.Shield.Value, 1e-9)
}

func TestVehicleBounceConservesMomentum(t *testing.T) {
	w := newTestWorld(t, testSetup(ModeDeathmatchKills, 2))
	a, b := w.Vehicles[0], w.Vehicles[1]
	moveTo(a, 500, 500)
	moveTo(b, 520, 500)
	a.VX = 100

	before := a.Weight()*a.VX + b.Weight()*b.VX
	w.collideVehicles()

	assert.Less(t, a.VX, 100.0)
	assert.Greater(t, b.VX, 0.0)
	assert.InDelta(t, before, a.Weight()*a.VX+b.Weight()*b.VX, 1e-6)
	assert.True(t, a.Collided && b.Collided)

	// separating vehicles are left alone
	moveTo(a, 500, 500)
	moveTo(b, 520, 500)
	a.VX, b.VX = -10, 10
	a.Collided, b.Collided = false, false
	w.collideVehicles()
	assert.Equal(t, -10.0, a.VX)
	assert.False(t, a.Collided)
}

func TestRepair(t *testing.T) {
	v := testVehicle(VehicleHoverScout)
	v.Health.Value = 50

	for i := 0; i < 5; i++ {
		updateRepair(v, true, 0.1)
	}
	assert.True(t, v.Repair.Activated)
	assert.Equal(t, 50.0, v.Health.Value, "repair has a start delay")

	for i := 0; i < 15; i++ {
		updateRepair(v, true, 0.1)
	}
	assert.Greater(t, v.Health.Value, 50.0)

	updateRepair(v, false, 0.1)
	assert.False(t, v.Repair.Activated, "release cancels")

	v.VX = 200
	updateRepair(v, true, 0.1)
	assert.False(t, v.Repair.Activated, "too fast to repair")
}

func TestEffectiveControls(t *testing.T) {
	v := testVehicle(VehicleHoverScout)
	raw := Controls{Accel: -1, Turn: 1, Fire: [2]bool{true, true}, Repair: true}

	assert.Equal(t, raw, effectiveControls(v, raw))

	v.Repair.Activated = true
	assert.Equal(t, Controls{Repair: true}, effectiveControls(v, raw), "repair locks the controls")

	v.Repair.Activated = false
	v.MalfunctionTimer = 0.5
	assert.Equal(t, Controls{Repair: true}, effectiveControls(v, raw))

	v.MalfunctionTimer = 0
	v.StuckAccelTimer = 1
	assert.Equal(t, 1.0, effectiveControls(v, raw).Accel, "throttle stuck open")
}

func TestZoneEffects(t *testing.T) {
	w := newTestWorld(t, testSetup(ModeDeathmatchKills, 2))
	v := w.Vehicles[0]
	v.Rotation = 0
	v.Health.Value = 50

	w.applyZone(v, &Hitbox{HitboxConfig: HitboxConfig{RepairRate: 10}}, 0.5)
	assert.InDelta(t, 55, v.Health.Value, 1e-9)

	w.applyZone(v, &Hitbox{HitboxConfig: HitboxConfig{AccelRate: 100}}, 0.5)
	assert.InDelta(t, 50, v.VX, 1e-9)

	w.applyZone(v, &Hitbox{HitboxConfig: HitboxConfig{DamageRate: 20}}, 0.5)
	assert.InDelta(t, v.Shield.Max-10, v.Shield.Value, 1e-9)
}

func TestCheckpointsAndLaps(t *testing.T) {
	w := newTestWorld(t, testSetup(ModeCombatRace, 1))
	w.Arena.Checkpoints = 2
	v := w.Vehicles[0]
	p := v.Player
	cp := func(id int) *Hitbox {
		return &Hitbox{HitboxConfig: HitboxConfig{Role: RoleCheckpoint, Checkpoint: id}}
	}
	lap := &Hitbox{HitboxConfig: HitboxConfig{Role: RoleLap}}

	w.triggerHitbox(v, cp(1))
	assert.Equal(t, 0, p.NextCheckpoint, "out of order")
	w.triggerHitbox(v, cp(0))
	w.triggerHitbox(v, lap)
	assert.Equal(t, 0, p.Laps, "lap line before all checkpoints")
	w.triggerHitbox(v, cp(1))
	w.triggerHitbox(v, cp(1))
	assert.Equal(t, 2, p.Checkpoints)
	w.triggerHitbox(v, lap)
	assert.Equal(t, 1, p.Laps)
	assert.Equal(t, 0, p.NextCheckpoint)
}

func TestNextSpawnSkipsPrevious(t *testing.T) {
	w := newTestWorld(t, testSetup(ModeDeathmatchKills, 1))
	v := w.Vehicles[0]
	require.Equal(t, 0, v.SpawnIndex)

	for i := 0; i < 8; i++ {
		prev := v.SpawnIndex
		w.placeAtSpawn(v)
		assert.NotEqual(t, prev, v.SpawnIndex)
		sp := w.Arena.SpawnPoints[v.SpawnIndex]
		assert.Equal(t, sp.X, v.X)
		assert.Equal(t, sp.Y, v.Y)
	}
}
