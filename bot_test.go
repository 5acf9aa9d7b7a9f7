package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func botWorld(t *testing.T, mode GameMode) *World {
	t.Helper()
	s := testSetup(mode, 2)
	s.Players[0].Bot = true
	return newTestWorld(t, s)
}

func TestBotCollisionRecovery(t *testing.T) {
	w := botWorld(t, ModeDeathmatchKills)
	v := w.Vehicles[0]
	b := &v.Player.Bot
	b.setMode(BotRunRandom)
	v.Collided = true

	c := w.ThinkBot(v, 0.1)
	assert.Equal(t, BotCollisionTurn, b.Mode)
	assert.Equal(t, BotRunRandom, b.ResumeMode)
	assert.Equal(t, -1.0, c.Accel, "reverses out")
	v.Collided = false

	w.ThinkBot(v, 0.1)
	w.ThinkBot(v, 0.1)
	c = w.ThinkBot(v, 0.1)
	assert.Equal(t, BotCollisionMove, b.Mode)
	assert.Equal(t, 1.0, c.Accel)

	w.ThinkBot(v, 0.1)
	w.ThinkBot(v, 0.1)
	w.ThinkBot(v, 0.1)
	assert.Equal(t, BotRunRandom, b.Mode)
}

func TestBotCollisionFromCombatResumesHome(t *testing.T) {
	w := botWorld(t, ModeDeathmatchKills)
	v := w.Vehicles[0]
	b := &v.Player.Bot
	b.setMode(BotStrafeAim)
	v.ClosestTarget = Tracking{Found: true, Distance: 100}
	v.Collided = true

	w.ThinkBot(v, 0.1)
	assert.Equal(t, BotCollisionTurn, b.Mode)
	assert.Equal(t, BotRunRandom, b.ResumeMode)
}

func TestBotWakesIntoHomeMode(t *testing.T) {
	w := botWorld(t, ModeDeathmatchKills)
	w.ThinkBot(w.Vehicles[0], 0.1)
	assert.Equal(t, BotRunRandom, w.Players[0].Bot.Mode)

	s := testSetup(ModeKingOfTheHill, 1)
	s.Arena = ArenaHill
	s.Players[0].Bot = true
	hill := newTestWorld(t, s)
	hill.ThinkBot(hill.Vehicles[0], 0.1)
	assert.Equal(t, BotTakeTheHill, hill.Players[0].Bot.Mode)

	s = testSetup(ModeCombatRace, 1)
	s.Arena = ArenaRaceLoop
	s.Players[0].Bot = true
	race := newTestWorld(t, s)
	race.ThinkBot(race.Vehicles[0], 0.1)
	assert.Equal(t, BotRacing, race.Players[0].Bot.Mode)
}

func TestBotEngagesByVehicleType(t *testing.T) {
	tests := []struct {
		class   string
		primary WeaponName
		want    BotMode
	}{
		{VehicleHoverScout, WeaponLaserDouble, BotStrafeAim},
		{VehicleCarRacer, WeaponLaserDouble, BotChasing},
		{VehicleHoverScout, WeaponSword, BotSwording},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			s := testSetup(ModeDeathmatchKills, 2)
			s.Players[0] = PlayerSetup{Name: "B", Bot: true, Vehicle: tt.class, Primary: tt.primary}
			w := newTestWorld(t, s)
			v := w.Vehicles[0]
			v.Player.Bot.setMode(BotRunRandom)
			v.ClosestTarget = Tracking{Found: true, ID: 1, Distance: BotEngageDistance - 1}

			w.ThinkBot(v, 0.1)
			assert.Equal(t, tt.want, v.Player.Bot.Mode)
		})
	}
}

func TestBotDisengages(t *testing.T) {
	w := botWorld(t, ModeDeathmatchKills)
	v := w.Vehicles[0]
	b := &v.Player.Bot
	b.setMode(BotStrafeAim)
	v.ClosestTarget = Tracking{Found: true, Distance: BotDisengageDistance + 1}

	w.transitionBot(v, b)
	assert.Equal(t, BotRunRandom, b.Mode, "target out of range")

	b.setMode(BotChasing)
	v.ClosestTarget.Distance = 100
	b.ModeTimer = BotNoHitTimeout + 1
	v.Player.LastLandedHitTimer = BotNoHitTimeout + 1
	w.transitionBot(v, b)
	assert.Equal(t, BotRunRandom, b.Mode, "gives up without landing hits")
}

func TestBotRepairsWhenAlone(t *testing.T) {
	w := botWorld(t, ModeDeathmatchKills)
	v := w.Vehicles[0]
	b := &v.Player.Bot
	b.setMode(BotRunRandom)
	v.Health.Value = v.Health.Max * 0.2

	c := w.ThinkBot(v, 0.1)
	assert.Equal(t, BotRepairing, b.Mode)
	assert.True(t, c.Repair)

	v.ClosestVehicle = Tracking{Found: true, Distance: 100}
	w.ThinkBot(v, 0.1)
	assert.Equal(t, BotRunRandom, b.Mode, "enemy interrupts the repair")
}

func TestBotInactiveIdles(t *testing.T) {
	w := botWorld(t, ModeDeathmatchKills)
	v := w.Vehicles[0]
	v.State = VehicleInRespawn
	v.Player.Bot.Path = []Vec2{{1, 1}}

	assert.Equal(t, Controls{}, w.ThinkBot(v, 0.1))
	assert.Nil(t, v.Player.Bot.Path)
}

func TestSteerAt(t *testing.T) {
	v := testVehicle(VehicleHoverScout)

	c := steerAt(v, Vec2{0, 100}, false)
	assert.Equal(t, 1.0, c.Turn)
	assert.Equal(t, 1.0, c.Accel)

	c = steerAt(v, Vec2{100, 0}, false)
	assert.Equal(t, 0.0, c.Turn, "inside the dead zone")

	c = steerAt(v, Vec2{-100, 1}, false)
	assert.Equal(t, 0.5, c.Accel, "target behind")

	v.VX = 300
	c = steerAt(v, Vec2{50, 0}, true)
	assert.Equal(t, 0.0, c.Accel, "brakes for the final waypoint")
	assert.False(t, shouldBrake(testVehicle(VehicleHoverScout), 50))
}

func TestBotStaysInsideArenaWhenRunning(t *testing.T) {
	w := botWorld(t, ModeDeathmatchKills)
	v := w.Vehicles[0]
	for i := 0; i < 600; i++ {
		w.Step(1.0 / 60)
		if math.IsNaN(v.X) || math.IsNaN(v.Y) {
			t.Fatalf("position became NaN at tick %d", i)
		}
	}
	assert.GreaterOrEqual(t, v.X, 0.0)
	assert.LessOrEqual(t, v.X, w.Arena.Width)
	assert.NotEqual(t, BotSleep, w.Players[0].Bot.Mode)
}
