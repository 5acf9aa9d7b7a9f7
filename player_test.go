package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPlayer(t *testing.T) {
	p := NewPlayer(3, "TestPilot", true)
	if p.ID != 3 {
		t.Errorf("expected ID 3, got %d", p.ID)
	}
	if p.Name != "TestPilot" {
		t.Errorf("expected name TestPilot, got %s", p.Name)
	}
	if !p.IsBot {
		t.Error("expected a bot")
	}
	if p.LastHitBy != NoPlayer {
		t.Errorf("expected no attacker, got %d", p.LastHitBy)
	}
	if p.Bot.Mode != BotSleep {
		t.Errorf("expected sleeping bot, got %s", p.Bot.Mode)
	}
}

func TestRecordHitBy(t *testing.T) {
	p := NewPlayer(1, "P", false)
	p.LastHitTimer = 4

	p.RecordHitBy(1)
	assert.Equal(t, NoPlayer, p.LastHitBy, "self hits are not recorded")
	p.RecordHitBy(NoPlayer)
	assert.Equal(t, NoPlayer, p.LastHitBy, "neutral hits are not recorded")

	p.RecordHitBy(2)
	assert.Equal(t, 2, p.LastHitBy)
	assert.Equal(t, 0.0, p.LastHitTimer)
}

func TestKillCredit(t *testing.T) {
	p := NewPlayer(1, "P", false)
	assert.Equal(t, NoPlayer, p.KillCredit(NoPlayer), "no attacker on record")
	assert.Equal(t, 2, p.KillCredit(2), "owned shots credit the owner")
	assert.Equal(t, NoPlayer, p.KillCredit(1), "suicide gives no credit")

	p.RecordHitBy(3)
	p.tickTimers(KillCreditWindow - 1)
	assert.Equal(t, 3, p.KillCredit(NoPlayer), "neutral death inside the window")
	assert.Equal(t, NoPlayer, p.KillCredit(1), "self damage still gives no credit")

	p.tickTimers(2)
	assert.Equal(t, NoPlayer, p.KillCredit(NoPlayer), "window expired")
}

func TestVehicleFromClass(t *testing.T) {
	stats := DefaultVehicleClasses[VehicleTankHeavy]
	v := NewVehicle(2, VehicleTankHeavy, stats, NewPlayer(2, "T", false))

	assert.Equal(t, stats.Shield, v.Shield.Max)
	assert.Equal(t, stats.Armor, v.Armor.Value)
	assert.Equal(t, stats.Health, v.Health.Value)
	assert.Equal(t, MovementTank, v.Movement)
	assert.Equal(t, -1, v.SpawnIndex)
	assert.True(t, v.IsActive())

	v.Weapons.Install(0, NewWeapon(WeaponLaserDouble, DefaultWeapons[WeaponLaserDouble]), 0, 0)
	assert.Equal(t, stats.Weight+DefaultWeapons[WeaponLaserDouble].Weight, v.Weight())
}

func TestVehicleResetResources(t *testing.T) {
	v := testVehicle(VehicleHoverScout)
	v.Shield.Value, v.Armor.Value, v.Health.Value = 0, 1, 2
	v.Shield.CooldownTimer = 3
	v.ResetResources()

	assert.Equal(t, v.Shield.Max, v.Shield.Value)
	assert.Equal(t, v.Armor.Max, v.Armor.Value)
	assert.Equal(t, v.Health.Max, v.Health.Value)
	assert.Equal(t, 0.0, v.Shield.CooldownTimer)
}

func TestVehicleToState(t *testing.T) {
	v := testVehicle(VehicleCarRacer)
	v.ID = 4
	v.X, v.Y = 123.456, 78.91
	v.Health.Value = 55.56
	v.State = VehicleInRespawn

	s := v.ToState()
	assert.Equal(t, 4, s.ID)
	assert.Equal(t, 123.5, s.X)
	assert.Equal(t, 78.9, s.Y)
	assert.Equal(t, 55.6, s.Health)
	assert.Equal(t, int(VehicleInRespawn), s.State)
	assert.Equal(t, VehicleCarRacer, s.Class)
}

func TestInputStateControls(t *testing.T) {
	in := NewInputState()
	assert.Equal(t, "p1_accel", ActionName(0, "accel"))
	assert.Equal(t, "p3_alt_fire", ActionName(2, "alt_fire"))

	in.SetAxis(ActionName(1, "accel"), 2)
	in.SetAxis(ActionName(1, "turn"), -0.5)
	in.SetButton(ActionName(1, "alt_fire"), true)
	in.SetButton(ActionName(1, "repair"), true)

	c := ReadControls(in, 1)
	assert.Equal(t, 1.0, c.Accel, "axes are clamped")
	assert.Equal(t, -0.5, c.Turn)
	assert.Equal(t, [2]bool{false, true}, c.Fire)
	assert.True(t, c.Repair)

	assert.Equal(t, Controls{}, ReadControls(in, 0), "other slots untouched")
	assert.Equal(t, Controls{}, ReadControls(nil, 0))
}

func TestEventBuffer(t *testing.T) {
	var b EventBuffer
	b.PlaySound(SoundHit, 1.04, 2)
	b.PlaySound(SoundHit, 3, 4)
	b.SpawnEffect(EffectSpark, 0, 0)
	b.StatusText(2, "kill")

	assert.Equal(t, 2, b.Count("sound", string(SoundHit)))
	assert.Equal(t, 1, b.Count("effect", string(EffectSpark)))

	events := b.Drain()
	assert.Len(t, events, 4)
	assert.Equal(t, 1.0, events[0].X)
	assert.Equal(t, Event{Type: "status", Slot: 2, Text: "kill"}, events[3])
	assert.Empty(t, b.Drain())
}
