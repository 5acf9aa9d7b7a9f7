package main

import "math"

// ApplyDamage runs raw damage through shield, armor and health and reports
// whether this call destroyed the vehicle. Percentages are 0..100.
// durationDamage > 0 scales the damage, for per-second sources.
//
// The piercing share skips shield and armor. Each stage takes its pct of
// what reaches it; whatever exceeds the stage's value overflows as raw
// damage to the next one. A stage with pct 0 passes everything through.
func ApplyDamage(v *Vehicle, damage, piercingPct, shieldPct, armorPct, healthPct, durationDamage float64) bool {
	if v.Health.Value <= 0 || damage <= 0 {
		return false
	}
	if durationDamage > 0 {
		damage *= durationDamage
	}

	piercing := damage * Clamp(piercingPct, 0, 100) / 100
	damage -= piercing

	if v.Shield.Value > 0 && shieldPct > 0 && damage > 0 {
		damage = absorb(&v.Shield.Value, damage, shieldPct)
		v.Shield.CooldownTimer = v.Shield.CooldownReset
	}
	if v.Armor.Value > 0 && armorPct > 0 && damage > 0 {
		damage = absorb(&v.Armor.Value, damage, armorPct)
	}

	v.Health.Value -= (damage + piercing) * healthPct / 100
	if v.Health.Value <= 0 {
		v.Health.Value = 0
		return true
	}
	return false
}

// absorb takes pct of damage out of value and returns the raw overflow
func absorb(value *float64, damage, pct float64) float64 {
	*value -= damage * pct / 100
	if *value >= 0 {
		return 0
	}
	overflow := -*value * 100 / pct
	*value = 0
	return math.Max(0, overflow)
}
