package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// ServerConfig holds process settings
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	DBPath         string        `mapstructure:"dbPath"`
	LogLevel       string        `mapstructure:"logLevel"`
	LogPretty      bool          `mapstructure:"logPretty"`
	TickRate       int           `mapstructure:"tickRate"`       // simulation ticks per second
	BroadcastEvery int           `mapstructure:"broadcastEvery"` // ticks between state frames
	HostPin        string        `mapstructure:"hostPin"`
	Seed           int64         `mapstructure:"seed"` // 0 seeds from the clock
	ClientDir      string        `mapstructure:"clientDir"`
	SessionIdle    time.Duration `mapstructure:"sessionIdle"`
	PublicURL      string        `mapstructure:"publicUrl"` // base URL encoded in controller QR codes
	MetricsStdout  bool          `mapstructure:"metricsStdout"`
	MetricsEvery   time.Duration `mapstructure:"metricsEvery"` // export interval
}

// Config is everything loaded at startup
type Config struct {
	Server ServerConfig
	Tables *GameTables
	Match  *MatchSetup // nil unless the file has a match section
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("dbPath", "rally.db")
	v.SetDefault("logLevel", "info")
	v.SetDefault("logPretty", false)
	v.SetDefault("tickRate", 60)
	v.SetDefault("broadcastEvery", 3)
	v.SetDefault("hostPin", "")
	v.SetDefault("seed", 0)
	v.SetDefault("clientDir", "../client")
	v.SetDefault("sessionIdle", "5m")
	v.SetDefault("publicUrl", "http://localhost:8080")
	v.SetDefault("metricsStdout", false)
	v.SetDefault("metricsEvery", "1m")
}

func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

// LoadConfig reads defaults plus an optional YAML or JSON file. Table
// sections in the file override built-in entries field by field.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("RALLY")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{Tables: DefaultTables()}
	if err := v.Unmarshal(&cfg.Server, decodeHook()); err != nil {
		return nil, fmt.Errorf("decode server config: %w", err)
	}
	if err := overrideTables(v, cfg.Tables); err != nil {
		return nil, err
	}
	if v.IsSet("match") {
		mode := ModeDeathmatchKills
		if s := v.GetString("match.mode"); s != "" {
			if err := mode.UnmarshalText([]byte(s)); err != nil {
				return nil, fmt.Errorf("match: %w", err)
			}
		}
		setup := DefaultMatchSetup(mode)
		if err := v.UnmarshalKey("match", &setup, decodeHook()); err != nil {
			return nil, fmt.Errorf("decode match: %w", err)
		}
		cfg.Match = &setup
	}
	if err := ValidateTables(cfg.Tables); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideTables(v *viper.Viper, t *GameTables) error {
	for name := range v.GetStringMap("weapons") {
		stats := t.Weapons[WeaponName(name)]
		if err := v.Sub("weapons."+name).Unmarshal(&stats, decodeHook()); err != nil {
			return fmt.Errorf("weapon %s: %w", name, err)
		}
		t.Weapons[WeaponName(name)] = stats
	}
	for name := range v.GetStringMap("vehicles") {
		stats, ok := t.Vehicles[name]
		if !ok {
			stats = ZeroVehicleStats
		}
		if err := v.Sub("vehicles."+name).Unmarshal(&stats, decodeHook()); err != nil {
			return fmt.Errorf("vehicle %s: %w", name, err)
		}
		t.Vehicles[name] = stats
	}
	for name := range v.GetStringMap("arenas") {
		var arena ArenaConfig
		if err := v.UnmarshalKey("arenas."+name, &arena, decodeHook()); err != nil {
			return fmt.Errorf("arena %s: %w", name, err)
		}
		t.Arenas[name] = arena
	}
	if v.IsSet("gunGameOrder") {
		var order []WeaponName
		if err := v.UnmarshalKey("gunGameOrder", &order, decodeHook()); err != nil {
			return fmt.Errorf("gunGameOrder: %w", err)
		}
		t.GunGameOrder = order
	}
	if v.IsSet("weaponSpawnChances") {
		var chances []WeaponSpawnChance
		if err := v.UnmarshalKey("weaponSpawnChances", &chances, decodeHook()); err != nil {
			return fmt.Errorf("weaponSpawnChances: %w", err)
		}
		t.WeaponSpawnChances = chances
	}
	return nil
}

// ValidateTables rejects tables the simulation cannot run on
func ValidateTables(t *GameTables) error {
	for name, w := range t.Weapons {
		if w.Cooldown < 0 || w.BurstCooldown < 0 || w.SpinUp < 0 || w.Charge < 0 {
			return fmt.Errorf("weapon %s: timers must not be negative", name)
		}
		if w.ShotCount < 0 || w.BurstShotLimit < 0 {
			return fmt.Errorf("weapon %s: counts must not be negative", name)
		}
		if w.Ammo != nil && *w.Ammo < 0 {
			return fmt.Errorf("weapon %s: ammo must not be negative", name)
		}
		if c := w.Fire.Chaining; c.Jumps > 0 && (c.Prongs <= 0 || c.Radius <= 0) {
			return fmt.Errorf("weapon %s: chaining needs prongs and radius", name)
		}
	}
	for name, vs := range t.Vehicles {
		if vs.Weight <= 0 || vs.Width <= 0 || vs.Height <= 0 {
			return fmt.Errorf("vehicle %s: weight and size must be positive", name)
		}
	}
	for name, a := range t.Arenas {
		if _, err := NewArena(name, a); err != nil {
			return err
		}
	}
	for i, w := range t.GunGameOrder {
		if _, ok := t.Weapons[w]; !ok {
			return fmt.Errorf("gunGameOrder[%d]: unknown weapon %q", i, w)
		}
	}
	for _, c := range t.WeaponSpawnChances {
		if _, ok := t.Weapons[c.Weapon]; !ok {
			return fmt.Errorf("weaponSpawnChances: unknown weapon %q", c.Weapon)
		}
		if c.Chance < 0 {
			return fmt.Errorf("weaponSpawnChances: %s chance must not be negative", c.Weapon)
		}
	}
	return nil
}

func enumString(i int, names []string) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("unknown(%d)", i)
	}
	return names[i]
}

func unmarshalEnum[T ~int](b []byte, names []string, dst *T) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for i, n := range names {
		if n == s {
			*dst = T(i)
			return nil
		}
	}
	return fmt.Errorf("unknown value %q, want one of %s", s, strings.Join(names, ", "))
}
