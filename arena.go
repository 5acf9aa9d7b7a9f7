package main

import (
	"fmt"
	"sort"
)

// ObstacleType decides how vehicles interact with a hitbox
type ObstacleType int

const (
	ObstacleOpen ObstacleType = iota // triggers only
	ObstacleWall                     // blocks and bounces
	ObstacleZone                     // continuous effects while inside
)

var obstacleNames = []string{"open", "wall", "zone"}

func (o ObstacleType) String() string { return enumString(int(o), obstacleNames) }

func (o *ObstacleType) UnmarshalText(b []byte) error { return unmarshalEnum(b, obstacleNames, o) }

// HitboxRole marks an arena element with special game-mode meaning
type HitboxRole int

const (
	RoleNone HitboxRole = iota
	RoleWeaponSpawner
	RoleWeaponBox
	RoleHill
	RoleCheckpoint
	RoleLap
)

var roleNames = []string{"none", "weapon_spawner", "weapon_box", "hill", "checkpoint", "lap"}

func (r HitboxRole) String() string { return enumString(int(r), roleNames) }

func (r *HitboxRole) UnmarshalText(b []byte) error { return unmarshalEnum(b, roleNames, r) }

// HitboxConfig describes one arena element
type HitboxConfig struct {
	X          float64      `mapstructure:"x"`
	Y          float64      `mapstructure:"y"`
	Rotation   float64      `mapstructure:"rotation"`
	Width      float64      `mapstructure:"width"`
	Height     float64      `mapstructure:"height"`
	Shape      ShapeKind    `mapstructure:"shape"`
	Obstacle   ObstacleType `mapstructure:"obstacle"`
	Role       HitboxRole   `mapstructure:"role"`
	Checkpoint int          `mapstructure:"checkpoint"`
	DamageRate float64      `mapstructure:"damageRate"` // zone damage per second
	AccelRate  float64      `mapstructure:"accelRate"`  // zone thrust, units/s²
	RepairRate float64      `mapstructure:"repairRate"` // zone healing per second
}

// SpawnPoint is a vehicle start position
type SpawnPoint struct {
	X        float64 `mapstructure:"x"`
	Y        float64 `mapstructure:"y"`
	Rotation float64 `mapstructure:"rotation"`
}

// ArenaConfig is the static description of an arena
type ArenaConfig struct {
	Width       float64        `mapstructure:"width"`
	Height      float64        `mapstructure:"height"`
	SpawnPoints []SpawnPoint   `mapstructure:"spawnPoints"`
	Hitboxes    []HitboxConfig `mapstructure:"hitboxes"`
}

// Hitbox is a live arena element
type Hitbox struct {
	ID int
	HitboxConfig

	// weapon boxes only
	Weapon    WeaponName
	Life      float64
	SpawnerID int

	// weapon spawners only
	SpawnTimer float64
	BoxID      int // -1 when no box is out
}

// Collider returns the hitbox shape
func (h *Hitbox) Collider() Collider {
	return Collider{
		Pos:      Vec2{h.X, h.Y},
		Rotation: h.Rotation,
		Width:    h.Width,
		Height:   h.Height,
		Shape:    h.Shape,
	}
}

// Arena is the playing field of one match
type Arena struct {
	Name        string
	Width       float64
	Height      float64
	SpawnPoints []SpawnPoint
	Hitboxes    map[int]*Hitbox
	Checkpoints int // number of distinct checkpoint ids
	nextID      int
}

// NewArena builds a live arena from its config
func NewArena(name string, cfg ArenaConfig) (*Arena, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("arena %q: size must be positive", name)
	}
	if len(cfg.SpawnPoints) == 0 {
		return nil, fmt.Errorf("arena %q: no spawn points", name)
	}
	a := &Arena{
		Name:        name,
		Width:       cfg.Width,
		Height:      cfg.Height,
		SpawnPoints: append([]SpawnPoint(nil), cfg.SpawnPoints...),
		Hitboxes:    make(map[int]*Hitbox),
	}
	seen := make(map[int]bool)
	for _, hc := range cfg.Hitboxes {
		if hc.Width <= 0 || (hc.Shape != ShapeCircle && hc.Height <= 0) {
			return nil, fmt.Errorf("arena %q: hitbox at (%.0f,%.0f) has no size", name, hc.X, hc.Y)
		}
		hb := a.add(hc)
		if hb.Role == RoleCheckpoint && !seen[hb.Checkpoint] {
			seen[hb.Checkpoint] = true
			a.Checkpoints++
		}
	}
	for id := 0; id < a.Checkpoints; id++ {
		if !seen[id] {
			return nil, fmt.Errorf("arena %q: checkpoint ids must run 0..%d", name, a.Checkpoints-1)
		}
	}
	return a, nil
}

func (a *Arena) add(hc HitboxConfig) *Hitbox {
	hb := &Hitbox{ID: a.nextID, HitboxConfig: hc, BoxID: -1}
	a.nextID++
	a.Hitboxes[hb.ID] = hb
	return hb
}

// Sorted returns hitboxes ordered by id
func (a *Arena) Sorted() []*Hitbox {
	out := make([]*Hitbox, 0, len(a.Hitboxes))
	for _, hb := range a.Hitboxes {
		out = append(out, hb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Find returns the first hitbox with the given role
func (a *Arena) Find(role HitboxRole) *Hitbox {
	for _, hb := range a.Sorted() {
		if hb.Role == role {
			return hb
		}
	}
	return nil
}

// CheckpointHitbox returns the hitbox for a checkpoint id
func (a *Arena) CheckpointHitbox(id int) *Hitbox {
	for _, hb := range a.Sorted() {
		if hb.Role == RoleCheckpoint && hb.Checkpoint == id {
			return hb
		}
	}
	return nil
}
