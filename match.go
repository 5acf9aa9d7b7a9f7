package main

import "fmt"

// GameMode defines the ruleset of a match
type GameMode int

const (
	ModeDeathmatchKills   GameMode = iota // first to WinScore kills
	ModeDeathmatchStock                   // last vehicle with lives left
	ModeDeathmatchTimedKD                 // best kills minus deaths at the time limit
	ModeKingOfTheHill                     // first to WinScore seconds on the hill
	ModeCombatRace                        // first to WinScore laps
	ModeClassicGunGame                    // first through the gun-game order
)

var modeNames = []string{
	"deathmatch_kills", "deathmatch_stock", "deathmatch_timed_kd",
	"king_of_the_hill", "combat_race", "classic_gun_game",
}

func (m GameMode) String() string { return enumString(int(m), modeNames) }

func (m *GameMode) UnmarshalText(b []byte) error { return unmarshalEnum(b, modeNames, m) }

// EndCondition decides when placements freeze
type EndCondition int

const (
	EndFirst             EndCondition = iota // one player placed
	EndAllButOne                             // all but one placed
	EndAllButOneExtended                     // all but one placed, then an extension
	EndAll                                   // everyone placed
)

var endNames = []string{"first", "all_but_one", "all_but_one_extended", "all"}

func (e EndCondition) String() string { return enumString(int(e), endNames) }

func (e *EndCondition) UnmarshalText(b []byte) error { return unmarshalEnum(b, endNames, e) }

// PlayerSetup describes one slot of a match
type PlayerSetup struct {
	Name      string     `mapstructure:"name"`
	Bot       bool       `mapstructure:"bot"`
	Vehicle   string     `mapstructure:"vehicle"`
	Primary   WeaponName `mapstructure:"primary"`
	Secondary WeaponName `mapstructure:"secondary"`
}

// MatchSetup is the read-only configuration of a match
type MatchSetup struct {
	Mode            GameMode      `mapstructure:"mode"`
	Arena           string        `mapstructure:"arena"`
	EndCondition    EndCondition  `mapstructure:"endCondition"`
	WinScore        float64       `mapstructure:"winScore"`
	StockLives      int           `mapstructure:"stockLives"`
	TimeLimit       float64       `mapstructure:"timeLimit"`    // seconds, 0 for none
	EndExtension    float64       `mapstructure:"endExtension"` // seconds
	RespawnDuration float64       `mapstructure:"respawnDuration"`
	RefreshAmmo     bool          `mapstructure:"refreshAmmo"`
	VehicleBounce   bool          `mapstructure:"vehicleBounce"`
	WeaponBoxes     bool          `mapstructure:"weaponBoxes"`
	Players         []PlayerSetup `mapstructure:"players"`
}

// DefaultMatchSetup returns default settings for the given mode
func DefaultMatchSetup(mode GameMode) MatchSetup {
	s := MatchSetup{
		Mode:            mode,
		Arena:           ArenaStandard,
		EndCondition:    EndFirst,
		RespawnDuration: 3,
		EndExtension:    10,
		RefreshAmmo:     true,
		VehicleBounce:   true,
		WeaponBoxes:     true,
	}
	switch mode {
	case ModeDeathmatchKills:
		s.WinScore = 10
	case ModeDeathmatchStock:
		s.StockLives = 3
		s.EndCondition = EndAllButOne
	case ModeDeathmatchTimedKD:
		s.TimeLimit = 180
		s.EndCondition = EndAll
	case ModeKingOfTheHill:
		s.Arena = ArenaHill
		s.WinScore = 60
	case ModeCombatRace:
		s.Arena = ArenaRaceLoop
		s.WinScore = 3
		s.EndCondition = EndAllButOneExtended
	case ModeClassicGunGame:
		s.WinScore = float64(len(DefaultGunGameOrder))
		s.WeaponBoxes = false
	}
	return s
}

// Validate checks a setup against the loaded tables
func (s MatchSetup) Validate(t *GameTables) error {
	if _, ok := t.Arenas[s.Arena]; !ok {
		return fmt.Errorf("unknown arena %q", s.Arena)
	}
	if len(s.Players) == 0 {
		return fmt.Errorf("match needs at least one player")
	}
	if len(s.Players) > MaxPlayersPerMatch {
		return fmt.Errorf("match allows at most %d players", MaxPlayersPerMatch)
	}
	if s.Mode == ModeClassicGunGame && len(t.GunGameOrder) == 0 {
		return fmt.Errorf("gun game needs a weapon order")
	}
	if s.Mode == ModeDeathmatchStock && s.StockLives <= 0 {
		return fmt.Errorf("stock mode needs stockLives > 0")
	}
	if s.RespawnDuration < 0 {
		return fmt.Errorf("respawnDuration must not be negative")
	}
	return nil
}
