package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOutcome(id string) MatchOutcome {
	return MatchOutcome{
		ID: id, Mode: "deathmatch_kills", Arena: "standard", Duration: 93.5,
		Players: []PlayerResult{
			{Slot: 1, Name: "Bot 1", IsBot: true, Placement: 2, Score: 4, Kills: 4, Deaths: 10},
			{Slot: 0, Name: "P1", Placement: 1, Score: 10, Kills: 10, Deaths: 4},
		},
	}
}

func TestSettings(t *testing.T) {
	db := openTestDB(t)
	assert.Equal(t, "", db.GetSetting("missing"))

	require.NoError(t, db.SetSetting("k", "v1"))
	require.NoError(t, db.SetSetting("k", "v2"))
	assert.Equal(t, "v2", db.GetSetting("k"))
}

func TestSaveOutcome(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.SaveOutcome(testOutcome("m1")))
	require.NoError(t, db.SaveOutcome(testOutcome("m2")))

	matches, err := db.RecentMatches(10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "m2", matches[0].ID, "newest first")
	assert.Equal(t, "P1", matches[0].Winner)
	assert.Equal(t, 93.5, matches[0].Duration)
	assert.False(t, matches[0].CreatedAt.IsZero())

	limited, err := db.RecentMatches(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	players, err := db.MatchPlayers("m1")
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "P1", players[0].Name, "ordered by placement")
	assert.True(t, players[1].IsBot)
	assert.Equal(t, 10, players[1].Deaths)
}

func TestSaveOutcomeDuplicateRollsBack(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.SaveOutcome(testOutcome("m1")))
	assert.Error(t, db.SaveOutcome(testOutcome("m1")))

	players, err := db.MatchPlayers("m1")
	require.NoError(t, err)
	assert.Len(t, players, 2)
}

func TestAnalyticsFlushOnStop(t *testing.T) {
	db := openTestDB(t)
	a := NewAnalytics(db)
	a.Track(EvtMatchStart, "s1", map[string]string{"mode": "deathmatch_kills"})
	a.Track(EvtVehicleKill, "s1", nil)
	a.Track(EvtVehicleKill, "", nil)
	a.Stop()
	a.Stop()

	counts, err := a.EventCounts(1)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[EvtMatchStart])
	assert.Equal(t, 2, counts[EvtVehicleKill])
}

func TestWeaponKills(t *testing.T) {
	db := openTestDB(t)
	a := NewAnalytics(db)
	a.TrackKill("s1", KillReport{Victim: 1, Killer: 0, Weapon: WeaponMissile})
	a.TrackKill("s1", KillReport{Victim: 0, Killer: 1, Weapon: WeaponMissile})
	a.TrackKill("s1", KillReport{Victim: 2, Killer: 0, Weapon: WeaponMine})
	a.TrackKill("s1", KillReport{Victim: 2, Killer: NoPlayer})
	a.Stop()

	kills, err := db.WeaponKills(1)
	require.NoError(t, err)
	assert.Equal(t, map[WeaponName]int{WeaponMissile: 2, WeaponMine: 1}, kills)

	counts, err := a.EventCounts(1)
	require.NoError(t, err)
	assert.Equal(t, 4, counts[EvtVehicleKill], "uncredited deaths are still recorded")
}

func TestAnalyticsNilSafe(t *testing.T) {
	var a *Analytics
	a.Track(EvtMatchEnd, "s1", nil)
	a.TrackKill("s1", KillReport{})
	a.Stop()
	counts, err := a.EventCounts(1)
	assert.NoError(t, err)
	assert.Nil(t, counts)
}
