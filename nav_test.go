package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// navArena is 800x400 with a wall splitting the middle, open at the top
// and bottom
func navArena(t *testing.T) *Arena {
	t.Helper()
	a, err := NewArena("nav", ArenaConfig{
		Width: 800, Height: 400,
		SpawnPoints: []SpawnPoint{{X: 100, Y: 200}},
		Hitboxes:    []HitboxConfig{{X: 400, Y: 200, Width: 40, Height: 200, Obstacle: ObstacleWall}},
	})
	require.NoError(t, err)
	return a
}

func TestGridNavigatorBlocksWalls(t *testing.T) {
	g := NewGridNavigator(navArena(t), NavCellSize)

	assert.True(t, g.Blocked(Vec2{400, 200}))
	assert.True(t, g.Blocked(Vec2{370, 200}), "margin around the wall")
	assert.False(t, g.Blocked(Vec2{100, 200}))
	assert.False(t, g.Blocked(Vec2{400, 20}), "gap above the wall")
}

func TestGridNavigatorRoutesAroundWall(t *testing.T) {
	g := NewGridNavigator(navArena(t), NavCellSize)
	start, goal := Vec2{100, 200}, Vec2{700, 210}

	path := g.FindPath(start, goal)
	require.NotEmpty(t, path)
	assert.Equal(t, goal, path[len(path)-1])

	crossed := false
	for _, p := range path {
		if g.Blocked(p) {
			t.Errorf("waypoint %v is inside a wall", p)
		}
		if p.X > 360 && p.X < 440 {
			crossed = true
			if p.Y > 80 && p.Y < 320 {
				t.Errorf("waypoint %v passes through the wall", p)
			}
		}
	}
	assert.True(t, crossed, "path goes through a gap")
}

func TestGridNavigatorEdgeCases(t *testing.T) {
	g := NewGridNavigator(navArena(t), 0)

	assert.Nil(t, g.FindPath(Vec2{100, 200}, Vec2{400, 200}), "goal inside the wall")
	assert.Equal(t, []Vec2{{110, 215}}, g.FindPath(Vec2{100, 200}, Vec2{110, 215}), "same cell")

	path := g.FindPath(Vec2{-50, -50}, Vec2{60, 60})
	require.NotEmpty(t, path, "start outside the grid is clamped")
	assert.Equal(t, Vec2{60, 60}, path[len(path)-1])
}

func TestDirectNavigator(t *testing.T) {
	assert.Equal(t, []Vec2{{5, 6}}, DirectNavigator{}.FindPath(Vec2{1, 2}, Vec2{5, 6}))
}

func TestGridNavigatorNoRoute(t *testing.T) {
	a, err := NewArena("sealed", ArenaConfig{
		Width: 800, Height: 400,
		SpawnPoints: []SpawnPoint{{X: 100, Y: 200}},
		Hitboxes:    []HitboxConfig{{X: 400, Y: 200, Width: 40, Height: 400, Obstacle: ObstacleWall}},
	})
	require.NoError(t, err)
	g := NewGridNavigator(a, NavCellSize)

	assert.Nil(t, g.FindPath(Vec2{100, 200}, Vec2{700, 200}))
	assert.NotNil(t, g.FindPath(Vec2{100, 200}, Vec2{300, 60}), "same side")
}
