package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func cameraVehicles(points ...Vec2) []*Vehicle {
	out := make([]*Vehicle, len(points))
	for i, p := range points {
		v := testVehicle(VehicleHoverScout)
		v.X, v.Y = p.X, p.Y
		out[i] = v
	}
	return out
}

func TestCameraTarget(t *testing.T) {
	var c Camera
	target, ok := c.Target(cameraVehicles(Vec2{0, 0}, Vec2{1000, 0}))
	assert.True(t, ok)
	assert.Equal(t, 500.0, target.X)
	assert.Equal(t, 0.0, target.Y)
	assert.InDelta(t, 1280.0/1400, target.Zoom, 1e-9)

	target, _ = c.Target(cameraVehicles(Vec2{10, 10}))
	assert.Equal(t, CameraMaxZoom, target.Zoom)

	target, _ = c.Target(cameraVehicles(Vec2{0, 0}, Vec2{10000, 0}))
	assert.Equal(t, CameraMinZoom, target.Zoom)
}

func TestCameraIgnoresInactive(t *testing.T) {
	vehicles := cameraVehicles(Vec2{0, 0}, Vec2{1000, 0})
	vehicles[1].State = VehicleInRespawn

	target, ok := Camera{}.Target(vehicles)
	assert.True(t, ok)
	assert.Equal(t, 0.0, target.X)

	vehicles[0].State = VehicleInRespawn
	_, ok = Camera{}.Target(vehicles)
	assert.False(t, ok)
}

func TestCameraUpdate(t *testing.T) {
	var c Camera
	vehicles := cameraVehicles(Vec2{0, 0}, Vec2{1000, 0})
	c.Update(vehicles, 0.1)
	assert.Equal(t, 500.0, c.X, "first update snaps")

	vehicles[1].X = 2000
	c.Update(vehicles, 0.1)
	assert.InDelta(t, 500+0.4*500, c.X, 1e-9, "eases toward the new centre")

	before := c
	for _, v := range vehicles {
		v.State = VehicleInRespawn
	}
	c.Update(vehicles, 0.1)
	assert.Equal(t, before, c, "nothing to frame")
}
