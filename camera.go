package main

import "math"

const (
	CameraViewWidth  = 1280.0
	CameraViewHeight = 720.0
	CameraMinZoom    = 0.35
	CameraMaxZoom    = 1.5
	CameraPadding    = 200.0 // world units kept around the vehicles
	CameraLerpRate   = 4.0   // per second
)

// Camera frames all active vehicles
type Camera struct {
	X, Y float64
	Zoom float64
}

// Target returns the centre and zoom that frame the given vehicles
func (c Camera) Target(vehicles []*Vehicle) (Camera, bool) {
	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	found := false
	for _, v := range vehicles {
		if !v.IsActive() {
			continue
		}
		found = true
		minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
		minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
	}
	if !found {
		return c, false
	}
	w := maxX - minX + 2*CameraPadding
	h := maxY - minY + 2*CameraPadding
	zoom := Clamp(math.Min(CameraViewWidth/w, CameraViewHeight/h), CameraMinZoom, CameraMaxZoom)
	return Camera{X: (minX + maxX) / 2, Y: (minY + maxY) / 2, Zoom: zoom}, true
}

// Update eases the camera toward its target
func (c *Camera) Update(vehicles []*Vehicle, dt float64) {
	target, ok := c.Target(vehicles)
	if !ok {
		return
	}
	if c.Zoom == 0 {
		*c = target
		return
	}
	t := Clamp(CameraLerpRate*dt, 0, 1)
	c.X = Lerp(c.X, target.X, t)
	c.Y = Lerp(c.Y, target.Y, t)
	c.Zoom = Lerp(c.Zoom, target.Zoom, t)
}
