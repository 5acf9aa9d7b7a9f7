package main

import "math"

const (
	toiMaxIterations = 32
	toiTolerance     = 1e-3 // units
)

// ShapeKind is the collision shape of a body or hitbox
type ShapeKind int

const (
	ShapeRectangle ShapeKind = iota
	ShapeCircle
	// Quarter circles collide as their bounding rectangle.
	ShapeInnerQuarterCircle
	ShapeOuterQuarterCircle
)

var shapeNames = []string{"rectangle", "circle", "inner_quarter_circle", "outer_quarter_circle"}

func (s ShapeKind) String() string { return enumString(int(s), shapeNames) }

// UnmarshalText lets config files name shapes
func (s *ShapeKind) UnmarshalText(b []byte) error { return unmarshalEnum(b, shapeNames, s) }

// Proximity classifies how close two shapes are
type Proximity int

const (
	ProximityDisjoint Proximity = iota
	ProximityWithinMargin
	ProximityIntersecting
)

// Collider is an oriented shape placed in the arena. Circles use Width as
// their diameter.
type Collider struct {
	Pos      Vec2
	Rotation float64
	Width    float64
	Height   float64
	Shape    ShapeKind
}

func (c Collider) round() bool { return c.Shape == ShapeCircle }

// Radius returns the circle radius, or the bounding radius of a rectangle
func (c Collider) Radius() float64 {
	if c.round() {
		return c.Width / 2
	}
	return math.Hypot(c.Width, c.Height) / 2
}

func (c Collider) halfExtents() (float64, float64) {
	return c.Width / 2, c.Height / 2
}

// Translate returns the collider moved by d
func (c Collider) Translate(d Vec2) Collider {
	c.Pos = c.Pos.Add(d)
	return c
}

func (c Collider) toLocal(p Vec2) Vec2 {
	return p.Sub(c.Pos).Rotate(-c.Rotation)
}

// Corners returns the world-space rectangle corners, counter-clockwise
func (c Collider) Corners() [4]Vec2 {
	hw, hh := c.halfExtents()
	local := [4]Vec2{{hw, hh}, {-hw, hh}, {-hw, -hh}, {hw, -hh}}
	var out [4]Vec2
	for i, p := range local {
		out[i] = c.Pos.Add(p.Rotate(c.Rotation))
	}
	return out
}

// AABB returns the axis-aligned bounds of the collider
func (c Collider) AABB() (min, max Vec2) {
	if c.round() {
		r := c.Radius()
		return Vec2{c.Pos.X - r, c.Pos.Y - r}, Vec2{c.Pos.X + r, c.Pos.Y + r}
	}
	ex, ey := orientedHalfExtents(c.Width, c.Height, c.Rotation)
	return Vec2{c.Pos.X - ex, c.Pos.Y - ey}, Vec2{c.Pos.X + ex, c.Pos.Y + ey}
}

// orientedHalfExtents returns the axis-aligned half size of a rotated rectangle
func orientedHalfExtents(w, h, rot float64) (float64, float64) {
	cos := math.Abs(math.Cos(rot))
	sin := math.Abs(math.Sin(rot))
	return (cos*w + sin*h) / 2, (sin*w + cos*h) / 2
}

// CheckCollision checks if two circles overlap
func CheckCollision(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	dist2 := dx*dx + dy*dy
	radSum := r1 + r2
	return dist2 <= radSum*radSum
}

// ShapeDistance returns the gap between two shapes, 0 when they touch or overlap
func ShapeDistance(a, b Collider) float64 {
	switch {
	case a.round() && b.round():
		return math.Max(0, a.Pos.Sub(b.Pos).Len()-a.Radius()-b.Radius())
	case a.round():
		return circleRectDistance(a, b)
	case b.round():
		return circleRectDistance(b, a)
	}
	return rectRectDistance(a, b)
}

// Intersects reports whether two shapes overlap
func Intersects(a, b Collider) bool {
	if !a.round() && !b.round() {
		return satOverlap(a, b)
	}
	return ShapeDistance(a, b) == 0
}

// CheckProximity classifies a and b as intersecting, within margin, or apart
func CheckProximity(a, b Collider, margin float64) Proximity {
	d := ShapeDistance(a, b)
	switch {
	case d <= 0:
		return ProximityIntersecting
	case d <= margin:
		return ProximityWithinMargin
	}
	return ProximityDisjoint
}

// TimeOfImpact finds the earliest time in [0, maxT] at which a, moving at
// va, touches b, moving at vb. Uses conservative advancement on the
// relative motion.
func TimeOfImpact(a Collider, va Vec2, b Collider, vb Vec2, maxT float64) (float64, bool) {
	rel := va.Sub(vb)
	speed := rel.Len()
	t := 0.0
	for i := 0; i < toiMaxIterations; i++ {
		d := ShapeDistance(a.Translate(rel.Scale(t)), b)
		if d <= toiTolerance {
			return t, true
		}
		if speed == 0 {
			return 0, false
		}
		t += d / speed
		if t > maxT {
			return 0, false
		}
	}
	return 0, false
}

func circleRectDistance(c, r Collider) float64 {
	p := r.toLocal(c.Pos)
	hw, hh := r.halfExtents()
	closest := Vec2{Clamp(p.X, -hw, hw), Clamp(p.Y, -hh, hh)}
	return math.Max(0, p.Sub(closest).Len()-c.Radius())
}

func rectRectDistance(a, b Collider) float64 {
	if satOverlap(a, b) {
		return 0
	}
	ca, cb := a.Corners(), b.Corners()
	best := math.MaxFloat64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			best = math.Min(best, pointSegmentDistance(ca[i], cb[j], cb[(j+1)%4]))
			best = math.Min(best, pointSegmentDistance(cb[i], ca[j], ca[(j+1)%4]))
		}
	}
	return best
}

// satOverlap runs a separating axis test on two oriented rectangles
func satOverlap(a, b Collider) bool {
	ca, cb := a.Corners(), b.Corners()
	axes := [4]Vec2{
		Heading(a.Rotation), Heading(a.Rotation + math.Pi/2),
		Heading(b.Rotation), Heading(b.Rotation + math.Pi/2),
	}
	for _, axis := range axes {
		minA, maxA := project(ca, axis)
		minB, maxB := project(cb, axis)
		if maxA < minB || maxB < minA {
			return false
		}
	}
	return true
}

func project(pts [4]Vec2, axis Vec2) (float64, float64) {
	min, max := math.MaxFloat64, -math.MaxFloat64
	for _, p := range pts {
		d := p.Dot(axis)
		min = math.Min(min, d)
		max = math.Max(max, d)
	}
	return min, max
}

func pointSegmentDistance(p, a, b Vec2) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	t := 0.0
	if l2 > 0 {
		t = Clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
	}
	return p.Sub(a.Add(ab.Scale(t))).Len()
}

// ContactNormal returns the outward surface normal of target facing p.
// Circles use the centre line, rectangles the dominant local face.
func ContactNormal(target Collider, p Vec2) Vec2 {
	if target.round() {
		n := p.Sub(target.Pos).Normalize()
		if n == (Vec2{}) {
			return Vec2{1, 0}
		}
		return n
	}
	local := target.toLocal(p)
	hw, hh := target.halfExtents()
	var n Vec2
	if math.Abs(local.X)*hh >= math.Abs(local.Y)*hw {
		n = Vec2{signOf(local.X), 0}
	} else {
		n = Vec2{0, signOf(local.Y)}
	}
	return n.Rotate(target.Rotation)
}

// Reflect mirrors v about the surface with unit normal n
func Reflect(v, n Vec2) Vec2 {
	return v.Sub(n.Scale(2 * v.Dot(n)))
}

func signOf(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// SegmentIntersects reports whether the segment a-b crosses the collider
func SegmentIntersects(a, b Vec2, c Collider) bool {
	if c.round() {
		return segmentCircleIntersect(a.X, a.Y, b.X, b.Y, c.Pos.X, c.Pos.Y, c.Radius())
	}
	p0, p1 := c.toLocal(a), c.toLocal(b)
	hw, hh := c.halfExtents()
	d := p1.Sub(p0)
	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return false
			}
			t1 = math.Min(t1, r)
		}
		return true
	}
	return clip(-d.X, p0.X+hw) && clip(d.X, hw-p0.X) &&
		clip(-d.Y, p0.Y+hh) && clip(d.Y, hh-p0.Y)
}

// segmentCircleIntersect checks if a line segment (x1,y1)-(x2,y2) intersects a circle at (cx,cy) with radius r.
func segmentCircleIntersect(x1, y1, x2, y2, cx, cy, r float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	fx := x1 - cx
	fy := y1 - cy
	a := dx*dx + dy*dy
	c := fx*fx + fy*fy - r*r
	if a == 0 {
		return c <= 0
	}
	b := 2 * (fx*dx + fy*dy)
	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return false
	}
	discriminant = math.Sqrt(discriminant)
	t1 := (-b - discriminant) / (2 * a)
	t2 := (-b + discriminant) / (2 * a)
	return (t1 >= 0 && t1 <= 1) || (t2 >= 0 && t2 <= 1) || (t1 <= 0 && t2 >= 1)
}
