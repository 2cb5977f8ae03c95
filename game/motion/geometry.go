package motion

import "math"

// Vec3 is a point or displacement in world units. +Y points down.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// HorizontalDist returns the x/z distance between v and o, ignoring height.
func (v Vec3) HorizontalDist(o Vec3) float64 {
	return math.Hypot(v.X-o.X, v.Z-o.Z)
}

// HorizontalSpeed returns the magnitude of the x/z components.
func (v Vec3) HorizontalSpeed() float64 {
	return math.Hypot(v.X, v.Z)
}

// Box is an axis-aligned bounding volume.
type Box struct {
	Min Vec3 `json:"min"`
	Max Vec3 `json:"max"`
}

// BoxAround returns the box centred on c with the given full extents.
func BoxAround(c Vec3, width, height, depth float64) Box {
	return Box{
		Min: Vec3{X: c.X - width/2, Y: c.Y - height/2, Z: c.Z - depth/2},
		Max: Vec3{X: c.X + width/2, Y: c.Y + height/2, Z: c.Z + depth/2},
	}
}

// Intersects reports whether the two boxes overlap. Touching faces do not count.
func (b Box) Intersects(o Box) bool {
	if b.Min.X >= o.Max.X || o.Min.X >= b.Max.X {
		return false
	}
	if b.Min.Y >= o.Max.Y || o.Min.Y >= b.Max.Y {
		return false
	}
	if b.Min.Z >= o.Max.Z || o.Min.Z >= b.Max.Z {
		return false
	}
	return true
}

// Top returns the upper surface height. With +Y down that is Min.Y.
func (b Box) Top() float64 {
	return b.Min.Y
}

// coversXZ reports whether the x/z footprint of b overlaps the footprint of o.
func (b Box) coversXZ(o Box) bool {
	return b.Min.X < o.Max.X && o.Min.X < b.Max.X && b.Min.Z < o.Max.Z && o.Min.Z < b.Max.Z
}

// Marker is a goal location the agent can reach.
type Marker struct {
	ID       int  `json:"id"`
	Position Vec3 `json:"position"`
}

// World is the static geometry the agent moves through.
type World struct {
	Walls    []Box    `json:"walls"`
	Floors   []Box    `json:"floors"`
	Ceilings []Box    `json:"ceilings"`
	Exits    []Marker `json:"exits"`
}

// capSpeed limits the (x, z) vector magnitude to max. Returns true if clamped.
func capSpeed(x, z *float64, max float64) bool {
	speed := math.Hypot(*x, *z)
	if speed <= max || speed == 0 {
		return false
	}
	scale := max / speed
	*x *= scale
	*z *= scale
	return true
}

// approachZero moves v toward zero by step without crossing it.
func approachZero(v, step float64) float64 {
	switch {
	case v > 0:
		return math.Max(v-step, 0)
	case v < 0:
		return math.Min(v+step, 0)
	default:
		return 0
	}
}
