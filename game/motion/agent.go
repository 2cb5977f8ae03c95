package motion

// Params holds the per-tick motion constants.
type Params struct {
	Acceleration    float64 // Horizontal speed gained per directional intent.
	Deceleration    float64 // Horizontal speed lost per idle tick, per axis.
	MaxSpeed        float64 // Cap on horizontal speed magnitude.
	Gravity         float64 // Downward speed gained per airborne tick.
	MaxFallSpeed    float64 // Cap on downward speed.
	JumpForce       float64 // Upward speed set by a jump.
	StandingHeight  float64 // Vertical extent when standing.
	CrouchHeight    float64 // Vertical extent when crouching.
	Width           float64 // Extent along x.
	Depth           float64 // Extent along z.
	GroundTolerance float64 // Max gap between feet and floor top to count as grounded.
	GoalRadius      float64 // Horizontal distance to an exit that counts as arrival.
}

// DefaultParams returns the tuning used by the game.
func DefaultParams() Params {
	return Params{
		Acceleration:    0.01,
		Deceleration:    0.02,
		MaxSpeed:        0.2,
		Gravity:         0.01,
		MaxFallSpeed:    0.5,
		JumpForce:       0.3,
		StandingHeight:  1.8,
		CrouchHeight:    0.9,
		Width:           0.8,
		Depth:           0.8,
		GroundTolerance: 0.1,
		GoalRadius:      1.5,
	}
}

// Agent is the mutable state of the moving body.
// Position.X/Z is the centre of its footprint and Position.Y the top of its
// bounding volume; its feet are at Position.Y + Height.
type Agent struct {
	Position  Vec3    `json:"position"`
	Velocity  Vec3    `json:"velocity"`
	Yaw       float64 `json:"yaw"`
	Pitch     float64 `json:"pitch"`
	Height    float64 `json:"height"`
	OnGround  bool    `json:"on_ground"`
	Jumping   bool    `json:"jumping"`
	Crouching bool    `json:"crouching"`
}

// Bottom returns the height of the agent's lowest point.
func (a Agent) Bottom() float64 {
	return a.Position.Y + a.Height
}

// Bounds returns the agent's bounding volume.
func (a Agent) Bounds(width, depth float64) Box {
	return Box{
		Min: Vec3{X: a.Position.X - width/2, Y: a.Position.Y, Z: a.Position.Z - depth/2},
		Max: Vec3{X: a.Position.X + width/2, Y: a.Position.Y + a.Height, Z: a.Position.Z + depth/2},
	}
}

// Orientation is a look direction in degrees.
type Orientation struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Intents are the movement requests for one tick.
// Opposing directions are all applied and cancel out through the velocity sum.
type Intents struct {
	Forward     bool         `json:"forward,omitempty"`
	Backward    bool         `json:"backward,omitempty"`
	StrafeLeft  bool         `json:"strafe_left,omitempty"`
	StrafeRight bool         `json:"strafe_right,omitempty"`
	Jump        bool         `json:"jump,omitempty"`
	Crouch      *bool        `json:"crouch,omitempty"` // true starts, false ends, nil keeps.
	Look        *Orientation `json:"look,omitempty"`
}

// Merge folds later intents into i. Held directions and jump accumulate,
// the latest crouch and look requests win.
func (i Intents) Merge(later Intents) Intents {
	i.Forward = i.Forward || later.Forward
	i.Backward = i.Backward || later.Backward
	i.StrafeLeft = i.StrafeLeft || later.StrafeLeft
	i.StrafeRight = i.StrafeRight || later.StrafeRight
	i.Jump = i.Jump || later.Jump
	if later.Crouch != nil {
		i.Crouch = later.Crouch
	}
	if later.Look != nil {
		i.Look = later.Look
	}
	return i
}
