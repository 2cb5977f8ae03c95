// Package motion integrates the agent's movement through a level: gravity,
// velocity, wall collision, ground contact and exit arrival.
//
// The model is stepped once per tick by its owner and never blocks. All
// constants are per tick, so the tick rate is decided by the caller.
package motion

import (
	"math"
)

// pushEpsilon ignores the rounding residue of sin/cos on axis-aligned yaws.
const pushEpsilon = 1e-9

// CollisionEvent reports a wall the agent ran into during a tick.
type CollisionEvent struct {
	Wall int `json:"wall"` // Index into World.Walls.
	Box  Box `json:"box"`
}

// GoalEvent reports the agent arriving at an exit.
type GoalEvent struct {
	Exit     int     `json:"exit"` // Marker ID.
	Distance float64 `json:"distance"`
}

// TickResult is the outcome of one Step.
type TickResult struct {
	Tick       uint64           `json:"tick"`
	Agent      Agent            `json:"agent"`
	Collisions []CollisionEvent `json:"collisions,omitempty"`
	Goal       *GoalEvent       `json:"goal,omitempty"`
}

// Model moves one agent through a World.
type Model struct {
	world   World
	params  Params
	agent   Agent
	tick    uint64
	push    Vec3   // Horizontal acceleration applied since the last Step.
	inRange []bool // Per exit: the agent was within GoalRadius on the last Step.
}

// NewModel places an agent with its feet at spawn.
// spawn.X/Z is the footprint centre and spawn.Y the floor height below it.
func NewModel(world World, spawn Vec3, params Params) *Model {
	return &Model{
		world:  world,
		params: params,
		agent: Agent{
			Position: Vec3{X: spawn.X, Y: spawn.Y - params.StandingHeight, Z: spawn.Z},
			Height:   params.StandingHeight,
			OnGround: true,
		},
		inRange: make([]bool, len(world.Exits)),
	}
}

// Agent returns a copy of the agent state.
func (m *Model) Agent() Agent {
	return m.agent
}

// Tick returns the number of completed steps.
func (m *Model) Tick() uint64 {
	return m.tick
}

// Params returns the model's tuning.
func (m *Model) Params() Params {
	return m.params
}

// Update applies the intents and advances the simulation by one tick.
func (m *Model) Update(in Intents) TickResult {
	if in.Look != nil {
		m.UpdateOrientation(in.Look.Yaw, in.Look.Pitch)
	}
	if in.Crouch != nil {
		if *in.Crouch {
			m.StartCrouch()
		} else {
			m.EndCrouch()
		}
	}
	if in.Jump {
		m.Jump()
	}
	if in.Forward {
		m.MoveForward()
	}
	if in.Backward {
		m.MoveBackward()
	}
	if in.StrafeLeft {
		m.StrafeLeft()
	}
	if in.StrafeRight {
		m.StrafeRight()
	}
	return m.Step()
}

// Step advances the simulation by one tick without new intents.
func (m *Model) Step() TickResult {
	m.tick++
	a := &m.agent

	if a.OnGround {
		a.Velocity.Y = 0
	} else {
		a.Velocity.Y = math.Min(a.Velocity.Y+m.params.Gravity, m.params.MaxFallSpeed)
	}

	prev := a.Position
	a.Position = a.Position.Add(a.Velocity)

	m.resolveCeilings()
	collisions := m.resolveWalls(prev)
	m.detectGround(prev)
	goal := m.detectGoal()

	if !drives(m.push.X, a.Velocity.X) {
		a.Velocity.X = approachZero(a.Velocity.X, m.params.Deceleration)
	}
	if !drives(m.push.Z, a.Velocity.Z) {
		a.Velocity.Z = approachZero(a.Velocity.Z, m.params.Deceleration)
	}
	m.push = Vec3{}

	return TickResult{
		Tick:       m.tick,
		Agent:      m.agent,
		Collisions: collisions,
		Goal:       goal,
	}
}

// resolveCeilings stops a rising agent at the underside of any ceiling above it.
func (m *Model) resolveCeilings() {
	a := &m.agent
	bounds := a.Bounds(m.params.Width, m.params.Depth)

	for _, ceiling := range m.world.Ceilings {
		if !bounds.coversXZ(ceiling) || a.Position.Y >= ceiling.Max.Y || a.Bottom() <= ceiling.Min.Y {
			continue
		}
		a.Position.Y = ceiling.Max.Y
		if a.Velocity.Y < 0 {
			a.Velocity.Y = 0
		}
	}
}

// resolveWalls cancels this tick's horizontal move if the agent overlaps any wall.
func (m *Model) resolveWalls(prev Vec3) []CollisionEvent {
	a := &m.agent
	bounds := a.Bounds(m.params.Width, m.params.Depth)

	var events []CollisionEvent
	for i, wall := range m.world.Walls {
		if bounds.Intersects(wall) {
			events = append(events, CollisionEvent{Wall: i, Box: wall})
		}
	}

	if len(events) > 0 {
		a.Position.X = prev.X
		a.Position.Z = prev.Z
		a.Velocity.X = 0
		a.Velocity.Z = 0
	}
	return events
}

// detectGround recomputes OnGround and rests a grounded agent on the floor
// top. A fall that crosses a floor top this tick lands on it instead of
// passing through.
func (m *Model) detectGround(prev Vec3) {
	a := &m.agent
	bounds := a.Bounds(m.params.Width, m.params.Depth)
	bottom := a.Bottom()
	prevBottom := prev.Y + a.Height
	tol := m.params.GroundTolerance

	a.OnGround = false
	for _, floor := range m.world.Floors {
		if !bounds.coversXZ(floor) {
			continue
		}
		top := floor.Top()
		near := math.Abs(bottom-top) < tol
		crossed := a.Velocity.Y > 0 && prevBottom <= top+tol && bottom > top
		if near || crossed {
			a.Position.Y = top - a.Height
			a.OnGround = true
			break
		}
	}

	if a.OnGround {
		a.Velocity.Y = 0
		a.Jumping = false
	}
}

// detectGoal reports the first exit entered this tick. An exit fires again
// only after the agent has left its radius.
func (m *Model) detectGoal() *GoalEvent {
	var goal *GoalEvent
	for i, exit := range m.world.Exits {
		d := m.agent.Position.HorizontalDist(exit.Position)
		if d >= m.params.GoalRadius {
			m.inRange[i] = false
			continue
		}
		if !m.inRange[i] && goal == nil {
			goal = &GoalEvent{Exit: exit.ID, Distance: d}
		}
		m.inRange[i] = true
	}
	return goal
}

// MoveForward accelerates along the look direction.
func (m *Model) MoveForward() {
	m.accelerate(m.agent.Yaw, 1)
}

// MoveBackward accelerates against the look direction.
func (m *Model) MoveBackward() {
	m.accelerate(m.agent.Yaw, -1)
}

// StrafeLeft accelerates perpendicular to the left of the look direction.
func (m *Model) StrafeLeft() {
	m.accelerate(m.agent.Yaw-90, 1)
}

// StrafeRight accelerates perpendicular to the right of the look direction.
func (m *Model) StrafeRight() {
	m.accelerate(m.agent.Yaw+90, 1)
}

func (m *Model) accelerate(yaw, sign float64) {
	rad := yaw * math.Pi / 180
	dx := sign * math.Sin(rad) * m.params.Acceleration
	dz := sign * math.Cos(rad) * m.params.Acceleration
	m.agent.Velocity.X += dx
	m.agent.Velocity.Z += dz
	m.push.X += dx
	m.push.Z += dz
	capSpeed(&m.agent.Velocity.X, &m.agent.Velocity.Z, m.params.MaxSpeed)
}

// drives reports whether this tick's push keeps velocity v going: a
// non-negligible push along the same sign. Any other axis decelerates.
func drives(push, v float64) bool {
	return math.Abs(push) > pushEpsilon && push*v > 0
}

// Jump launches the agent upward. It only succeeds from the ground.
func (m *Model) Jump() bool {
	a := &m.agent
	if !a.OnGround || a.Jumping {
		return false
	}
	a.Jumping = true
	a.OnGround = false
	a.Velocity.Y = -m.params.JumpForce
	return true
}

// StartCrouch shrinks the agent's vertical extent, keeping its feet in place.
func (m *Model) StartCrouch() {
	if m.agent.Crouching {
		return
	}
	m.agent.Crouching = true
	m.setHeight(m.params.CrouchHeight)
}

// EndCrouch restores the standing extent.
func (m *Model) EndCrouch() {
	if !m.agent.Crouching {
		return
	}
	m.agent.Crouching = false
	m.setHeight(m.params.StandingHeight)
}

func (m *Model) setHeight(h float64) {
	bottom := m.agent.Bottom()
	m.agent.Height = h
	m.agent.Position.Y = bottom - h
}

// UpdateOrientation sets the look direction in degrees.
func (m *Model) UpdateOrientation(yaw, pitch float64) {
	m.agent.Yaw = yaw
	m.agent.Pitch = pitch
}
