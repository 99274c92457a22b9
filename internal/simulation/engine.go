package simulation

import (
	"math"

	"github.com/babcock-shuttle/shuttlemap/internal/fleet"
)

// Rand is the randomness the engine consults when spawning markers and
// picking new targets. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Marker is the animated stand-in for one shuttle.
type Marker struct {
	ID     int
	X, Y   float64
	VX, VY float64
	Color  fleet.Color
	Target int // index into the landmark table
}

// Engine owns the marker set and advances it one tick at a time.
// It is not safe for concurrent use; callers read Markers between ticks.
type Engine struct {
	cfg       Config
	landmarks []Landmark
	rng       Rand
	markers   []Marker
}

// NewEngine creates an engine over the given landmark table. An empty table
// falls back to the built-in campus landmarks.
func NewEngine(cfg Config, landmarks []Landmark, rng Rand) *Engine {
	if len(landmarks) == 0 {
		landmarks = CampusLandmarks()
	}
	return &Engine{
		cfg:       cfg,
		landmarks: landmarks,
		rng:       rng,
	}
}

// Config returns the motion rules the engine runs with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Landmarks returns the landmark table. Callers must not modify it.
func (e *Engine) Landmarks() []Landmark {
	return e.landmarks
}

// Markers returns the current marker set. The slice is never modified in
// place; Tick and Rebuild replace it.
func (e *Engine) Markers() []Marker {
	return e.markers
}

// Rebuild replaces the marker set with one marker per shuttle, in list order.
// New markers get a random position inside the spawn area, a small random
// velocity and a random target. With PreserveMarkers set, shuttles already on
// the map keep their motion state and only pick up their new color.
func (e *Engine) Rebuild(shuttles []fleet.Summary) {
	var prev map[int]Marker
	if e.cfg.PreserveMarkers && len(e.markers) > 0 {
		prev = make(map[int]Marker, len(e.markers))
		for _, m := range e.markers {
			prev[m.ID] = m
		}
	}

	next := make([]Marker, 0, len(shuttles))
	for _, s := range shuttles {
		if m, ok := prev[s.ID]; ok {
			m.Color = s.Color
			next = append(next, m)
			continue
		}
		next = append(next, e.spawn(s))
	}
	e.markers = next
}

func (e *Engine) spawn(s fleet.Summary) Marker {
	x := e.cfg.SpawnMargin + e.rng.Float64()*e.cfg.SpawnWidth
	y := e.cfg.SpawnMargin + e.rng.Float64()*e.cfg.SpawnHeight
	vx := (e.rng.Float64() - 0.5) * e.cfg.InitialSpeed
	vy := (e.rng.Float64() - 0.5) * e.cfg.InitialSpeed

	m := Marker{
		ID:     s.ID,
		Color:  s.Color,
		VX:     vx,
		VY:     vy,
		Target: e.rng.Intn(len(e.landmarks)),
	}
	m.X, m.VX = e.clamp(x, m.VX, e.cfg.BoundaryMaxX)
	m.Y, m.VY = e.clamp(y, m.VY, e.cfg.BoundaryMaxY)
	return m
}

// Tick advances every marker by one step.
func (e *Engine) Tick() {
	if len(e.markers) == 0 {
		return
	}
	next := make([]Marker, len(e.markers))
	for i, m := range e.markers {
		next[i] = e.Step(m)
	}
	e.markers = next
}

// Step returns the marker's state one tick later.
//
// A marker within the arrival threshold of its target picks a new target and
// holds still for this tick. Otherwise its velocity is set to full speed
// straight at the target, it moves, and any axis that crosses the boundary is
// clamped with its velocity turned back inward.
func (e *Engine) Step(m Marker) Marker {
	target := e.landmarks[m.Target]
	dx := target.X - m.X
	dy := target.Y - m.Y
	distance := math.Hypot(dx, dy)

	if distance <= e.cfg.ArrivalThreshold {
		m.Target = e.nextTarget(m.Target)
		return m
	}

	m.VX = dx / distance * e.cfg.Speed
	m.VY = dy / distance * e.cfg.Speed

	m.X, m.VX = e.clamp(m.X+m.VX, m.VX, e.cfg.BoundaryMaxX)
	m.Y, m.VY = e.clamp(m.Y+m.VY, m.VY, e.cfg.BoundaryMaxY)
	return m
}

// clamp keeps pos inside [BoundaryMin, hi], pointing vel back inside when it hits an edge.
func (e *Engine) clamp(pos, vel, hi float64) (float64, float64) {
	if pos < e.cfg.BoundaryMin {
		return e.cfg.BoundaryMin, math.Abs(vel)
	}
	if pos > hi {
		return hi, -math.Abs(vel)
	}
	return pos, vel
}

// nextTarget picks a landmark other than current whenever there is a choice.
func (e *Engine) nextTarget(current int) int {
	n := len(e.landmarks)
	if n < 2 {
		return 0
	}
	next := e.rng.Intn(n - 1)
	if next >= current {
		next++
	}
	return next
}
