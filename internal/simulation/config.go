// Package simulation provides the live-map motion model: campus landmarks,
// one marker per shuttle, and the fixed-step update that steers markers
// between landmarks inside the canvas.
package simulation

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds the motion rules for the live map
type Config struct {
	// Canvas
	CanvasWidth  float64 `mapstructure:"canvasWidth" validate:"gt=0"`  // Logical canvas width (800)
	CanvasHeight float64 `mapstructure:"canvasHeight" validate:"gt=0"` // Logical canvas height (540)

	// Boundary markers are reflected from
	BoundaryMin  float64 `mapstructure:"boundaryMin" validate:"gte=0"`
	BoundaryMaxX float64 `mapstructure:"boundaryMaxX" validate:"gtfield=BoundaryMin"`
	BoundaryMaxY float64 `mapstructure:"boundaryMaxY" validate:"gtfield=BoundaryMin"`

	// Spawning
	SpawnMargin  float64 `mapstructure:"spawnMargin" validate:"gte=0"`  // Offset of the spawn area from the canvas origin
	SpawnWidth   float64 `mapstructure:"spawnWidth" validate:"gt=0"`    // Spawn area extent on x
	SpawnHeight  float64 `mapstructure:"spawnHeight" validate:"gt=0"`   // Spawn area extent on y
	InitialSpeed float64 `mapstructure:"initialSpeed" validate:"gte=0"` // Initial velocity components lie in ±InitialSpeed/2

	// Steering
	Speed            float64       `mapstructure:"speed" validate:"gt=0"`             // Units per tick while heading to a target
	ArrivalThreshold float64       `mapstructure:"arrivalThreshold" validate:"gte=0"` // Distance at which a target counts as reached
	TickInterval     time.Duration `mapstructure:"tickInterval" validate:"gt=0"`

	// Keep markers of surviving shuttle ids across fleet updates instead of re-randomizing all
	PreserveMarkers bool `mapstructure:"preserveMarkers"`

	// Random seed; zero seeds from the clock
	Seed int64 `mapstructure:"seed"`
}

// DefaultConfig returns the motion rules of the campus map
func DefaultConfig() Config {
	return Config{
		CanvasWidth:      800,
		CanvasHeight:     540,
		BoundaryMin:      20,
		BoundaryMaxX:     780,
		BoundaryMaxY:     520,
		SpawnMargin:      50,
		SpawnWidth:       700,
		SpawnHeight:      500,
		InitialSpeed:     1.5,
		Speed:            1.2,
		ArrivalThreshold: 15,
		TickInterval:     100 * time.Millisecond,
	}
}

// Validate checks the rules are internally consistent
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid simulation config: %w", err)
	}
	if c.BoundaryMaxX > c.CanvasWidth || c.BoundaryMaxY > c.CanvasHeight {
		return fmt.Errorf("invalid simulation config: boundary (%.0f, %.0f) exceeds canvas %.0fx%.0f",
			c.BoundaryMaxX, c.BoundaryMaxY, c.CanvasWidth, c.CanvasHeight)
	}
	if c.SpawnMargin >= c.CanvasWidth || c.SpawnMargin >= c.CanvasHeight {
		return fmt.Errorf("invalid simulation config: spawn margin %.0f is outside the canvas", c.SpawnMargin)
	}
	return nil
}
