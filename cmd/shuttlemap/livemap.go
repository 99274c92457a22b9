package main

import (
	"math/rand"
	"time"

	"github.com/babcock-shuttle/shuttlemap/internal/api"
	"github.com/babcock-shuttle/shuttlemap/internal/fleet"
	"github.com/babcock-shuttle/shuttlemap/internal/livemap"
	"github.com/babcock-shuttle/shuttlemap/internal/render"
	"github.com/babcock-shuttle/shuttlemap/internal/simulation"
)

// newRand returns the random source for one consumer. Each goroutine gets
// its own stream; *rand.Rand is not safe for concurrent use.
func newRand(stream int64) *rand.Rand {
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed + stream))
}

// newLiveMap builds the simulation from the loaded config.
func newLiveMap(r render.Renderer, rng *rand.Rand) (*livemap.LiveMap, error) {
	landmarks, err := simulation.LoadLandmarks(cfg.Map.Landmarks, cfg.Simulation)
	if err != nil {
		return nil, err
	}
	engine := simulation.NewEngine(cfg.Simulation, landmarks, rng)
	logger.Debug().Int("landmarks", len(engine.Landmarks())).Msg("simulation ready")
	return livemap.New(engine, r, logger.With().Str("component", "livemap").Logger()), nil
}

// newPoller feeds the live map from the fleet backend.
func newPoller(client *api.Client, lm *livemap.LiveMap, rng *rand.Rand) *fleet.Poller {
	return &fleet.Poller{
		Source:        client,
		Sink:          lm.SetShuttles,
		Interval:      cfg.Fleet.RefreshInterval,
		DemoOnFailure: cfg.Fleet.DemoOnFailure,
		Rand:          rng,
		Logger:        logger.With().Str("component", "fleet").Logger(),
	}
}
