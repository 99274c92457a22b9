package fleet

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

// VehicleSource lists vehicles from the fleet backend.
type VehicleSource interface {
	ListVehicles(ctx context.Context) ([]Vehicle, error)
}

// DemoFleetSize is the number of placeholder shuttles published when the
// backend is unreachable on the first fetch.
const DemoFleetSize = 6

// Poller fetches the fleet and hands changed summary lists to a sink.
type Poller struct {
	Source        VehicleSource
	Sink          func([]Summary)
	Interval      time.Duration // zero fetches once
	DemoOnFailure bool
	Rand          *rand.Rand
	Logger        zerolog.Logger

	last      []Summary
	published bool
}

// Run fetches immediately and then every Interval until ctx is done.
// With a zero Interval it returns after the first fetch.
func (p *Poller) Run(ctx context.Context) {
	p.poll(ctx)
	if p.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	vehicles, err := p.Source.ListVehicles(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		p.Logger.Warn().Err(err).Msg("failed to fetch shuttles")
		if !p.published && p.DemoOnFailure {
			rng := p.Rand
			if rng == nil {
				rng = rand.New(rand.NewSource(time.Now().UnixNano()))
			}
			p.Logger.Info().Int("count", DemoFleetSize).Msg("showing demo fleet")
			p.publish(Demo(DemoFleetSize, rng))
		}
		return
	}

	summaries := Summarize(vehicles)
	if p.published && Equal(p.last, summaries) {
		p.Logger.Debug().Int("count", len(summaries)).Msg("fleet unchanged")
		return
	}
	p.Logger.Info().Int("count", len(summaries)).Msg("fleet updated")
	p.publish(summaries)
}

func (p *Poller) publish(list []Summary) {
	p.last = list
	p.published = true
	if p.Sink != nil {
		p.Sink(list)
	}
}
