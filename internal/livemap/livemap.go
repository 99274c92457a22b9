// Package livemap runs the shuttle simulation as a render.Game: shuttle list
// changes and the background image arrive from other goroutines and are
// applied at the start of the next Update, which then advances one tick.
package livemap

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/babcock-shuttle/shuttlemap/internal/fleet"
	"github.com/babcock-shuttle/shuttlemap/internal/render"
	"github.com/babcock-shuttle/shuttlemap/internal/simulation"
)

// LiveMap holds the simulation state and draws it.
type LiveMap struct {
	engine   *simulation.Engine
	renderer render.Renderer
	logger   zerolog.Logger

	pendingShuttles   chan []fleet.Summary
	pendingBackground chan render.Image

	// owned by the loop goroutine
	shuttles   []fleet.Summary
	background render.Image

	ticks     atomic.Uint64
	markers   atomic.Pointer[[]simulation.Marker]
	published atomic.Pointer[[]fleet.Summary]

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex // orders loads.Add against Close
	closed atomic.Bool
	loads  sync.WaitGroup
}

// New creates a live map over an engine.
func New(engine *simulation.Engine, r render.Renderer, logger zerolog.Logger) *LiveMap {
	ctx, cancel := context.WithCancel(context.Background())
	return &LiveMap{
		engine:            engine,
		renderer:          r,
		logger:            logger,
		pendingShuttles:   make(chan []fleet.Summary, 1),
		pendingBackground: make(chan render.Image, 1),
		ctx:               ctx,
		cancel:            cancel,
	}
}

// SetShuttles replaces the shuttle list. It is safe to call from any
// goroutine; if several lists arrive between two ticks only the last is used.
func (m *LiveMap) SetShuttles(list []fleet.Summary) {
	list = append([]fleet.Summary(nil), list...)
	for {
		select {
		case m.pendingShuttles <- list:
			return
		default:
		}
		select {
		case <-m.pendingShuttles:
		default:
		}
	}
}

// LoadBackground starts loading the map image in the background. A failed
// load is logged and the map is drawn without it. An empty src is a no-op.
func (m *LiveMap) LoadBackground(ctx context.Context, loader render.ResourceLoader, src string) {
	if src == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed.Load() {
		return
	}
	m.loads.Add(1)
	go func() {
		defer m.loads.Done()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(m.ctx, cancel)
		defer stop()

		img, err := loader.LoadImage(ctx, src)
		if err != nil {
			m.logger.Warn().Err(err).Str("src", src).Msg("failed to load background image")
			return
		}
		if ctx.Err() != nil {
			img.Dispose()
			return
		}
		m.logger.Debug().Str("src", src).Msg("background image loaded")
		m.SetBackground(img)
	}()
}

// SetBackground replaces the image drawn under the map. It is safe to call
// from any goroutine; an image superseded before the next Update is disposed,
// and so is one set after Close.
func (m *LiveMap) SetBackground(img render.Image) {
	if m.closed.Load() {
		img.Dispose()
		return
	}
	for {
		select {
		case m.pendingBackground <- img:
			return
		default:
		}
		select {
		case old := <-m.pendingBackground:
			old.Dispose()
		default:
		}
	}
}

// Update applies pending inputs, advances the simulation one tick and
// publishes the new marker set. After Close it returns render.ErrTerminated.
func (m *LiveMap) Update() error {
	if m.closed.Load() {
		return render.ErrTerminated
	}

	select {
	case list := <-m.pendingShuttles:
		m.shuttles = list
		m.engine.Rebuild(list)
		m.published.Store(&list)
		m.logger.Debug().Int("shuttles", len(list)).Msg("marker set rebuilt")
	default:
	}

	select {
	case img := <-m.pendingBackground:
		if m.background != nil {
			m.background.Dispose()
		}
		m.background = img
	default:
	}

	m.engine.Tick()
	m.ticks.Add(1)
	markers := m.engine.Markers()
	m.markers.Store(&markers)
	return nil
}

// Snapshot returns the marker set as of the last Update. The slice must not
// be modified. It is safe to call from any goroutine.
func (m *LiveMap) Snapshot() []simulation.Marker {
	if p := m.markers.Load(); p != nil {
		return *p
	}
	return nil
}

// Shuttles returns the shuttle list the current marker set was built from.
func (m *LiveMap) Shuttles() []fleet.Summary {
	if p := m.published.Load(); p != nil {
		return *p
	}
	return nil
}

// Ticks returns how many ticks have run.
func (m *LiveMap) Ticks() uint64 {
	return m.ticks.Load()
}

// Close stops pending background loads and makes the next Update end the
// loop. It blocks until in-flight loads have returned and disposes a
// background image that never reached Update.
func (m *LiveMap) Close() {
	m.mu.Lock()
	if m.closed.Swap(true) {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.cancel()
	m.loads.Wait()

	select {
	case img := <-m.pendingBackground:
		img.Dispose()
	default:
	}
}

// Layout returns the fixed canvas size.
func (m *LiveMap) Layout(outsideWidth, outsideHeight int) (int, int) {
	cfg := m.engine.Config()
	return int(cfg.CanvasWidth), int(cfg.CanvasHeight)
}
