package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/babcock-shuttle/shuttlemap/internal/feed"
	"github.com/babcock-shuttle/shuttlemap/internal/render"
	ebitenrender "github.com/babcock-shuttle/shuttlemap/internal/render/ebiten"
	"github.com/babcock-shuttle/shuttlemap/internal/render/raster"
	"github.com/babcock-shuttle/shuttlemap/internal/render/term"
)

const windowTitle = "Babcock Shuttles - Live Tracking"

var backendName string

// runCmd opens the live map
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the live map",
	Long: `Opens the live map and keeps it in sync with the fleet backend.

Backends:
  ebiten    desktop window (default)
  terminal  full-screen terminal view; quit with q, Esc or Ctrl-C
  headless  no output; useful with feed.addr to serve GTFS-realtime only`,
	Args: cobra.NoArgs,
	RunE: runLiveMap,
}

func init() {
	runCmd.Flags().StringVarP(&backendName, "backend", "b", "ebiten", "Drawing backend: ebiten, terminal or headless")
}

// openTerminal initializes the terminal screen.
var openTerminal = term.Open

// backend bundles the render implementations of one output. The engine is
// opened last since the terminal engine takes over the tty.
type backend struct {
	renderer render.Renderer
	loader   render.ResourceLoader
	open     func() (render.Engine, error)
}

func newBackend(name string) (*backend, error) {
	switch name {
	case "ebiten":
		return &backend{
			renderer: ebitenrender.NewRenderer(),
			loader:   ebitenrender.NewResourceLoader(),
			open: func() (render.Engine, error) {
				return ebitenrender.NewEngine(), nil
			},
		}, nil
	case "terminal":
		return &backend{
			renderer: term.NewRenderer(),
			loader:   term.NewResourceLoader(),
			open: func() (render.Engine, error) {
				screen, err := openTerminal()
				if err != nil {
					return nil, fmt.Errorf("failed to open terminal: %w", err)
				}
				return term.NewEngine(screen), nil
			},
		}, nil
	case "headless":
		return &backend{
			renderer: raster.NewRenderer(),
			loader:   raster.NewResourceLoader(),
			open: func() (render.Engine, error) {
				return raster.NewEngine(), nil
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func runLiveMap(cmd *cobra.Command, args []string) error {
	if backendName == "terminal" && logFilePath == "" {
		// the screen owns the terminal
		logger = zerolog.Nop()
	}

	b, err := newBackend(backendName)
	if err != nil {
		return err
	}

	lm, err := newLiveMap(b.renderer, newRand(0))
	if err != nil {
		return err
	}
	engine, err := b.open()
	if err != nil {
		lm.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	poller := newPoller(newClient(), lm, newRand(1))
	g.Go(func() error {
		poller.Run(gctx)
		return nil
	})

	if cfg.Feed.Addr != "" {
		proj := feed.NewProjection(cfg.Geo, cfg.Simulation)
		h := feed.NewHandler(lm, proj, logger.With().Str("component", "feed").Logger())
		g.Go(func() error {
			if err := feed.Serve(gctx, cfg.Feed.Addr, h, logger); err != nil {
				return fmt.Errorf("feed server: %w", err)
			}
			return nil
		})
	}

	lm.LoadBackground(gctx, b.loader, cfg.Map.Background)

	w, h := int(cfg.Simulation.CanvasWidth), int(cfg.Simulation.CanvasHeight)
	engine.SetWindowSize(w, h)
	engine.SetWindowTitle(windowTitle)
	engine.SetTickInterval(cfg.Simulation.TickInterval)

	logger.Info().Str("backend", backendName).Str("api", cfg.API.BaseURL).Msg("starting live map")
	err = engine.RunGame(gctx, lm)

	cancel()
	lm.Close()
	if gerr := g.Wait(); err == nil {
		err = gerr
	}
	logger.Info().Uint64("ticks", lm.Ticks()).Msg("live map stopped")
	return err
}
