package raster

import (
	"context"
	"errors"
	"image"
	"time"

	"github.com/babcock-shuttle/shuttlemap/internal/render"
)

// FrameHandler receives every frame after it is drawn. n counts from 1.
// The frame is reused for the next draw; copy it to keep it.
type FrameHandler func(frame *image.RGBA, n int) error

// RasterEngine runs a game against an offscreen bitmap.
type RasterEngine struct {
	width, height int
	interval      time.Duration
	frameLimit    int
	onFrame       FrameHandler
}

// NewEngine creates a headless engine. Without a tick interval it runs as fast
// as Update and Draw allow.
func NewEngine() *RasterEngine {
	return &RasterEngine{width: 800, height: 540}
}

// SetWindowSize sets the bitmap size handed to Layout.
func (e *RasterEngine) SetWindowSize(width, height int) {
	e.width = width
	e.height = height
}

// SetWindowTitle is ignored; there is no window.
func (e *RasterEngine) SetWindowTitle(string) {}

// SetTickInterval sets the time between updates; zero or less runs unthrottled.
func (e *RasterEngine) SetTickInterval(d time.Duration) {
	e.interval = d
}

// SetFrameLimit stops the loop after n frames; zero runs until cancelled.
func (e *RasterEngine) SetFrameLimit(n int) {
	e.frameLimit = n
}

// SetFrameHandler installs a callback invoked after each Draw.
func (e *RasterEngine) SetFrameHandler(fn FrameHandler) {
	e.onFrame = fn
}

// RunGame runs the update/draw loop until ctx is done, the frame limit is
// reached, or the game terminates.
func (e *RasterEngine) RunGame(ctx context.Context, game render.Game) error {
	w, h := game.Layout(e.width, e.height)
	screen := NewImage(w, h)

	var tick <-chan time.Time
	if e.interval > 0 {
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return nil
		}

		if err := game.Update(); err != nil {
			if errors.Is(err, render.ErrTerminated) {
				return nil
			}
			return err
		}
		game.Draw(screen)

		if e.onFrame != nil {
			if err := e.onFrame(screen.RGBA(), n); err != nil {
				return err
			}
		}
		if e.frameLimit > 0 && n >= e.frameLimit {
			return nil
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		}
	}
}
