// Package render defines the drawing surface the live map paints on. Backends
// (window, headless raster, terminal) implement these interfaces so the map
// code never touches a graphics library directly.
package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"time"
)

// ErrTerminated is returned from Game.Update to end the loop cleanly.
var ErrTerminated = errors.New("render: terminated")

// Renderer is the main rendering interface that abstracts the underlying
// graphics engine.
type Renderer interface {
	// NewGeoM creates an identity transformation matrix for DrawImage.
	NewGeoM() GeoM

	// Vector operations (for drawing shapes)
	FillRect(dst Image, x, y, width, height float32, clr color.Color)
	FillCircle(dst Image, x, y, radius float32, clr color.Color)
	StrokeCircle(dst Image, x, y, radius float32, strokeWidth float32, clr color.Color)

	// Text operations. (x, y) is the left end of the text baseline.
	DrawText(dst Image, text string, x, y int, clr color.Color, scale float64)
	MeasureText(text string, scale float64) (width, height int)
}

// Image represents a renderable image surface that can be drawn to or drawn from.
type Image interface {
	// Properties
	Bounds() image.Rectangle
	Size() (width, height int)

	// Fill operations
	Fill(clr color.Color)
	Clear()

	// Drawing operations
	DrawImage(src Image, opts *DrawImageOptions)

	// Resource management
	Dispose()
}

// DrawImageOptions contains options for drawing an image.
type DrawImageOptions struct {
	GeoM GeoM
}

// GeoM represents a geometric transformation matrix.
type GeoM interface {
	// Translate shifts the image by (tx, ty).
	Translate(tx, ty float64)

	// Scale scales the image by (sx, sy).
	Scale(sx, sy float64)

	// Rotate rotates the image by the given angle in radians.
	Rotate(angle float64)

	// Reset resets the matrix to identity.
	Reset()
}

// ResourceLoader turns an image location (file path or http(s) URL) into a
// backend image.
type ResourceLoader interface {
	LoadImage(ctx context.Context, src string) (Image, error)
}

// Game is driven by an Engine: Update once per tick, Draw after it.
type Game interface {
	// Update advances the game by one tick. Returning ErrTerminated stops the
	// engine without error.
	Update() error

	// Draw draws the current state. It must not advance the game.
	Draw(screen Image)

	// Layout accepts the outside size (e.g., window size) and returns the logical screen size.
	Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int)
}

// Engine runs the game loop for one backend.
type Engine interface {
	// SetWindowSize sets the output size in pixels.
	SetWindowSize(width, height int)

	// SetWindowTitle sets the window title.
	SetWindowTitle(title string)

	// SetTickInterval sets the time between two Update calls.
	SetTickInterval(d time.Duration)

	// RunGame runs the loop until ctx is done or the game returns
	// ErrTerminated or another error. It blocks.
	RunGame(ctx context.Context, game Game) error
}

// StretchTo returns draw options that scale src to fill a w×h destination.
func StretchTo(r Renderer, src Image, w, h int) *DrawImageOptions {
	sw, sh := src.Size()
	opts := &DrawImageOptions{GeoM: r.NewGeoM()}
	if sw > 0 && sh > 0 {
		opts.GeoM.Scale(float64(w)/float64(sw), float64(h)/float64(sh))
	}
	return opts
}
