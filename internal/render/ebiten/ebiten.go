// Package ebiten renders the live map in a desktop window.
package ebiten

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/babcock-shuttle/shuttlemap/internal/render"
)

// BaseFontSize is the text size at scale 1.
const BaseFontSize = 10

// EbitenRenderer implements the Renderer interface using Ebiten.
type EbitenRenderer struct {
	source *text.GoTextFaceSource

	mu    sync.Mutex
	faces map[float64]*text.GoTextFace
}

// NewRenderer creates a new Ebiten-based renderer using the Go Regular font.
func NewRenderer() render.Renderer {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		panic(err)
	}
	return &EbitenRenderer{source: src, faces: make(map[float64]*text.GoTextFace)}
}

func (r *EbitenRenderer) face(scale float64) *text.GoTextFace {
	if scale <= 0 {
		scale = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.faces[scale]
	if !ok {
		f = &text.GoTextFace{Source: r.source, Size: BaseFontSize * scale}
		r.faces[scale] = f
	}
	return f
}

// NewGeoM creates a new geometric transformation matrix.
func (r *EbitenRenderer) NewGeoM() render.GeoM {
	return &EbitenGeoM{}
}

// FillRect draws a filled rectangle on the destination image.
func (r *EbitenRenderer) FillRect(dst render.Image, x, y, width, height float32, clr color.Color) {
	vector.DrawFilledRect(dst.(*EbitenImage).img, x, y, width, height, clr, true)
}

// FillCircle draws a filled circle on the destination image.
func (r *EbitenRenderer) FillCircle(dst render.Image, x, y, radius float32, clr color.Color) {
	vector.DrawFilledCircle(dst.(*EbitenImage).img, x, y, radius, clr, true)
}

// StrokeCircle draws a circle outline on the destination image.
func (r *EbitenRenderer) StrokeCircle(dst render.Image, x, y, radius float32, strokeWidth float32, clr color.Color) {
	vector.StrokeCircle(dst.(*EbitenImage).img, x, y, radius, strokeWidth, clr, true)
}

// DrawText draws text with its baseline starting at (x, y).
func (r *EbitenRenderer) DrawText(dst render.Image, str string, x, y int, clr color.Color, scale float64) {
	face := r.face(scale)
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y)-face.Metrics().HAscent)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(dst.(*EbitenImage).img, str, face, op)
}

// MeasureText measures the width and height of text with the given scale.
func (r *EbitenRenderer) MeasureText(str string, scale float64) (width, height int) {
	face := r.face(scale)
	m := face.Metrics()
	w, h := text.Measure(str, face, m.HAscent+m.HDescent+m.HLineGap)
	return int(w + 0.5), int(h + 0.5)
}

// EbitenImage wraps an ebiten.Image to implement the render.Image interface.
type EbitenImage struct {
	img *ebiten.Image
}

// Bounds returns the bounds of the image.
func (i *EbitenImage) Bounds() image.Rectangle {
	return i.img.Bounds()
}

// Size returns the width and height of the image.
func (i *EbitenImage) Size() (width, height int) {
	return i.img.Bounds().Dx(), i.img.Bounds().Dy()
}

// Fill fills the entire image with the given color.
func (i *EbitenImage) Fill(clr color.Color) {
	i.img.Fill(clr)
}

// Clear clears the image to transparent.
func (i *EbitenImage) Clear() {
	i.img.Clear()
}

// Dispose releases the image resources.
func (i *EbitenImage) Dispose() {
	if i.img != nil {
		i.img.Deallocate()
	}
}

// DrawImage draws the source image onto this image.
func (i *EbitenImage) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	srcImg := src.(*EbitenImage).img

	ebitenOpts := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
	if opts != nil && opts.GeoM != nil {
		ebitenOpts.GeoM = opts.GeoM.(*EbitenGeoM).geoM
	}
	i.img.DrawImage(srcImg, ebitenOpts)
}

// EbitenGeoM wraps ebiten's GeoM to implement the render.GeoM interface.
type EbitenGeoM struct {
	geoM ebiten.GeoM
}

// Translate shifts the image by (tx, ty).
func (g *EbitenGeoM) Translate(tx, ty float64) {
	g.geoM.Translate(tx, ty)
}

// Scale scales the image by (sx, sy).
func (g *EbitenGeoM) Scale(sx, sy float64) {
	g.geoM.Scale(sx, sy)
}

// Rotate rotates the image by the given angle in radians.
func (g *EbitenGeoM) Rotate(angle float64) {
	g.geoM.Rotate(angle)
}

// Reset resets the matrix to identity.
func (g *EbitenGeoM) Reset() {
	g.geoM.Reset()
}

// EbitenResourceLoader implements the ResourceLoader interface using Ebiten.
type EbitenResourceLoader struct{}

// NewResourceLoader creates a new Ebiten-based resource loader.
func NewResourceLoader() render.ResourceLoader {
	return &EbitenResourceLoader{}
}

// LoadImage loads an image from a file path or URL.
func (l *EbitenResourceLoader) LoadImage(ctx context.Context, src string) (render.Image, error) {
	img, err := render.FetchImage(ctx, src)
	if err != nil {
		return nil, err
	}
	return &EbitenImage{img: ebiten.NewImageFromImage(img)}, nil
}

// fallbackTPS is the window update rate for tick intervals that do not
// divide one second.
const fallbackTPS = 60

// EbitenEngine implements the Engine interface using Ebiten.
type EbitenEngine struct {
	pacer *render.Pacer
}

// NewEngine creates a new Ebiten-based game engine.
func NewEngine() render.Engine {
	return &EbitenEngine{}
}

// SetWindowSize sets the window size in pixels.
func (e *EbitenEngine) SetWindowSize(width, height int) {
	ebiten.SetWindowSize(width, height)
}

// SetWindowTitle sets the window title.
func (e *EbitenEngine) SetWindowTitle(title string) {
	ebiten.SetWindowTitle(title)
}

// SetTickInterval sets the time between two game updates.
func (e *EbitenEngine) SetTickInterval(d time.Duration) {
	e.pacer = render.NewPacer(d, fallbackTPS)
	ebiten.SetTPS(e.pacer.TPS())
}

// RunGame runs the game loop until the window closes, ctx is done or the
// game terminates.
func (e *EbitenEngine) RunGame(ctx context.Context, game render.Game) error {
	pacer := e.pacer
	if pacer == nil {
		pacer = render.NewPacer(time.Second/ebiten.DefaultTPS, ebiten.DefaultTPS)
	}
	err := ebiten.RunGame(&gameAdapter{ctx: ctx, game: game, pacer: pacer})
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// gameAdapter adapts a render.Game to ebiten.Game interface.
type gameAdapter struct {
	ctx   context.Context
	game  render.Game
	pacer *render.Pacer
}

// Update implements ebiten.Game.
func (a *gameAdapter) Update() error {
	if a.ctx.Err() != nil {
		return ebiten.Termination
	}
	for n := a.pacer.Step(); n > 0; n-- {
		if err := a.game.Update(); err != nil {
			if errors.Is(err, render.ErrTerminated) {
				return ebiten.Termination
			}
			return err
		}
	}
	return nil
}

// Draw implements ebiten.Game.
func (a *gameAdapter) Draw(screen *ebiten.Image) {
	a.game.Draw(&EbitenImage{img: screen})
}

// Layout implements ebiten.Game.
func (a *gameAdapter) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.game.Layout(outsideWidth, outsideHeight)
}
