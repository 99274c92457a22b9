// Package term renders the live map in a terminal. Each frame is painted on
// a raster canvas at logical resolution and then sampled one color per cell;
// circles and text are overlaid as glyphs so they stay legible at cell size.
package term

import (
	"context"
	"image"
	"image/color"

	"github.com/gdamore/tcell/v2"

	"github.com/babcock-shuttle/shuttlemap/internal/render"
	"github.com/babcock-shuttle/shuttlemap/internal/render/raster"
)

// Glyphs used for circles. Markers get the larger dot.
const (
	MarkerGlyph   = '●'
	LandmarkGlyph = '•'
)

// markerRadius is the smallest circle drawn with MarkerGlyph.
const markerRadius = 6

// glyph is text or a circle placed at logical pixel coordinates.
type glyph struct {
	x, y float64
	text string
	fg   color.Color
}

// TermRenderer implements the Renderer interface for TermImage surfaces.
type TermRenderer struct {
	base render.Renderer
}

// NewRenderer creates a terminal renderer.
func NewRenderer() render.Renderer {
	return &TermRenderer{base: raster.NewRenderer()}
}

// NewGeoM creates a new geometric transformation matrix.
func (r *TermRenderer) NewGeoM() render.GeoM {
	return r.base.NewGeoM()
}

// FillRect fills a rectangle on the canvas.
func (r *TermRenderer) FillRect(dst render.Image, x, y, width, height float32, clr color.Color) {
	r.base.FillRect(dst.(*TermImage).canvas, x, y, width, height, clr)
}

// FillCircle fills a circle on the canvas and marks its center cell.
func (r *TermRenderer) FillCircle(dst render.Image, x, y, radius float32, clr color.Color) {
	img := dst.(*TermImage)
	r.base.FillCircle(img.canvas, x, y, radius, clr)

	g := LandmarkGlyph
	if radius >= markerRadius {
		g = MarkerGlyph
	}
	img.glyphs = append(img.glyphs, glyph{x: float64(x), y: float64(y), text: string(g), fg: clr})
}

// StrokeCircle outlines a circle on the canvas.
func (r *TermRenderer) StrokeCircle(dst render.Image, x, y, radius float32, strokeWidth float32, clr color.Color) {
	r.base.StrokeCircle(dst.(*TermImage).canvas, x, y, radius, strokeWidth, clr)
}

// DrawText places text as runes on the row containing the text's middle.
func (r *TermRenderer) DrawText(dst render.Image, str string, x, y int, clr color.Color, scale float64) {
	img := dst.(*TermImage)
	_, h := r.base.MeasureText(str, scale)
	img.glyphs = append(img.glyphs, glyph{x: float64(x), y: float64(y) - float64(h)/3, text: str, fg: clr})
}

// MeasureText measures text in logical pixels.
func (r *TermRenderer) MeasureText(str string, scale float64) (width, height int) {
	return r.base.MeasureText(str, scale)
}

// TermImage is a raster canvas plus the glyphs to overlay on it.
type TermImage struct {
	canvas *raster.RasterImage
	glyphs []glyph
}

// NewImage creates a blank surface of the given logical size.
func NewImage(width, height int) *TermImage {
	return &TermImage{canvas: raster.NewImage(width, height)}
}

// Bounds returns the bounds of the image.
func (i *TermImage) Bounds() image.Rectangle {
	return i.canvas.Bounds()
}

// Size returns the logical width and height.
func (i *TermImage) Size() (width, height int) {
	return i.canvas.Size()
}

// Fill fills the canvas and drops any glyphs.
func (i *TermImage) Fill(clr color.Color) {
	i.canvas.Fill(clr)
	i.glyphs = i.glyphs[:0]
}

// Clear clears the canvas and drops any glyphs.
func (i *TermImage) Clear() {
	i.canvas.Clear()
	i.glyphs = i.glyphs[:0]
}

// DrawImage draws the source canvas onto this canvas.
func (i *TermImage) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	i.canvas.DrawImage(src.(*TermImage).canvas, opts)
}

// Dispose is a no-op.
func (i *TermImage) Dispose() {}

// Flush paints the image onto the screen, scaled to its cell grid, and shows it.
func (i *TermImage) Flush(screen tcell.Screen) {
	cols, rows := screen.Size()
	w, h := i.canvas.Size()
	if cols <= 0 || rows <= 0 || w <= 0 || h <= 0 {
		return
	}
	px := i.canvas.RGBA()

	sample := func(cx, cy int) tcell.Color {
		x := int((float64(cx) + 0.5) * float64(w) / float64(cols))
		y := int((float64(cy) + 0.5) * float64(h) / float64(rows))
		return toColor(px.RGBAAt(x, y))
	}

	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			screen.SetContent(cx, cy, ' ', nil, tcell.StyleDefault.Background(sample(cx, cy)))
		}
	}

	for _, g := range i.glyphs {
		cx := int(g.x * float64(cols) / float64(w))
		cy := int(g.y * float64(rows) / float64(h))
		if cy < 0 || cy >= rows {
			continue
		}
		fg := toColor(g.fg)
		for _, r := range g.text {
			if cx >= 0 && cx < cols {
				screen.SetContent(cx, cy, r, nil, tcell.StyleDefault.Foreground(fg).Background(sample(cx, cy)))
			}
			cx++
		}
	}
	screen.Show()
}

func toColor(c color.Color) tcell.Color {
	r, g, b, _ := c.RGBA()
	return tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
}

// TermResourceLoader loads images as terminal surfaces.
type TermResourceLoader struct{}

// NewResourceLoader creates a terminal resource loader.
func NewResourceLoader() render.ResourceLoader {
	return &TermResourceLoader{}
}

// LoadImage loads an image from a file path or URL.
func (l *TermResourceLoader) LoadImage(ctx context.Context, src string) (render.Image, error) {
	img, err := render.FetchImage(ctx, src)
	if err != nil {
		return nil, err
	}
	return &TermImage{canvas: raster.WrapImage(img)}, nil
}
