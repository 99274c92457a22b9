// Package raster implements the render interfaces on an in-memory RGBA
// bitmap. It needs no display, so snapshots, headless runs and tests use it.
package raster

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/babcock-shuttle/shuttlemap/internal/render"
)

// BaseFontSize is the pixel size of text drawn at scale 1.
const BaseFontSize = 10

// circleSegments is the polygon resolution used for circles.
const circleSegments = 48

// RasterRenderer implements the Renderer interface on *image.RGBA.
type RasterRenderer struct {
	mu    sync.Mutex
	font  *opentype.Font
	faces map[float64]font.Face
}

// NewRenderer creates a new raster renderer using the Go Regular font.
func NewRenderer() render.Renderer {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		// goregular is embedded and known-good
		panic(err)
	}
	return &RasterRenderer{font: f, faces: make(map[float64]font.Face)}
}

// NewGeoM creates a new geometric transformation matrix.
func (r *RasterRenderer) NewGeoM() render.GeoM {
	return NewGeoM()
}

// FillRect fills an axis-aligned rectangle, blending over existing pixels.
func (r *RasterRenderer) FillRect(dst render.Image, x, y, width, height float32, clr color.Color) {
	img := dst.(*RasterImage).img
	rect := image.Rect(
		int(math.Round(float64(x))),
		int(math.Round(float64(y))),
		int(math.Round(float64(x+width))),
		int(math.Round(float64(y+height))),
	)
	draw.Draw(img, rect, image.NewUniform(clr), image.Point{}, draw.Over)
}

// FillCircle draws a filled circle on the destination image.
func (r *RasterRenderer) FillCircle(dst render.Image, x, y, radius float32, clr color.Color) {
	img := dst.(*RasterImage).img
	z := newRasterizer(img)
	circlePath(z, float64(x), float64(y), float64(radius), false)
	z.Draw(img, img.Bounds(), image.NewUniform(clr), image.Point{})
}

// StrokeCircle draws a circle outline of the given width centered on radius.
func (r *RasterRenderer) StrokeCircle(dst render.Image, x, y, radius float32, strokeWidth float32, clr color.Color) {
	img := dst.(*RasterImage).img
	outer := float64(radius + strokeWidth/2)
	inner := float64(radius - strokeWidth/2)
	z := newRasterizer(img)
	circlePath(z, float64(x), float64(y), outer, false)
	if inner > 0 {
		circlePath(z, float64(x), float64(y), inner, true)
	}
	z.Draw(img, img.Bounds(), image.NewUniform(clr), image.Point{})
}

// DrawText draws text with its baseline starting at (x, y).
func (r *RasterRenderer) DrawText(dst render.Image, str string, x, y int, clr color.Color, scale float64) {
	img := dst.(*RasterImage).img
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(clr),
		Face: r.face(scale),
		Dot:  fixed.P(x, y),
	}
	d.DrawString(str)
}

// MeasureText measures the width and line height of text at the given scale.
func (r *RasterRenderer) MeasureText(str string, scale float64) (width, height int) {
	face := r.face(scale)
	return font.MeasureString(face, str).Ceil(), face.Metrics().Height.Ceil()
}

func (r *RasterRenderer) face(scale float64) font.Face {
	if scale <= 0 {
		scale = 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.faces[scale]; ok {
		return f
	}
	f, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    BaseFontSize * scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		panic(err)
	}
	r.faces[scale] = f
	return f
}

func newRasterizer(img *image.RGBA) *vector.Rasterizer {
	b := img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	return z
}

// circlePath adds a closed polygonal circle to z. Reversed contours cut holes.
func circlePath(z *vector.Rasterizer, cx, cy, radius float64, reverse bool) {
	for i := 0; i <= circleSegments; i++ {
		theta := 2 * math.Pi * float64(i) / circleSegments
		if reverse {
			theta = -theta
		}
		px := float32(cx + radius*math.Cos(theta))
		py := float32(cy + radius*math.Sin(theta))
		if i == 0 {
			z.MoveTo(px, py)
		} else {
			z.LineTo(px, py)
		}
	}
	z.ClosePath()
}

// RasterImage wraps an *image.RGBA to implement the render.Image interface.
type RasterImage struct {
	img *image.RGBA
}

// NewImage creates a transparent image of the given size.
func NewImage(width, height int) *RasterImage {
	return &RasterImage{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// WrapImage converts any image into a RasterImage, copying it when it is not
// already RGBA.
func WrapImage(src image.Image) *RasterImage {
	if rgba, ok := src.(*image.RGBA); ok {
		return &RasterImage{img: rgba}
	}
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	return &RasterImage{img: rgba}
}

// RGBA returns the underlying bitmap.
func (i *RasterImage) RGBA() *image.RGBA {
	return i.img
}

// Bounds returns the bounds of the image.
func (i *RasterImage) Bounds() image.Rectangle {
	return i.img.Bounds()
}

// Size returns the width and height of the image.
func (i *RasterImage) Size() (width, height int) {
	return i.img.Bounds().Dx(), i.img.Bounds().Dy()
}

// Fill fills the entire image with the given color.
func (i *RasterImage) Fill(clr color.Color) {
	draw.Draw(i.img, i.img.Bounds(), image.NewUniform(clr), image.Point{}, draw.Src)
}

// Clear clears the image to transparent.
func (i *RasterImage) Clear() {
	i.Fill(color.Transparent)
}

// Dispose is a no-op; the bitmap is garbage collected.
func (i *RasterImage) Dispose() {}

// DrawImage draws the source image onto this image through the options' GeoM.
func (i *RasterImage) DrawImage(src render.Image, opts *render.DrawImageOptions) {
	srcImg := src.(*RasterImage).img

	if opts == nil || opts.GeoM == nil {
		draw.Draw(i.img, srcImg.Bounds(), srcImg, srcImg.Bounds().Min, draw.Over)
		return
	}

	m := opts.GeoM.(*RasterGeoM).m
	xdraw.BiLinear.Transform(i.img, m, srcImg, srcImg.Bounds(), xdraw.Over, nil)
}

// RasterGeoM is a 2x3 affine matrix mapping source to destination pixels.
type RasterGeoM struct {
	m f64.Aff3
}

// NewGeoM creates an identity matrix.
func NewGeoM() *RasterGeoM {
	return &RasterGeoM{m: f64.Aff3{1, 0, 0, 0, 1, 0}}
}

// Translate shifts the image by (tx, ty).
func (g *RasterGeoM) Translate(tx, ty float64) {
	g.m[2] += tx
	g.m[5] += ty
}

// Scale scales the image by (sx, sy).
func (g *RasterGeoM) Scale(sx, sy float64) {
	g.m[0] *= sx
	g.m[1] *= sx
	g.m[2] *= sx
	g.m[3] *= sy
	g.m[4] *= sy
	g.m[5] *= sy
}

// Rotate rotates the image by the given angle in radians.
func (g *RasterGeoM) Rotate(angle float64) {
	sin, cos := math.Sincos(angle)
	a, b, c := g.m[0], g.m[1], g.m[2]
	d, e, f := g.m[3], g.m[4], g.m[5]
	g.m = f64.Aff3{
		cos*a - sin*d, cos*b - sin*e, cos*c - sin*f,
		sin*a + cos*d, sin*b + cos*e, sin*c + cos*f,
	}
}

// Reset resets the matrix to identity.
func (g *RasterGeoM) Reset() {
	g.m = f64.Aff3{1, 0, 0, 0, 1, 0}
}

// Apply maps a source point through the matrix.
func (g *RasterGeoM) Apply(x, y float64) (float64, float64) {
	return g.m[0]*x + g.m[1]*y + g.m[2], g.m[3]*x + g.m[4]*y + g.m[5]
}

// RasterResourceLoader implements the ResourceLoader interface.
type RasterResourceLoader struct{}

// NewResourceLoader creates a new raster resource loader.
func NewResourceLoader() render.ResourceLoader {
	return &RasterResourceLoader{}
}

// LoadImage loads an image from a file path or URL.
func (l *RasterResourceLoader) LoadImage(ctx context.Context, src string) (render.Image, error) {
	img, err := render.FetchImage(ctx, src)
	if err != nil {
		return nil, err
	}
	return WrapImage(img), nil
}
