package livemap

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/babcock-shuttle/shuttlemap/internal/fleet"
	"github.com/babcock-shuttle/shuttlemap/internal/render"
	"github.com/babcock-shuttle/shuttlemap/internal/simulation"
)

var (
	backgroundColor = color.RGBA{0xE8, 0xF5, 0xE9, 0xFF}
	landmarkColor   = color.RGBA{0x19, 0x76, 0xD2, 0xFF}
	inkColor        = color.RGBA{0x33, 0x33, 0x33, 0xFF}
	panelColor      = color.NRGBA{0xFF, 0xFF, 0xFF, 0xE6}
	activeColor     = color.RGBA{0x22, 0xC5, 0x5E, 0xFF}
	inactiveColor   = color.RGBA{0xEF, 0x44, 0x44, 0xFF}
	routeTitleColor = color.RGBA{0x1E, 0x3A, 0x8A, 0xFF}
	routeColor      = color.RGBA{0x1E, 0x40, 0xAF, 0xFF}
	routeETAColor   = color.RGBA{0x1D, 0x4E, 0xD8, 0xFF}
)

const (
	landmarkRadius = 5
	markerRadius   = 8
	markerStroke   = 2
	labelScale     = 0.9

	panelMargin  = 16
	panelPadding = 10
	lineHeight   = 14
	legendMaxH   = 240
	swatchRadius = 5
	indent       = 16
)

// Draw renders the current frame. It never advances the simulation.
func (m *LiveMap) Draw(screen render.Image) {
	w, h := screen.Size()

	screen.Fill(backgroundColor)
	if m.background != nil {
		screen.DrawImage(m.background, render.StretchTo(m.renderer, m.background, w, h))
	}

	m.drawLandmarks(screen)
	m.drawMarkers(screen, m.engine.Markers())
	m.drawLegend(screen, w, h)
	m.drawBadge(screen)
}

func (m *LiveMap) drawLandmarks(screen render.Image) {
	for _, l := range m.engine.Landmarks() {
		m.renderer.FillCircle(screen, float32(l.X), float32(l.Y), landmarkRadius, landmarkColor)
		m.renderer.DrawText(screen, l.Name, int(l.X)+8, int(l.Y)-3, inkColor, 1)
	}
}

func (m *LiveMap) drawMarkers(screen render.Image, markers []simulation.Marker) {
	for _, mk := range markers {
		x, y := float32(mk.X), float32(mk.Y)
		m.renderer.FillCircle(screen, x, y, markerRadius, mk.Color.RGBA())
		m.renderer.StrokeCircle(screen, x, y, markerRadius, markerStroke, inkColor)
		m.renderer.DrawText(screen, fleet.Label(mk.ID), int(mk.X)-12, int(mk.Y)+3, inkColor, labelScale)
	}
}

// legendLine is one row of the legend panel.
type legendLine struct {
	text   string
	clr    color.Color
	indent int

	swatch      color.Color // optional dot before the text
	status      string      // optional text after it
	statusColor color.Color
}

// legendLines lays out the legend rows for the shuttle list, dropping whole
// shuttles from the end and adding a "+N more" row once maxLines is exceeded.
func legendLines(shuttles []fleet.Summary, maxLines int) []legendLine {
	lines := []legendLine{{text: "Active Shuttles:", clr: inkColor}}

	for i, s := range shuttles {
		group := shuttleLines(s)
		room := maxLines - len(lines)
		if i < len(shuttles)-1 {
			room-- // keep a row for "+N more"
		}
		if len(group) > room {
			lines = append(lines, legendLine{
				text: fmt.Sprintf("+%d more", len(shuttles)-i),
				clr:  inkColor,
			})
			break
		}
		lines = append(lines, group...)
	}
	return lines
}

func shuttleLines(s fleet.Summary) []legendLine {
	status, statusColor := "Inactive", color.Color(inactiveColor)
	if s.Active {
		status, statusColor = "Active", activeColor
	}
	lines := []legendLine{{
		text:        "Shuttle " + fleet.Label(s.ID),
		clr:         inkColor,
		indent:      indent,
		swatch:      s.Color.RGBA(),
		status:      status,
		statusColor: statusColor,
	}}

	if r := s.NextRoute; r != nil {
		lines = append(lines,
			legendLine{text: "Next Route:", clr: routeTitleColor, indent: 2 * indent},
			legendLine{text: r.Origin + " → " + r.Destination, clr: routeColor, indent: 2 * indent},
			legendLine{
				text:   fmt.Sprintf("~%d min (%s km)", r.EtaMinutes, strconv.FormatFloat(r.DistanceKm, 'f', -1, 64)),
				clr:    routeETAColor,
				indent: 2 * indent,
			},
		)
	}
	return lines
}

func (m *LiveMap) drawLegend(screen render.Image, w, h int) {
	lines := legendLines(m.shuttles, (legendMaxH-2*panelPadding)/lineHeight)

	width := 0
	for _, l := range lines {
		lw, _ := m.renderer.MeasureText(l.text, 1)
		lw += l.indent
		if l.status != "" {
			sw, _ := m.renderer.MeasureText(l.status, 1)
			lw += 8 + sw
		}
		width = max(width, lw)
	}

	panelW := width + 2*panelPadding
	panelH := len(lines)*lineHeight + 2*panelPadding
	x0 := w - panelMargin - panelW
	y0 := h - panelMargin - panelH
	m.renderer.FillRect(screen, float32(x0), float32(y0), float32(panelW), float32(panelH), panelColor)

	for i, l := range lines {
		x := x0 + panelPadding + l.indent
		baseline := y0 + panelPadding + (i+1)*lineHeight - 3
		if l.swatch != nil {
			cx, cy := float32(x-indent/2), float32(baseline-4)
			m.renderer.FillCircle(screen, cx, cy, swatchRadius, l.swatch)
			m.renderer.StrokeCircle(screen, cx, cy, swatchRadius, 1, inkColor)
		}
		m.renderer.DrawText(screen, l.text, x, baseline, l.clr, 1)
		if l.status != "" {
			tw, _ := m.renderer.MeasureText(l.text, 1)
			m.renderer.DrawText(screen, l.status, x+tw+8, baseline, l.statusColor, 1)
		}
	}
}

func (m *LiveMap) drawBadge(screen render.Image) {
	const label = "Live Tracking"
	tw, _ := m.renderer.MeasureText(label, 1)
	x, y := panelMargin, panelMargin
	m.renderer.FillRect(screen, float32(x), float32(y), float32(tw+34), 28, panelColor)
	m.renderer.FillCircle(screen, float32(x+14), float32(y+14), 4, activeColor)
	m.renderer.DrawText(screen, label, x+24, y+18, inkColor, 1)
}
