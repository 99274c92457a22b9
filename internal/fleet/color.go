package fleet

import (
	"fmt"
	"image/color"
	"strings"
)

// Color is the closed set of shuttle paint colors the map knows how to draw.
// Anything the backend sends outside this set maps to ColorOther.
type Color int

// Known shuttle colors.
const (
	ColorOther Color = iota
	ColorWhite
	ColorBlue
	ColorGreen
	ColorYellow
	ColorBlack
	ColorSilver
	ColorRed
	ColorOrange
)

// Colors lists every named color in the order the admin screen offers them.
var Colors = []Color{
	ColorWhite,
	ColorBlue,
	ColorGreen,
	ColorYellow,
	ColorBlack,
	ColorSilver,
	ColorRed,
	ColorOrange,
}

// ParseColor maps a color name from the fleet API to a Color.
// Matching is case-insensitive; unknown names return ColorOther.
func ParseColor(name string) Color {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "white":
		return ColorWhite
	case "blue":
		return ColorBlue
	case "green":
		return ColorGreen
	case "yellow":
		return ColorYellow
	case "black":
		return ColorBlack
	case "silver":
		return ColorSilver
	case "red":
		return ColorRed
	case "orange":
		return ColorOrange
	default:
		return ColorOther
	}
}

// String returns the display name of the color.
func (c Color) String() string {
	switch c {
	case ColorWhite:
		return "White"
	case ColorBlue:
		return "Blue"
	case ColorGreen:
		return "Green"
	case ColorYellow:
		return "Yellow"
	case ColorBlack:
		return "Black"
	case ColorSilver:
		return "Silver"
	case ColorRed:
		return "Red"
	case ColorOrange:
		return "Orange"
	default:
		return "Other"
	}
}

// RGBA returns the fill color used for markers and legend swatches.
func (c Color) RGBA() color.RGBA {
	switch c {
	case ColorWhite:
		return color.RGBA{0xF5, 0xF5, 0xF5, 0xFF}
	case ColorBlue:
		return color.RGBA{0x3B, 0x82, 0xF6, 0xFF}
	case ColorGreen:
		return color.RGBA{0x10, 0xB9, 0x81, 0xFF}
	case ColorYellow:
		return color.RGBA{0xFB, 0xBF, 0x24, 0xFF}
	case ColorBlack:
		return color.RGBA{0x1F, 0x29, 0x37, 0xFF}
	case ColorSilver:
		return color.RGBA{0xD1, 0xD5, 0xDB, 0xFF}
	case ColorRed:
		return color.RGBA{0xEF, 0x44, 0x44, 0xFF}
	case ColorOrange:
		return color.RGBA{0xF9, 0x73, 0x16, 0xFF}
	default:
		return color.RGBA{0x99, 0x99, 0x99, 0xFF}
	}
}

// Hex returns the color as a #RRGGBB string.
func (c Color) Hex() string {
	rgba := c.RGBA()
	return fmt.Sprintf("#%02X%02X%02X", rgba.R, rgba.G, rgba.B)
}
