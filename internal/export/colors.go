package export

import (
	"fmt"
	"image/color"

	"climbprofile/internal/profile"
)

// classColors follows the usual cycling palette: green for easy, through
// orange and red, to black for the steepest ramps.
var classColors = map[profile.Class]color.RGBA{
	profile.Easy:     {R: 0x10, G: 0xB9, B: 0x81, A: 0xFF},
	profile.Moderate: {R: 0xF5, G: 0x9E, B: 0x0B, A: 0xFF},
	profile.Steep:    {R: 0xEF, G: 0x44, B: 0x44, A: 0xFF},

	profile.Descent:  {R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF},
	profile.Flat:     {R: 0x10, G: 0xB9, B: 0x81, A: 0xFF},
	profile.Rolling:  {R: 0xEA, G: 0xB3, B: 0x08, A: 0xFF},
	profile.Hard:     {R: 0xF9, G: 0x73, B: 0x16, A: 0xFF},
	profile.VeryHard: {R: 0xDC, G: 0x26, B: 0x26, A: 0xFF},
	profile.Extreme:  {R: 0x1F, G: 0x29, B: 0x37, A: 0xFF},
}

var lineColor = color.RGBA{R: 0x37, G: 0x41, B: 0x51, A: 0xFF}

// ClassColor returns the colour used for a gradient class
func ClassColor(c profile.Class) color.RGBA {
	if col, ok := classColors[c]; ok {
		return col
	}
	return lineColor
}

// hexColor renders a colour as #rrggbb
func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
