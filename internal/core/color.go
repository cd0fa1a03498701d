package core

// Color represents a foreground color for a screen cell.
// The platform maps it to ANSI 256-color codes.
type Color uint8

// Colors used by frames. Each tetromino has its guideline color.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightWhite
	ColorOrange
	ColorGray
	ColorDarkGray
)

// Colors lists every defined color.
var Colors = []Color{
	ColorDefault, ColorRed, ColorGreen, ColorYellow, ColorBlue, ColorMagenta,
	ColorCyan, ColorWhite, ColorBrightWhite, ColorOrange, ColorGray, ColorDarkGray,
}
