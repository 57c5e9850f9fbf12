package ui

import "github.com/gdamore/tcell/v2"

// Colors - Midnight Commander style
var (
	ColorBg        = tcell.NewRGBColor(0, 0, 128)     // Dark blue background
	ColorFg        = tcell.NewRGBColor(192, 192, 192) // Light gray text
	ColorBorder    = tcell.NewRGBColor(0, 255, 255)   // Cyan borders
	ColorTitle     = tcell.NewRGBColor(255, 255, 255) // White titles
	ColorHighlight = tcell.NewRGBColor(0, 255, 255)   // Cyan highlight
	ColorField     = tcell.NewRGBColor(0, 0, 64)      // Input field background
	ColorBar       = tcell.NewRGBColor(0, 128, 128)   // Status bar background
	ColorBackdrop  = tcell.NewRGBColor(64, 64, 64)    // Behind dialogs
)
