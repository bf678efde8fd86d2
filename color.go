// Package vt48 implements the terminal screen model: a grid of cells with
// a cursor, a primary and an alternate buffer, a bounded scrollback
// history, and the graphic-rendition state applied as recognize.Events
// are consumed.
package vt48

import "fmt"

// ColorType distinguishes how a Color should be interpreted.
type ColorType int

const (
	ColorDefault    ColorType = iota // terminal's default fg/bg
	ColorStandard                    // one of the 16 ANSI colors (Index 0-15)
	ColorPalette                     // 256-color palette entry (Index 0-255)
	ColorTrueColor                   // 24-bit RGB
)

// Color is a single cell's foreground or background color.
type Color struct {
	Type    ColorType
	Index   uint8 // valid for Standard and Palette
	R, G, B uint8 // valid for TrueColor
}

// DefaultForeground and DefaultBackground are the zero-value colors cells
// carry until an SGR sequence overrides them.
var (
	DefaultForeground = Color{Type: ColorDefault}
	DefaultBackground = Color{Type: ColorDefault}
)

// StandardColor builds a Color from one of the 16 ANSI indices (0-15).
func StandardColor(idx uint8) Color {
	return Color{Type: ColorStandard, Index: idx & 0x0F}
}

// PaletteColor builds a Color from a 256-color palette index.
func PaletteColor(idx uint8) Color {
	return Color{Type: ColorPalette, Index: idx}
}

// TrueColor builds a 24-bit RGB Color.
func TrueColor(r, g, b uint8) Color {
	return Color{Type: ColorTrueColor, R: r, G: g, B: b}
}

// IsDefault reports whether c is the unset terminal-default color.
func (c Color) IsDefault() bool {
	return c.Type == ColorDefault
}

// RGB is a concrete 8-bit-per-channel color, the resolved form a renderer
// ultimately wants regardless of how the Color was specified.
type RGB struct {
	R, G, B uint8
}

// ANSIColorsRGB is the standard 16-color ANSI table, dark then bright.
var ANSIColorsRGB = [16]RGB{
	{0, 0, 0}, {205, 0, 0}, {0, 205, 0}, {205, 205, 0},
	{0, 0, 238}, {205, 0, 205}, {0, 205, 205}, {229, 229, 229},
	{127, 127, 127}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
	{92, 92, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
}

// colorCubeLevels are the six intensity steps the 256-color palette's
// 6x6x6 cube (indices 16-231) uses; not a linear step, these six fixed
// values are what the terminal's extension to ECMA-48 actually defines.
var colorCubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

// Get256ColorRGB resolves a 256-color palette index (0-255) to RGB.
func Get256ColorRGB(idx uint8) RGB {
	switch {
	case idx < 16:
		return ANSIColorsRGB[idx]
	case idx < 232:
		n := int(idx) - 16
		r := n / 36
		g := (n / 6) % 6
		b := n % 6
		return RGB{colorCubeLevels[r], colorCubeLevels[g], colorCubeLevels[b]}
	default:
		level := uint8(8 + (int(idx)-232)*10)
		return RGB{level, level, level}
	}
}

// Resolve returns the concrete RGB value for c, given the fallback colors
// to use when c is the terminal default.
func (c Color) Resolve(defaultRGB RGB) RGB {
	switch c.Type {
	case ColorStandard:
		return ANSIColorsRGB[c.Index&0x0F]
	case ColorPalette:
		return Get256ColorRGB(c.Index)
	case ColorTrueColor:
		return RGB{c.R, c.G, c.B}
	default:
		return defaultRGB
	}
}

// ToHex renders an RGB value as a "#RRGGBB" string.
func (c RGB) ToHex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
