package vt48

import "github.com/kestrelterm/vt48/recognize"

// sgr walks a CSI ... m parameter list left to right and mutates the
// active cursor's pen, per spec.md 4.3.4. Unknown codes are skipped. A
// truncated or malformed 38/48 sub-sequence (no usable mode, or missing
// index or r/g/b) ends the walk: nothing from it, or from any parameter
// after it, is applied.
func (s *Screen) sgr(params []recognize.Param) {
	cur := s.activeCursorPtr()
	pen := &cur.Pen

	if len(params) == 0 {
		*pen = s.defaultPen()
		return
	}

	for i := 0; i < len(params); i++ {
		code := int(params[i].Resolve(0))
		switch {
		case code == 0:
			*pen = s.defaultPen()
		case code == 1:
			pen.Bold = true
		case code == 2:
			pen.Faint = true
		case code == 3:
			pen.Italic = true
		case code == 4:
			pen.Underline = true
			pen.UnderlineStyle = UnderlineSingle
		case code == 5 || code == 6:
			pen.Blink = true
		case code == 7:
			pen.Reverse = true
		case code == 9:
			pen.Strikethrough = true
		case code == 21:
			pen.UnderlineStyle = UnderlineDouble
		case code == 22:
			pen.Bold = false
			pen.Faint = false
		case code == 23:
			pen.Italic = false
		case code == 24:
			pen.Underline = false
			pen.UnderlineStyle = UnderlineNone
		case code == 25:
			pen.Blink = false
		case code == 27:
			pen.Reverse = false
		case code == 29:
			pen.Strikethrough = false
		case code >= 30 && code <= 37:
			pen.Foreground = StandardColor(uint8(code - 30))
		case code == 38:
			if c, consumed := s.sgrExtendedColor(params, i+1); consumed > 0 {
				pen.Foreground = c
				i += consumed
			} else {
				i = len(params)
			}
		case code == 39:
			pen.Foreground = DefaultForeground
		case code >= 40 && code <= 47:
			pen.Background = StandardColor(uint8(code - 40))
		case code == 48:
			if c, consumed := s.sgrExtendedColor(params, i+1); consumed > 0 {
				pen.Background = c
				i += consumed
			} else {
				i = len(params)
			}
		case code == 49:
			pen.Background = DefaultBackground
		case code >= 90 && code <= 97:
			pen.Foreground = StandardColor(uint8(code-90) + 8)
		case code >= 100 && code <= 107:
			pen.Background = StandardColor(uint8(code-100) + 8)
		}
		// Unrecognized codes fall through and are simply skipped.
	}
}

// sgrExtendedColor parses the 38/48 sub-sequence starting at index i
// (just past the 38 or 48 itself). It returns the resolved Color and how
// many further parameters it consumed, or consumed == 0 if the
// sub-sequence was truncated or malformed and nothing should apply.
func (s *Screen) sgrExtendedColor(params []recognize.Param, i int) (Color, int) {
	if i >= len(params) {
		return Color{}, 0
	}
	switch params[i].Resolve(0) {
	case 5:
		if i+1 >= len(params) {
			return Color{}, 0
		}
		idx := params[i+1].Resolve(0)
		return PaletteColor(uint8(idx)), 2
	case 2:
		if i+3 >= len(params) {
			return Color{}, 0
		}
		r := params[i+1].Resolve(0)
		g := params[i+2].Resolve(0)
		b := params[i+3].Resolve(0)
		return TrueColor(uint8(r), uint8(g), uint8(b)), 4
	default:
		return Color{}, 0
	}
}
