package vt48

// UnderlineStyle records the underline variant of a cell. SGR 4 sets
// UnderlineSingle and SGR 21 sets UnderlineDouble; colon sub-parameters
// such as SGR 4:3 are not interpreted, so the curly, dotted and dashed
// styles are never set by the SGR handler.
type UnderlineStyle int

const (
	UnderlineNone UnderlineStyle = iota
	UnderlineSingle
	UnderlineDouble
	UnderlineCurly
	UnderlineDotted
	UnderlineDashed
)

// CellState is the lexical state of a Cell: whether it holds a complete
// code point, is mid-way through decoding one, or has never been
// written.
type CellState int

const (
	CellEmpty   CellState = iota // never written
	CellFilling                  // a multi-byte UTF-8 sequence is in progress; Screen never sets this, since runes reach the grid already decoded by its recognizer
	CellFilled                   // holds a complete, displayable code point
	CellInvalid                  // holds a replacement character
)

// Cell is one position in the screen grid.
type Cell struct {
	State CellState
	Char  rune

	// Combining holds zero-width combining marks appended after Char,
	// for code points that modify the glyph in the previous cell rather
	// than occupying one of their own.
	Combining string

	Foreground Color
	Background Color

	Bold          bool
	Faint         bool
	Italic        bool
	Underline     bool
	UnderlineStyle UnderlineStyle
	Reverse       bool
	Blink         bool
	Strikethrough bool

	// Wide marks a cell occupied by the leading column of a double-width
	// East Asian character; the following cell is a Wide continuation
	// with an empty Char, never written to directly.
	Wide bool
}

// Reset clears c back to an empty cell carrying the given pen attributes,
// the state every newly exposed or erased cell is put into.
func (c *Cell) Reset(pen Cell) {
	*c = pen
	c.State = CellEmpty
	c.Char = 0
	c.Combining = ""
	c.Wide = false
}

// IsCombiningMark reports whether r is a zero-width combining mark that
// should be appended to the previous cell instead of starting a new one.
func IsCombiningMark(r rune) bool {
	switch {
	case r >= 0x0300 && r <= 0x036F: // Combining Diacritical Marks
		return true
	case r >= 0x1AB0 && r <= 0x1AFF: // Combining Diacritical Marks Extended
		return true
	case r >= 0x1DC0 && r <= 0x1DFF: // Combining Diacritical Marks Supplement
		return true
	case r >= 0x20D0 && r <= 0x20FF: // Combining Diacritical Marks for Symbols
		return true
	case r >= 0xFE20 && r <= 0xFE2F: // Combining Half Marks
		return true
	case r >= 0x0591 && r <= 0x05BD: // Hebrew points
		return true
	case r == 0x05BF || r == 0x05C1 || r == 0x05C2 || r == 0x05C4 || r == 0x05C5 || r == 0x05C7:
		return true
	case r >= 0x0610 && r <= 0x061A: // Arabic marks
		return true
	case r >= 0x064B && r <= 0x065F:
		return true
	case r == 0x0670:
		return true
	case r >= 0x06D6 && r <= 0x06DC:
		return true
	case r >= 0x06DF && r <= 0x06E4:
		return true
	case r == 0x06E7 || r == 0x06E8:
		return true
	case r >= 0x06EA && r <= 0x06ED:
		return true
	case r >= 0x0E31 && r <= 0x0E3A: // Thai marks
		return true
	case r >= 0x0E47 && r <= 0x0E4E:
		return true
	case r >= 0x0900 && r <= 0x0902: // Devanagari vowel signs
		return true
	case r == 0x093A || r == 0x093C:
		return true
	case r >= 0x0941 && r <= 0x0948:
		return true
	case r == 0x094D:
		return true
	case r >= 0x0951 && r <= 0x0957:
		return true
	case r >= 0x0962 && r <= 0x0963:
		return true
	case r >= 0x0981 && r <= 0x0983: // Bengali vowel signs
		return true
	case r >= 0x11A8 && r <= 0x11FF: // Hangul Jongseong
		return true
	case r >= 0x1160 && r <= 0x11A7: // Hangul Jungseong
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r == 0x200D: // ZWJ
		return true
	case r == 0x200C: // ZWNJ
		return true
	default:
		return false
	}
}

// RuneWidth returns the number of columns r occupies: 0 for combining
// marks (the writer merges them into the previous cell before measuring
// anything), 1 for ordinary characters, 2 for characters classified Wide
// or Fullwidth by East Asian Width.
func RuneWidth(r rune) int {
	if IsCombiningMark(r) {
		return 0
	}
	if isWideEastAsian(r) {
		return 2
	}
	return 1
}

// isWideEastAsian reports whether r falls in one of the principal Wide or
// Fullwidth East Asian Width ranges (Unicode 15.0). This is a coverage
// subset sufficient for CJK text and emoji; it is not exhaustive.
func isWideEastAsian(r rune) bool {
	switch {
	case r >= 0x1100 && r <= 0x115F: // Hangul Jamo
		return true
	case r >= 0x2E80 && r <= 0x303E: // CJK Radicals..CJK Symbols and Punctuation
		return true
	case r >= 0x3041 && r <= 0x33FF: // Hiragana..CJK Compatibility
		return true
	case r >= 0x3400 && r <= 0x4DBF: // CJK Extension A
		return true
	case r >= 0x4E00 && r <= 0x9FFF: // CJK Unified Ideographs
		return true
	case r >= 0xA000 && r <= 0xA4CF: // Yi
		return true
	case r >= 0xAC00 && r <= 0xD7A3: // Hangul Syllables
		return true
	case r >= 0xF900 && r <= 0xFAFF: // CJK Compatibility Ideographs
		return true
	case r >= 0xFF00 && r <= 0xFF60: // Fullwidth forms
		return true
	case r >= 0xFFE0 && r <= 0xFFE6: // Fullwidth signs
		return true
	case r >= 0x20000 && r <= 0x3FFFD: // CJK extensions B-G, supplement
		return true
	case r >= 0x1F300 && r <= 0x1FAFF: // emoji blocks
		return true
	default:
		return false
	}
}
