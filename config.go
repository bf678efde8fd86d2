package vt48

// Config is the configuration surface passed into New: initial
// dimensions and pen, plus the one behavioral knob spec.md leaves open.
// The core never mutates a Config after construction.
type Config struct {
	Rows, Cols int

	InitialForeground Color
	InitialBackground Color

	// TabWidth is fixed at 8 per spec; exposed here only so callers can
	// read it back, not to let them change terminal semantics.
	TabWidth int

	// HistoryLimit bounds the primary buffer's scrollback, in retired
	// lines. Zero means unbounded.
	HistoryLimit int

	// LFImpliesCR, when true, makes LF also reset the column to 1,
	// matching terminals configured for \n-only line endings. ECMA-48
	// itself treats LF as a pure row advance; this defaults to false.
	LFImpliesCR bool
}

// DefaultConfig returns a Config with conventional 80x24 dimensions,
// default colors, and a 10000-line history limit.
func DefaultConfig() Config {
	return Config{
		Rows:              24,
		Cols:              80,
		InitialForeground: DefaultForeground,
		InitialBackground: DefaultBackground,
		TabWidth:          8,
		HistoryLimit:      10000,
	}
}
