package vt48

// SnapshotLine is one rendered line of a Snapshot: its cells. The
// cursor's cell flag from spec.md 4.3.5 is conveyed once, at the
// Snapshot level, via CursorRow/CursorCol, rather than per line; it
// identifies exactly the same single cell, just addressed from outside
// the line instead of inside it.
type SnapshotLine struct {
	Cells []Cell
}

// Snapshot is a pure, point-in-time rendering of a window of the
// screen's visible line range, newest first, with the cursor position
// marked on the one cell it currently occupies (if displayable).
type Snapshot struct {
	Cols, Rows int
	Lines      []SnapshotLine

	CursorRow, CursorCol int
	CursorVisible        bool

	IsAlternate bool
}

// Extent returns the number of lines currently addressable by Snapshot:
// the live grid's row count, plus retired history when the primary
// buffer is active.
func (s *Screen) Extent() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := len(s.activeGrid())
	if !s.isAlternate {
		total += len(s.history)
	}
	return total
}

// Snapshot produces a rendering snapshot over the visible window
// [start, end) of the combined history+screen range, newest line first.
// It is a pure function of the current state: repeated calls with no
// intervening Write return identical results.
func (s *Screen) Snapshot(start, end int) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grid := s.activeGrid()
	total := len(grid)
	if !s.isAlternate {
		total += len(s.history)
	}

	if start < 0 {
		start = 0
	}
	if end > total {
		end = total
	}
	if end < start {
		end = start
	}

	out := Snapshot{
		Cols:          s.cols,
		Rows:          s.rows,
		CursorVisible: s.cursorVisible,
		IsAlternate:   s.isAlternate,
	}

	cur := s.activeCursor()
	out.CursorRow, out.CursorCol = cur.Row, cur.Col

	// Newest first: index 0 of the combined range is the oldest
	// retained history row (or the topmost live row, if there is no
	// history); walking backwards from `total` yields newest-first
	// order directly.
	for i := end - 1; i >= start; i-- {
		var row []Cell
		if !s.isAlternate && i < len(s.history) {
			row = s.history[i]
		} else {
			gridIdx := i
			if !s.isAlternate {
				gridIdx = i - len(s.history)
			}
			row = grid[gridIdx]
		}
		line := SnapshotLine{Cells: append([]Cell(nil), row...)}
		out.Lines = append(out.Lines, line)
	}

	return out
}
