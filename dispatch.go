package vt48

import "github.com/kestrelterm/vt48/recognize"

// dispatchControl routes a recognized control function to its handler.
func (s *Screen) dispatchControl(c *recognize.Control) {
	switch c.Kind {
	case recognize.KindC0C1:
		s.handleC0C1(c.End)
	case recognize.KindEscape:
		s.handleEscape(c.End)
	case recognize.KindCSI:
		s.handleCSI(c)
	case recognize.KindString, recognize.KindSingleChar:
		// Control strings (OSC/DCS/PM/APC/SOS) and the single-character
		// introducer carry no core screen semantics; spec.md scopes
		// title-setting and similar side channels to the host layer.
	}
}

// handleC0C1 implements the special bytes of spec.md 4.3.2 that act
// outside the control-function dispatch table.
func (s *Screen) handleC0C1(b byte) {
	cur := s.activeCursorPtr()
	switch b {
	case 0x07: // BEL: no visual effect in the core.
	case 0x08: // BS
		if cur.Col > 1 {
			cur.Col--
		}
	case 0x09: // HT
		next := ((cur.Col - 1) / s.cfg.TabWidth + 1) * s.cfg.TabWidth + 1
		if next > s.cols {
			next = s.cols
		}
		cur.Col = next
	case 0x0A: // LF
		s.lineFeed()
	case 0x0D: // CR
		cur.Col = 1
	}
}

// handleEscape implements the plain (non-CSI) escape finals this repo
// gives screen semantics to: IND, NEL, RI, and DECSC/DECRC.
func (s *Screen) handleEscape(b byte) {
	switch b {
	case 'D':
		s.indexOp()
	case 'E':
		s.nextLineOp()
	case 'M':
		s.reverseIndexOp()
	case '7':
		s.saveCursor()
	case '8':
		s.restoreCursor()
	}
}

func (s *Screen) param(params []recognize.Param, i int, def uint16) int {
	if i < len(params) {
		return int(params[i].Resolve(def))
	}
	return int(def)
}

// paramMotion resolves a cursor-motion count parameter (CUU/CUD/CUF/CUB/
// CNL/CPL). Unlike param, an explicit 0 is preserved as "move by zero"
// rather than collapsed to def, matching recognize.rs's
// get_parameter_default: only an omitted parameter takes the default.
func (s *Screen) paramMotion(params []recognize.Param, i int, def uint16) int {
	if i < len(params) {
		pr := params[i]
		if pr.Default {
			return int(def)
		}
		return int(pr.Value)
	}
	return int(def)
}

func (s *Screen) handleCSI(c *recognize.Control) {
	params := c.Params
	p := func(i int, def uint16) int { return s.param(params, i, def) }
	pm := func(i int, def uint16) int { return s.paramMotion(params, i, def) }

	switch c.End {
	case 'A':
		s.cuu(pm(0, 1))
	case 'B':
		s.cud(pm(0, 1))
	case 'C':
		s.cuf(pm(0, 1))
	case 'D':
		s.cub(pm(0, 1))
	case 'E':
		s.cnl(pm(0, 1))
	case 'F':
		s.cpl(pm(0, 1))
	case 'G', '`':
		s.cha(p(0, 1))
	case 'H', 'f':
		s.cup(p(0, 1), p(1, 1))
	case 'J':
		s.ed(p(0, 0))
	case 'K':
		s.el(p(0, 0))
	case 'L':
		s.il(p(0, 1))
	case 'M':
		s.dl(p(0, 1))
	case 'P':
		s.dch(p(0, 1))
	case '@':
		s.ich(p(0, 1))
	case 'X':
		s.ech(p(0, 1))
	case 'm':
		s.sgr(params)
	case 's':
		if c.Private == 0 {
			s.saveCursor()
		}
	case 'u':
		if c.Private == 0 {
			s.restoreCursor()
		}
	case 'r':
		if c.Private == 0 {
			s.decstbm(p(0, 1), p(1, uint16(s.rows)))
		}
	case 'h':
		if c.Private == '?' {
			s.setPrivateModes(params, true)
		}
	case 'l':
		if c.Private == '?' {
			s.setPrivateModes(params, false)
		}
	}
	// Any other final byte (unknown SGR-adjacent or genuinely unsupported
	// dispatch): parsed but yields no screen change, per spec.md 7.
}

func (s *Screen) setPrivateModes(params []recognize.Param, enable bool) {
	for _, prm := range params {
		switch prm.Resolve(0) {
		case 7: // DECAWM
			s.autoWrap = enable
		case 25: // DECTCEM
			s.cursorVisible = enable
		case 1049:
			if enable {
				s.enterAlt()
			} else {
				s.exitAlt()
			}
		}
	}
}

// enterAlt is the side effect of SM 1049: swap to the alternate grid
// (clearing it) if not already there. The primary cursor is left
// exactly where it stood; it is never consulted again until RM 1049.
func (s *Screen) enterAlt() {
	if s.isAlternate {
		return
	}
	s.alternate = newGrid(s.rows, s.cols, s.altCursor.Pen)
	s.isAlternate = true
}

// exitAlt is the side effect of RM 1049: return to the primary grid if
// currently alternate. The primary grid's own cursor becomes active
// again, exactly where SM 1049 left it, since nothing moved it in the
// meantime; no separate copy of it is saved. The alternate cursor keeps
// its position for the next SM 1049.
func (s *Screen) exitAlt() {
	s.isAlternate = false
}

func (s *Screen) saveCursor() {
	cur := s.activeCursorPtr()
	cur.saved = savedCursor{Row: cur.Row, Col: cur.Col, Pen: cur.Pen}
	cur.hasSaved = true
}

func (s *Screen) restoreCursor() {
	cur := s.activeCursorPtr()
	if !cur.hasSaved {
		return
	}
	cur.Row, cur.Col, cur.Pen = cur.saved.Row, cur.saved.Col, cur.saved.Pen
}

// --- Cursor motion (spec.md 4.3.3) ---

func (s *Screen) cuu(n int) {
	cur := s.activeCursorPtr()
	cur.Row = maxInt(1, cur.Row-n)
}

func (s *Screen) cud(n int) {
	cur := s.activeCursorPtr()
	cur.Row = minInt(s.rows, cur.Row+n)
}

func (s *Screen) cuf(n int) {
	cur := s.activeCursorPtr()
	cur.Col = minInt(s.cols, cur.Col+n)
}

func (s *Screen) cub(n int) {
	cur := s.activeCursorPtr()
	cur.Col = maxInt(1, cur.Col-n)
}

func (s *Screen) cnl(n int) {
	cur := s.activeCursorPtr()
	cur.Col = 1
	cur.Row = minInt(s.rows, cur.Row+n)
}

func (s *Screen) cpl(n int) {
	cur := s.activeCursorPtr()
	cur.Col = 1
	cur.Row = maxInt(1, cur.Row-n)
}

func (s *Screen) cha(n int) {
	cur := s.activeCursorPtr()
	cur.Col = clampCol(n, s.cols)
}

func (s *Screen) cup(row, col int) {
	cur := s.activeCursorPtr()
	cur.Row = clampRow(row, s.rows)
	cur.Col = clampCol(col, s.cols)
}

func (s *Screen) decstbm(top, bottom int) {
	top = clampRow(top, s.rows)
	bottom = clampRow(bottom, s.rows)
	if top >= bottom {
		top, bottom = 1, s.rows
	}
	s.scrollTop, s.scrollBottom = top-1, bottom-1
	cur := s.activeCursorPtr()
	cur.Row, cur.Col = 1, 1
}

// --- Erase and line/character insert-delete ---

func (s *Screen) ed(mode int) {
	grid := s.activeGrid()
	cur := s.activeCursorPtr()
	switch mode {
	case 0:
		s.eraseRange(grid, cur.Row-1, cur.Col-1, s.rows-1, s.cols-1)
	case 1:
		s.eraseRange(grid, 0, 0, cur.Row-1, cur.Col-1)
	case 2:
		s.eraseRange(grid, 0, 0, s.rows-1, s.cols-1)
	}
}

func (s *Screen) el(mode int) {
	grid := s.activeGrid()
	cur := s.activeCursorPtr()
	row := cur.Row - 1
	switch mode {
	case 0:
		s.eraseRange(grid, row, cur.Col-1, row, s.cols-1)
	case 1:
		s.eraseRange(grid, row, 0, row, cur.Col-1)
	case 2:
		s.eraseRange(grid, row, 0, row, s.cols-1)
	}
}

func (s *Screen) eraseRange(grid [][]Cell, row0, col0, row1, col1 int) {
	blank := s.activeCursorPtr().Pen
	blank.State = CellEmpty
	for r := row0; r <= row1 && r < len(grid); r++ {
		startCol, endCol := 0, s.cols-1
		if r == row0 {
			startCol = col0
		}
		if r == row1 {
			endCol = col1
		}
		for c := startCol; c <= endCol && c < len(grid[r]); c++ {
			grid[r][c] = blank
		}
	}
}

func (s *Screen) ech(n int) {
	grid := s.activeGrid()
	cur := s.activeCursorPtr()
	row := cur.Row - 1
	end := minInt(s.cols, cur.Col-1+n)
	s.eraseRange(grid, row, cur.Col-1, row, end-1)
}

// il inserts n blank lines at the cursor row, within the active scroll
// region, pushing the region's bottom rows off (spec.md names DL; IL is
// its natural counterpart carried from the teacher's own dispatch).
func (s *Screen) il(n int) {
	grid := s.activeGrid()
	cur := s.activeCursorPtr()
	row := cur.Row - 1
	if row < s.scrollTop || row > s.scrollBottom {
		return
	}
	pen := cur.Pen
	for i := 0; i < n; i++ {
		copy(grid[row+1:s.scrollBottom+1], grid[row:s.scrollBottom])
		grid[row] = blankRow(s.cols, pen)
	}
	cur.Col = 1
}

func (s *Screen) dl(n int) {
	grid := s.activeGrid()
	cur := s.activeCursorPtr()
	row := cur.Row - 1
	if row < s.scrollTop || row > s.scrollBottom {
		return
	}
	pen := cur.Pen
	for i := 0; i < n; i++ {
		copy(grid[row:s.scrollBottom], grid[row+1:s.scrollBottom+1])
		grid[s.scrollBottom] = blankRow(s.cols, pen)
	}
	cur.Col = 1
}

func (s *Screen) ich(n int) {
	grid := s.activeGrid()
	cur := s.activeCursorPtr()
	row := cur.Row - 1
	col := cur.Col - 1
	if col >= s.cols {
		col = s.cols - 1
	}
	line := grid[row]
	pen := cur.Pen
	pen.State = CellEmpty
	for i := 0; i < n; i++ {
		copy(line[col+1:], line[col:len(line)-1])
		line[col] = pen
	}
}

func (s *Screen) dch(n int) {
	grid := s.activeGrid()
	cur := s.activeCursorPtr()
	row := cur.Row - 1
	col := cur.Col - 1
	if col >= s.cols {
		col = s.cols - 1
	}
	line := grid[row]
	pen := cur.Pen
	pen.State = CellEmpty
	for i := 0; i < n; i++ {
		copy(line[col:], line[col+1:])
		line[len(line)-1] = pen
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
