package vt48

import (
	"sync"

	"github.com/kestrelterm/vt48/recognize"
)

// Screen is a terminal's grid of cells: a primary and an alternate
// buffer, a cursor for each, a bounded scrollback history (primary
// only), and the graphic-rendition state applied as recognize.Events
// are consumed. Screen guards every method with a sync.RWMutex,
// following the teacher's own Buffer, because it is routinely shared
// between an input-pumping goroutine and a rendering goroutine; callers
// are still expected to serialize logically related operations
// themselves (spec.md's single-threaded-per-terminal ownership model).
type Screen struct {
	mu sync.RWMutex

	cols, rows int

	primary   [][]Cell
	alternate [][]Cell
	history   [][]Cell

	cursor    Cursor
	altCursor Cursor

	isAlternate   bool
	cursorVisible bool
	autoWrap      bool

	scrollTop, scrollBottom int // 0-based, inclusive

	rec recognize.Recognizer

	// ID links this screen to its owning terminal; set once by the host
	// (e.g. cmd/vtdemo stamps a google/uuid session identifier here).
	ID string

	cfg Config
}

// ReplacementRune is the code point substituted for malformed input,
// re-exported from recognize for callers that only import vt48.
const ReplacementRune = recognize.ReplacementChar

// New constructs a Screen with the given configuration.
func New(cfg Config) *Screen {
	if cfg.Rows <= 0 {
		cfg.Rows = 24
	}
	if cfg.Cols <= 0 {
		cfg.Cols = 80
	}
	cfg.TabWidth = 8
	s := &Screen{
		cols:          cfg.Cols,
		rows:          cfg.Rows,
		cursorVisible: true,
		autoWrap:      true,
		cfg:           cfg,
	}
	s.cursor = Cursor{Row: 1, Col: 1, Pen: s.defaultPen()}
	s.altCursor = Cursor{Row: 1, Col: 1, Pen: s.defaultPen()}
	s.scrollBottom = s.rows - 1
	s.primary = newGrid(s.rows, s.cols, s.cursor.Pen)
	s.alternate = newGrid(s.rows, s.cols, s.cursor.Pen)
	return s
}

func (s *Screen) defaultPen() Cell {
	return Cell{Foreground: s.cfg.InitialForeground, Background: s.cfg.InitialBackground}
}

func newGrid(rows, cols int, pen Cell) [][]Cell {
	g := make([][]Cell, rows)
	for i := range g {
		g[i] = blankRow(cols, pen)
	}
	return g
}

func blankRow(cols int, pen Cell) []Cell {
	row := make([]Cell, cols)
	for i := range row {
		row[i] = pen
		row[i].State = CellEmpty
	}
	return row
}

func (s *Screen) activeGrid() [][]Cell {
	if s.isAlternate {
		return s.alternate
	}
	return s.primary
}

func (s *Screen) activeCursorPtr() *Cursor {
	if s.isAlternate {
		return &s.altCursor
	}
	return &s.cursor
}

func (s *Screen) activeCursor() Cursor {
	return *s.activeCursorPtr()
}

// Write decodes bytes through the recognizer and applies the resulting
// events to the screen. It is the sole entry point bytes enter through.
func (s *Screen) Write(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range data {
		s.apply(s.rec.Feed(b))
	}
}

func (s *Screen) apply(ev recognize.Event) {
	switch ev.Kind {
	case recognize.EventContinue:
	case recognize.EventChar:
		s.writeRune(ev.Char)
	case recognize.EventSyncChar:
		s.writeRune(recognize.ReplacementChar)
		s.writeRune(ev.Char)
	case recognize.EventControl:
		s.dispatchControl(ev.Control)
	case recognize.EventSyncControl:
		s.writeRune(recognize.ReplacementChar)
		s.dispatchControl(ev.Control)
	}
}

// writeRune places one decoded code point at the cursor, advancing it
// and wrapping or scrolling as needed. Combining marks merge into the
// cell that precedes them instead of occupying one of their own.
func (s *Screen) writeRune(r rune) {
	if IsCombiningMark(r) {
		s.appendCombining(r)
		return
	}

	cur := s.activeCursorPtr()
	if cur.Col > s.cols {
		if s.autoWrap {
			s.nextLineOp()
		} else {
			cur.Col = s.cols
		}
	}

	width := RuneWidth(r)
	grid := s.activeGrid()
	row0, col0 := cur.Row-1, cur.Col-1

	cell := cur.Pen
	cell.State = CellFilled
	if r == ReplacementRune {
		cell.State = CellInvalid
	}
	cell.Char = r
	cell.Wide = width == 2
	grid[row0][col0] = cell
	if width == 2 && col0+1 < s.cols {
		grid[row0][col0+1] = Cell{State: CellFilled}
	}

	cur.Col += width
}

func (s *Screen) appendCombining(r rune) {
	cur := s.activeCursorPtr()
	grid := s.activeGrid()
	row0 := cur.Row - 1
	col0 := cur.Col - 2
	if col0 < 0 {
		col0 = 0
	}
	if col0 < s.cols {
		grid[row0][col0].Combining += string(r)
	}
}

// indexOp is IND (ESC D): advance the row, scrolling the active region
// if the cursor sits on its bottom margin. Column is left untouched.
func (s *Screen) indexOp() {
	cur := s.activeCursorPtr()
	if cur.Row-1 == s.scrollBottom {
		s.scrollRegionUp(1)
	} else if cur.Row < s.rows {
		cur.Row++
	}
}

// nextLineOp is NEL (ESC E): index, then return to column 1. Also used
// internally as the autowrap line-advance.
func (s *Screen) nextLineOp() {
	s.indexOp()
	s.activeCursorPtr().Col = 1
}

// reverseIndexOp is RI (ESC M): retreat the row, scrolling the active
// region downward if the cursor sits on its top margin.
func (s *Screen) reverseIndexOp() {
	cur := s.activeCursorPtr()
	if cur.Row-1 == s.scrollTop {
		s.scrollRegionDown(1)
	} else if cur.Row > 1 {
		cur.Row--
	}
}

// lineFeed is LF (0x0A): index, plus an optional column reset controlled
// by Config.LFImpliesCR.
func (s *Screen) lineFeed() {
	s.indexOp()
	if s.cfg.LFImpliesCR {
		s.activeCursorPtr().Col = 1
	}
}

// scrollRegionUp shifts n lines of the active scroll region upward,
// retiring the region's top row. Only when the region's top is the
// screen's first row and the primary buffer is active does the retired
// row join history — per spec.md invariant 7, a scroll within the
// alternate buffer never touches history.
func (s *Screen) scrollRegionUp(n int) {
	grid := s.activeGrid()
	top, bottom := s.scrollTop, s.scrollBottom
	pen := s.activeCursorPtr().Pen
	for i := 0; i < n; i++ {
		if !s.isAlternate && top == 0 {
			s.retireToHistory(grid[top])
		}
		copy(grid[top:bottom+1], grid[top+1:bottom+1])
		grid[bottom] = blankRow(s.cols, pen)
	}
}

// scrollRegionDown shifts n lines of the active scroll region downward,
// discarding the row that falls off the region's bottom. Never touches
// history; history only grows from lines leaving the top of the screen
// going forward in time, not from a reverse scroll reintroducing blanks.
func (s *Screen) scrollRegionDown(n int) {
	grid := s.activeGrid()
	top, bottom := s.scrollTop, s.scrollBottom
	pen := s.activeCursorPtr().Pen
	for i := 0; i < n; i++ {
		copy(grid[top+1:bottom+1], grid[top:bottom])
		grid[top] = blankRow(s.cols, pen)
	}
}

func (s *Screen) retireToHistory(line []Cell) {
	cp := append([]Cell(nil), line...)
	s.history = append(s.history, cp)
	if s.cfg.HistoryLimit > 0 && len(s.history) > s.cfg.HistoryLimit {
		s.history = s.history[len(s.history)-s.cfg.HistoryLimit:]
	}
}

// Resize updates the screen's dimensions. Existing content is preserved
// to the minimum of the old and new extents; history is left untouched.
func (s *Screen) Resize(rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rows <= 0 || cols <= 0 {
		return
	}
	s.primary = resizeGrid(s.primary, rows, cols, s.cursor.Pen)
	s.alternate = resizeGrid(s.alternate, rows, cols, s.altCursor.Pen)
	s.rows, s.cols = rows, cols
	s.scrollTop, s.scrollBottom = 0, rows-1
	s.cursor.Row = clampRow(s.cursor.Row, rows)
	s.cursor.Col = clampCol(s.cursor.Col, cols)
	s.altCursor.Row = clampRow(s.altCursor.Row, rows)
	s.altCursor.Col = clampCol(s.altCursor.Col, cols)
}

func resizeGrid(old [][]Cell, rows, cols int, pen Cell) [][]Cell {
	next := newGrid(rows, cols, pen)
	for r := 0; r < len(old) && r < rows; r++ {
		copy(next[r], old[r])
	}
	return next
}
