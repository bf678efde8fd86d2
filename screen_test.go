package vt48

import "testing"

func newTestScreen(rows, cols int) *Screen {
	cfg := DefaultConfig()
	cfg.Rows, cfg.Cols = rows, cols
	return New(cfg)
}

func cellAt(s *Screen, row, col int) Cell {
	return s.activeGrid()[row-1][col-1]
}

func TestPlainTextAdvancesCursor(t *testing.T) {
	s := newTestScreen(24, 80)
	s.Write([]byte("ABC"))
	if cellAt(s, 1, 1).Char != 'A' || cellAt(s, 1, 2).Char != 'B' || cellAt(s, 1, 3).Char != 'C' {
		t.Fatalf("cells = %q %q %q", cellAt(s, 1, 1).Char, cellAt(s, 1, 2).Char, cellAt(s, 1, 3).Char)
	}
	if s.cursor.Row != 1 || s.cursor.Col != 4 {
		t.Fatalf("cursor = (%d,%d)", s.cursor.Row, s.cursor.Col)
	}
}

func TestCUPMovesCursor(t *testing.T) {
	s := newTestScreen(24, 80)
	s.Write([]byte("\x1b[3;7H"))
	if s.cursor.Row != 3 || s.cursor.Col != 7 {
		t.Fatalf("cursor = (%d,%d)", s.cursor.Row, s.cursor.Col)
	}
}

func TestMultiByteCharWrites(t *testing.T) {
	s := newTestScreen(24, 80)
	s.Write([]byte{0xF0, 0x9F, 0x98, 0x80}) // U+1F600, wide
	if cellAt(s, 1, 1).Char != 0x1F600 {
		t.Fatalf("cell = %U", cellAt(s, 1, 1).Char)
	}
	if !cellAt(s, 1, 1).Wide {
		t.Fatal("emoji cell not marked wide")
	}
	if s.cursor.Col != 3 {
		t.Fatalf("cursor col = %d, want 3 (advance by 2)", s.cursor.Col)
	}
}

func TestInvalidLeadEmitsReplacementThenContinues(t *testing.T) {
	s := newTestScreen(24, 80)
	s.Write([]byte{0xC0, 'A'})
	if cellAt(s, 1, 1).Char != ReplacementRune {
		t.Fatalf("cell 1 = %U, want replacement", cellAt(s, 1, 1).Char)
	}
	if cellAt(s, 1, 2).Char != 'A' {
		t.Fatalf("cell 2 = %q", cellAt(s, 1, 2).Char)
	}
}

func TestCSIParamOverflowEmitsNoControl(t *testing.T) {
	s := newTestScreen(24, 80)
	s.Write([]byte("\x1b[999999m"))
	// Pen must remain the default; the malformed SGR never applied.
	if s.cursor.Pen != s.defaultPen() {
		t.Fatalf("pen mutated by overflowing SGR: %+v", s.cursor.Pen)
	}
}

func TestOSCDoesNotCorruptScreen(t *testing.T) {
	s := newTestScreen(24, 80)
	s.Write([]byte("\x1b]0;hi\x1b\\X"))
	if cellAt(s, 1, 1).Char != 'X' {
		t.Fatalf("cell = %q, OSC payload leaked into the grid", cellAt(s, 1, 1).Char)
	}
}

func TestEDClearsFromCursorToEnd(t *testing.T) {
	s := newTestScreen(2, 5)
	s.Write([]byte("ABCDE"))
	s.Write([]byte("\x1b[1;3H\x1b[0J"))
	if cellAt(s, 1, 3).State != CellEmpty {
		t.Fatalf("cell 3 state = %v, want empty", cellAt(s, 1, 3).State)
	}
	if cellAt(s, 1, 1).Char != 'A' || cellAt(s, 1, 2).Char != 'B' {
		t.Fatal("ED 0 erased cells before the cursor")
	}
}

func TestLineFeedScrollsAtBottomRetiringToHistory(t *testing.T) {
	s := newTestScreen(2, 5)
	s.Write([]byte("AAAAA\r\n"))
	s.Write([]byte("BBBBB"))
	s.Write([]byte("\n")) // cursor sits on the bottom margin: retires row 1 ("AAAAA")
	if len(s.history) != 1 {
		t.Fatalf("history len = %d, want 1", len(s.history))
	}
	if s.history[0][0].Char != 'A' {
		t.Fatalf("retired line = %q", s.history[0][0].Char)
	}
}

func TestAlternateScreenIsolatesHistory(t *testing.T) {
	s := newTestScreen(2, 5)
	s.Write([]byte("\x1b[?1049h")) // enter alt
	s.Write([]byte("AAAAA\nBBBBB\nCCCCC\n"))
	if len(s.history) != 0 {
		t.Fatalf("history len = %d, want 0 while in alternate buffer", len(s.history))
	}
	s.Write([]byte("\x1b[?1049l")) // exit alt
	if s.isAlternate {
		t.Fatal("still alternate after RM 1049")
	}
}

func TestSGRSetsForegroundColor(t *testing.T) {
	s := newTestScreen(24, 80)
	s.Write([]byte("\x1b[31mX"))
	cell := cellAt(s, 1, 1)
	if cell.Foreground.Type != ColorStandard || cell.Foreground.Index != 1 {
		t.Fatalf("foreground = %+v", cell.Foreground)
	}
}

func TestSGRTrueColor(t *testing.T) {
	s := newTestScreen(24, 80)
	s.Write([]byte("\x1b[38;2;10;20;30mX"))
	cell := cellAt(s, 1, 1)
	if cell.Foreground.Type != ColorTrueColor || cell.Foreground.R != 10 || cell.Foreground.G != 20 || cell.Foreground.B != 30 {
		t.Fatalf("foreground = %+v", cell.Foreground)
	}
}

func TestSGRResetClearsAttributes(t *testing.T) {
	s := newTestScreen(24, 80)
	s.Write([]byte("\x1b[1;31m"))
	s.Write([]byte("\x1b[0m"))
	if s.cursor.Pen != s.defaultPen() {
		t.Fatalf("pen after reset = %+v", s.cursor.Pen)
	}
}

func TestSCOSCAndSCORC(t *testing.T) {
	s := newTestScreen(24, 80)
	s.Write([]byte("\x1b[5;5H\x1b[s"))
	s.Write([]byte("\x1b[10;10H\x1b[u"))
	if s.cursor.Row != 5 || s.cursor.Col != 5 {
		t.Fatalf("cursor after restore = (%d,%d)", s.cursor.Row, s.cursor.Col)
	}
}

func TestSnapshotIsPure(t *testing.T) {
	s := newTestScreen(24, 80)
	s.Write([]byte("hello"))
	a := s.Snapshot(0, 24)
	b := s.Snapshot(0, 24)
	if len(a.Lines) != len(b.Lines) {
		t.Fatalf("snapshot lengths differ: %d vs %d", len(a.Lines), len(b.Lines))
	}
	for i := range a.Lines {
		for j := range a.Lines[i].Cells {
			if a.Lines[i].Cells[j] != b.Lines[i].Cells[j] {
				t.Fatalf("snapshot %d/%d differs between calls", i, j)
			}
		}
	}
}

func TestCursorNeverEscapesGrid(t *testing.T) {
	s := newTestScreen(3, 4)
	s.Write([]byte("\x1b[100;100H"))
	if s.cursor.Row != 3 || s.cursor.Col != 4 {
		t.Fatalf("cursor = (%d,%d), want clamped to (3,4)", s.cursor.Row, s.cursor.Col)
	}
	s.Write([]byte("\x1b[1;1H\x1b[100A"))
	if s.cursor.Row != 1 {
		t.Fatalf("CUU past top = row %d", s.cursor.Row)
	}
}

func TestCombiningMarkMergesIntoPreviousCell(t *testing.T) {
	s := newTestScreen(24, 80)
	s.Write([]byte("e"))
	s.Write([]byte{0xCC, 0x81}) // U+0301 COMBINING ACUTE ACCENT
	cell := cellAt(s, 1, 1)
	if cell.Char != 'e' || cell.Combining != "́" {
		t.Fatalf("cell = %+v", cell)
	}
	if s.cursor.Col != 2 {
		t.Fatalf("cursor col = %d, want 2 (combining mark must not advance)", s.cursor.Col)
	}
}
