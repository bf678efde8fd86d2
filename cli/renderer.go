package cli

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kestrelterm/vt48"
)

// Renderer turns vt48.Screen snapshots into ANSI output written to the
// host terminal, redrawing only the cells that changed since the last
// frame.
type Renderer struct {
	term *Terminal
	mu   sync.Mutex

	renderNeeded bool
	lastCells    [][]renderedCell
	renderTicker *time.Ticker

	output strings.Builder

	borderChars borderCharSet
}

// renderedCell stores the last rendered state of a cell for diffing.
type renderedCell struct {
	char          rune
	combining     string
	fg            vt48.Color
	bg            vt48.Color
	bold          bool
	italic        bool
	underline     bool
	reverse       bool
	blink         bool
	strikethrough bool
}

type borderCharSet struct {
	topLeft, topRight       rune
	bottomLeft, bottomRight rune
	horizontal, vertical    rune
	titleLeft, titleRight   rune
}

var borderStyles = map[BorderStyle]borderCharSet{
	BorderSingle: {
		topLeft: '┌', topRight: '┐', bottomLeft: '└', bottomRight: '┘',
		horizontal: '─', vertical: '│', titleLeft: '┤', titleRight: '├',
	},
	BorderDouble: {
		topLeft: '╔', topRight: '╗', bottomLeft: '╚', bottomRight: '╝',
		horizontal: '═', vertical: '║', titleLeft: '╡', titleRight: '╞',
	},
	BorderHeavy: {
		topLeft: '┏', topRight: '┓', bottomLeft: '┗', bottomRight: '┛',
		horizontal: '━', vertical: '┃', titleLeft: '┫', titleRight: '┣',
	},
	BorderRounded: {
		topLeft: '╭', topRight: '╮', bottomLeft: '╰', bottomRight: '╯',
		horizontal: '─', vertical: '│', titleLeft: '┤', titleRight: '├',
	},
}

// NewRenderer creates a renderer bound to term.
func NewRenderer(term *Terminal) *Renderer {
	r := &Renderer{term: term, renderNeeded: true}
	if term.options.BorderStyle != BorderNone {
		r.borderChars = borderStyles[term.options.BorderStyle]
	}
	return r
}

// RequestRender marks that a render is due on the next tick.
func (r *Renderer) RequestRender() {
	r.mu.Lock()
	r.renderNeeded = true
	r.mu.Unlock()
}

// ForceFullRedraw discards the diff cache so the next render is a full one.
func (r *Renderer) ForceFullRedraw() {
	r.mu.Lock()
	r.lastCells = nil
	r.renderNeeded = true
	r.mu.Unlock()
}

// NeedsRender reports whether a render is pending.
func (r *Renderer) NeedsRender() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renderNeeded
}

// RenderLoop renders at up to ~60fps, only when a render has been requested.
func (r *Renderer) RenderLoop() {
	r.renderTicker = time.NewTicker(16 * time.Millisecond)
	defer r.renderTicker.Stop()

	for {
		select {
		case <-r.renderTicker.C:
			r.mu.Lock()
			needsRender := r.renderNeeded
			r.renderNeeded = false
			r.mu.Unlock()
			if needsRender {
				r.Render()
			}
		case <-r.term.stopRender:
			return
		}
	}
}

// Render performs a full or differential render of the terminal's
// current viewport.
func (r *Renderer) Render() {
	r.term.mu.Lock()
	opts := r.term.options
	screen := r.term.screen
	viewOffset := r.term.viewOffset
	r.term.mu.Unlock()

	cols, rows := opts.Cols, opts.Rows
	extent := screen.Extent()

	end := extent - viewOffset
	if end > extent {
		end = extent
	}
	start := end - rows
	if start < 0 {
		start = 0
	}
	snap := screen.Snapshot(start, end)

	startX, startY := opts.OffsetX, opts.OffsetY
	contentStartX, contentStartY := startX, startY
	if opts.BorderStyle != BorderNone {
		contentStartX++
		contentStartY++
	}

	r.output.Reset()
	r.output.WriteString("\033[?25l")

	if opts.BorderStyle != BorderNone {
		r.renderBorder(startX, startY, cols, rows, opts.Title, viewOffset)
	}

	prevCells := r.lastCells
	needsFullRender := prevCells == nil || len(prevCells) != rows

	newCells := make([][]renderedCell, rows)
	for y := range newCells {
		newCells[y] = make([]renderedCell, cols)
	}

	var currentFg, currentBg vt48.Color
	currentBold, currentItalic, currentUnderline := false, false, false
	currentReverse, currentBlink, currentStrike := false, false, false
	firstAttr := true

	for y := 0; y < rows; y++ {
		// snap.Lines is newest-first; the topmost screen row is the
		// last line in the window.
		lineIdx := len(snap.Lines) - 1 - y
		var cells []vt48.Cell
		if lineIdx >= 0 {
			cells = snap.Lines[lineIdx].Cells
		}

		rowChanged := needsFullRender
		if !needsFullRender && len(prevCells[y]) != cols {
			rowChanged = true
		}

		for x := 0; x < cols; x++ {
			var cell vt48.Cell
			if x < len(cells) {
				cell = cells[x]
			}

			// Wide continuation placeholder: nothing to draw, the
			// preceding cell already advanced the host cursor two
			// columns when it printed.
			if cell.State == vt48.CellFilled && cell.Char == 0 {
				newCells[y][x] = renderedCell{}
				continue
			}

			fg, bg := cell.Foreground, cell.Background
			if cell.Reverse {
				fg, bg = bg, fg
			}

			rendered := renderedCell{
				char: cell.Char, combining: cell.Combining,
				fg: fg, bg: bg,
				bold: cell.Bold, italic: cell.Italic, underline: cell.Underline,
				reverse: cell.Reverse, blink: cell.Blink, strikethrough: cell.Strikethrough,
			}
			newCells[y][x] = rendered

			if !rowChanged && prevCells[y][x] == rendered {
				continue
			}

			r.output.WriteString(fmt.Sprintf("\033[%d;%dH", contentStartY+y+1, contentStartX+x+1))

			var sgr []string
			needsReset := !firstAttr && ((currentBold && !cell.Bold) ||
				(currentItalic && !cell.Italic) ||
				(currentUnderline && !cell.Underline) ||
				(currentReverse && !cell.Reverse) ||
				(currentBlink && !cell.Blink) ||
				(currentStrike && !cell.Strikethrough))

			if needsReset || firstAttr {
				sgr = append(sgr, "0")
				currentBold, currentItalic, currentUnderline = false, false, false
				currentReverse, currentBlink, currentStrike = false, false, false
				currentFg, currentBg = vt48.Color{}, vt48.Color{}
			}
			firstAttr = false

			if cell.Bold && !currentBold {
				sgr = append(sgr, "1")
				currentBold = true
			}
			if cell.Italic && !currentItalic {
				sgr = append(sgr, "3")
				currentItalic = true
			}
			if cell.Underline && !currentUnderline {
				sgr = append(sgr, "4")
				currentUnderline = true
			}
			if cell.Blink && !currentBlink {
				sgr = append(sgr, "5")
				currentBlink = true
			}
			if cell.Strikethrough && !currentStrike {
				sgr = append(sgr, "9")
				currentStrike = true
			}
			if fg != currentFg {
				sgr = append(sgr, fgSGR(fg))
				currentFg = fg
			}
			if bg != currentBg {
				sgr = append(sgr, bgSGR(bg))
				currentBg = bg
			}

			if len(sgr) > 0 {
				r.output.WriteString("\033[")
				r.output.WriteString(strings.Join(sgr, ";"))
				r.output.WriteString("m")
			}

			if cell.Char == 0 || cell.Char == ' ' {
				r.output.WriteRune(' ')
			} else {
				r.output.WriteRune(cell.Char)
				if cell.Combining != "" {
					r.output.WriteString(cell.Combining)
				}
			}
		}
	}

	if opts.ShowStatusBar {
		r.renderStatusBar(startX, contentStartY+rows, cols, screen, viewOffset)
	}

	r.output.WriteString("\033[0m")

	if snap.CursorVisible && viewOffset == 0 {
		r.output.WriteString(fmt.Sprintf("\033[%d;%dH", contentStartY+snap.CursorRow, contentStartX+snap.CursorCol))
		r.output.WriteString("\033[?25h")
	}

	os.Stdout.WriteString(r.output.String())
	r.lastCells = newCells
}

// fgSGR and bgSGR render a vt48.Color as the SGR parameters that select
// it, inverting the dispatch table vt48's own sgr.go applies.
func fgSGR(c vt48.Color) string {
	switch c.Type {
	case vt48.ColorStandard:
		if c.Index < 8 {
			return fmt.Sprintf("%d", 30+int(c.Index))
		}
		return fmt.Sprintf("%d", 90+int(c.Index)-8)
	case vt48.ColorPalette:
		return fmt.Sprintf("38;5;%d", c.Index)
	case vt48.ColorTrueColor:
		return fmt.Sprintf("38;2;%d;%d;%d", c.R, c.G, c.B)
	default:
		return "39"
	}
}

func bgSGR(c vt48.Color) string {
	switch c.Type {
	case vt48.ColorStandard:
		if c.Index < 8 {
			return fmt.Sprintf("%d", 40+int(c.Index))
		}
		return fmt.Sprintf("%d", 100+int(c.Index)-8)
	case vt48.ColorPalette:
		return fmt.Sprintf("48;5;%d", c.Index)
	case vt48.ColorTrueColor:
		return fmt.Sprintf("48;2;%d;%d;%d", c.R, c.G, c.B)
	default:
		return "49"
	}
}

func (r *Renderer) renderBorder(x, y, innerCols, innerRows int, title string, viewOffset int) {
	bc := r.borderChars
	totalWidth := innerCols + 2

	r.output.WriteString(fmt.Sprintf("\033[%d;%dH", y+1, x+1))
	r.output.WriteString("\033[0m")
	r.output.WriteRune(bc.topLeft)

	if title != "" && len(title) < innerCols-4 {
		padding := (innerCols - len(title) - 2) / 2
		for i := 0; i < padding; i++ {
			r.output.WriteRune(bc.horizontal)
		}
		r.output.WriteRune(bc.titleRight)
		r.output.WriteString(" ")
		r.output.WriteString(title)
		r.output.WriteString(" ")
		r.output.WriteRune(bc.titleLeft)
		remaining := innerCols - padding - len(title) - 4
		for i := 0; i < remaining; i++ {
			r.output.WriteRune(bc.horizontal)
		}
	} else {
		for i := 0; i < innerCols; i++ {
			r.output.WriteRune(bc.horizontal)
		}
	}
	r.output.WriteRune(bc.topRight)

	for row := 0; row < innerRows; row++ {
		r.output.WriteString(fmt.Sprintf("\033[%d;%dH", y+row+2, x+1))
		r.output.WriteRune(bc.vertical)

		r.output.WriteString(fmt.Sprintf("\033[%d;%dH", y+row+2, x+totalWidth))
		if viewOffset > 0 {
			maxScroll := r.term.maxScrollOffset()
			if maxScroll > 0 {
				scrollPos := float64(maxScroll-viewOffset) / float64(maxScroll)
				thumbPos := int(scrollPos * float64(innerRows-1))
				if row == thumbPos {
					r.output.WriteString("\033[7m")
					r.output.WriteRune(bc.vertical)
					r.output.WriteString("\033[27m")
					continue
				}
			}
		}
		r.output.WriteRune(bc.vertical)
	}

	r.output.WriteString(fmt.Sprintf("\033[%d;%dH", y+innerRows+2, x+1))
	r.output.WriteRune(bc.bottomLeft)
	for i := 0; i < innerCols; i++ {
		r.output.WriteRune(bc.horizontal)
	}
	r.output.WriteRune(bc.bottomRight)
}

func (r *Renderer) renderStatusBar(x, y, width int, screen *vt48.Screen, viewOffset int) {
	r.output.WriteString(fmt.Sprintf("\033[%d;%dH", y+1, x+1))
	r.output.WriteString("\033[7m")

	snap := screen.Snapshot(0, screen.Extent())
	var status string
	if viewOffset > 0 {
		maxScroll := r.term.maxScrollOffset()
		percent := 100
		if maxScroll > 0 {
			percent = 100 - (viewOffset * 100 / maxScroll)
		}
		status = fmt.Sprintf(" [%d%%] Lines: %d | Cursor: %d,%d | Size: %dx%d ",
			percent, screen.Extent(), snap.CursorRow, snap.CursorCol, snap.Cols, snap.Rows)
	} else {
		status = fmt.Sprintf(" Lines: %d | Cursor: %d,%d | Size: %dx%d ",
			screen.Extent(), snap.CursorRow, snap.CursorCol, snap.Cols, snap.Rows)
	}

	if len(status) < width {
		status += strings.Repeat(" ", width-len(status))
	} else if len(status) > width {
		status = status[:width]
	}

	r.output.WriteString(status)
	r.output.WriteString("\033[27m")
}
