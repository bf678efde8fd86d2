package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/kestrelterm/vt48"
)

// BorderStyle defines the visual style for the terminal window border.
type BorderStyle int

const (
	BorderNone    BorderStyle = iota // no border
	BorderSingle                     // single-line box drawing characters
	BorderDouble                     // double-line box drawing characters
	BorderHeavy                      // heavy/thick box drawing characters
	BorderRounded                    // rounded corners (single line)
)

// Options configures terminal creation.
type Options struct {
	Cols         int // terminal width in columns (default: auto-detect or 80)
	Rows         int // terminal height in rows (default: auto-detect or 24)
	HistoryLimit int // scrollback lines retained (default: 10000)
	Shell        string
	WorkingDir   string

	InitialForeground vt48.Color
	InitialBackground vt48.Color
	LFImpliesCR       bool

	BorderStyle   BorderStyle
	Title         string
	OffsetX       int
	OffsetY       int
	AutoSize      bool
	ShowStatusBar bool

	// Embedded, when true, suppresses raw-mode/alt-screen setup, the
	// SIGWINCH handler and the terminal's own input loop; a host
	// application drives input itself (Feed, Write). Start still runs the
	// render loop, which draws to stdout.
	Embedded bool
}

// Terminal is a complete terminal emulator running within a CLI terminal:
// a vt48.Screen driven by a pseudoterminal's output, rendered back to the
// host terminal, with the host's raw-mode stdin copied to the child.
type Terminal struct {
	mu sync.Mutex

	screen  *vt48.Screen
	ptyFile *os.File
	cmd     *exec.Cmd
	options Options

	renderer *Renderer
	input    *InputHandler

	viewOffset int // scrollback position: 0 == live bottom

	running    bool
	done       chan struct{}
	stopRender chan struct{}

	oldState *term.State

	hostCols, hostRows int

	onExit   func(int)
	onResize func(cols, rows int)

	inputCallback func([]byte) bool
}

// New creates a new CLI terminal emulator.
func New(opts Options) (*Terminal, error) {
	if opts.Cols <= 0 {
		opts.Cols = 80
	}
	if opts.Rows <= 0 {
		opts.Rows = 24
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 10000
	}
	if opts.Shell == "" {
		opts.Shell = os.Getenv("SHELL")
		if opts.Shell == "" {
			opts.Shell = "/bin/sh"
		}
	}
	if opts.WorkingDir == "" {
		opts.WorkingDir, _ = os.Getwd()
	}

	hostCols, hostRows := getHostTerminalSize()
	if opts.AutoSize {
		opts.Cols, opts.Rows = fitInnerSize(opts, hostCols, hostRows)
	}

	cfg := vt48.DefaultConfig()
	cfg.Cols, cfg.Rows = opts.Cols, opts.Rows
	cfg.HistoryLimit = opts.HistoryLimit
	cfg.LFImpliesCR = opts.LFImpliesCR
	if !opts.InitialForeground.IsDefault() {
		cfg.InitialForeground = opts.InitialForeground
	}
	if !opts.InitialBackground.IsDefault() {
		cfg.InitialBackground = opts.InitialBackground
	}

	t := &Terminal{
		screen:     vt48.New(cfg),
		options:    opts,
		done:       make(chan struct{}),
		stopRender: make(chan struct{}),
		hostCols:   hostCols,
		hostRows:   hostRows,
	}
	t.renderer = NewRenderer(t)
	t.input = NewInputHandler(t)

	return t, nil
}

// Screen returns the terminal's screen model, for callers (such as
// cmd/vtdemo) that need to stamp an identifier on it or stream snapshots.
func (t *Terminal) Screen() *vt48.Screen {
	return t.screen
}

func fitInnerSize(opts Options, hostCols, hostRows int) (cols, rows int) {
	borderOffset := 0
	if opts.BorderStyle != BorderNone {
		borderOffset = 2
	}
	statusOffset := 0
	if opts.ShowStatusBar {
		statusOffset = 1
	}
	cols = hostCols - opts.OffsetX*2 - borderOffset
	rows = hostRows - opts.OffsetY*2 - borderOffset - statusOffset
	if cols < 20 {
		cols = 20
	}
	if rows < 5 {
		rows = 5
	}
	return cols, rows
}

func getHostTerminalSize() (cols, rows int) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80, 24
	}
	return cols, rows
}

// Start enters raw mode, switches to the alternate screen, and starts the
// input and render loops. In embedded mode it only starts the render
// loop; the host is responsible for raw mode and for calling Feed.
func (t *Terminal) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.options.Embedded {
		oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to enter raw mode: %w", err)
		}
		t.oldState = oldState

		fmt.Print("\033[?25l")     // hide host cursor
		fmt.Print("\033[?1049h")   // alternate screen
		fmt.Print("\033[2J\033[H") // clear

		go t.handleSIGWINCH()
		go t.input.InputLoop()
	}

	go t.renderer.RenderLoop()

	return nil
}

func (t *Terminal) handleSIGWINCH() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGWINCH)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			t.handleResize()
		case <-t.done:
			return
		}
	}
}

func (t *Terminal) handleResize() {
	t.mu.Lock()
	defer t.mu.Unlock()

	newCols, newRows := getHostTerminalSize()
	if newCols == t.hostCols && newRows == t.hostRows {
		return
	}
	t.hostCols, t.hostRows = newCols, newRows

	if t.options.AutoSize {
		cols, rows := fitInnerSize(t.options, newCols, newRows)
		t.screen.Resize(rows, cols)
		if t.ptyFile != nil {
			pty.Setsize(t.ptyFile, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
		}
		t.options.Cols, t.options.Rows = cols, rows
	}

	t.renderer.ForceFullRedraw()
	if t.onResize != nil {
		t.onResize(t.options.Cols, t.options.Rows)
	}
}

// RunShell starts the configured shell in the terminal.
func (t *Terminal) RunShell() error {
	return t.RunCommand(t.options.Shell)
}

// RunCommand runs a command under a pseudoterminal, its output feeding
// the screen and its pseudoterminal fed by the host's raw-mode stdin.
func (t *Terminal) RunCommand(name string, args ...string) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return fmt.Errorf("command already running")
	}
	t.done = make(chan struct{})
	t.mu.Unlock()

	cmd := exec.Command(name, args...)
	cmd.Dir = t.options.WorkingDir
	cmd.Env = append(os.Environ(), "TERM=xterm-256color", "COLORTERM=truecolor")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: uint16(t.options.Cols),
		Rows: uint16(t.options.Rows),
	})
	if err != nil {
		return fmt.Errorf("failed to start pty: %w", err)
	}

	t.mu.Lock()
	t.ptyFile = ptmx
	t.cmd = cmd
	t.running = true
	t.mu.Unlock()

	go t.readLoop()

	go func() {
		exitCode := 0
		if err := cmd.Wait(); err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				exitCode = exitErr.ExitCode()
			}
		}
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()

		if t.onExit != nil {
			t.onExit(exitCode)
		}
		close(t.done)
	}()

	return nil
}

// readLoop copies pseudoterminal output into the screen until it closes.
func (t *Terminal) readLoop() {
	buf := make([]byte, 4096)
	for {
		t.mu.Lock()
		ptmx := t.ptyFile
		running := t.running
		t.mu.Unlock()
		if !running || ptmx == nil {
			return
		}

		n, err := ptmx.Read(buf)
		if n > 0 {
			t.screen.Write(buf[:n])
			t.renderer.RequestRender()
		}
		if err != nil {
			return
		}
	}
}

// Feed writes data directly into the screen, bypassing the pseudoterminal.
func (t *Terminal) Feed(data []byte) {
	t.screen.Write(data)
	t.renderer.RequestRender()
}

// Write sends data to the pseudoterminal (input to the child process).
func (t *Terminal) Write(data []byte) (int, error) {
	t.mu.Lock()
	ptmx := t.ptyFile
	t.mu.Unlock()
	if ptmx == nil {
		return 0, nil
	}
	return ptmx.Write(data)
}

// Resize resizes the screen and, if running, the pseudoterminal.
func (t *Terminal) Resize(cols, rows int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Resize(rows, cols)
	t.options.Cols, t.options.Rows = cols, rows
	if t.ptyFile != nil {
		pty.Setsize(t.ptyFile, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
	}
	t.renderer.ForceFullRedraw()
}

// ScrollUp moves the view n lines further into scrollback history.
func (t *Terminal) ScrollUp(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	maxScroll := t.maxScrollOffset()
	t.viewOffset += n
	if t.viewOffset > maxScroll {
		t.viewOffset = maxScroll
	}
	t.renderer.RequestRender()
}

// ScrollDown moves the view n lines toward current output.
func (t *Terminal) ScrollDown(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.viewOffset -= n
	if t.viewOffset < 0 {
		t.viewOffset = 0
	}
	t.renderer.RequestRender()
}

// ScrollToTop scrolls to the oldest retained line.
func (t *Terminal) ScrollToTop() {
	t.mu.Lock()
	t.viewOffset = t.maxScrollOffset()
	t.mu.Unlock()
	t.renderer.RequestRender()
}

// ScrollToBottom returns the view to current output.
func (t *Terminal) ScrollToBottom() {
	t.mu.Lock()
	t.viewOffset = 0
	t.mu.Unlock()
	t.renderer.RequestRender()
}

func (t *Terminal) maxScrollOffset() int {
	extent := t.screen.Extent()
	max := extent - t.options.Rows
	if max < 0 {
		max = 0
	}
	return max
}

// GetScrollOffset returns the current scroll offset (0 == bottom).
func (t *Terminal) GetScrollOffset() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewOffset
}

// IsRunning reports whether a command is currently running.
func (t *Terminal) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Wait blocks until the running command exits.
func (t *Terminal) Wait() {
	<-t.done
}

// SetInputCallback installs a callback invoked before input reaches the
// pseudoterminal; returning true consumes the input.
func (t *Terminal) SetInputCallback(fn func([]byte) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputCallback = fn
}

// SetOnExit installs a callback invoked when the child process exits.
func (t *Terminal) SetOnExit(fn func(int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExit = fn
}

// SetOnResize installs a callback invoked after the terminal resizes.
func (t *Terminal) SetOnResize(fn func(cols, rows int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onResize = fn
}

// SetTitle sets the window title shown in the top border, if any.
func (t *Terminal) SetTitle(title string) {
	t.mu.Lock()
	t.options.Title = title
	t.mu.Unlock()
	t.renderer.RequestRender()
}

// Stop restores the host terminal state and tears down the child process.
func (t *Terminal) Stop() error {
	select {
	case <-t.stopRender:
	default:
		close(t.stopRender)
	}

	t.mu.Lock()
	if t.cmd != nil && t.cmd.Process != nil {
		t.cmd.Process.Kill()
	}
	if t.ptyFile != nil {
		t.ptyFile.Close()
	}
	oldState := t.oldState
	embedded := t.options.Embedded
	t.mu.Unlock()

	if !embedded && oldState != nil {
		fmt.Print("\033[?1049l") // leave alternate screen
		fmt.Print("\033[?25h")   // show cursor
		fmt.Print("\033[0m")
		term.Restore(int(os.Stdin.Fd()), oldState)
	}

	return nil
}

// Close is an alias for Stop.
func (t *Terminal) Close() error {
	return t.Stop()
}

var _ io.Writer = (*Terminal)(nil)
