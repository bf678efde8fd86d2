// Package cli adapts a vt48.Screen to an actual CLI terminal: it runs a
// shell under a pseudoterminal, feeds its output through a vt48.Screen,
// and renders the screen's snapshots back to the host terminal using
// ANSI escape sequences of its own.
//
// # Basic usage
//
//	opts := cli.Options{
//	    AutoSize:      true,
//	    BorderStyle:   cli.BorderRounded,
//	    Title:         "vt48",
//	    ShowStatusBar: true,
//	}
//
//	term, err := cli.New(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer term.Stop()
//
//	if err := term.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := term.RunShell(); err != nil {
//	    log.Fatal(err)
//	}
//	term.Wait()
//
// # Scrollback navigation
//
// While running, Shift+PageUp/PageDown/Up/Down/Home/End scroll the view
// into the screen's retired history; any other keystroke snaps the view
// back to the bottom before being sent on to the shell.
//
// # Architecture
//
// Terminal owns the pseudoterminal (via creack/pty), a vt48.Screen, a
// Renderer that turns screen snapshots into ANSI output, and an
// InputHandler that copies the host terminal's raw-mode stdin to the
// pseudoterminal. This mirrors the three-component split of the
// teacher's own cli package, but the escape-sequence interpretation
// itself lives one layer down, in vt48 and recognize, rather than in a
// parser this package owns.
package cli
