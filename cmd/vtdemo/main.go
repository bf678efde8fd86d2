// Command vtdemo runs a shell inside a vt48 screen, rendering it to the
// host terminal. With --serve it also publishes live snapshots of the
// screen over a WebSocket endpoint for a remote viewer.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kestrelterm/vt48/cli"
)

var (
	flagCols      int
	flagRows      int
	flagShell     string
	flagNoBorder  bool
	flagNoStatus  bool
	flagServe     bool
	flagServeAddr string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vtdemo [flags] -- [command] [args...]",
	Short: "Run a shell in a vt48 terminal screen",
	Long: `vtdemo spawns a shell (or the given command) under a pseudoterminal,
feeds its output through the vt48 recognizer into a screen model, and
renders the screen back to the host terminal.

With --serve, the screen's snapshots are also published over a
WebSocket endpoint so a remote viewer can follow the session live.`,
	RunE: runDemo,
}

func init() {
	rootCmd.Flags().IntVar(&flagCols, "cols", 0, "terminal width (0 = auto-detect when --rows is also 0, else 80)")
	rootCmd.Flags().IntVar(&flagRows, "rows", 0, "terminal height (0 = auto-detect when --cols is also 0, else 24)")
	rootCmd.Flags().StringVar(&flagShell, "shell", "", "shell to run (default: $SHELL)")
	rootCmd.Flags().BoolVar(&flagNoBorder, "no-border", false, "disable the window border")
	rootCmd.Flags().BoolVar(&flagNoStatus, "no-status", false, "disable the status bar")
	rootCmd.Flags().BoolVar(&flagServe, "serve", false, "publish live snapshots over a WebSocket endpoint")
	rootCmd.Flags().StringVar(&flagServeAddr, "serve-addr", ":7448", "address for --serve's HTTP server")
}

func runDemo(cmd *cobra.Command, args []string) error {
	opts := cli.Options{
		Cols:          flagCols,
		Rows:          flagRows,
		Shell:         flagShell,
		AutoSize:      flagCols == 0 && flagRows == 0,
		BorderStyle:   cli.BorderRounded,
		Title:         "vtdemo",
		ShowStatusBar: !flagNoStatus,
	}
	if flagNoBorder {
		opts.BorderStyle = cli.BorderNone
	}

	term, err := cli.New(opts)
	if err != nil {
		return fmt.Errorf("create terminal: %w", err)
	}
	term.Screen().ID = uuid.New().String()

	var srv *snapshotServer
	if flagServe {
		srv = newSnapshotServer(term)
		if err := srv.Start(flagServeAddr); err != nil {
			return fmt.Errorf("start snapshot server: %w", err)
		}
		defer srv.Stop()
	}

	term.SetOnExit(func(code int) {
		term.Stop()
		if srv != nil {
			srv.Stop()
		}
		os.Exit(code)
	})

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	defer term.Stop()

	if len(args) > 0 {
		if err := term.RunCommand(args[0], args[1:]...); err != nil {
			return fmt.Errorf("run command: %w", err)
		}
	} else {
		if err := term.RunShell(); err != nil {
			return fmt.Errorf("run shell: %w", err)
		}
	}

	term.Wait()
	return nil
}
