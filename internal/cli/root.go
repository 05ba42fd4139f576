// Package cli implements the fnug command line entry point.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/fnugdev/fnug/internal/config"
	"github.com/fnugdev/fnug/internal/core"
	"github.com/fnugdev/fnug/internal/notify"
	"github.com/fnugdev/fnug/internal/runtime"
	"github.com/fnugdev/fnug/internal/ui"
	"github.com/fnugdev/fnug/pkg/utils"
)

var (
	configPath  string
	watchFlag   bool
	noWatchFlag bool
	notifyFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "fnug",
	Short: "Terminal UI that auto-selects and runs lint/test commands",
	Long: "fnug reads a declarative command tree from .fnug.yaml and runs the\n" +
		"commands whose watched paths intersect git changes or file events,\n" +
		"each in its own pseudo-terminal.",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default: discover .fnug.yaml upward)")
	rootCmd.Flags().BoolVarP(&watchFlag, "watch", "w", true, "re-run commands on file changes")
	rootCmd.Flags().BoolVar(&noWatchFlag, "no-watch", false, "disable the file watcher")
	rootCmd.Flags().BoolVarP(&notifyFlag, "notify", "n", false, "desktop notification when a command fails")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the fnug version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("fnug " + config.Version)
		},
	})
}

func run(cmd *cobra.Command, args []string) error {
	setupLogging()

	path := configPath
	if path != "" {
		path = utils.ExpandPath(path)
	}

	c, err := core.FromConfigFile(path)
	if err != nil {
		return err
	}

	engine := runtime.NewEngine()
	defer engine.CloseAll()

	app := ui.New(c, engine, ui.Options{
		Watch: watchFlag && !noWatchFlag,
		Notify: notify.Config{
			Desktop:    notifyFlag,
			WebhookURL: os.Getenv("FNUG_WEBHOOK_URL"),
		},
	})

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// setupLogging writes structured logs to FNUG_LOG when set; the TUI owns
// the terminal, so logs are discarded otherwise.
func setupLogging() {
	target := os.Getenv("FNUG_LOG")
	if target == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
