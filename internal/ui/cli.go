// Package ui implements the stint command line.
package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/stint/internal/config"
	"github.com/javiermolinar/stint/internal/db"
	"github.com/javiermolinar/stint/internal/logger"
	"github.com/javiermolinar/stint/internal/task"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	store  task.Store
	config *config.Config
	root   *cobra.Command
	debug  bool // Enable debug logging
	now    func() time.Time
}

// NewApp creates a new CLI application. A nil store is opened lazily from
// the configured database path by the commands that need one.
func NewApp(store task.Store, cfg *config.Config) *App {
	a := &App{store: store, config: cfg, now: time.Now}

	a.root = &cobra.Command{
		Use:   "stint",
		Short: "Fit your tasks into your free time",
		Long: `Stint schedules estimated tasks into the free time of the coming days.

Tasks are placed in your work hours around calendar events and what is
already planned. Dated tasks go first, then the most important, then the
longest. Anything that fits nowhere is reported instead of being squeezed in.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return logger.Init(logger.Config{
				Debug: a.debug,
				Level: a.config.Log.Level,
				Dir:   a.config.Log.Dir,
			})
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (mirrors the log file to stderr)")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.scheduleCmd())
	a.root.AddCommand(a.planCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.timelineCmd())
	a.root.AddCommand(a.moveCmd())
	a.root.AddCommand(a.snoozeCmd())
	a.root.AddCommand(a.doneCmd())
	a.root.AddCommand(a.acceptCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("stint %s (commit: %s)\n", Version, Commit)
		},
	}
}

// ensureStore opens the configured database on first use.
func (a *App) ensureStore() error {
	if a.store != nil {
		return nil
	}

	dbPath := a.config.Storage.DBPath
	if dbPath == "" {
		return fmt.Errorf("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	store, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	a.store = store
	return nil
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// SetArgs overrides the command line arguments, for tests.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// SetIO overrides the command input and output streams, for tests.
func (a *App) SetIO(in io.Reader, out io.Writer) {
	a.root.SetIn(in)
	a.root.SetOut(out)
}

// Close releases the store if one was opened.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
