package cli

import (
	"fmt"
	"os"

	"CursorAPI/internal/config"
	"CursorAPI/internal/logger"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Debug  bool
	LogDir string
	Config *config.Config
}

// NewRootCommand creates the root command of the cursorapi CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "cursorapi",
		Short:         "Cursor-paginated listing API over relational tables",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Init(opts.LogDir); err != nil {
				return fmt.Errorf("log init failed: %w", err)
			}
			logger.SetDebug(opts.Debug)
			opts.Config = config.LoadConfig()
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.LogDir, "log-dir", ".", "directory that receives log/app.log")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))

	return cmd
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		logger.Error("command_failed", map[string]any{"error": err.Error()})
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
