package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"excitond/internal/common/fsutil"
	"excitond/internal/history"
	"excitond/internal/manager"
	"excitond/internal/mcp"
	"excitond/internal/registry"
)

type mcpFlags struct {
	presetsDir    string
	historyDB     string
	maxConcurrent int
	bins          int
}

func newMCPCmd(opts *Options) *cobra.Command {
	var f mcpFlags
	cmd := &cobra.Command{
		Use:     "mcp",
		Short:   "Serve simulator tools over the Model Context Protocol on stdio",
		Example: "  excitond mcp --presets-dir ~/.excitond/presets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			srv, closeFn, err := newMCPServer(newLogger(opts), f)
			if err != nil {
				return err
			}
			defer closeFn()
			return srv.RunStdio(ctx)
		},
	}
	cmd.Flags().StringVar(&f.presetsDir, "presets-dir", os.Getenv("EXCITOND_PRESETS_DIR"), "Directory to scan for experiment presets")
	cmd.Flags().StringVar(&f.historyDB, "history-db", os.Getenv("EXCITOND_HISTORY_DB"), "SQLite file recording every run (empty disables history)")
	cmd.Flags().IntVar(&f.maxConcurrent, "max-concurrent", 1, "Maximum simulations running at once")
	cmd.Flags().IntVar(&f.bins, "bins", mcp.DefaultBins, "Histogram bins of the lifetime fit")
	return cmd
}

// newMCPServer builds the manager behind the MCP tools. The returned func
// releases the history store.
func newMCPServer(log zerolog.Logger, f mcpFlags) (*mcp.Server, func(), error) {
	closeFn := func() {}
	mcfg := manager.ManagerConfig{MaxConcurrent: f.maxConcurrent, Logger: &log}
	if f.presetsDir != "" {
		presets, err := registry.LoadDir(f.presetsDir)
		if err != nil {
			return nil, closeFn, err
		}
		mcfg.Presets = presets
	}
	if f.historyDB != "" {
		path, err := fsutil.ExpandHome(f.historyDB)
		if err != nil {
			return nil, closeFn, err
		}
		store, err := history.Open(path)
		if err != nil {
			return nil, closeFn, err
		}
		mcfg.History = store
		closeFn = func() { _ = store.Close() }
	}
	srv := mcp.NewServer(manager.NewWithConfig(mcfg), mcp.Config{Bins: f.bins, Logger: &log})
	return srv, closeFn, nil
}
