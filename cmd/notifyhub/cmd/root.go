// Package cmd implements the notifyhub command line. Every command opens the
// configured store directly, so the CLI works without a running API server.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-notification-hub/internal/app"
	"github.com/go-notification-hub/internal/config"
	"github.com/go-notification-hub/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every command.
type options struct {
	store    string
	db       string
	logLevel string
	strict   bool
}

// runtime carries the app opened for the running command.
type runtime struct {
	opts options
	app  *app.App
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:   "notifyhub",
		Short: "Dispatch and track notifications",
		Long: `notifyhub renders templates, dispatches notifications over email, slack,
webhook and push channels, and tracks every delivery attempt.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.open(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return rt.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&rt.opts.store, "store", "", "store driver: sqlite, dynamo or memory (default from STORE_DRIVER)")
	pf.StringVar(&rt.opts.db, "db", "", "sqlite database path (default from NOTIFICATION_HUB_DB)")
	pf.StringVar(&rt.opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&rt.opts.strict, "strict", true, "reject notifications whose template leaves placeholders unresolved")

	root.AddCommand(
		newSendCmd(rt),
		newBatchSendCmd(rt),
		newUnreadCmd(rt),
		newReadCmd(rt),
		newShowCmd(rt),
		newLogCmd(rt),
		newStatsCmd(rt),
		newTemplateCmd(rt),
		newRetryCmd(rt),
		newArchiveCmd(rt),
		newTokenCmd(rt),
	)
	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func (rt *runtime) open(cmd *cobra.Command) error {
	_ = godotenv.Load()
	cfg := config.Load()
	if rt.opts.store != "" {
		cfg.StoreDriver = rt.opts.store
	}
	if rt.opts.db != "" {
		cfg.SQLitePath = rt.opts.db
	}
	if rt.opts.logLevel != "" {
		cfg.LogLevel = rt.opts.logLevel
	}
	if cmd.Flags().Changed("strict") {
		cfg.StrictTemplates = rt.opts.strict
	}
	logging.InitConsole(cfg.LogLevel)

	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	rt.app = a
	return nil
}

func (rt *runtime) close() error {
	if rt.app == nil {
		return nil
	}
	err := rt.app.Close()
	rt.app = nil
	return err
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return readAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
