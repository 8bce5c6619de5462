package cmd

import (
	"errors"
	"fmt"
	"os"

	"devserve/core/logger"
	"devserve/core/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "devserve [port]",
	Short: "Serve a directory over HTTP with caching disabled",
	Long: `devserve serves the directory containing its executable over HTTP.
Every response forbids client and proxy caching so edits show up on reload.

The bind address is read from HOST and PORT (default 127.0.0.1:8000).
An optional positional argument overrides the port.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.OutOrStdout(), args)
	},
}

// Execute runs the root command and exits non-zero when it fails.
func Execute() {
	err := RootCmd.Execute()
	if err == nil {
		return
	}

	l, logErr := logger.New(&logger.Config{Level: "info", Format: "console"})
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "devserve: %v\n", err)
		os.Exit(1)
	}
	reportFailure(l, err)
	_ = l.Sync()
	os.Exit(1)
}

// reportFailure logs why the command stopped. Bind failures name the address
// so a busy port is easy to spot.
func reportFailure(l *zap.Logger, err error) {
	var bindErr *server.BindError
	if errors.As(err, &bindErr) {
		l.Error("Cannot listen on address, is the port already in use?",
			zap.String("addr", bindErr.Addr),
			zap.Error(bindErr.Err),
		)
		return
	}
	l.Error("devserve stopped", zap.Error(err))
}
