package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iota-uz/suggestion-admin/pkg/configuration"
	"github.com/iota-uz/suggestion-admin/pkg/logging"
)

type rootOptions struct {
	backend  string
	logLevel string
}

// cliEnv is resolved once per invocation by the root pre-run.
type cliEnv struct {
	conf *configuration.Configuration
	log  *logrus.Logger
}

func newRootCmd() *cobra.Command {
	var opts rootOptions
	env := &cliEnv{}

	cmd := &cobra.Command{
		Use:           "suggestctl",
		Short:         "Manage suggestion tables on the backend from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := configuration.LoadEnv([]string{".env", ".env.local"}); err != nil {
				return withCode(exitUsage, fmt.Errorf("load env: %w", err))
			}
			conf, err := configuration.Parse()
			if err != nil {
				return withCode(exitUsage, err)
			}
			if b := strings.TrimSpace(opts.backend); b != "" {
				conf.Backend.URL = strings.TrimRight(b, "/")
			}
			level := conf.LogLevel
			if opts.logLevel != "" {
				level = opts.logLevel
			}
			env.conf = conf
			env.log = logging.ConsoleLogger(configuration.ParseLogLevel(level))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "Backend base URL (default: BACKEND_URL)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "silent|error|warn|info|debug (default: LOG_LEVEL)")

	cmd.AddCommand(newListCmd(env))
	cmd.AddCommand(newImportCmd(env))
	cmd.AddCommand(newExportCmd(env))
	cmd.AddCommand(newDeleteCmd(env))
	cmd.AddCommand(newColorCmd())
	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
