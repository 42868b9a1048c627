// Package cmd contains the command-line interface of the mailreport tool.
//
// Usage:
//
//	mailreport [flags] <config-file> <sql-file-or-command>
//
// The second argument is read as a script when it names an existing file,
// otherwise it is executed as SQL text.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mailreport/apperr"
	"mailreport/dispatch"
	"mailreport/logger"
)

var (
	flagLogLevel  string
	flagLogFormat string
	flagDryRun    bool
)

// exitFunc is a package-level variable so tests can intercept os.Exit.
var exitFunc = os.Exit

// newRunner is a package-level variable to allow test injection.
var newRunner = dispatch.NewRunner

var rootCmd = &cobra.Command{
	Use:   "mailreport <config-file> <sql-file-or-command>",
	Short: "Run a SQL query and email the result",
	Long: `Runs a SQL command against the database named in the configuration file and
emails the result, either as an HTML table in the message body or as an
xlsx attachment (SendAsAttachment).`,
	Args:          checkArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runReport,
}

func checkArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return apperr.NewArgument("parse arguments",
			fmt.Errorf("expected 2 arguments (configuration file and SQL script file or command), got %d", len(args)))
	}
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.NewWithWriter(cmd.ErrOrStderr(), flagLogLevel, flagLogFormat)
	runner := newRunner(log)
	runner.DryRun = flagDryRun
	_, err := runner.Run(ctx, args[0], args[1])
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "console", "Log format: console or json")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Run the query and render the report but log the email instead of sending it")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return apperr.NewArgument("parse flags", err)
	})
}

// Execute runs the root command and exits with a status describing the
// failing stage when it returns an error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), err)
		exitFunc(apperr.KindOf(err).ExitCode())
	}
}
