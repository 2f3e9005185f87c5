// Command rifctl evaluates recurrent implantation failure cases from YAML or
// JSON files without running a server.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rif-protocol-server/internal/logging"
	"github.com/rif-protocol-server/internal/service"
)

// app carries the state shared by every subcommand.
type app struct {
	logLevel  string
	logFormat string

	out       io.Writer
	errOut    io.Writer
	now       func() time.Time
	logger    *logrus.Logger
	evaluator *service.EvaluationService
	validator *service.SnapshotValidatorService
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		out:    out,
		errOut: errOut,
		now:    time.Now,
	}
}

func (a *app) setup() error {
	level, err := logging.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}

	logger := logrus.New()
	logger.SetOutput(a.errOut)
	logger.SetLevel(level)
	logger.SetFormatter(logging.Formatter(a.logFormat))

	a.logger = logger
	a.evaluator = service.NewEvaluationService(logger)
	a.validator = service.NewSnapshotValidator()
	return nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "rifctl",
		Short: "Evaluate recurrent implantation failure cases",
		Long: `rifctl runs the RIF investigation rules on case files and prints the
prioritized recommendations, critical alerts and phased protocol.

Case files are YAML unless the name ends in .json.

Examples:
  rifctl evaluate -f case.yaml
  rifctl evaluate -f case.json --format pretty
  rifctl export -f case.yaml -o ./exports
  rifctl batch -f cases.yaml --workers 4
  rifctl setup register --data-dir ~/.rif-protocol`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "log format (text, json)")

	root.AddCommand(
		newEvaluateCmd(a),
		newExportCmd(a),
		newBatchCmd(a),
		newValidateCmd(a),
		newSetupCmd(a),
	)
	return root
}

func main() {
	a := newApp(os.Stdout, os.Stderr)
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
