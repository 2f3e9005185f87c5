package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rif-protocol-server/internal/domain"
	"github.com/rif-protocol-server/internal/export"
	"github.com/rif-protocol-server/internal/report"
)

const (
	outputText     = "text"
	outputMarkdown = "markdown"
	outputJSON     = "json"
	outputPretty   = "pretty"
)

// evaluateFile loads, validates and evaluates one case file.
func (a *app) evaluateFile(path string) (domain.InputSnapshot, *domain.Evaluation, error) {
	snapshot, err := loadCase(path)
	if err != nil {
		return snapshot, nil, err
	}
	if err := a.validator.Validate(snapshot); err != nil {
		return snapshot, nil, fmt.Errorf("invalid case %s: %w", path, err)
	}
	return snapshot, a.evaluator.Evaluate(snapshot), nil
}

func (a *app) writeEvaluation(w io.Writer, snapshot domain.InputSnapshot, eval *domain.Evaluation, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(eval.Output())
	case outputPretty:
		rendered, err := report.Terminal(report.String(snapshot.Patient, eval, report.FormatMarkdown), report.TerminalOptions{})
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, rendered)
		return err
	default:
		f, err := report.ParseFormat(format)
		if err != nil {
			return fmt.Errorf("%w (want text, markdown, json or pretty)", err)
		}
		return report.Render(w, snapshot.Patient, eval, f)
	}
}

func newEvaluateCmd(a *app) *cobra.Command {
	var file, format string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate one case and print its protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, eval, err := a.evaluateFile(file)
			if err != nil {
				return err
			}
			a.logger.WithFields(logrus.Fields{
				"file":            file,
				"findings":        len(eval.Findings),
				"critical_alerts": len(eval.CriticalAlerts),
			}).Info("Case evaluated")
			return a.writeEvaluation(cmd.OutOrStdout(), snapshot, eval, format)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "case file (YAML or JSON)")
	cmd.Flags().StringVar(&format, "format", outputText, "output format: text, markdown, json or pretty")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var file, dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Evaluate one case and write its export record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, eval, err := a.evaluateFile(file)
			if err != nil {
				return err
			}
			path, err := export.WriteToDir(dir, export.NewRecord(snapshot.Patient, eval, a.now()))
			if err != nil {
				return err
			}
			a.logger.WithField("path", path).Info("Export record written")
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Caso exportado: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "case file (YAML or JSON)")
	cmd.Flags().StringVarP(&dir, "output", "o", ".", "directory for the export record")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// batchLine is one row of the batch summary in JSON output.
type batchLine struct {
	Name            string   `json:"name"`
	Recommendations int      `json:"recommendations"`
	CriticalAlerts  []string `json:"critical_alerts"`
}

func newBatchCmd(a *app) *cobra.Command {
	var file, format string
	var workers int

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Evaluate every case of a batch file",
		Long: `Evaluates the cases listed under "cases:" in a YAML or JSON file and
prints one line per case. Every case is validated before any is evaluated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshots, err := loadBatch(file)
			if err != nil {
				return err
			}
			for i, s := range snapshots {
				if err := a.validator.Validate(s); err != nil {
					return fmt.Errorf("invalid case %d: %w", i, err)
				}
			}

			evals, err := a.evaluator.EvaluateBatch(cmd.Context(), snapshots, workers)
			if err != nil {
				return err
			}

			lines := make([]batchLine, len(evals))
			for i, eval := range evals {
				lines[i] = batchLine{
					Name:            snapshots[i].Patient.Name,
					Recommendations: len(eval.Recommendations),
					CriticalAlerts:  eval.CriticalAlerts,
				}
			}

			w := cmd.OutOrStdout()
			if format == outputJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(lines)
			}
			for i, l := range lines {
				fmt.Fprintf(w, "%d. %s: %d recomendações, %d alertas críticos\n",
					i+1, l.Name, l.Recommendations, len(l.CriticalAlerts))
				for _, alert := range l.CriticalAlerts {
					fmt.Fprintf(w, "   ⚠ %s\n", alert)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "batch file with a top-level cases list")
	cmd.Flags().StringVar(&format, "format", outputText, "output format: text or json")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent evaluations (0 uses GOMAXPROCS)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a case file without evaluating it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := loadCase(file)
			if err != nil {
				return err
			}
			if err := a.validator.Validate(snapshot); err != nil {
				return fmt.Errorf("invalid case %s: %w", file, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "case file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
