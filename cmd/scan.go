package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/phoenix-cli/internal/model"
	"github.com/sells-group/phoenix-cli/internal/report"
)

var (
	scanFormat string
	scanOutput string
)

var scanCmd = &cobra.Command{
	Use:   "scan <company-number>",
	Short: "Deep-scan a company for phoenix activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("scan"); err != nil {
			return err
		}
		ctx := cmd.Context()

		sc := newScanner()
		rep, err := sc.Scan(ctx, args[0])
		if err != nil {
			return err
		}

		if scanOutput != "" {
			return writeReportFile(scanOutput, rep)
		}
		return printReport(rep)
	},
}

// printReport writes the scored bundle to stdout as json or yaml.
func printReport(rep *model.Report) error {
	switch scanFormat {
	case "yaml":
		out, err := yaml.Marshal(rep)
		if err != nil {
			return eris.Wrap(err, "marshal report yaml")
		}
		os.Stdout.Write(out)
	default:
		out, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal report json")
		}
		os.Stdout.Write(append(out, '\n'))
	}
	return nil
}

// writeReportFile renders the tabular report; format is picked by extension
// (.xlsx for a workbook, anything else for CSV).
func writeReportFile(path string, rep *model.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "create report file")
	}
	defer f.Close()

	if filepath.Ext(path) == ".xlsx" {
		err = report.WriteXLSX(f, rep)
	} else {
		err = report.WriteCSV(f, rep)
	}
	if err != nil {
		return err
	}

	zap.L().Info("report written",
		zap.String("path", path),
		zap.String("company_number", rep.Company.CompanyNumber),
	)
	return nil
}

func init() {
	scanCmd.Flags().StringVar(&scanFormat, "format", "json", "stdout format: json or yaml")
	scanCmd.Flags().StringVarP(&scanOutput, "output", "o", "", "write tabular report to file (.csv or .xlsx)")
	rootCmd.AddCommand(scanCmd)
}
