package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	batchConcurrency int
	batchOutDir      string
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Scan multiple companies from a file of company numbers",
	Long:  "Reads company numbers (one per line, # comments allowed) and scans each. Per-company failures are logged and the batch continues.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("batch"); err != nil {
			return err
		}
		ctx := cmd.Context()

		numbers, err := readCompanyNumbers(args[0])
		if err != nil {
			return err
		}
		if len(numbers) == 0 {
			return eris.Errorf("no company numbers in %s", args[0])
		}

		if batchOutDir != "" {
			if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
				return eris.Wrap(err, "create output dir")
			}
		}

		sc := newScanner()

		var failed atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(batchConcurrency)

		for _, number := range numbers {
			number := number
			g.Go(func() error {
				rep, err := sc.Scan(gctx, number)
				if err != nil {
					failed.Add(1)
					zap.L().Error("batch: scan failed",
						zap.String("company_number", number),
						zap.Error(err),
					)
					return nil
				}

				if batchOutDir != "" {
					path := filepath.Join(batchOutDir, fmt.Sprintf("phoenix_report_%s.csv", number))
					if err := writeReportFile(path, rep); err != nil {
						failed.Add(1)
						zap.L().Error("batch: write report failed",
							zap.String("company_number", number),
							zap.Error(err),
						)
					}
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("batch complete",
			zap.Int("companies", len(numbers)),
			zap.Int64("failed", failed.Load()),
		)
		return nil
	},
}

// readCompanyNumbers reads one company number per line, skipping blanks and
// # comments.
func readCompanyNumbers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open batch file")
	}
	defer f.Close()

	var numbers []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		numbers = append(numbers, line)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "read batch file")
	}
	return numbers, nil
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 3, "max concurrent scans")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "write a CSV report per company into this directory")
	rootCmd.AddCommand(batchCmd)
}
