package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/phoenix-cli/internal/config"
	"github.com/sells-group/phoenix-cli/internal/scanner"
	"github.com/sells-group/phoenix-cli/pkg/companieshouse"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "phoenix-cli",
	Short: "Phoenix company activity scanner",
	Long:  "Scans the Companies House register for phoenix activity: dissolved companies re-formed under similar names to dodge liabilities.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newScanner builds the registry client and scanner from config.
func newScanner() *scanner.Scanner {
	client := companieshouse.NewClient(cfg.Registry.APIKey,
		companieshouse.WithBaseURL(cfg.Registry.BaseURL),
		companieshouse.WithRateLimit(rate.Limit(cfg.Registry.RateLimit), cfg.Registry.RateBurst),
		companieshouse.WithPageSize(cfg.Registry.PageSize),
		companieshouse.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Registry.TimeoutSecs) * time.Second,
		}),
	)
	return scanner.New(client, scanner.WithRecentFormationDays(cfg.Scan.RecentFormationDays))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
