package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/phoenix-cli/internal/csvview"
	"github.com/sells-group/phoenix-cli/internal/report"
	"github.com/sells-group/phoenix-cli/internal/scanner"
	"github.com/sells-group/phoenix-cli/pkg/companieshouse"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scan and CSV viewer HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sc := newScanner()
		store := report.NewStore()

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/api/scan/{companyNumber}", handleScan(sc, store))
		r.Get("/api/report/{companyNumber}/download", handleReportDownload(store))

		if cfg.CSV.Path != "" {
			reader, err := csvview.Open(cfg.CSV.Path)
			if err != nil {
				zap.L().Warn("csv viewer disabled, file not readable",
					zap.String("path", cfg.CSV.Path),
					zap.Error(err),
				)
			} else {
				r.Get("/api/csv", handleCSVMeta(reader))
				r.Get("/api/csv/data", handleCSVData(reader, cfg.CSV.RowsPerPage))
				r.Get("/api/csv/download", handleCSVDownload(reader))
				zap.L().Info("csv viewer enabled",
					zap.String("file", reader.Filename()),
					zap.Int64("size_bytes", reader.Size()),
				)
			}
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// handleScan runs a deep scan and caches the report for follow-up export.
func handleScan(sc *scanner.Scanner, store *report.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := chi.URLParam(r, "companyNumber")

		rep, err := sc.Scan(r.Context(), number)
		if err != nil {
			switch {
			case eris.Is(err, scanner.ErrEmptyCompanyNumber):
				writeError(w, http.StatusBadRequest, "company number is required")
			case eris.Is(err, companieshouse.ErrNotFound):
				writeError(w, http.StatusNotFound, "company not found")
			default:
				zap.L().Error("scan failed", zap.String("company_number", number), zap.Error(err))
				writeError(w, http.StatusBadGateway, "registry request failed")
			}
			return
		}

		store.Put(rep)
		writeJSON(w, http.StatusOK, rep)
	}
}

// handleReportDownload exports the most recent scan as CSV or XLSX.
func handleReportDownload(store *report.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := chi.URLParam(r, "companyNumber")

		rep, err := store.Get(number)
		if err != nil {
			writeError(w, http.StatusNotFound, "no report available, run a scan first")
			return
		}

		if r.URL.Query().Get("format") == "xlsx" {
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=phoenix_report_%s.xlsx", number))
			if err := report.WriteXLSX(w, rep); err != nil {
				zap.L().Error("xlsx export failed", zap.Error(err))
			}
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=phoenix_report_%s.csv", number))
		if err := report.WriteCSV(w, rep); err != nil {
			zap.L().Error("csv export failed", zap.Error(err))
		}
	}
}

// handleCSVMeta returns viewer metadata with an instant row estimate.
func handleCSVMeta(reader *csvview.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		headers, err := reader.Headers()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to read csv headers")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"filename":       reader.Filename(),
			"file_size":      humanSize(reader.Size()),
			"total_columns":  len(headers),
			"estimated_rows": reader.EstimateRows(),
		})
	}
}

// handleCSVData returns one page of rows.
func handleCSVData(reader *csvview.Reader, defaultRowsPerPage int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := queryInt(r, "page", 1)
		rowsPerPage := queryInt(r, "rows_per_page", defaultRowsPerPage)

		p, err := reader.Page(r.Context(), page, rowsPerPage)
		if err != nil {
			if eris.Is(err, csvview.ErrInvalidPage) {
				writeError(w, http.StatusBadRequest, "invalid page number")
				return
			}
			zap.L().Error("csv page read failed", zap.Int("page", page), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to read csv page")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// handleCSVDownload streams the whole file.
func handleCSVDownload(reader *csvview.Reader) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", reader.Filename()))
		if err := reader.Stream(w); err != nil {
			zap.L().Error("csv download failed", zap.Error(err))
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func humanSize(bytes int64) string {
	const gb = 1 << 30
	const mb = 1 << 20
	if bytes >= gb {
		return fmt.Sprintf("%.2f GB", float64(bytes)/gb)
	}
	return fmt.Sprintf("%.2f MB", float64(bytes)/mb)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
