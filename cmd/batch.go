package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/010m010/PMSChartAnalyzer/logging"
	"github.com/010m010/PMSChartAnalyzer/table"
)

var batchFlags struct {
	workers int
	timeout time.Duration
	metric  string
	baseDir string
	json    bool
	refresh bool
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntVar(&batchFlags.workers, "workers", 4, "number of charts analyzed concurrently")
	batchCmd.Flags().DurationVar(&batchFlags.timeout, "timeout", 30*time.Second, "per-entry resolution timeout")
	batchCmd.Flags().StringVar(&batchFlags.metric, "metric", string(table.MetricPeak), "metric for group statistics (peak_density, tail_density, mean_density, rms_density, high_density_ratio)")
	batchCmd.Flags().StringVar(&batchFlags.baseDir, "base-dir", "", "directory relative chart paths resolve against (default: the table's directory)")
	batchCmd.Flags().BoolVar(&batchFlags.json, "json", false, "emit the full batch result as JSON")
	batchCmd.Flags().BoolVar(&batchFlags.refresh, "refresh", false, "re-analyze every chart even when a cached result exists")
}

var batchCmd = &cobra.Command{
	Use:   "batch <table.csv|table.json|url>",
	Short: "Analyze every chart of a difficulty table",
	Long: `Analyze every chart referenced by a difficulty table and summarize the
density distribution per difficulty. A failing chart is reported and skipped;
it never aborts the rest of the table.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tablePath := args[0]

		config := table.DefaultRunnerConfig()
		config.Workers = batchFlags.workers
		config.ResolveTimeout = batchFlags.timeout
		config.Metric = table.Metric(batchFlags.metric)

		store, storeErr := defaultStore()
		if storeErr != nil {
			store = nil
			logging.Warn("difficulty cache disabled", logging.Fields{"error": storeErr.Error()})
		}
		if store != nil && !batchFlags.refresh {
			if cached := store.LoadTableCache(tablePath, config.Metric, config.Density); cached != nil {
				if batchFlags.json {
					return printJSON(cached)
				}
				printBatchSummary(cached, config.Metric)
				fmt.Println("(cached result; pass --refresh to re-analyze)")
				return nil
			}
		}

		t, baseDir, err := loadTableArg(tablePath)
		if err != nil {
			return err
		}
		if batchFlags.baseDir != "" {
			baseDir = batchFlags.baseDir
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		runner := table.NewRunner(config, table.NewAutoResolver(baseDir))
		result := runner.Run(ctx, t)

		// a canceled run is partial; caching it would hide the skipped entries
		if store != nil && ctx.Err() == nil {
			if err := store.SaveTableCache(tablePath, result); err != nil {
				logging.Warn("failed to cache batch result", logging.Fields{"error": err.Error()})
			}
		}

		if batchFlags.json {
			return printJSON(result)
		}
		printBatchSummary(result, config.Metric)
		return nil
	},
}

// loadTableArg loads a table from a local file or, for http(s) arguments, by
// fetching it first. Returns the directory relative chart paths resolve
// against.
func loadTableArg(arg string) (*table.Table, string, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		resp, err := http.Get(arg)
		if err != nil {
			return nil, "", fmt.Errorf("fetch difficulty table: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, "", fmt.Errorf("fetch difficulty table: unexpected status %s", resp.Status)
		}

		name := strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
		var t *table.Table
		if strings.HasSuffix(strings.ToLower(arg), ".csv") {
			t, err = table.LoadCSV(resp.Body, name)
		} else {
			t, err = table.LoadJSON(resp.Body, name)
		}
		return t, "", err
	}

	t, err := table.Load(arg)
	if err != nil {
		return nil, "", err
	}
	return t, filepath.Dir(arg), nil
}

func printBatchSummary(result *table.BatchResult, metric table.Metric) {
	ok := 0
	for _, e := range result.Entries {
		if !e.Failed() {
			ok++
		}
	}
	fmt.Printf("%s: %d/%d charts analyzed\n", result.Table.Name, ok, len(result.Entries))

	for _, e := range result.Failures() {
		fmt.Printf("  FAILED [%s] %s: %v\n", e.Entry.Difficulty, e.Entry.Title, e.Err)
	}

	if len(result.Groups) == 0 {
		return
	}
	fmt.Printf("\n%s by difficulty (min / Q1 / median / Q3 / max):\n", metric)
	for _, g := range result.Groups {
		s := g.Summary
		fmt.Printf("  %-8s n=%-3d %7.2f %7.2f %7.2f %7.2f %7.2f\n",
			g.Difficulty, g.Count, s.Min, s.Q1, s.Median, s.Q3, s.Max)
	}
}
