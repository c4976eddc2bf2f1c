package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/010m010/PMSChartAnalyzer/chart"
	"github.com/010m010/PMSChartAnalyzer/density"
	"github.com/010m010/PMSChartAnalyzer/logging"
	"github.com/010m010/PMSChartAnalyzer/storage"
)

var analyzeFlags struct {
	bucketWidth    float64
	multiplier     float64
	includeMines   bool
	headOnly       bool
	jsonOutput     bool
	noHistory      bool
	rangeSelection string
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().Float64Var(&analyzeFlags.bucketWidth, "bucket-width", 1.0, "density bucket width in seconds")
	analyzeCmd.Flags().Float64Var(&analyzeFlags.multiplier, "high-multiplier", 2.0, "high-density threshold as a multiple of the mean bucket total")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.includeMines, "include-mines", false, "count mine/invisible objects")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.headOnly, "ln-head-only", false, "count only long-note heads")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.jsonOutput, "json", false, "emit the full result as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.noHistory, "no-history", false, "do not record the analysis in history")
	analyzeCmd.Flags().StringVar(&analyzeFlags.rangeSelection, "range", "", "also report stats for a bucket range, as start:end")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <chart.pms>",
	Short: "Analyze the note density of a single chart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parserConfig := chart.DefaultParserConfig()
		parserConfig.IncludeMines = analyzeFlags.includeMines
		parserConfig.CountLongNoteTails = !analyzeFlags.headOnly

		densityConfig := density.DefaultConfig()
		densityConfig.BucketWidth = analyzeFlags.bucketWidth
		densityConfig.HighDensityMultiplier = analyzeFlags.multiplier

		parsed, err := chart.NewParser(parserConfig).ParseFile(args[0])
		if err != nil {
			return err
		}
		result, err := density.Compute(parsed.Events, parsed.TotalTime, densityConfig)
		if err != nil {
			return err
		}

		if !analyzeFlags.noHistory {
			recordHistory(parsed, result)
		}

		if analyzeFlags.jsonOutput {
			return printJSON(struct {
				Chart  *chart.Chart    `json:"chart"`
				Result *density.Result `json:"result"`
			}{parsed, result})
		}

		printChartSummary(parsed, result)
		if analyzeFlags.rangeSelection != "" {
			printRangeStats(parsed, result)
		}
		return nil
	},
}

func printChartSummary(parsed *chart.Chart, result *density.Result) {
	h := parsed.Header
	title := h.Title
	if h.Subtitle != "" {
		title += " " + h.Subtitle
	}
	fmt.Printf("%s\n", title)
	if h.Artist != "" {
		fmt.Printf("  artist:  %s\n", h.Artist)
	}
	if h.Level != "" {
		fmt.Printf("  level:   %s\n", h.Level)
	}
	fmt.Printf("  notes:   %d over %.1fs (%d measures)\n", result.NoteCount, parsed.TotalTime, len(parsed.Measures))
	if parsed.MinBPM == parsed.MaxBPM {
		fmt.Printf("  bpm:     %g\n", parsed.StartBPM)
	} else {
		fmt.Printf("  bpm:     %g (%g-%g)\n", parsed.StartBPM, parsed.MinBPM, parsed.MaxBPM)
	}

	m := result.Metrics
	fmt.Printf("  peak:    %.2f notes/s\n", m.PeakDensity)
	fmt.Printf("  mean:    %.2f notes/s\n", m.MeanDensity)
	fmt.Printf("  tail:    %.2f notes/s\n", m.TailDensity)
	fmt.Printf("  rms:     %.2f notes/s\n", m.RMSDensity)
	fmt.Printf("  high:    %.1f%% of buckets\n", m.HighDensityRatio*100)
	if result.BurstInterval > 0 {
		fmt.Printf("  bursts:  every %.1fs\n", result.BurstInterval)
	}
	if parsed.MalformedLines > 0 || parsed.UnresolvedRefs > 0 {
		fmt.Printf("  skipped: %d malformed lines, %d unresolved tempo refs\n",
			parsed.MalformedLines, parsed.UnresolvedRefs)
	}
}

func printRangeStats(parsed *chart.Chart, result *density.Result) {
	var lo, hi float64
	if _, err := fmt.Sscanf(strings.TrimSpace(analyzeFlags.rangeSelection), "%f:%f", &lo, &hi); err != nil {
		fmt.Fprintf(os.Stderr, "ignoring bad --range %q (want start:end)\n", analyzeFlags.rangeSelection)
		return
	}
	rs := density.ComputeRangeStats(result.Buckets, parsed.Events, parsed.Header.Total, lo, hi)
	if rs == nil {
		return
	}
	fmt.Printf("  range %.1fs-%.1fs: %d notes, avg %.2f, rms %.2f, cms %.2f",
		rs.StartSeconds, rs.EndSeconds, rs.NoteCount, rs.AverageDensity, rs.RMSDensity, rs.CMSDensity)
	if rs.GaugeIncrease != nil {
		fmt.Printf(", gauge +%.1f", *rs.GaugeIncrease)
	}
	fmt.Println()
}

func recordHistory(parsed *chart.Chart, result *density.Result) {
	dir, err := storage.DefaultDir()
	if err != nil {
		logging.Warn("history disabled", logging.Fields{"error": err.Error()})
		return
	}
	record := storage.AnalysisRecord{
		FilePath:   parsed.Path,
		Title:      parsed.Header.Title,
		Artist:     parsed.Header.Artist,
		Difficulty: parsed.Header.Difficulty,
		Level:      parsed.Header.Level,
		Metrics: map[string]float64{
			"peak_density":       result.Metrics.PeakDensity,
			"tail_density":       result.Metrics.TailDensity,
			"mean_density":       result.Metrics.MeanDensity,
			"rms_density":        result.Metrics.RMSDensity,
			"high_density_ratio": result.Metrics.HighDensityRatio,
		},
	}
	if err := storage.NewStore(dir).AppendHistory(record, storage.DefaultHistoryLimit); err != nil {
		logging.Warn("failed to record history", logging.Fields{"error": err.Error()})
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
