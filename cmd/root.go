package cmd

import (
	"github.com/spf13/cobra"

	"github.com/010m010/PMSChartAnalyzer/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "pmsanalyzer",
	Short: "Note-density analyzer for PMS/BMS charts",
	Long: `pmsanalyzer parses PMS/BMS rhythm-game charts and computes per-key and
aggregate note-density metrics, for single charts or for whole difficulty
tables.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logging.SetLevel(logging.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
