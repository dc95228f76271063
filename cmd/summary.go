package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"bulkinvoicer/internal/config"
	"bulkinvoicer/internal/generate"
	"bulkinvoicer/internal/logger"
)

var summaryConfigFile string

var summaryCmd = &cobra.Command{
	Use:   "summary [output-key]",
	Short: "Print the summary report of one configured output as JSON",
	Long: `Compute the summary report for the named output configuration and
print it as JSON instead of rendering PDFs. The report carries key
figures, the per-client status breakdown, client-wise totals and the
monthly balance rollup for the output's reporting period.`,
	Example: `  # Summary for the output named "q1" in ./config.toml
  bulkinvoicer summary q1

  # Summary using a specific configuration file
  bulkinvoicer summary all --config invoices-2024.toml`,
	Args: cobra.ExactArgs(1),
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("summary")
	key := args[0]

	cfg, err := config.Load(summaryConfigFile)
	if err != nil {
		return err
	}

	report, err := generate.BuildReport(cfg, key)
	if err != nil {
		return err
	}
	log.Debug().Str("output", key).Msg("Summary report built")

	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary report: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryConfigFile, "config", "c", "config.toml", "Path to the TOML configuration file")
	rootCmd.AddCommand(summaryCmd)
}
