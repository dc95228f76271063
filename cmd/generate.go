package cmd

import (
	"github.com/spf13/cobra"

	"bulkinvoicer/internal/config"
	"bulkinvoicer/internal/generate"
	"bulkinvoicer/internal/logger"
)

var generateConfigFile string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate all configured PDF outputs from the source workbook",
	Long: `Read the Excel workbook named in the configuration, match receipts
against invoices per client, and render every configured output:

  combined    one PDF with all invoices and receipts of the period
  individual  one PDF per invoice and per receipt
  clients     one account statement PDF per client

Outputs with include-summary also get key figures, a status breakdown
and monthly balance tables.`,
	Example: `  # Generate using ./config.toml
  bulkinvoicer generate

  # Generate using a specific configuration file
  bulkinvoicer generate --config invoices-2024.toml`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("generate")

	cfg, err := config.Load(generateConfigFile)
	if err != nil {
		return err
	}
	log.Info().Str("config", generateConfigFile).Msg("Configuration loaded")

	return generate.Run(cfg)
}

func init() {
	generateCmd.Flags().StringVarP(&generateConfigFile, "config", "c", "config.toml", "Path to the TOML configuration file")
	rootCmd.AddCommand(generateCmd)
}
