package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bulkinvoicer/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "bulkinvoicer",
	Short: "Bulkinvoicer - generate invoices, receipts and statements from a spreadsheet",
	Long: `Bulkinvoicer reads invoices, receipts and clients from an Excel
workbook, matches payments against invoices and renders PDF documents:
combined reports, individual invoices and receipts, and per-client
account statements.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Bulkinvoicer executed")

		fmt.Println("Welcome to Bulkinvoicer!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
