package cmd

import (
	"context"
	"fmt"
	"os"

	"blasting_tracker/internal/app"
	"blasting_tracker/internal/config"
	"blasting_tracker/internal/session"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfg           config.Config
	workbookFile  string
	worksheetName string
)

var rootCmd = &cobra.Command{
	Use:   "blasting-tracker",
	Short: "Dashboard and editor for the blasting tracker spreadsheet",
	Long: `blasting-tracker loads trips from the shared blasting tracker spreadsheet
(or a local .xlsx copy), summarizes them by status, blaster and market, and
writes edits back to the sheet.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&workbookFile, "workbook", "f", "", "read a local .xlsx workbook instead of Google Sheets")
	rootCmd.PersistentFlags().StringVarP(&worksheetName, "worksheet", "w", "", `worksheet to load, or "latest" (default from WORKSHEET)`)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(worksheetsCmd)
	rootCmd.AddCommand(exportCmd)
}

func initConfig() {
	app.SetupEnvironment()
	cfg = app.LoadConfig()

	if workbookFile != "" {
		cfg.WorkbookFile = workbookFile
	}
	if worksheetName != "" {
		cfg.Worksheet = worksheetName
	}
}

// openSession opens the configured source and wraps it in a session. The
// returned source must be closed by the caller.
func openSession(ctx context.Context) (*session.Session, *app.Source, error) {
	src, err := app.OpenSource(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return session.New(src.Records, src.Worksheet), src, nil
}

func closeSource(src *app.Source) {
	if err := src.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close record source")
	}
}
