package cmd

import (
	"blasting_tracker/internal/export"
	"blasting_tracker/internal/records"
	"blasting_tracker/internal/summary"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trips as CSV",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "-", `output file, "-" for stdout`)
	exportCmd.Flags().StringVarP(&filterBlaster, "blaster", "b", summary.AllOption, "only trips handled by this blaster")
	exportCmd.Flags().StringVarP(&filterMarket, "market", "m", summary.AllOption, "only trips in this market")
}

func runExport(cmd *cobra.Command, args []string) error {
	sess, src, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSource(src)

	table, err := sess.Table(cmd.Context())
	if err != nil {
		return err
	}

	trips := records.Trips(summary.Filter(table.Records, summary.ByBlaster(filterBlaster), summary.ByMarket(filterMarket)))
	if exportOut == "-" {
		return export.WriteCSV(cmd.OutOrStdout(), trips)
	}
	return export.ToFile(exportOut, trips)
}
