package cmd

import (
	"fmt"
	"io"
	"strings"

	"blasting_tracker/internal/records"
	"blasting_tracker/internal/status"
	"blasting_tracker/internal/summary"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	filterBlaster string
	filterMarket  string
	filterStatus  string
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print KPIs and trips grouped by status",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVarP(&filterBlaster, "blaster", "b", summary.AllOption, "only trips handled by this blaster")
	summaryCmd.Flags().StringVarP(&filterMarket, "market", "m", summary.AllOption, "only trips in this market")
	summaryCmd.Flags().StringVarP(&filterStatus, "status", "s", summary.AllOption, "only count trips with this status in the KPIs")
}

func runSummary(cmd *cobra.Command, args []string) error {
	sess, src, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSource(src)

	table, err := sess.Table(cmd.Context())
	if err != nil {
		return err
	}

	base := summary.Filter(table.Records, summary.ByBlaster(filterBlaster), summary.ByMarket(filterMarket))
	kpis := summary.KPIs(summary.Filter(base, summary.ByStatus(filterStatus)))

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Blasting tracker · %s", table.Worksheet)))
	renderKPIs(out, kpis)
	renderBuckets(out, status.Group(base))
	return nil
}

func renderKPIs(w io.Writer, k summary.KPI) {
	box := func(label, value string) string {
		return kpiStyle.Render(labelStyle.Render(label) + "\n" + value)
	}
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top,
		box("Total trips", fmt.Sprintf("%d", k.TotalTrips)),
		box("Assigned", fmt.Sprintf("%.1f%%", k.AssignedPct)),
		box("Avg margin", fmt.Sprintf("$%.2f", k.AvgMargin)),
	))
}

func renderBuckets(w io.Writer, buckets []status.Bucket) {
	for _, b := range buckets {
		fmt.Fprintln(w, bucketStyle(b.Status).Render(fmt.Sprintf("%s (%d)", b.Label, len(b.Records))))
		for _, t := range records.Trips(b.Records) {
			fmt.Fprintln(w, tripLine(t))
		}
	}
}

func tripLine(t records.Trip) string {
	parts := []string{t.TrackingID}
	for _, v := range []string{t.Market, t.Partner, t.DeliveryDatetimeCST, t.BlastingStage, t.DriverAssigned} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	parts = append(parts, fmt.Sprintf("charge $%.2f", t.EstCharge), fmt.Sprintf("margin $%.2f", t.Margin))
	return "  " + strings.Join(parts, " · ")
}
