package cmd

import (
	"fmt"
	"strings"

	"blasting_tracker/internal/app"
	"blasting_tracker/internal/reconcile"

	"github.com/spf13/cobra"
)

var editSets []string

var editCmd = &cobra.Command{
	Use:   "edit <tracking-id>",
	Short: "Write field changes for one trip back to the worksheet",
	Example: `  blasting-tracker edit TRK-1042 --set status=assigned --set driver_assigned="Ana R"
  blasting-tracker edit TRK-1042 --set current_driver_earnings_1=185`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringArrayVar(&editSets, "set", nil, "field=value to write (repeatable)")
	_ = editCmd.MarkFlagRequired("set")
}

// parseSets turns field=value pairs into edit fields. Values stay text; the
// reconciler coerces monetary fields.
func parseSets(sets []string) (map[string]any, error) {
	fields := make(map[string]any, len(sets))
	for _, s := range sets {
		field, value, ok := strings.Cut(s, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --set %q, expected field=value", s)
		}
		fields[field] = strings.TrimSpace(value)
	}
	return fields, nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	fields, err := parseSets(editSets)
	if err != nil {
		return err
	}

	sess, src, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSource(src)

	result, change, err := sess.Edit(cmd.Context(), reconcile.EditRequest{TrackingID: args[0], Fields: fields})
	out := cmd.OutOrStdout()
	if err != nil {
		if len(result.Written) > 0 {
			fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("Partially saved: %s", strings.Join(result.Written, ", "))))
		}
		return err
	}

	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Saved %s (row %d): %s", result.TrackingID, result.Row, strings.Join(result.Written, ", "))))
	if len(result.Skipped) > 0 {
		fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("Not in worksheet, skipped: %s", strings.Join(result.Skipped, ", "))))
	}
	if change != nil {
		app.InitializeNotificationClient(cfg).NotifyStatusChange(cmd.Context(), change.TrackingID, change.From, change.To)
	}
	return nil
}
