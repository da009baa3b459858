package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var worksheetsCmd = &cobra.Command{
	Use:   "worksheets",
	Short: "List worksheets and show which one would be loaded",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, src, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer closeSource(src)

		out := cmd.OutOrStdout()
		for _, name := range src.Worksheets {
			if name == src.Worksheet {
				fmt.Fprintln(out, successStyle.Render("* "+name))
				continue
			}
			fmt.Fprintln(out, "  "+name)
		}
		return nil
	},
}
