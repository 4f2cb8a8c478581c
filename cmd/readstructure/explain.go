package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scttfrdmn/readstructure-go/internal/ui"
	"github.com/scttfrdmn/readstructure-go/pkg/readstructure"
)

var explainCmd = &cobra.Command{
	Use:   "explain <read-structure>...",
	Short: "Describe the segments of read structures",
	Long: `Parse each read structure and list its segments with their offsets,
lengths and kinds. Invalid structures are reported with the offending part
highlighted.

Examples:
  readstructure explain 8B8B+T
  readstructure explain "75T 8B 8B 75T"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		styles := ui.NewStyles(ui.IsColorEnabled(colorMode, cmd.OutOrStdout()))
		for i, arg := range args {
			rs, err := readstructure.Parse(arg)
			if err != nil {
				return err
			}
			if i > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprintln(cmd.OutOrStdout(), styles.Header.Render(rs.String()))
			fmt.Fprint(cmd.OutOrStdout(), styles.RenderStructure(rs))
		}
		return nil
	},
}
