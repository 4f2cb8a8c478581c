package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scttfrdmn/readstructure-go/pkg/readstructure"
)

var extractCmd = &cobra.Command{
	Use:   "extract <read-structure> <bases> [quals]",
	Short: "Split a read into its segments",
	Long: `Slice the bases of a single read, and optionally its qualities, by a
read structure and print one line per segment.

Example:
  readstructure extract 4M2S+T ACGTNNGATTACA`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := readstructure.Parse(args[0])
		if err != nil {
			return err
		}

		bases := []byte(args[1])
		var quals []byte
		if len(args) == 3 {
			quals = []byte(args[2])
		}

		segments, err := rs.Resolve(len(bases))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, seg := range segments {
			if quals == nil {
				b, err := seg.ExtractBases(bases)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", seg, seg.Kind(), b)
				continue
			}

			b, q, err := seg.ExtractBasesAndQuals(bases, quals)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", seg, seg.Kind(), b, q)
		}
		return nil
	},
}
