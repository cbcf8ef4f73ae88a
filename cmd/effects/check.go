package main

import (
	"fmt"
	"os"

	"github.com/BarrensZeppelin/effects"
	"github.com/BarrensZeppelin/effects/internal/maps"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <log>",
	Short: "Parse a constraint log and verify its structure",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		records, err := effects.ParseLog(f)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		if err := effects.CheckLog(records); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		counts := map[effects.RecordKind]int{}
		for _, r := range records {
			counts[r.Kind]++
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %d records\n", args[0], len(records))
		for _, kind := range maps.SortedKeys(counts) {
			fmt.Fprintf(out, "  %-12s %d\n", kind, counts[kind])
		}
		return nil
	},
}
