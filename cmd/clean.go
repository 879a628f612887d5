package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tanq16/rangedl/internal/output"
	"github.com/tanq16/rangedl/internal/utils"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [OUTPUT_DIR] [OUTPUT_FILE_NAME]",
		Short: "Remove leftover part and temporary files for an output name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := utils.CleanParts(args[0], args[1])
			if err != nil {
				return fmt.Errorf("error cleaning up %s: %w", args[1], err)
			}
			if len(removed) == 0 {
				output.PrintInfo("Nothing to clean")
				return nil
			}
			for _, path := range removed {
				output.PrintDebug(path)
			}
			output.PrintSuccess(fmt.Sprintf("Removed %d file(s)", len(removed)))
			return nil
		},
	}
}
