package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	rangehttp "github.com/tanq16/rangedl/internal/downloaders/http"
	"github.com/tanq16/rangedl/internal/output"
	"github.com/tanq16/rangedl/internal/utils"
)

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe [URI] [BLOCK_SIZE]",
		Short: "Show length, range support and the download plan for a URI",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxRedirects < 0 {
				return fmt.Errorf("%w: --max-redirects must not be negative", utils.ErrConfig)
			}
			var blockSize int64
			if len(args) == 2 {
				size, err := utils.ParseBlockSize(args[1])
				if err != nil {
					return err
				}
				blockSize = size
			}
			prober := rangehttp.NewProber(utils.NewRangeClient(httpConfig()), maxRedirects)
			result, err := prober.Probe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			output.PrintHeader(args[0])
			for _, line := range describeProbe(result) {
				output.PrintInfo(line)
			}
			if !result.SupportsRanges {
				output.PrintWarning("Server does not support byte ranges, downloads use a single request")
			}
			if blockSize == 0 {
				return nil
			}
			decision, err := rangehttp.Decide(result, blockSize)
			if err != nil {
				return err
			}
			output.PrintSuccess(describeDecision(decision, blockSize))
			return nil
		},
	}
}

func describeProbe(result rangehttp.ProbeResult) []string {
	length := "unknown"
	if result.HasLength {
		length = fmt.Sprintf("%d bytes (%s)", result.ContentLength, utils.FormatBytes(result.ContentLength))
	}
	return []string{
		fmt.Sprintf("Final URI: %s", result.FinalURI),
		fmt.Sprintf("Redirects: %d", result.Hops),
		fmt.Sprintf("Length: %s", length),
		fmt.Sprintf("Ranges: %t", result.SupportsRanges),
	}
}

func describeDecision(decision rangehttp.Decision, blockSize int64) string {
	switch decision.Kind {
	case rangehttp.DecisionEmpty:
		return "Plan: empty, nothing to download"
	case rangehttp.DecisionWhole:
		return "Plan: whole file in one request"
	}
	last := decision.Blocks[len(decision.Blocks)-1]
	// block 0 carries the remainder
	return fmt.Sprintf("Plan: %d blocks of %s, first block %s, last range %d-%d",
		len(decision.Blocks), utils.FormatBytes(blockSize), utils.FormatBytes(decision.Blocks[0].Size()), last.Start, last.End)
}
