package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tanq16/rangedl/internal/utils"
)

// BatchEntry is one download in a batch file. BlockSize may be omitted and
// falls back to --block-size.
type BatchEntry struct {
	BlockSize string `yaml:"block_size,omitempty"`
	URI       string `yaml:"uri"`
	Dir       string `yaml:"dir,omitempty"`
	Name      string `yaml:"name"`
}

func newBatchCmd() *cobra.Command {
	var numJobs int
	var defaultBlockSize string

	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE]",
		Short: "Run multiple downloads from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if numJobs < 1 {
				return fmt.Errorf("%w: --jobs must be at least 1", utils.ErrConfig)
			}
			blockSize, err := utils.ParseBlockSize(defaultBlockSize)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("%w: error reading batch file: %v", utils.ErrConfig, err)
			}
			specs, err := parseBatch(data, blockSize)
			if err != nil {
				return err
			}
			return runSpecs(cmd.Context(), specs, numJobs)
		},
	}

	cmd.Flags().IntVarP(&numJobs, "jobs", "j", 1, "Number of downloads to run in parallel")
	cmd.Flags().StringVar(&defaultBlockSize, "block-size", "8MiB", "Block size for entries without block_size")
	return cmd
}

// parseBatch turns the YAML list into specs. Entry numbers in errors start
// at 1.
func parseBatch(data []byte, defaultBlockSize int64) ([]utils.DownloadSpec, error) {
	var entries []BatchEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: error parsing batch file: %v", utils.ErrConfig, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: batch file has no entries", utils.ErrConfig)
	}
	specs := make([]utils.DownloadSpec, 0, len(entries))
	for i, entry := range entries {
		n := i + 1
		if strings.TrimSpace(entry.URI) == "" {
			return nil, fmt.Errorf("%w: entry %d: uri is required", utils.ErrConfig, n)
		}
		if entry.Name == "" {
			return nil, fmt.Errorf("%w: entry %d: name is required", utils.ErrConfig, n)
		}
		blockSize := defaultBlockSize
		if entry.BlockSize != "" {
			size, err := utils.ParseBlockSize(entry.BlockSize)
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", n, err)
			}
			blockSize = size
		}
		spec := utils.DownloadSpec{
			BlockSize:  blockSize,
			URI:        entry.URI,
			OutputDir:  entry.Dir,
			OutputName: entry.Name,
		}
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", n, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
