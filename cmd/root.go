package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tanq16/rangedl/internal/output"
	"github.com/tanq16/rangedl/internal/utils"
)

var (
	workers      int
	retries      int
	maxRedirects int
	timeout      time.Duration
	kaTimeout    time.Duration
	userAgent    string
	debug        bool
	logJSON      bool
)

var RangedlVersion = "dev"

var rootCmd = &cobra.Command{
	Use:   "rangedl <block_size> <uri> <output_dir> <output_file_name>",
	Short: "rangedl downloads a file over HTTP using concurrent range requests",
	Long: `rangedl probes the remote file, splits it into blocks of block_size bytes,
fetches the blocks in parallel and merges them into output_dir/output_file_name.
Servers without range support are fetched in a single request.`,
	Version:       RangedlVersion,
	Args:          downloadArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(debug, logJSON)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := buildSpec(args)
		if err != nil {
			return err
		}
		return runSpecs(cmd.Context(), []utils.DownloadSpec{spec}, 1)
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		output.PrintError(err.Error())
		os.Exit(1)
	}
	stop()
}

// downloadArgs rejects anything but the four positional arguments.
func downloadArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("%w: usage: %s (got %d argument(s))", utils.ErrConfig, cmd.Use, len(args))
	}
	if len(args) > 4 {
		return fmt.Errorf("%w: unexpected extra arguments %q", utils.ErrConfig, args[4:])
	}
	return nil
}

func buildSpec(args []string) (utils.DownloadSpec, error) {
	blockSize, err := utils.ParseBlockSize(args[0])
	if err != nil {
		return utils.DownloadSpec{}, err
	}
	spec := utils.DownloadSpec{
		BlockSize:  blockSize,
		URI:        args[1],
		OutputDir:  args[2],
		OutputName: args[3],
	}
	return spec, spec.Validate()
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", utils.DefaultWorkers, "Concurrent block fetches per download (0 starts one per block; above 5 enables high-thread-mode)")
	rootCmd.PersistentFlags().IntVarP(&retries, "retries", "r", utils.DefaultRetries, "Retries per block or whole fetch before the download fails")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", utils.DefaultTimeout, "Timeout for the TLS handshake and response headers; body transfers are not limited (eg. 5s, 10m)")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", utils.DefaultKATimeout, "Keep-alive timeout for idle connections (eg. 10s, 1m, 80s)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent")

	// flags without shorthand
	rootCmd.PersistentFlags().IntVar(&maxRedirects, "max-redirects", utils.DefaultMaxRedirects, "Maximum Location hops followed while probing")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON lines")

	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newProbeCmd())
	rootCmd.AddCommand(newCleanCmd())
}
