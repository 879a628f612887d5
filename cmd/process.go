package cmd

import (
	"context"
	"fmt"
	"os"

	rangehttp "github.com/tanq16/rangedl/internal/downloaders/http"
	"github.com/tanq16/rangedl/internal/output"
	"github.com/tanq16/rangedl/internal/scheduler"
	"github.com/tanq16/rangedl/internal/utils"
)

func httpConfig() utils.HTTPClientConfig {
	return utils.HTTPClientConfig{
		Timeout:   timeout,
		KATimeout: kaTimeout,
		UserAgent: userAgent,
	}
}

func downloadOptions() (rangehttp.Options, error) {
	if workers < 0 {
		return rangehttp.Options{}, fmt.Errorf("%w: --workers must not be negative", utils.ErrConfig)
	}
	if retries < 0 {
		return rangehttp.Options{}, fmt.Errorf("%w: --retries must not be negative", utils.ErrConfig)
	}
	if maxRedirects < 0 {
		return rangehttp.Options{}, fmt.Errorf("%w: --max-redirects must not be negative", utils.ErrConfig)
	}
	opts := rangehttp.DefaultOptions()
	opts.Workers = workers
	opts.Retries = retries
	opts.MaxRedirects = maxRedirects
	opts.HTTPConfig = httpConfig()
	return opts, nil
}

// runSpecs downloads every spec with at most numJobs downloads in flight and
// prints the summary. Any failed download makes the returned error non-nil.
func runSpecs(ctx context.Context, specs []utils.DownloadSpec, numJobs int) error {
	log := utils.GetLogger("cmd")
	opts, err := downloadOptions()
	if err != nil {
		return err
	}
	for _, spec := range specs {
		if spec.OutputDir == "" {
			continue
		}
		if err := os.MkdirAll(spec.OutputDir, 0755); err != nil {
			return fmt.Errorf("%w: error creating output directory %s: %v", utils.ErrConfig, spec.OutputDir, err)
		}
	}

	jobs := scheduler.NewJobs(specs)
	log.Info().Int("downloads", len(jobs)).Int("workers", opts.Workers).Msg("Starting")
	outcomes := scheduler.Run(ctx, jobs, numJobs, rangehttp.NewDownloader(opts))
	output.ShowSummary(outcomes)

	failures := scheduler.Failures(outcomes)
	log.Info().Int("downloads", len(outcomes)).Int("failed", failures).Msg("Finished")
	if failures == 0 {
		return nil
	}
	if len(outcomes) == 1 {
		return fmt.Errorf("download failed: %s", outcomes[0].Job.Spec.URI)
	}
	return fmt.Errorf("%d of %d downloads failed", failures, len(outcomes))
}
