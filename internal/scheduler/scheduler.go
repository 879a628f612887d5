package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	rangehttp "github.com/tanq16/rangedl/internal/downloaders/http"
	"github.com/tanq16/rangedl/internal/utils"
)

// Runner performs one download. *rangehttp.Downloader satisfies it.
type Runner interface {
	Run(ctx context.Context, spec utils.DownloadSpec) (rangehttp.Result, error)
}

type Job struct {
	ID   string
	Spec utils.DownloadSpec
}

type Outcome struct {
	Job     Job
	Result  rangehttp.Result
	Err     error
	Elapsed time.Duration
}

func (o Outcome) Failed() bool {
	return o.Err != nil
}

// NewJobs assigns each spec a random job id.
func NewJobs(specs []utils.DownloadSpec) []Job {
	jobs := make([]Job, 0, len(specs))
	for _, spec := range specs {
		jobs = append(jobs, Job{ID: uuid.NewString(), Spec: spec})
	}
	return jobs
}

// Run executes jobs with at most numWorkers in flight. Jobs are independent:
// a failing job does not stop the others. Outcomes keep the order of jobs.
func Run(ctx context.Context, jobs []Job, numWorkers int, runner Runner) []Outcome {
	log := utils.GetLogger("scheduler")
	if numWorkers <= 0 {
		numWorkers = 1
	}
	numWorkers = min(numWorkers, max(len(jobs), 1))
	log.Debug().Int("jobs", len(jobs)).Int("workers", numWorkers).Msg("Starting scheduler")

	outcomes := make([]Outcome, len(jobs))
	indexCh := make(chan int, len(jobs))
	for i := range jobs {
		indexCh <- i
	}
	close(indexCh)

	var wg sync.WaitGroup
	for workerID := range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger := log.With().Int("workerID", workerID).Logger()
			for i := range indexCh {
				job := jobs[i]
				if ctx.Err() != nil {
					outcomes[i] = Outcome{Job: job, Err: ctx.Err()}
					continue
				}
				logger.Debug().Str("job", job.ID).Str("uri", job.Spec.URI).Msg("Worker starting download")
				start := time.Now()
				result, err := runner.Run(ctx, job.Spec)
				outcomes[i] = Outcome{Job: job, Result: result, Err: err, Elapsed: time.Since(start)}
				if err != nil {
					logger.Error().Err(err).Str("job", job.ID).Str("state", result.State.String()).Msg("Download failed")
				} else {
					logger.Debug().Str("job", job.ID).Str("state", result.State.String()).Msg("Download finished")
				}
			}
		}()
	}
	wg.Wait()
	return outcomes
}

// Failures counts outcomes with an error.
func Failures(outcomes []Outcome) int {
	failed := 0
	for _, outcome := range outcomes {
		if outcome.Failed() {
			failed++
		}
	}
	return failed
}
