package rangehttp

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tanq16/rangedl/internal/utils"
)

type State int

const (
	StateProbing State = iota
	StateDeciding
	StateWholeDownload
	StateBlockDownload
	StateMerging
	StateDone
	StateProbeFailed
	StatePlanEmpty
	StatePlanFailed
	StateFetchFailed
	StateMergeFailed
	StateInvalid
)

var stateNames = map[State]string{
	StateProbing:       "probing",
	StateDeciding:      "deciding",
	StateWholeDownload: "whole-download",
	StateBlockDownload: "block-download",
	StateMerging:       "merging",
	StateDone:          "done",
	StateProbeFailed:   "probe-failed",
	StatePlanEmpty:     "plan-empty",
	StatePlanFailed:    "plan-failed",
	StateFetchFailed:   "fetch-failed",
	StateMergeFailed:   "merge-failed",
	StateInvalid:       "invalid",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether the run has stopped in s.
func (s State) Terminal() bool {
	return s >= StateDone
}

type Options struct {
	// Workers caps concurrent block fetches. 0 starts one worker per block.
	Workers      int
	Retries      int
	MaxRedirects int
	HTTPConfig   utils.HTTPClientConfig
}

func DefaultOptions() Options {
	return Options{
		Workers:      utils.DefaultWorkers,
		Retries:      utils.DefaultRetries,
		MaxRedirects: utils.DefaultMaxRedirects,
		HTTPConfig: utils.HTTPClientConfig{
			Timeout:   utils.DefaultTimeout,
			KATimeout: utils.DefaultKATimeout,
			UserAgent: utils.ToolUserAgent,
		},
	}
}

// Result describes where a run ended. Path is empty unless an artifact was
// written.
type Result struct {
	State    State
	Probe    ProbeResult
	Decision Decision
	Path     string
	Bytes    int64
	Elapsed  time.Duration
}

type Downloader struct {
	prober  *Prober
	blocks  *BlockFetcher
	whole   *WholeFetcher
	workers int
}

func NewDownloader(opts Options) *Downloader {
	cfg := opts.HTTPConfig
	cfg.HighThreadMode = opts.Workers == 0 || opts.Workers > 5
	client := utils.NewRangeClient(cfg)
	return &Downloader{
		prober:  NewProber(client, opts.MaxRedirects),
		blocks:  NewBlockFetcher(client, opts.Retries),
		whole:   NewWholeFetcher(client, opts.Retries),
		workers: max(opts.Workers, 0),
	}
}

// Run drives probe -> plan -> (whole | blocks + merge) for one spec.
// An empty remote resource ends in StatePlanEmpty with a nil error.
func (d *Downloader) Run(ctx context.Context, spec utils.DownloadSpec) (Result, error) {
	log := utils.GetLogger("downloader").With().Str("uri", spec.URI).Str("output", spec.ArtifactPath()).Logger()
	start := time.Now()
	result := Result{State: StateProbing}
	finish := func(state State, err error) (Result, error) {
		result.State = state
		result.Elapsed = time.Since(start)
		return result, err
	}
	if err := spec.Validate(); err != nil {
		return finish(StateInvalid, err)
	}

	probe, err := d.prober.Probe(ctx, spec.URI)
	if err != nil {
		return finish(StateProbeFailed, err)
	}
	result.Probe = probe
	result.State = StateDeciding

	decision, err := Decide(probe, spec.BlockSize)
	if err != nil {
		return finish(StatePlanFailed, err)
	}
	result.Decision = decision
	log.Debug().Str("decision", decision.Kind.String()).Int("blocks", len(decision.Blocks)).Str("length", utils.FormatBytes(probe.ContentLength)).Msg("Plan decided")

	// workers only see this copy of the resolved uri
	uri := probe.FinalURI
	switch decision.Kind {
	case DecisionEmpty:
		log.Info().Msg("Remote resource is empty, nothing to download")
		return finish(StatePlanEmpty, nil)

	case DecisionWhole:
		result.State = StateWholeDownload
		expected := int64(-1)
		if probe.HasLength {
			expected = probe.ContentLength
		}
		written, err := d.whole.Fetch(ctx, uri, spec.ArtifactPath(), expected)
		if err != nil {
			return finish(StateFetchFailed, err)
		}
		result.Path = spec.ArtifactPath()
		result.Bytes = written
		return finish(StateDone, nil)

	default:
		result.State = StateBlockDownload
		if err := d.fetchBlocks(ctx, uri, spec, decision.Blocks); err != nil {
			return finish(StateFetchFailed, err)
		}
		result.State = StateMerging
		written, err := Merge(spec.OutputDir, spec.OutputName, len(decision.Blocks), probe.ContentLength)
		if err != nil {
			return finish(StateMergeFailed, err)
		}
		result.Path = spec.ArtifactPath()
		result.Bytes = written
		return finish(StateDone, nil)
	}
}

// fetchBlocks runs the block phase. The first failure cancels the remaining
// workers; Wait returns only after every worker has exited, so the merge
// step never overlaps with a fetch.
func (d *Downloader) fetchBlocks(ctx context.Context, uri string, spec utils.DownloadSpec, blocks []Block) error {
	log := utils.GetLogger("downloader")
	group, groupCtx := errgroup.WithContext(ctx)
	if d.workers > 0 {
		group.SetLimit(d.workers)
	}
	log.Debug().Int("blocks", len(blocks)).Int("workers", d.workers).Msg("Starting block download")
	for _, block := range blocks {
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return &BlockError{Index: block.Index, Err: groupCtx.Err()}
			}
			return d.blocks.Fetch(groupCtx, uri, block, spec.PartPath(block.Index))
		})
	}
	if err := group.Wait(); err != nil {
		for _, block := range blocks {
			os.Remove(spec.PartPath(block.Index))
		}
		return err
	}
	return nil
}
