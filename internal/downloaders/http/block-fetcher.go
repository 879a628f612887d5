package rangehttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tanq16/rangedl/internal/utils"
)

// BlockFetcher downloads one block into its part slot.
type BlockFetcher struct {
	client  *utils.RangeClient
	retries int
}

func NewBlockFetcher(client *utils.RangeClient, retries int) *BlockFetcher {
	return &BlockFetcher{client: client, retries: max(retries, 0)}
}

// Fetch retries transient failures up to the configured count and returns a
// *BlockError once they are exhausted or ctx is cancelled.
func (f *BlockFetcher) Fetch(ctx context.Context, uri string, block Block, partPath string) error {
	log := utils.GetLogger("block").With().Int("block", block.Index).Logger()
	var lastErr error
	for attempt := range f.retries + 1 {
		if attempt > 0 {
			log.Debug().Int("attempt", attempt+1).Int("maxAttempts", f.retries+1).Msg("Retrying block")
			if err := waitBackoff(ctx, attempt); err != nil {
				return &BlockError{Index: block.Index, Err: err}
			}
		}
		err := f.fetchOnce(ctx, uri, block, partPath)
		if err == nil {
			log.Debug().Int64("start", block.Start).Int64("end", block.End).Str("part", partPath).Msg("Block complete")
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return &BlockError{Index: block.Index, Err: errors.Join(ctx.Err(), err)}
		}
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("Error downloading block")
	}
	return &BlockError{Index: block.Index, Err: lastErr}
}

func (f *BlockFetcher) fetchOnce(ctx context.Context, uri string, block Block, partPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return fmt.Errorf("error creating GET request: %v", err)
	}
	req.Header.Set("Range", block.RangeHeader())
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPartialContent {
		return fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, block.RangeHeader())
	}
	if resp.Header.Get("Content-Range") == "" {
		return errors.New("missing Content-Range header")
	}
	written, err := writeBody(partPath, resp.Body)
	if err != nil {
		return err
	}
	if written != block.Size() {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", block.Size(), written)
	}
	return nil
}
