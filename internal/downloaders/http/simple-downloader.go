package rangehttp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/tanq16/rangedl/internal/utils"
)

// WholeFetcher downloads the resource with a single unranged GET.
type WholeFetcher struct {
	client  *utils.RangeClient
	retries int
}

func NewWholeFetcher(client *utils.RangeClient, retries int) *WholeFetcher {
	return &WholeFetcher{client: client, retries: max(retries, 0)}
}

// Fetch writes the body to artifactPath+".download" and renames it into
// place. expected < 0 means the length is unknown and is not checked.
func (f *WholeFetcher) Fetch(ctx context.Context, uri, artifactPath string, expected int64) (int64, error) {
	log := utils.GetLogger("whole")
	tempPath := artifactPath + utils.WholeTempSuffix
	var lastErr error
	for attempt := range f.retries + 1 {
		if attempt > 0 {
			log.Debug().Int("attempt", attempt+1).Int("maxAttempts", f.retries+1).Msg("Retrying download")
			if err := waitBackoff(ctx, attempt); err != nil {
				os.Remove(tempPath)
				return 0, fmt.Errorf("%w: %w", utils.ErrFetch, err)
			}
		}
		written, err := f.fetchOnce(ctx, uri, tempPath, expected)
		if err == nil {
			if err := os.Rename(tempPath, artifactPath); err != nil {
				os.Remove(tempPath)
				return 0, fmt.Errorf("%w: error finalizing %s: %v", utils.ErrFetch, artifactPath, err)
			}
			log.Debug().Str("path", artifactPath).Int64("bytes", written).Msg("Download complete")
			return written, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			lastErr = errors.Join(ctx.Err(), err)
			break
		}
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("Download attempt failed")
	}
	os.Remove(tempPath)
	return 0, fmt.Errorf("%w: %s: %w", utils.ErrFetch, uri, lastErr)
}

func (f *WholeFetcher) fetchOnce(ctx context.Context, uri, tempPath string, expected int64) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return 0, fmt.Errorf("error creating GET request: %v", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}
	written, err := writeBody(tempPath, resp.Body)
	if err != nil {
		return written, err
	}
	if expected >= 0 && written != expected {
		return written, fmt.Errorf("size mismatch: expected %d bytes, got %d", expected, written)
	}
	return written, nil
}
