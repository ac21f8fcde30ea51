package resultsio

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	apperrors "github.com/rsavio/attrfilter/pkg/errors"
	"github.com/rsavio/attrfilter/pkg/resilience"
)

// ReadFile opens path and parses it as a results list. A file that cannot
// be opened yields an error wrapping ErrResource; malformed contents yield
// an error wrapping ErrInputFormat.
func ReadFile(path string) (ResultsList, error) {
	f, err := os.Open(path)
	if err != nil {
		return ResultsList{}, fmt.Errorf("%w: opening %s: %v", apperrors.ErrResource, path, err)
	}
	defer f.Close()
	return ReadList(f, false)
}

// ReadRemote fetches a results list over HTTP, retrying any failed attempt
// (up to 3 attempts) with exponential backoff and bounding the whole fetch
// with timeout. Request, transport and non-200 status failures wrap
// ErrResource; a body that does not parse wraps ErrInputFormat and is
// retried like any other failure.
func ReadRemote(ctx context.Context, url string, timeout time.Duration) (ResultsList, error) {
	var list ResultsList
	err := resilience.WithTimeout(ctx, timeout, "resultsio.ReadRemote", func(ctx context.Context) error {
		return resilience.Retry(ctx, "resultsio.ReadRemote", resilience.RetryConfig{MaxAttempts: 3}, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return fmt.Errorf("%w: building request: %v", apperrors.ErrResource, err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return fmt.Errorf("%w: fetching %s: %v", apperrors.ErrResource, url, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("%w: fetching %s: status %d", apperrors.ErrResource, url, resp.StatusCode)
			}
			parsed, err := ReadList(resp.Body, false)
			if err != nil {
				return err
			}
			list = parsed
			return nil
		})
	})
	if err != nil {
		return ResultsList{}, err
	}
	return list, nil
}
