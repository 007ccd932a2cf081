package fetcher

import (
	"context"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	retryBaseDelay = time.Second
	retryMaxDelay  = 30 * time.Second
)

// HTTPOptions carries tunables for the HTTP fetcher. Zero values get
// sensible defaults from NewHTTPFetcher.
type HTTPOptions struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRetries   int
	RateLimiters map[string]*rate.Limiter
}

// HTTPFetcher implements Fetcher over net/http. Every request passes a
// per-host rate limiter before it goes out, and transient failures
// (connection errors, 429, 5xx) retry with exponential backoff.
type HTTPFetcher struct {
	client           *http.Client
	opts             HTTPOptions
	limiters         map[string]*rate.Limiter
	adaptiveLimiters map[string]*AdaptiveLimiter
}

// NewHTTPFetcher builds a fetcher with pooled connections and the
// per-host limiter table.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "atlas-cli/1.0"
	}
	limiters := opts.RateLimiters
	if limiters == nil {
		limiters = DefaultRateLimiters()
	}
	client := &http.Client{
		Timeout: opts.Timeout,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     20,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	return &HTTPFetcher{
		client:           client,
		opts:             opts,
		limiters:         limiters,
		adaptiveLimiters: DefaultAdaptiveLimiters(),
	}
}

// Download issues a GET and hands back the body on a 200. Any other
// terminal status is an error.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "http: build request for %s", rawURL)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.doWithRetry(ctx, req)
	if err != nil {
		return nil, eris.Wrapf(err, "http: get %s", rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, eris.Errorf("download: unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return resp.Body, nil
}

// DownloadToFile streams the URL into a local file and reports the
// number of bytes written.
func (f *HTTPFetcher) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	body, err := f.Download(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer body.Close() //nolint:errcheck

	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrapf(err, "http: create %s", path)
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, body)
	if err != nil {
		return n, eris.Wrapf(err, "http: write %s", path)
	}
	return n, nil
}

// doWithRetry issues the request up to MaxRetries times. A response that
// is neither 429 nor 5xx ends the loop, including client errors, which
// the caller turns into its own failure.
func (f *HTTPFetcher) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	adaptive := f.adaptiveLimiters[req.URL.Host]

	var lastErr error
	for attempt := range f.opts.MaxRetries {
		if err := f.throttle(ctx, adaptive, req.URL.String()); err != nil {
			return nil, err
		}

		resp, err := f.client.Do(req.Clone(ctx))
		switch {
		case err != nil:
			lastErr = err
			zap.L().Warn("http: transport error, will retry",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
		case resp.StatusCode == http.StatusTooManyRequests:
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http 429 from %s", req.URL.String())
			if adaptive != nil {
				adaptive.OnRateLimit()
			}
			zap.L().Warn("http: got 429, backing off",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
			)
		case resp.StatusCode >= 500:
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, req.URL.String())
			zap.L().Warn("http: server error, will retry",
				zap.String("url", req.URL.String()),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
		default:
			if adaptive != nil {
				adaptive.OnSuccess()
			}
			return resp, nil
		}

		// No point backing off after the last attempt.
		if attempt < f.opts.MaxRetries-1 {
			sleepBackoff(ctx, attempt)
		}
	}

	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

// throttle waits on the host's adaptive limiter when one exists, and on
// the static per-host limiter otherwise.
func (f *HTTPFetcher) throttle(ctx context.Context, adaptive *AdaptiveLimiter, rawURL string) error {
	var err error
	if adaptive != nil {
		err = adaptive.Wait(ctx)
	} else {
		lim, ok := f.limiters[hostOf(rawURL)]
		if !ok {
			lim = rate.NewLimiter(20, 20)
		}
		err = lim.Wait(ctx)
	}
	if err != nil {
		return eris.Wrap(err, "http: limiter wait")
	}
	return nil
}

// sleepBackoff sleeps 2^attempt seconds, capped, plus up to 50% jitter.
// Returns early if the context ends.
func sleepBackoff(ctx context.Context, attempt int) {
	d := min(retryBaseDelay<<attempt, retryMaxDelay)
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
