package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/guregu/null/v5"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

type HTTPChecker struct {
	client  *http.Client
	timeout time.Duration
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPChecker{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Check issues a single GET bounded by the configured timeout. It never
// returns an error: transport failures (connect, DNS, TLS, timeout) are
// recorded on the result as ErrorMessage with Up=false. A completed
// response is up iff the status code is exactly 200; any other status
// keeps the code and elapsed time but no error message.
func (c *HTTPChecker) Check(ctx context.Context, target string) domain.ProbeResult {
	res := domain.ProbeResult{
		Timestamp: time.Now(),
		URL:       target,
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		res.ErrorMessage = null.StringFrom(err.Error())
		return res
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		res.ErrorMessage = null.StringFrom(err.Error())
		return res
	}
	// Latency is time to headers; the body drain below is not counted.
	elapsed := time.Since(start)
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	res.ResponseTime = null.FloatFrom(elapsed.Seconds())
	res.StatusCode = null.IntFrom(int64(resp.StatusCode))
	res.Up = resp.StatusCode == http.StatusOK
	return res
}

var _ Checker = (*HTTPChecker)(nil)
