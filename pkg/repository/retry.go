package repository

import (
	"math"
	"math/rand"
	"net/http"
	"time"
)

// retryPolicy controls how transient transport failures are retried.
type retryPolicy struct {
	MaxAttempts int           // total attempts, including the first
	InitialWait time.Duration // wait before the second attempt
	MaxWait     time.Duration
	Multiplier  float64
	Jitter      float64 // jitter factor (0-1)
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		MaxAttempts: 3,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     2 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.1,
	}
}

func (p retryPolicy) wait(attempt int) time.Duration {
	wait := float64(p.InitialWait) * math.Pow(p.Multiplier, float64(attempt-1))
	if wait > float64(p.MaxWait) {
		wait = float64(p.MaxWait)
	}
	if p.Jitter > 0 {
		wait += wait * p.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(wait)
}

// retryTransport re-issues requests that failed on the network or answered
// with a transient gateway status. Only requests whose body can be replayed
// are retried; auth handling sits above this layer, so a 401 is never seen
// here as retryable.
type retryTransport struct {
	base   http.RoundTripper
	policy retryPolicy
}

func newRetryTransport(base http.RoundTripper) *retryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &retryTransport{base: base, policy: defaultRetryPolicy()}
}

func transientStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func replayable(req *http.Request) bool {
	if req.Body == nil || req.Body == http.NoBody {
		return true
	}
	return req.GetBody != nil
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !replayable(req) {
		return t.base.RoundTrip(req)
	}

	var resp *http.Response
	var err error
	for attempt := 1; attempt <= t.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if req.Body != nil && req.Body != http.NoBody {
				body, bodyErr := req.GetBody()
				if bodyErr != nil {
					return nil, bodyErr
				}
				req.Body = body
			}
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(t.policy.wait(attempt - 1)):
			}
		}

		resp, err = t.base.RoundTrip(req)
		if err != nil {
			if req.Context().Err() != nil {
				return nil, err
			}
			continue
		}
		if !transientStatus(resp.StatusCode) {
			return resp, nil
		}
		if attempt < t.policy.MaxAttempts {
			resp.Body.Close()
		}
	}
	return resp, err
}
