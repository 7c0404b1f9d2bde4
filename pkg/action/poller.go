// Package action turns submitted asynchronous batch actions into awaitable
// results by polling their status until a terminal state is observed.
package action

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/clinaccel/reponav/internal/metrics"
	"github.com/clinaccel/reponav/pkg/models"
)

// DefaultInterval is the time between status polls.
const DefaultInterval = 2 * time.Second

// ErrCancelled is returned by Poll when the token is deregistered before the
// action reaches a terminal status.
var ErrCancelled = errors.New("action polling cancelled")

// Error is returned by Poll when a terminal action ended with completion
// status ERROR. It carries the full status for detail rendering.
type Error struct {
	Status *models.ActionStatus
}

func (e *Error) Error() string {
	if e.Status != nil && e.Status.Summary.Message != "" {
		return "batch action failed: " + e.Status.Summary.Message
	}
	return "batch action failed"
}

// StatusFetcher fetches the status of a submitted action by token.
type StatusFetcher interface {
	ActionStatus(ctx context.Context, token string, summaryOnly bool) (*models.ActionStatus, error)
}

// Params identifies one submitted action in the in-flight registry.
type Params struct {
	Token string
	Data  any
}

type entry struct {
	params    Params
	cancelled chan struct{}
	once      sync.Once
}

func (e *entry) cancel() {
	e.once.Do(func() { close(e.cancelled) })
}

// Poller is a token-keyed polling engine. Each Poll call drives one
// independent timer; tokens are tracked in an instance-owned registry so
// separate sessions never interfere.
type Poller struct {
	fetcher  StatusFetcher
	interval time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	active map[string]*entry
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the poll interval.
func WithInterval(interval time.Duration) Option {
	return func(p *Poller) { p.interval = interval }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Poller) { p.log = log }
}

// New creates a poller that fetches statuses through fetcher.
func New(fetcher StatusFetcher, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  fetcher,
		interval: DefaultInterval,
		log:      zap.NewNop(),
		active:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll registers the token (replacing and cancelling any prior registration
// of the same token) and blocks until the action reaches a terminal status,
// the token is deregistered, or ctx is done. A terminal status with
// completion status ERROR is returned alongside an *Error; any other
// terminal status is a success. Deregistration fails the wait with
// ErrCancelled rather than leaving it pending.
func (p *Poller) Poll(ctx context.Context, params Params) (*models.ActionStatus, error) {
	e := p.register(params)
	metrics.PollStarted()
	defer metrics.PollEnded()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.deregister(params.Token, e)
			return nil, ctx.Err()
		case <-e.cancelled:
			return nil, ErrCancelled
		case <-ticker.C:
		}

		status, err := p.fetcher.ActionStatus(ctx, params.Token, false)
		if err != nil {
			p.deregister(params.Token, e)
			if errors.Is(err, context.Canceled) {
				return nil, ErrCancelled
			}
			return nil, err
		}
		if !status.Done() {
			continue
		}

		p.deregister(params.Token, e)
		if status.Failed() {
			p.log.Warn("batch action failed",
				zap.String("token", params.Token),
				zap.String("message", status.Summary.Message))
			return status, &Error{Status: status}
		}
		p.log.Debug("batch action completed", zap.String("token", params.Token))
		return status, nil
	}
}

// EndPolling deregisters a token, failing its pending Poll with
// ErrCancelled. Unknown tokens are ignored.
func (p *Poller) EndPolling(token string) {
	p.mu.Lock()
	e, ok := p.active[token]
	if ok {
		delete(p.active, token)
	}
	p.mu.Unlock()
	if ok {
		e.cancel()
	}
}

// Active reports whether a token is currently registered.
func (p *Poller) Active(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.active[token]
	return ok
}

func (p *Poller) register(params Params) *entry {
	e := &entry{params: params, cancelled: make(chan struct{})}
	p.mu.Lock()
	prior, replaced := p.active[params.Token]
	p.active[params.Token] = e
	p.mu.Unlock()
	if replaced {
		prior.cancel()
	}
	return e
}

// deregister removes the token only while it still maps to e, so a
// replacement registration is never torn down by its predecessor.
func (p *Poller) deregister(token string, e *entry) {
	p.mu.Lock()
	if current, ok := p.active[token]; ok && current == e {
		delete(p.active, token)
	}
	p.mu.Unlock()
}
