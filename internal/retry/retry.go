package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"disclabel/internal/logging"
	"disclabel/internal/services"
)

const (
	defaultMaxRetries     = 5
	defaultBaseDelay      = time.Second
	defaultJitter         = 500 * time.Millisecond
	defaultAttemptTimeout = 15 * time.Second
)

// Policy controls how many times a call is retried and how long to wait
// between attempts. A Policy is stateless and can be shared.
type Policy struct {
	MaxRetries     int
	BaseDelay      time.Duration
	Jitter         time.Duration
	AttemptTimeout time.Duration
}

// DefaultPolicy returns five retries starting at one second with up to half a
// second of jitter and a fifteen second budget per attempt.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     defaultMaxRetries,
		BaseDelay:      defaultBaseDelay,
		Jitter:         defaultJitter,
		AttemptTimeout: defaultAttemptTimeout,
	}
}

// Backoff returns the deterministic part of the delay before retry number
// attempt (1-based): BaseDelay * 2^(attempt-1).
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		if delay > time.Hour {
			break
		}
		delay *= 2
	}
	return delay
}

func (p Policy) normalized() Policy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = defaultBaseDelay
	}
	if p.Jitter < 0 {
		p.Jitter = 0
	}
	return p
}

// ExhaustedError is returned once every attempt failed transiently.
type ExhaustedError struct {
	Operation string
	Attempts  int
	Err       error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: failed after %d attempts: %v", e.Operation, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Runner applies a Policy to remote operations.
type Runner struct {
	policy  Policy
	logger  *slog.Logger
	sleeper func(time.Duration)
	jitter  func(limit time.Duration) time.Duration
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLogger attaches a logger used for retry warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(r *Runner) {
		r.sleeper = sleeper
	}
}

// WithJitterSource overrides the uniform [0, limit) jitter draw.
func WithJitterSource(source func(limit time.Duration) time.Duration) Option {
	return func(r *Runner) {
		if source != nil {
			r.jitter = source
		}
	}
}

// New constructs a Runner for the supplied policy.
func New(policy Policy, opts ...Option) *Runner {
	r := &Runner{
		policy: policy.normalized(),
		logger: logging.NewNop(),
		jitter: uniformJitter,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.logger = logging.NewComponentLogger(r.logger, "retry")
	return r
}

// Policy exposes the normalized policy.
func (r *Runner) Policy() Policy {
	if r == nil {
		return DefaultPolicy()
	}
	return r.policy
}

// Run executes fn until it succeeds, fails permanently, or exhausts the
// configured retries. Each attempt gets its own timeout derived from ctx.
func (r *Runner) Run(ctx context.Context, operation string, fn func(context.Context) error) error {
	if r == nil {
		r = New(DefaultPolicy())
	}
	if ctx == nil {
		ctx = context.Background()
	}
	attempts := r.policy.MaxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := r.attempt(ctx, fn)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if services.IsPermanent(err) {
			return err
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		delay := r.delay(attempt)
		r.logger.Warn("remote call failed; retrying",
			logging.String("operation", operation),
			logging.Int("attempt", attempt),
			logging.Int("max_retries", r.policy.MaxRetries),
			logging.Duration("delay", delay),
			logging.Error(err),
			logging.String(logging.FieldEventType, "retry_scheduled"),
			logging.String(logging.FieldErrorKind, services.Classify(err)),
		)
		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return &ExhaustedError{Operation: operation, Attempts: attempts, Err: lastErr}
}

// Once executes fn exactly one time under the per-attempt timeout. It is used
// for best-effort calls that must never be retried.
func (r *Runner) Once(ctx context.Context, fn func(context.Context) error) error {
	if r == nil {
		r = New(DefaultPolicy())
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return r.attempt(ctx, fn)
}

// Do is the value-returning form of Runner.Run.
func Do[T any](ctx context.Context, r *Runner, operation string, fn func(context.Context) (T, error)) (T, error) {
	var result T
	err := r.Run(ctx, operation, func(attemptCtx context.Context) error {
		value, err := fn(attemptCtx)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

func (r *Runner) attempt(ctx context.Context, fn func(context.Context) error) error {
	attemptCtx := ctx
	if r.policy.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, r.policy.AttemptTimeout)
		defer cancel()
	}
	err := fn(attemptCtx)
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTransient, "retry", "attempt", "attempt timed out", err)
	}
	return err
}

func (r *Runner) delay(attempt int) time.Duration {
	delay := r.policy.Backoff(attempt)
	if r.policy.Jitter > 0 {
		delay += r.jitter(r.policy.Jitter)
	}
	return delay
}

func (r *Runner) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if r.sleeper != nil {
		r.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func uniformJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return rand.N(limit)
}
