package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PollState is the state of a bounded poll
type PollState int

const (
	PollPending   PollState = iota // No attempt has produced a result yet
	PollSucceeded                  // An attempt produced a result
	PollExhausted                  // The attempt budget ran out, or the context ended
)

func (s PollState) String() string {
	switch s {
	case PollPending:
		return "pending"
	case PollSucceeded:
		return "succeeded"
	case PollExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("PollState(%d)", int(s))
	}
}

// ErrPollExhausted is returned by Run when no attempt succeeded
var ErrPollExhausted = errors.New("poll attempts exhausted")

// PollConfig holds configuration for a fixed-delay poll
type PollConfig struct {
	MaxAttempts int           // Maximum number of attempts, zero means none
	Delay       time.Duration // Wait after each pending attempt
}

// PollFunc performs one attempt. ready=false (with or without err) keeps the
// poll pending; err is recorded as the last observed failure.
type PollFunc[T any] func(ctx context.Context, attempt int) (result T, ready bool, err error)

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc. It returns early with ctx.Err() when the
// request ends, so a disconnected client stops the poll.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Poller drives a PollFunc through Pending -> Succeeded | Exhausted.
// A Poller is single-use and not safe for concurrent use.
type Poller[T any] struct {
	config   PollConfig
	fn       PollFunc[T]
	sleep    SleepFunc
	state    PollState
	attempts int
	result   T
	lastErr  error
}

// NewPoller creates a poller in the Pending state
func NewPoller[T any](config PollConfig, fn PollFunc[T]) *Poller[T] {
	return &Poller[T]{
		config: config,
		fn:     fn,
		sleep:  Sleep,
		state:  PollPending,
	}
}

// WithSleep replaces the wait between attempts
func (p *Poller[T]) WithSleep(sleep SleepFunc) *Poller[T] {
	if sleep != nil {
		p.sleep = sleep
	}
	return p
}

func (p *Poller[T]) State() PollState { return p.state }

func (p *Poller[T]) Attempts() int { return p.attempts }

// LastErr returns the failure observed by the most recent pending attempt
func (p *Poller[T]) LastErr() error { return p.lastErr }

// Step advances the poller by at most one attempt and returns the new state.
// Terminal states are sticky.
func (p *Poller[T]) Step(ctx context.Context) PollState {
	if p.state != PollPending {
		return p.state
	}

	if p.attempts >= p.config.MaxAttempts {
		p.state = PollExhausted
		return p.state
	}

	if err := ctx.Err(); err != nil {
		p.lastErr = err
		p.state = PollExhausted
		return p.state
	}

	p.attempts++
	result, ready, err := p.fn(ctx, p.attempts)
	if ready {
		p.result = result
		p.lastErr = nil
		p.state = PollSucceeded
		return p.state
	}
	p.lastErr = err

	// Every pending attempt waits, including the last one, so a full budget
	// costs MaxAttempts x Delay.
	if p.config.Delay > 0 {
		if err := p.sleep(ctx, p.config.Delay); err != nil {
			p.lastErr = err
			p.state = PollExhausted
		}
	}

	return p.state
}

// Run steps until a terminal state. On exhaustion the error wraps
// ErrPollExhausted and the last observed failure.
func (p *Poller[T]) Run(ctx context.Context) (T, error) {
	for p.Step(ctx) == PollPending {
	}

	if p.state == PollSucceeded {
		return p.result, nil
	}

	var zero T
	if p.lastErr != nil {
		return zero, fmt.Errorf("%w after %d attempts: %w", ErrPollExhausted, p.attempts, p.lastErr)
	}
	return zero, fmt.Errorf("%w after %d attempts", ErrPollExhausted, p.attempts)
}
