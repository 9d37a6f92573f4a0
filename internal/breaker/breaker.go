// Package breaker implements a three-state circuit breaker used to stop
// hammering the admin notification endpoint while it is down.
package breaker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	Name        string
	MaxFailures int
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// MaxRequests bounds concurrent probes while half-open.
	MaxRequests int
}

type Breaker struct {
	name        string
	maxFailures int
	timeout     time.Duration
	maxRequests int

	mutex        sync.Mutex
	state        State
	failures     int
	requests     int
	lastFailTime time.Time

	totalRequests  int64
	totalFailures  int64
	totalSuccesses int64

	logger *logrus.Logger
}

func New(config Config, logger *logrus.Logger) *Breaker {
	if config.Name == "" {
		config.Name = "unnamed"
	}
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRequests <= 0 {
		config.MaxRequests = 1
	}

	return &Breaker{
		name:        config.Name,
		maxFailures: config.MaxFailures,
		timeout:     config.Timeout,
		maxRequests: config.MaxRequests,
		state:       StateClosed,
		logger:      logger,
	}
}

// Execute runs fn under the breaker. While open it fails fast with ErrOpen
// until the timeout elapses; the first successful probe closes it again.
func (b *Breaker) Execute(fn func() error) error {
	b.mutex.Lock()

	if b.state == StateOpen {
		if time.Since(b.lastFailTime) > b.timeout {
			b.setState(StateHalfOpen)
			b.requests = 0
		} else {
			b.mutex.Unlock()
			return ErrOpen
		}
	}

	if b.state == StateHalfOpen && b.requests >= b.maxRequests {
		b.mutex.Unlock()
		return ErrOpen
	}

	b.totalRequests++
	if b.state == StateHalfOpen {
		b.requests++
	}
	b.mutex.Unlock()

	err := fn()

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if err != nil {
		b.totalFailures++
		b.onFailure()
		return err
	}

	b.totalSuccesses++
	b.onSuccess()
	return nil
}

func (b *Breaker) onSuccess() {
	b.failures = 0
	if b.state == StateHalfOpen {
		b.setState(StateClosed)
		b.requests = 0
	}
}

func (b *Breaker) onFailure() {
	b.failures++
	b.lastFailTime = time.Now()

	if b.state == StateClosed && b.failures >= b.maxFailures {
		b.setState(StateOpen)
		b.requests = 0
	} else if b.state == StateHalfOpen {
		b.setState(StateOpen)
		b.requests = 0
	}
}

func (b *Breaker) setState(newState State) {
	if b.state == newState {
		return
	}
	oldState := b.state
	b.state = newState

	b.logger.WithFields(logrus.Fields{
		"breaker":    b.name,
		"from_state": oldState.String(),
		"to_state":   newState.String(),
	}).Info("Circuit breaker state changed")
}

func (b *Breaker) State() State {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.state
}

func (b *Breaker) Metrics() map[string]interface{} {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return map[string]interface{}{
		"name":            b.name,
		"state":           b.state.String(),
		"failures":        b.failures,
		"total_requests":  b.totalRequests,
		"total_failures":  b.totalFailures,
		"total_successes": b.totalSuccesses,
	}
}

func (b *Breaker) String() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return fmt.Sprintf("Breaker(name=%s, state=%s, failures=%d/%d)",
		b.name, b.state.String(), b.failures, b.maxFailures)
}
