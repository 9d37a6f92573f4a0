package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestOpensAfterMaxFailures(t *testing.T) {
	b := New(Config{Name: "test", MaxFailures: 3, Timeout: time.Minute}, testLogger())

	failing := func() error { return errors.New("boom") }

	for i := 0; i < 3; i++ {
		if err := b.Execute(failing); err == nil {
			t.Fatal("expected failure to propagate")
		}
	}

	if b.State() != StateOpen {
		t.Fatalf("expected open after %d failures, got %s", 3, b.State())
	}

	if err := b.Execute(failing); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen while open, got %v", err)
	}
}

func TestHalfOpenProbeClosesOnSuccess(t *testing.T) {
	b := New(Config{Name: "test", MaxFailures: 1, Timeout: 20 * time.Millisecond}, testLogger())

	b.Execute(func() error { return errors.New("boom") })
	if b.State() != StateOpen {
		t.Fatalf("expected open, got %s", b.State())
	}

	time.Sleep(30 * time.Millisecond)

	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("probe should pass through, got %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("expected closed after successful probe, got %s", b.State())
	}
}

func TestHalfOpenProbeReopensOnFailure(t *testing.T) {
	b := New(Config{Name: "test", MaxFailures: 1, Timeout: 20 * time.Millisecond}, testLogger())

	b.Execute(func() error { return errors.New("boom") })
	time.Sleep(30 * time.Millisecond)

	b.Execute(func() error { return errors.New("still down") })
	if b.State() != StateOpen {
		t.Fatalf("expected reopened after failed probe, got %s", b.State())
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := New(Config{Name: "test", MaxFailures: 2, Timeout: time.Minute}, testLogger())

	b.Execute(func() error { return errors.New("boom") })
	b.Execute(func() error { return nil })
	b.Execute(func() error { return errors.New("boom") })

	if b.State() != StateClosed {
		t.Fatalf("interleaved successes must keep the breaker closed, got %s", b.State())
	}
}

func TestMetrics(t *testing.T) {
	b := New(Config{Name: "metrics", MaxFailures: 5, Timeout: time.Minute}, testLogger())

	b.Execute(func() error { return nil })
	b.Execute(func() error { return errors.New("boom") })

	m := b.Metrics()
	if m["name"] != "metrics" {
		t.Errorf("unexpected name %v", m["name"])
	}
	if m["total_requests"].(int64) != 2 {
		t.Errorf("expected 2 requests, got %v", m["total_requests"])
	}
	if m["total_failures"].(int64) != 1 {
		t.Errorf("expected 1 failure, got %v", m["total_failures"])
	}
	if m["total_successes"].(int64) != 1 {
		t.Errorf("expected 1 success, got %v", m["total_successes"])
	}
}

func TestConfigDefaults(t *testing.T) {
	b := New(Config{}, testLogger())
	if b.name != "unnamed" || b.maxFailures != 5 || b.timeout != 30*time.Second || b.maxRequests != 1 {
		t.Errorf("unexpected defaults: %s", b)
	}
}
