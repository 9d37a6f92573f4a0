// Package webhook forwards inquiry events to the configured admin
// notification endpoint.
package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/creeeasy/online-store-sub000/internal/breaker"
	"github.com/creeeasy/online-store-sub000/internal/events"
)

// ErrDelivery marks failures worth retrying: timeouts, connection errors and
// 5xx responses from the notification endpoint.
var ErrDelivery = errors.New("webhook delivery failed")

type Dispatcher struct {
	url        string
	httpClient *http.Client
	breaker    *breaker.Breaker
	logger     *logrus.Logger
}

func NewDispatcher(url string, timeout time.Duration, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: breaker.New(breaker.Config{
			Name:        "admin-webhook",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
			MaxRequests: 1,
		}, logger),
		logger: logger,
	}
}

func (d *Dispatcher) HandleInquiryCreated(event events.InquiryCreatedEvent) error {
	return d.deliver("inquiry.created", event.InquiryID, event)
}

func (d *Dispatcher) HandleStatusChanged(event events.InquiryStatusChangedEvent) error {
	return d.deliver("inquiry.status", event.InquiryID, event)
}

// IsRetryable satisfies the event consumer contract: only transport-level
// and server-side failures earn another attempt.
func (d *Dispatcher) IsRetryable(err error) bool {
	return errors.Is(err, ErrDelivery) || errors.Is(err, breaker.ErrOpen)
}

func (d *Dispatcher) deliver(eventType, inquiryID string, event interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{
		"type":  eventType,
		"event": event,
	})
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	err = d.breaker.Execute(func() error {
		req, err := http.NewRequest("POST", d.url, bytes.NewBuffer(payload))
		if err != nil {
			return fmt.Errorf("create webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDelivery, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: status %d", ErrDelivery, resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			// The endpoint rejected the payload; retrying will not help.
			return fmt.Errorf("webhook rejected with status %d", resp.StatusCode)
		}
		return nil
	})
	if err != nil {
		return err
	}

	d.logger.WithFields(logrus.Fields{
		"inquiry_id": inquiryID,
		"type":       eventType,
	}).Info("Webhook notification delivered")

	return nil
}

func (d *Dispatcher) BreakerMetrics() map[string]interface{} {
	return d.breaker.Metrics()
}
