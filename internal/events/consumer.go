package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
)

const (
	maxRetries        = 3
	initialRetryDelay = 1 * time.Second
	maxRetryDelay     = 30 * time.Second
)

// InquiryEventHandler processes inquiry lifecycle events. IsRetryable
// decides whether a failed delivery is worth another attempt; non-retryable
// failures go straight to the dead-letter topic.
type InquiryEventHandler interface {
	HandleInquiryCreated(event InquiryCreatedEvent) error
	HandleStatusChanged(event InquiryStatusChangedEvent) error
	IsRetryable(err error) bool
}

type ConsumerMetrics struct {
	Processed int64
	Retries   int64
	DLQ       int64
	Succeeded int64
	Failed    int64
}

// KafkaConsumer consumes both inquiry topics with bounded exponential-backoff
// retries and a dead-letter topic for messages that keep failing.
type KafkaConsumer struct {
	consumerGroup sarama.ConsumerGroup
	producer      sarama.SyncProducer
	handler       InquiryEventHandler
	logger        *logrus.Logger
	topics        []string
	metrics       *ConsumerMetrics
}

func NewKafkaConsumer(brokers, groupID string, handler InquiryEventHandler, logger *logrus.Logger) (*KafkaConsumer, error) {
	consumerConfig := sarama.NewConfig()
	consumerConfig.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	consumerConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	consumerConfig.Version = sarama.V2_6_0_0

	consumerGroup, err := sarama.NewConsumerGroup(brokerList(brokers), groupID, consumerConfig)
	if err != nil {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}

	producerConfig := sarama.NewConfig()
	producerConfig.Producer.RequiredAcks = sarama.WaitForAll
	producerConfig.Producer.Retry.Max = 5
	producerConfig.Producer.Return.Successes = true
	producerConfig.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(brokerList(brokers), producerConfig)
	if err != nil {
		consumerGroup.Close()
		return nil, fmt.Errorf("create producer for DLQ: %w", err)
	}

	return &KafkaConsumer{
		consumerGroup: consumerGroup,
		producer:      producer,
		handler:       handler,
		logger:        logger,
		topics:        []string{InquiryCreatedTopic, InquiryStatusChangedTopic},
		metrics:       &ConsumerMetrics{},
	}, nil
}

func (c *KafkaConsumer) Start(ctx context.Context) error {
	handler := &consumerGroupHandler{
		handler:  c.handler,
		producer: c.producer,
		logger:   c.logger,
		metrics:  c.metrics,
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Kafka consumer context cancelled")
			return nil
		default:
			if err := c.consumerGroup.Consume(ctx, c.topics, handler); err != nil {
				c.logger.WithError(err).Error("Error consuming from Kafka")
				return err
			}
		}
	}
}

func (c *KafkaConsumer) Close() error {
	if err := c.producer.Close(); err != nil {
		c.logger.WithError(err).Error("Failed to close DLQ producer")
	}
	return c.consumerGroup.Close()
}

func (c *KafkaConsumer) Metrics() ConsumerMetrics {
	return ConsumerMetrics{
		Processed: atomic.LoadInt64(&c.metrics.Processed),
		Retries:   atomic.LoadInt64(&c.metrics.Retries),
		DLQ:       atomic.LoadInt64(&c.metrics.DLQ),
		Succeeded: atomic.LoadInt64(&c.metrics.Succeeded),
		Failed:    atomic.LoadInt64(&c.metrics.Failed),
	}
}

type consumerGroupHandler struct {
	handler  InquiryEventHandler
	producer sarama.SyncProducer
	logger   *logrus.Logger
	metrics  *ConsumerMetrics
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.logger.Info("Kafka consumer group session setup")
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.logger.Info("Kafka consumer group session cleanup")
	return nil
}

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			atomic.AddInt64(&h.metrics.Processed, 1)

			if err := h.handleWithRetry(message); err != nil {
				h.logger.WithError(err).Error("Failed to process message after retries")
				atomic.AddInt64(&h.metrics.Failed, 1)

				if dlqErr := h.sendToDLQ(message, err); dlqErr != nil {
					h.logger.WithError(dlqErr).Error("Failed to send message to DLQ")
				} else {
					atomic.AddInt64(&h.metrics.DLQ, 1)
				}
			} else {
				atomic.AddInt64(&h.metrics.Succeeded, 1)
			}

			session.MarkMessage(message, "")

		case <-session.Context().Done():
			h.logger.Info("Consumer group session context cancelled")
			return nil
		}
	}
}

func (h *consumerGroupHandler) handleWithRetry(message *sarama.ConsumerMessage) error {
	h.logger.WithFields(logrus.Fields{
		"topic":     message.Topic,
		"partition": message.Partition,
		"offset":    message.Offset,
		"key":       string(message.Key),
	}).Info("Processing inquiry event")

	dispatch, err := h.dispatcher(message)
	if err != nil {
		// Undecodable payloads are never retryable.
		return err
	}

	delay := initialRetryDelay
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			h.logger.WithFields(logrus.Fields{
				"key":     string(message.Key),
				"attempt": attempt,
				"delay":   delay,
			}).Info("Retrying inquiry event delivery")
			time.Sleep(delay)
			atomic.AddInt64(&h.metrics.Retries, 1)

			delay *= 2
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
		}

		err := dispatch()
		if err == nil {
			return nil
		}
		if !h.handler.IsRetryable(err) {
			h.logger.WithError(err).Error("Non-retryable error processing inquiry event")
			return err
		}
		h.logger.WithError(err).WithField("attempt", attempt+1).Warn("Retryable error processing inquiry event")
	}

	return fmt.Errorf("exhausted retries for inquiry event %s", string(message.Key))
}

// dispatcher decodes the message once and returns a closure bound to the
// right handler method for its topic.
func (h *consumerGroupHandler) dispatcher(message *sarama.ConsumerMessage) (func() error, error) {
	switch message.Topic {
	case InquiryCreatedTopic:
		var event InquiryCreatedEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			return nil, fmt.Errorf("unmarshal inquiry created event: %w", err)
		}
		return func() error { return h.handler.HandleInquiryCreated(event) }, nil
	case InquiryStatusChangedTopic:
		var event InquiryStatusChangedEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			return nil, fmt.Errorf("unmarshal status changed event: %w", err)
		}
		return func() error { return h.handler.HandleStatusChanged(event) }, nil
	default:
		return nil, fmt.Errorf("unexpected topic %q", message.Topic)
	}
}

func (h *consumerGroupHandler) sendToDLQ(message *sarama.ConsumerMessage, processingError error) error {
	headers := []sarama.RecordHeader{
		{Key: []byte("original_topic"), Value: []byte(message.Topic)},
		{Key: []byte("error"), Value: []byte(processingError.Error())},
		{Key: []byte("failed_at"), Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		{Key: []byte("original_offset"), Value: []byte(strconv.FormatInt(message.Offset, 10))},
	}

	msg := &sarama.ProducerMessage{
		Topic:   InquiryDLQTopic,
		Key:     sarama.ByteEncoder(message.Key),
		Value:   sarama.ByteEncoder(message.Value),
		Headers: headers,
	}

	partition, offset, err := h.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send to DLQ: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"topic":     InquiryDLQTopic,
		"partition": partition,
		"offset":    offset,
		"key":       string(message.Key),
	}).Warn("Inquiry event sent to dead-letter topic")

	return nil
}
