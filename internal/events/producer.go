package events

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/sirupsen/logrus"
)

const (
	InquiryCreatedTopic       = "inquiry.created"
	InquiryStatusChangedTopic = "inquiry.status"
	InquiryDLQTopic           = "inquiry.dlq"
)

type InquiryCreatedEvent struct {
	InquiryID    string    `json:"inquiry_id"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	CustomerName string    `json:"customer_name"`
	CreatedAt    time.Time `json:"created_at"`
	EventTime    time.Time `json:"event_time"`
}

type InquiryStatusChangedEvent struct {
	InquiryID string    `json:"inquiry_id"`
	ProductID string    `json:"product_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
	EventTime time.Time `json:"event_time"`
}

type KafkaProducer struct {
	producer sarama.SyncProducer
	logger   *logrus.Logger
}

// brokerList parses the comma-separated KAFKA_BROKERS value.
func brokerList(brokers string) []string {
	return strings.Split(brokers, ",")
}

func NewKafkaProducer(brokers string, logger *logrus.Logger) (*KafkaProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Version = sarama.V2_6_0_0

	producer, err := sarama.NewSyncProducer(brokerList(brokers), config)
	if err != nil {
		return nil, err
	}

	return &KafkaProducer{
		producer: producer,
		logger:   logger,
	}, nil
}

func (p *KafkaProducer) PublishInquiryCreated(event InquiryCreatedEvent) error {
	event.EventTime = time.Now()
	return p.publish(InquiryCreatedTopic, event.InquiryID, event)
}

func (p *KafkaProducer) PublishInquiryStatusChanged(event InquiryStatusChangedEvent) error {
	event.EventTime = time.Now()
	return p.publish(InquiryStatusChangedTopic, event.InquiryID, event)
}

func (p *KafkaProducer) publish(topic, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).Error("Failed to send message to Kafka")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"topic":      topic,
		"partition":  partition,
		"offset":     offset,
		"inquiry_id": key,
	}).Info("Event published to Kafka")

	return nil
}

func (p *KafkaProducer) Close() error {
	return p.producer.Close()
}
