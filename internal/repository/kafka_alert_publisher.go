package repository

import (
	"context"
	"time"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	pkgkafka "MarketPulse/pkg/kafka"
)

// KafkaAlertPublisher fans each run's alerts out to a Kafka topic as JSON
// records, keyed by topic/symbol so one asset's alerts land in one partition.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAlertPublisher creates the Kafka alert sink.
func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) drepo.AlertSink {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

type alertRecord struct {
	At       time.Time            `json:"at"`
	Topic    string               `json:"topic"`
	Category models.AlertCategory `json:"category"`
	Tag      string               `json:"tag,omitempty"`
	Body     string               `json:"body"`
	Score    int                  `json:"macro_score"`
	Regime   string               `json:"regime"`
}

func (p *KafkaAlertPublisher) Record(ctx context.Context, report *models.RunReport) error {
	if !report.Fired() {
		return nil
	}

	msgs := make([]pkgkafka.Message, 0, len(report.Alerts))
	for i := range report.Alerts {
		a := &report.Alerts[i]
		msgs = append(msgs, pkgkafka.Message{
			Key: []byte(a.Topic),
			Value: alertRecord{
				At:       report.At,
				Topic:    a.Topic,
				Category: a.Category,
				Tag:      a.Tag,
				Body:     a.Render(),
				Score:    report.Macro.Score,
				Regime:   report.Macro.Regime,
			},
		})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
