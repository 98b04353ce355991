package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const EventFlightCreated = "flight_created"

// FlightEvent is published for every persisted flight.
type FlightEvent struct {
	Type            string    `json:"type"`
	FlightID        string    `json:"flight_id"`
	Airline         string    `json:"airline"`
	FlightNumber    string    `json:"flight_number"`
	OriginID        string    `json:"origin_id"`
	OriginCode      string    `json:"origin_code,omitempty"`
	OriginTimeZone  string    `json:"origin_time_zone,omitempty"`
	DestinationID   string    `json:"destination_id"`
	DestinationCode string    `json:"destination_code,omitempty"`
	DepartureTime   time.Time `json:"departure_time"`
	ArrivalTime     time.Time `json:"arrival_time"`
	Duration        int       `json:"duration"`
	Stops           []string  `json:"stops,omitempty"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return &Producer{writer: writer}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	slog.DebugContext(ctx, "published to kafka", slog.String("topic", topic), slog.String("key", key))
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
