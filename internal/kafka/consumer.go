package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// FlightEventConsumer reads FlightEvents from one topic as part of a consumer group.
// Offsets are committed only after the handler succeeds.
type FlightEventConsumer struct {
	reader messageReader
	log    *slog.Logger
}

func NewFlightEventConsumer(brokers []string, groupID, topic string, log *slog.Logger) *FlightEventConsumer {
	return newFlightEventConsumer(kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	}), log)
}

func newFlightEventConsumer(reader messageReader, log *slog.Logger) *FlightEventConsumer {
	if log == nil {
		log = slog.Default()
	}
	return &FlightEventConsumer{reader: reader, log: log}
}

func (c *FlightEventConsumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume blocks until ctx is done or handle fails. Messages that are not
// FlightEvents are logged, committed and skipped.
func (c *FlightEventConsumer) Consume(ctx context.Context, handle func(context.Context, FlightEvent) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		var event FlightEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.log.WarnContext(ctx, "skip undecodable flight event",
				slog.String("err", err.Error()),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)
		} else if err := handle(ctx, event); err != nil {
			return fmt.Errorf("handle flight event %s: %w", event.FlightID, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}
