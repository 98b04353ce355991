package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReader serves queued messages, then blocks until the context ends.
type fakeReader struct {
	queue     []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.queue) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func eventMessage(t *testing.T, offset int64, event FlightEvent) kafka.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Key: []byte(event.FlightID), Value: payload}
}

func TestFlightEventConsumer_Consume(t *testing.T) {
	event := FlightEvent{
		Type:          EventFlightCreated,
		FlightID:      "AA-1",
		OriginID:      "JFK",
		DestinationID: "LHR",
		DepartureTime: time.Date(2025, 7, 15, 8, 0, 0, 0, time.UTC),
		Stops:         []string{"CDG"},
	}
	reader := &fakeReader{queue: []kafka.Message{
		eventMessage(t, 1, event),
		{Offset: 2, Value: []byte("{not json")},
		eventMessage(t, 3, FlightEvent{Type: EventFlightCreated, FlightID: "AA-2"}),
	}}
	consumer := newFlightEventConsumer(reader, nil)

	ctx, cancel := context.WithCancel(context.Background())
	var got []FlightEvent
	err := consumer.Consume(ctx, func(_ context.Context, e FlightEvent) error {
		got = append(got, e)
		if len(got) == 2 {
			cancel()
		}
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, got, 2)
	assert.Equal(t, event, got[0])
	assert.Equal(t, "AA-2", got[1].FlightID)
	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
}

func TestFlightEventConsumer_HandlerErrorLeavesOffset(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		eventMessage(t, 7, FlightEvent{FlightID: "AA-7"}),
	}}
	consumer := newFlightEventConsumer(reader, nil)

	err := consumer.Consume(context.Background(), func(context.Context, FlightEvent) error {
		return errors.New("notifier down")
	})

	assert.ErrorContains(t, err, "handle flight event AA-7: notifier down")
	assert.Empty(t, reader.committed)
}

func TestFlightEventConsumer_Close(t *testing.T) {
	var nilConsumer *FlightEventConsumer
	assert.NoError(t, nilConsumer.Close())

	reader := &fakeReader{}
	require.NoError(t, newFlightEventConsumer(reader, nil).Close())
	assert.True(t, reader.closed)
}
