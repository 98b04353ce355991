package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/itinerary"
	"github.com/Domenick1991/flightdesk/internal/kafka"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type Notifier interface {
	Notify(ctx context.Context, kind Kind, message string)
}

// Logger writes notifications to a slog logger.
type Logger struct {
	log *slog.Logger
}

func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{log: log}
}

func (l *Logger) Notify(ctx context.Context, kind Kind, message string) {
	level := slog.LevelInfo
	if kind == KindError {
		level = slog.LevelError
	}
	l.log.Log(ctx, level, message, slog.String("kind", string(kind)))
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Notify(context.Context, Kind, string) {}

// Sender turns flight events into operator notifications.
type Sender struct {
	notifier Notifier
}

func NewSender(notifier Notifier) *Sender {
	return &Sender{notifier: notifier}
}

func (s *Sender) Send(ctx context.Context, event kafka.FlightEvent) error {
	s.notifier.Notify(ctx, KindSuccess, FlightMessage(event))
	return nil
}

// FlightMessage renders a flight event, with the departure in origin local time.
func FlightMessage(event kafka.FlightEvent) string {
	origin := event.OriginCode
	if origin == "" {
		origin = event.OriginID
	}
	dest := event.DestinationCode
	if dest == "" {
		dest = event.DestinationID
	}

	loc := domain.Airport{TimeZone: event.OriginTimeZone}.Location()
	route := "direct"
	if len(event.Stops) > 0 {
		route = "via " + strings.Join(event.Stops, ", ")
	}
	return fmt.Sprintf("%s %s %s -> %s (%s) departs %s local, %s",
		event.Type, event.FlightNumber, origin, dest, route,
		event.DepartureTime.In(loc).Format("2006-01-02 15:04"),
		itinerary.FormatDuration(event.Duration))
}
