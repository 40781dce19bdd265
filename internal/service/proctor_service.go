package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/broker"
	"github.com/stemsi/exstem-proctor/internal/model"
)

// ProctorService publishes live proctoring events for the admin monitor.
// Publishing is best-effort: failures are logged and swallowed.
type ProctorService struct {
	bus broker.Bus
	now func() time.Time
	log zerolog.Logger
}

// NewProctorService creates a new ProctorService.
func NewProctorService(bus broker.Bus, log zerolog.Logger) *ProctorService {
	return &ProctorService{
		bus: bus,
		now: time.Now,
		log: log.With().Str("component", "proctor_service").Logger(),
	}
}

// Identity names the exam-taker behind a live connection.
type Identity struct {
	ConnID   string
	UserName string
	Email    string
}

// RecordJoined announces a new exam connection.
func (s *ProctorService) RecordJoined(ctx context.Context, who Identity) {
	s.publish(ctx, who, model.ProctorEvent{Type: model.ProctorEventJoined})
}

// RecordWarning announces a suspicion signal counted by the exam client.
func (s *ProctorService) RecordWarning(ctx context.Context, who Identity, reason string, count int) {
	s.log.Info().
		Str("email", who.Email).
		Int("warning_count", count).
		Str("reason", reason).
		Msg("Proctor warning")
	s.publish(ctx, who, model.ProctorEvent{
		Type:         model.ProctorEventWarning,
		Reason:       reason,
		WarningCount: count,
	})
}

// RecordLeft announces a closed exam connection.
func (s *ProctorService) RecordLeft(ctx context.Context, who Identity) {
	s.publish(ctx, who, model.ProctorEvent{Type: model.ProctorEventLeft})
}

// RecordSubmitted announces a stored result.
func (s *ProctorService) RecordSubmitted(ctx context.Context, rec *model.ResultRecord) {
	pct := rec.Percentage
	s.publish(ctx, Identity{UserName: rec.UserName, Email: rec.Email}, model.ProctorEvent{
		Type:         model.ProctorEventSubmitted,
		WarningCount: len(rec.Warnings),
		Percentage:   &pct,
	})
}

// Subscribe streams events until ctx is cancelled.
func (s *ProctorService) Subscribe(ctx context.Context) (<-chan model.ProctorEvent, error) {
	return s.bus.Subscribe(ctx)
}

func (s *ProctorService) publish(ctx context.Context, who Identity, ev model.ProctorEvent) {
	ev.ConnID = who.ConnID
	ev.UserName = who.UserName
	ev.Email = who.Email
	ev.At = s.now().UTC()

	if err := s.bus.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("type", string(ev.Type)).Msg("Failed to publish proctor event")
	}
}
