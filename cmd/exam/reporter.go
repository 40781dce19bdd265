package main

import (
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-proctor/internal/client"
)

type warning struct {
	reason string
	count  int
}

// warningReporter forwards counted warnings to the proctor socket in order,
// off the session's goroutines. A nil reporter drops everything.
type warningReporter struct {
	conn  *client.ProctorConn
	queue chan warning
	done  chan struct{}
	log   zerolog.Logger
}

func newWarningReporter(conn *client.ProctorConn, log zerolog.Logger) *warningReporter {
	r := &warningReporter{
		conn:  conn,
		queue: make(chan warning, 16),
		done:  make(chan struct{}),
		log:   log.With().Str("component", "warning_reporter").Logger(),
	}
	go r.loop()
	return r
}

func (r *warningReporter) Report(reason string, count int) {
	if r == nil {
		return
	}
	select {
	case r.queue <- warning{reason: reason, count: count}:
	default:
		r.log.Warn().Int("count", count).Msg("Warning queue full, dropping report")
	}
}

func (r *warningReporter) Close() {
	if r == nil {
		return
	}
	close(r.queue)
	<-r.done
	_ = r.conn.Close()
}

func (r *warningReporter) loop() {
	defer close(r.done)
	for w := range r.queue {
		if err := r.conn.Warn(w.reason, w.count); err != nil {
			r.log.Warn().Err(err).Msg("Failed to report warning")
		}
	}
}
