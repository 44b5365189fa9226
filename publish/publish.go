// Package publish emits finished review reports to NATS JetStream so
// downstream consumers can react to new reviews.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/c360studio/lrrit/review"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher publishes reports to a JetStream stream. A nil Publisher is
// valid and publishes nothing, so wiring is optional.
type Publisher struct {
	nc            *nats.Conn
	js            jetstream.JetStream
	subjectPrefix string
	logger        *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// Connect connects to NATS and ensures the stream exists.
func Connect(ctx context.Context, url, stream, subjectPrefix string, opts ...Option) (*Publisher, error) {
	nc, err := nats.Connect(url, nats.Name("lrrit"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     stream,
		Subjects: []string{subjectPrefix + ".>"},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream %s: %w", stream, err)
	}

	p := &Publisher{
		nc:            nc,
		js:            js,
		subjectPrefix: subjectPrefix,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// PublishReport publishes the report on <prefix>.report.<id>.
// A nil Publisher is a no-op.
func (p *Publisher) PublishReport(ctx context.Context, report *review.Report) error {
	if p == nil {
		return nil
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	subject := fmt.Sprintf("%s.report.%s", p.subjectPrefix, report.ID)
	ack, err := p.js.Publish(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("publish report %s: %w", report.ID, err)
	}

	p.logger.Debug("report published",
		"report_id", report.ID,
		"subject", subject,
		"stream", ack.Stream,
		"seq", ack.Sequence)
	return nil
}

// Close drains the connection. A nil Publisher is a no-op.
func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn("drain NATS connection", "error", err)
	}
}
