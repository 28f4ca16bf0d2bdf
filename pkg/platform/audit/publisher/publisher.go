// Package publisher records audit events for ledger mutations with
// fail-open semantics: an audit failure is logged but never blocks the
// accounting write it describes. The figures themselves are the legally
// binding artifact; the audit trail is supporting evidence.
package publisher

import (
	"context"
	"log/slog"
	"time"

	id "carbonledger/pkg/domain"
	audit "carbonledger/pkg/platform/audit"
)

// Publisher writes events to a store and optionally forwards them to an
// external sink.
type Publisher struct {
	store  audit.Store
	sink   audit.Sink
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

// WithSink forwards every persisted event to an external sink.
func WithSink(sink audit.Sink) Option {
	return func(p *Publisher) { p.sink = sink }
}

// New creates a publisher over the given store.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit records an event, stamping the timestamp when unset. Failures are
// logged and swallowed.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.ErrorContext(ctx, "audit append failed",
			"action", event.Action,
			"subject", event.Subject,
			"error", err.Error(),
		)
		return
	}
	if p.sink != nil {
		if err := p.sink.Publish(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "audit sink publish failed",
				"action", event.Action,
				"subject", event.Subject,
				"error", err.Error(),
			)
		}
	}
}

// List returns the audit trail for one company.
func (p *Publisher) List(ctx context.Context, companyID id.CompanyID) ([]audit.Event, error) {
	return p.store.ListByCompany(ctx, companyID)
}
