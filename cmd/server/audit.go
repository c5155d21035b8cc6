package main

import (
	"context"

	"hrgate/internal/verify/ports"
	"hrgate/pkg/platform/audit"
)

// teePublisher fans one audit event out to every configured sink: the durable
// store-backed publisher always, Kafka when brokers are configured. The first
// sink error is returned; remaining sinks still run.
type teePublisher struct {
	sinks []ports.AuditPublisher
}

func newTeePublisher(sinks ...ports.AuditPublisher) *teePublisher {
	kept := make([]ports.AuditPublisher, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			kept = append(kept, s)
		}
	}
	return &teePublisher{sinks: kept}
}

func (t *teePublisher) Emit(ctx context.Context, event audit.Event) error {
	var first error
	for _, sink := range t.sinks {
		if err := sink.Emit(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
