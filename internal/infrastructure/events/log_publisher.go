package events

import (
	"context"

	"github.com/jhoicas/Recepcion-api/internal/application/reception"
	"github.com/jhoicas/Recepcion-api/pkg/logger"
)

var _ reception.EventPublisher = (*LogPublisher)(nil)

// LogPublisher registra los eventos en el log cuando no hay brokers configurados.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &LogPublisher{log: log.Component("events.log")}
}

func (p *LogPublisher) Publish(_ context.Context, event reception.Event) error {
	e := p.log.Info().
		Str("event_type", event.Type).
		Int64("reception_id", event.ReceptionID).
		Str("supplier", event.Supplier).
		Str("invoice_number", event.InvoiceNumber).
		Str("status", string(event.Status)).
		Str("actor", event.Actor).
		Time("occurred_at", event.OccurredAt)
	if event.Verdict != "" {
		e = e.Str("verdict", string(event.Verdict))
	}
	if len(event.Credits) > 0 {
		e = e.Int("credits", len(event.Credits))
	}
	e.Msg("evento de recepción")
	return nil
}
