package audit

import (
	"context"

	"github.com/jhoicas/farmacia-logistica/internal/domain/audit"
	"github.com/jhoicas/farmacia-logistica/pkg/logger"
)

// LogWriter escribe cada evento como una línea estructurada.
type LogWriter struct {
	log *logger.Logger
}

func NewLogWriter(log *logger.Logger) *LogWriter {
	return &LogWriter{log: log.Component("audit")}
}

func (w *LogWriter) Name() string { return "log" }

func (w *LogWriter) Write(_ context.Context, events []audit.Event) error {
	for _, e := range events {
		ev := w.log.Info().
			Str("event_id", e.ID).
			Str("action", string(e.Action)).
			Time("at", e.Timestamp).
			Str("actor", e.ActorID)
		if e.ShipmentID != "" {
			ev = ev.Str("shipment_id", e.ShipmentID).Str("from", e.FromStatus).Str("to", e.ToStatus)
		}
		if e.ProductID != "" {
			ev = ev.Str("product_id", e.ProductID).
				Str("location_id", e.LocationID).
				Str("lot", e.LotNumber).
				Str("type", e.MovementType).
				Int64("delta", e.Delta).
				Int64("before", e.QuantityBefore).
				Int64("after", e.QuantityAfter)
		}
		if e.Reason != "" {
			ev = ev.Str("reason", e.Reason)
		}
		ev.Msg("audit")
	}
	return nil
}
