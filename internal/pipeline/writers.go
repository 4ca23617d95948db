package pipeline

import (
	"context"

	"authtriage/pkg/models"
)

// ReportWriter writes finished reports.
type ReportWriter interface {
	WriteReports(reports []*models.Report) error
	Close() error
}

// AlertWriter writes alert outputs.
type AlertWriter interface {
	WriteAlerts(alerts []*models.Alert) error
	Close() error
}

// Source yields raw queue payloads. A nil payload with a nil error means
// nothing arrived before the source's own timeout.
type Source interface {
	Pop(ctx context.Context) ([]byte, error)
	Close() error
}
