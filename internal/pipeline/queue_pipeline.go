package pipeline

import (
	"context"
	"sync"
	"time"

	"authtriage/internal/alerts"
	"authtriage/internal/logger"
	"authtriage/internal/metrics"
	"authtriage/pkg/models"
)

// QueuePipeline consumes raw log payloads and writes reports and alerts.
type QueuePipeline struct {
	source        Source
	assessor      *Assessor
	writer        ReportWriter
	policy        *alerts.Policy
	alertWriter   AlertWriter
	metrics       *metrics.Handler
	workers       int
	batchSize     int
	flushInterval time.Duration
	retryDelay    time.Duration
}

type workItem struct {
	report *models.Report
	alert  *models.Alert
}

// QueueConfig sizes the pipeline.
type QueueConfig struct {
	Workers       int
	BatchSize     int
	FlushInterval time.Duration
}

// NewQueuePipeline creates a queue pipeline. policy and alertWriter may be nil.
func NewQueuePipeline(source Source, assessor *Assessor, writer ReportWriter, policy *alerts.Policy, alertWriter AlertWriter, m *metrics.Handler, cfg QueueConfig) *QueuePipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	return &QueuePipeline{
		source:        source,
		assessor:      assessor,
		writer:        writer,
		policy:        policy,
		alertWriter:   alertWriter,
		metrics:       m,
		workers:       cfg.Workers,
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		retryDelay:    1 * time.Second,
	}
}

// Run starts the pipeline loop and blocks until ctx is done.
func (p *QueuePipeline) Run(ctx context.Context) error {
	logger.Infof("Queue pipeline started (workers=%d batch=%d)", p.workers, p.batchSize)

	msgCh := make(chan []byte, p.workers*4)
	workCh := make(chan workItem, p.workers*4)

	var readers sync.WaitGroup
	readers.Add(1)
	go func() {
		defer readers.Done()
		p.readLoop(ctx, msgCh)
		close(msgCh)
	}()

	for i := 0; i < p.workers; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			p.workerLoop(ctx, msgCh, workCh)
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.writeLoop(ctx, workCh)
	}()

	readers.Wait()
	close(workCh)
	<-done
	return ctx.Err()
}

// Close releases pipeline resources.
func (p *QueuePipeline) Close() error {
	if p.alertWriter != nil {
		if err := p.alertWriter.Close(); err != nil {
			logger.Errorf("Failed to close alert writer: %v", err)
		}
	}
	if p.writer != nil {
		if err := p.writer.Close(); err != nil {
			logger.Errorf("Failed to close report writer: %v", err)
		}
	}
	if p.source != nil {
		return p.source.Close()
	}
	return nil
}

func (p *QueuePipeline) readLoop(ctx context.Context, out chan<- []byte) {
	for {
		if ctx.Err() != nil {
			return
		}
		payload, err := p.source.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Errorf("Failed to pop queue message: %v", err)
			p.metrics.IncPayloadErrors("pop")
			select {
			case <-ctx.Done():
				return
			case <-time.After(500 * time.Millisecond):
			}
			continue
		}
		if payload == nil {
			continue
		}
		select {
		case out <- payload:
		case <-ctx.Done():
			return
		}
	}
}

func (p *QueuePipeline) workerLoop(ctx context.Context, in <-chan []byte, out chan<- workItem) {
	for payload := range in {
		source, logs, err := DecodePayload(payload)
		if err != nil {
			logger.Warnf("Skipping malformed payload: %v", err)
			p.metrics.IncPayloadErrors("decode")
			continue
		}
		report := p.assessor.Assess(ctx, source, logs)

		item := workItem{report: report}
		if p.policy != nil && p.alertWriter != nil {
			item.alert = p.policy.Evaluate(report)
		}
		logger.Debugf("Assessed payload source=%q risk=%s severity=%d", source, report.Verdict.Risk, report.Verdict.Severity)
		out <- item
	}
}

func (p *QueuePipeline) writeLoop(ctx context.Context, in <-chan workItem) {
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	var batchReports []*models.Report
	var batchAlerts []*models.Alert

	flush := func() {
		if len(batchReports) > 0 && p.writer != nil {
			if p.retry(ctx, "reports", func() error { return p.writer.WriteReports(batchReports) }) {
				batchReports = nil
			}
		}
		if len(batchAlerts) > 0 && p.alertWriter != nil {
			if p.retry(ctx, "alerts", func() error { return p.alertWriter.WriteAlerts(batchAlerts) }) {
				p.metrics.IncAlerts(len(batchAlerts))
				batchAlerts = nil
			}
		}
	}

	for {
		select {
		case <-ticker.C:
			flush()
		case item, ok := <-in:
			if !ok {
				flush()
				return
			}
			if item.report != nil {
				batchReports = append(batchReports, item.report)
			}
			if item.alert != nil {
				batchAlerts = append(batchAlerts, item.alert)
			}
			if len(batchReports) >= p.batchSize {
				flush()
			}
		}
	}
}

// retry calls write until it succeeds or ctx ends. A cancelled ctx still
// gets one attempt so the shutdown flush is not skipped.
func (p *QueuePipeline) retry(ctx context.Context, what string, write func() error) bool {
	for {
		err := write()
		if err == nil {
			return true
		}
		logger.Errorf("Failed to write %s: %v", what, err)
		if ctx.Err() != nil {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(p.retryDelay):
		}
	}
}
