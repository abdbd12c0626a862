package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"lexaid-server/internal/domain/document"
	"lexaid-server/internal/infrastructure/metrics"
	"lexaid-server/internal/infrastructure/observability"
	"lexaid-server/internal/infrastructure/queue"
	"lexaid-server/internal/webhook"
)

// Worker processes queued documents.
type Worker struct {
	id              int
	queue           queue.TaskQueue
	documentService document.Service
	webhooks        webhook.Service
	taskTimeout     time.Duration
	log             zerolog.Logger
	stopChan        chan struct{}
}

// NewWorker creates a new background worker.
func NewWorker(
	id int,
	taskQueue queue.TaskQueue,
	documentService document.Service,
	webhooks webhook.Service,
	taskTimeout time.Duration,
	log zerolog.Logger,
) *Worker {
	return &Worker{
		id:              id,
		queue:           taskQueue,
		documentService: documentService,
		webhooks:        webhooks,
		taskTimeout:     taskTimeout,
		log:             log.With().Int("worker_id", id).Str("component", "worker").Logger(),
		stopChan:        make(chan struct{}),
	}
}

// Start begins polling the queue.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Msg("worker started")

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("worker stopped by context")
			return
		case <-w.stopChan:
			w.log.Info().Msg("worker stopped")
			return
		case <-ticker.C:
			w.processNextTask(ctx)
		}
	}
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	close(w.stopChan)
}

func (w *Worker) processNextTask(ctx context.Context) {
	task, err := w.queue.Dequeue(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("failed to dequeue document")
		return
	}
	if task == nil {
		return
	}

	doc := task.Document
	w.log.Info().
		Str("document_id", doc.PublicID).
		Str("file_name", doc.FileName).
		Msg("processing document")

	claimed, err := w.queue.MarkProcessing(ctx, doc.PublicID)
	if err != nil {
		w.log.Error().Err(err).Str("document_id", doc.PublicID).Msg("failed to mark processing")
		return
	}
	if !claimed {
		// Another worker got there first.
		return
	}

	taskCtx, cancel := context.WithTimeout(ctx, w.taskTimeout)
	defer cancel()

	taskCtx, span := observability.StartSimplifySpan(taskCtx, doc.PublicID, doc.SizeBytes)
	defer span.End()

	if err := w.documentService.Simplify(taskCtx, doc); err != nil {
		observability.RecordError(span, err)
		metrics.RecordSimplifyJob("failed")
		w.notifyFailed(ctx, doc, err)
		return
	}

	metrics.RecordSimplifyJob("completed")
	w.notifyCompleted(ctx, doc)
	w.log.Info().Str("document_id", doc.PublicID).Msg("document simplified")
}

func (w *Worker) notifyCompleted(ctx context.Context, doc *document.Document) {
	url := doc.WebhookURL()
	if url == "" {
		return
	}
	if err := w.webhooks.NotifySimplified(ctx, url, doc.PublicID, doc.SimplifiedText, time.Now()); err != nil {
		w.log.Warn().Err(err).Str("document_id", doc.PublicID).Msg("completion webhook failed")
	}
}

func (w *Worker) notifyFailed(ctx context.Context, doc *document.Document, cause error) {
	url := doc.WebhookURL()
	if url == "" {
		return
	}
	if err := w.webhooks.NotifyFailed(ctx, url, doc.PublicID, cause.Error()); err != nil {
		w.log.Warn().Err(err).Str("document_id", doc.PublicID).Msg("failure webhook failed")
	}
}
