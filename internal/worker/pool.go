package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"lexaid-server/internal/domain/document"
	"lexaid-server/internal/infrastructure/metrics"
	"lexaid-server/internal/infrastructure/queue"
	"lexaid-server/internal/webhook"
)

// Pool manages the background simplification workers.
type Pool struct {
	workers         []*Worker
	queue           queue.TaskQueue
	documentService document.Service
	webhooks        webhook.Service
	workerCount     int
	taskTimeout     time.Duration
	log             zerolog.Logger
	wg              sync.WaitGroup
	stopChan        chan struct{}
}

// Config contains worker pool configuration.
type Config struct {
	WorkerCount int
	TaskTimeout time.Duration
}

// NewPool creates a new worker pool.
func NewPool(
	taskQueue queue.TaskQueue,
	documentService document.Service,
	webhooks webhook.Service,
	cfg Config,
	log zerolog.Logger,
) *Pool {
	return &Pool{
		queue:           taskQueue,
		documentService: documentService,
		webhooks:        webhooks,
		workerCount:     cfg.WorkerCount,
		taskTimeout:     cfg.TaskTimeout,
		log:             log.With().Str("component", "worker-pool").Logger(),
		stopChan:        make(chan struct{}),
	}
}

// Start initializes and starts all workers.
func (p *Pool) Start(ctx context.Context) error {
	p.log.Info().Int("worker_count", p.workerCount).Msg("starting worker pool")

	p.workers = make([]*Worker, p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		w := NewWorker(
			i+1,
			p.queue,
			p.documentService,
			p.webhooks,
			p.taskTimeout,
			p.log,
		)
		p.workers[i] = w

		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Start(ctx)
		}(w)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.reportQueueDepth(ctx)
	}()

	p.log.Info().Msg("worker pool started")
	return nil
}

// reportQueueDepth keeps the queue depth gauge current while the pool runs.
func (p *Pool) reportQueueDepth(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			depth, err := p.queue.GetQueueDepth(ctx)
			if err != nil {
				p.log.Warn().Err(err).Msg("queue depth check failed")
				continue
			}
			metrics.SetQueueDepth(int(depth))
		}
	}
}

// Stop gracefully shuts down all workers.
func (p *Pool) Stop() {
	p.log.Info().Msg("stopping worker pool")

	close(p.stopChan)
	for _, w := range p.workers {
		w.Stop()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info().Msg("all workers stopped gracefully")
	case <-time.After(30 * time.Second):
		p.log.Warn().Msg("worker pool shutdown timed out")
	}
}

// GetQueueDepth returns the current queue depth.
func (p *Pool) GetQueueDepth(ctx context.Context) (int64, error) {
	return p.queue.GetQueueDepth(ctx)
}
