package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/earnbot/internal/domain/errors"
	"github.com/polkiloo/earnbot/internal/domain/model"
	"github.com/polkiloo/earnbot/internal/observability"
)

const workerName = "withdrawal_expiry"

// ExpiryFacade exposes the subset of application functionality required by the worker.
type ExpiryFacade interface {
	StaleWithdrawals(ctx context.Context, limit int) ([]model.Withdrawal, error)
	ExpireWithdrawal(ctx context.Context, id uuid.UUID) (*model.Withdrawal, error)
}

// ExpiryProcessor periodically rejects and refunds withdrawals that stayed
// pending for too long.
type ExpiryProcessor struct {
	facade       ExpiryFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewExpiryProcessor constructs the expiry worker pool.
func NewExpiryProcessor(facade ExpiryFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *ExpiryProcessor {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Minute
	}
	return &ExpiryProcessor{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
	}
}

// Start launches background processing. It is a no-op while running and
// may be called again after Stop.
func (p *ExpiryProcessor) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	jobs := make(chan uuid.UUID, p.batchSize)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx, jobs)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx, jobs)
}

// Stop cancels processing and waits for all workers to finish.
func (p *ExpiryProcessor) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.wg.Wait()
}

func (p *ExpiryProcessor) dispatch(ctx context.Context, jobs chan<- uuid.UUID) {
	defer p.wg.Done()
	defer close(jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx, jobs)
		}
	}
}

func (p *ExpiryProcessor) fetchAndDispatch(ctx context.Context, jobs chan<- uuid.UUID) {
	stale, err := p.facade.StaleWithdrawals(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("fetch stale withdrawals failed", slog.String("error", err.Error()))
		observability.IncrementWorkerRun(workerName, "fetch_error")
		return
	}
	for _, w := range stale {
		select {
		case <-ctx.Done():
			return
		case jobs <- w.ID:
		}
	}
}

func (p *ExpiryProcessor) worker(ctx context.Context, jobs <-chan uuid.UUID) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-jobs:
			if !ok {
				return
			}
			p.expire(ctx, id)
		}
	}
}

func (p *ExpiryProcessor) expire(ctx context.Context, id uuid.UUID) {
	w, err := p.facade.ExpireWithdrawal(ctx, id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyResolved) {
			observability.IncrementWorkerRun(workerName, "skipped")
			return
		}
		p.logger.Error("expire withdrawal failed", slog.String("request_id", id.String()), slog.String("error", err.Error()))
		observability.IncrementWorkerRun(workerName, "error")
		return
	}

	p.logger.Info("withdrawal expired",
		slog.String("request_id", id.String()),
		slog.Int64("user_id", w.UserID),
		slog.String("amount", w.Amount.String()),
	)
	observability.IncrementWorkerRun(workerName, "expired")
}
