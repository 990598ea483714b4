package application

import (
	"context"
	"sync"

	"github.com/devbush/call2insights/internal/domain"
	"github.com/devbush/call2insights/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const maxConcurrency = 50

// Orchestrator drives the per-row analysis pipeline over a batch of
// transcript rows with bounded concurrency.
type Orchestrator struct {
	analyzer ports.Analyzer
	prompts  *PromptBuilder
	limit    int64
	logger   *zap.Logger
}

// NewOrchestrator creates a batch orchestrator. concurrency is clamped
// to [1, 50]. logger may be nil.
func NewOrchestrator(analyzer ports.Analyzer, prompts *PromptBuilder, concurrency int, logger *zap.Logger) *Orchestrator {
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > maxConcurrency {
		concurrency = maxConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		analyzer: analyzer,
		prompts:  prompts,
		limit:    int64(concurrency),
		logger:   logger,
	}
}

// Run processes every row and returns the accumulated analyses and
// failures. One row's failure never aborts the batch. Cancellation of
// ctx stops new dispatches; rows never dispatched are recorded as
// cancelled failures, while in-flight calls finish or time out on their
// own. Run always returns exactly one outcome per submitted row.
func (o *Orchestrator) Run(ctx context.Context, rows []domain.TranscriptRow, progress *Progress) ([]domain.Analysis, []domain.Failure) {
	if progress == nil {
		progress = NewProgress(len(rows), nil)
	}

	var (
		mu       sync.Mutex
		results  []domain.Analysis
		failures []domain.Failure
		wg       sync.WaitGroup
	)

	recordFailure := func(rowID string, err error) {
		mu.Lock()
		failures = append(failures, domain.Failure{
			RowID:   rowID,
			Kind:    domain.ClassifyFailure(err),
			Message: err.Error(),
		})
		mu.Unlock()
		progress.RowFailed()
	}

	sem := semaphore.NewWeighted(o.limit)

	for i, row := range rows {
		// Validation failures are recorded without consuming a dispatch
		// slot: the row never reaches the AI service.
		prompt, err := o.prompts.Build(row)
		if err != nil {
			o.logger.Warn("row excluded before dispatch",
				zap.String("row", row.ID), zap.Error(err))
			recordFailure(row.ID, err)
			continue
		}

		// Cancellation is checked between dispatches. Acquire fails only
		// when ctx is done, so every row from here on is undispatched.
		if err := sem.Acquire(ctx, 1); err != nil {
			o.logger.Info("batch cancelled",
				zap.String("row", row.ID), zap.Int("remaining", len(rows)-i))
			o.cancelRemaining(rows[i:], recordFailure)
			break
		}

		wg.Add(1)
		go func(row domain.TranscriptRow, prompt string) {
			defer wg.Done()
			defer sem.Release(1)

			completion, err := o.analyzer.Analyze(ctx, prompt)
			if err != nil {
				o.logger.Warn("row analysis failed",
					zap.String("row", row.ID), zap.Error(err))
				recordFailure(row.ID, err)
				return
			}

			mu.Lock()
			results = append(results, domain.Analysis{RowID: row.ID, Completion: *completion})
			mu.Unlock()
			progress.RowCompleted()

			o.logger.Debug("row analyzed",
				zap.String("row", row.ID),
				zap.String("root_cause", string(completion.RootCause)),
				zap.Int("empathy_score", completion.EmpathyScore))
		}(row, prompt)
	}

	wg.Wait()
	return results, failures
}

func (o *Orchestrator) cancelRemaining(rows []domain.TranscriptRow, recordFailure func(string, error)) {
	for _, row := range rows {
		recordFailure(row.ID, context.Canceled)
	}
}
