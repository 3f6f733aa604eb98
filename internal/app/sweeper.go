package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"line-quiz-bot/internal/domain"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// SweepReport aggregates the outcome of one expiry sweep.
type SweepReport struct {
	Expired int `json:"expired"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// Sweep deletes every quiz whose deadline has passed. A failed delete is logged and
// counted without stopping the others; only a failure to list expired quizzes is returned.
func (e *Engine) Sweep(ctx context.Context) (SweepReport, error) {
	expired, err := e.quizzes.ExpiredQuizzes(ctx, e.now())
	if err != nil {
		return SweepReport{}, fmt.Errorf("%w: list expired quizzes: %w", domain.ErrStoreUnavailable, err)
	}

	report := SweepReport{Expired: len(expired)}
	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(e.cfg.SweepConcurrency)
	for _, quiz := range expired {
		quiz := quiz
		g.Go(func() error {
			err := e.quizzes.DeleteQuiz(ctx, quiz.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				log.WithError(err).WithField("quiz_id", quiz.ID).Warn("failed to delete expired quiz")
				return nil
			}
			report.Deleted++
			return nil
		})
	}
	// The closures record failures in the report and never return an error.
	_ = g.Wait()

	log.WithFields(log.Fields{"expired": report.Expired, "deleted": report.Deleted, "failed": report.Failed}).Info("expiry sweep finished")
	return report, nil
}

// RunSweeper sweeps every interval until ctx is done.
func (e *Engine) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := e.Sweep(ctx); err != nil {
				log.WithError(err).Error("scheduled expiry sweep failed")
			}
		}
	}
}
