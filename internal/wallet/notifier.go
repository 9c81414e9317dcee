package wallet

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Notifier delivers credits in the background. A credit is attempted once;
// failures are logged and never reach the submitter.
type Notifier struct {
	crediter Crediter
	timeout  time.Duration
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewNotifier creates a new Notifier
func NewNotifier(crediter Crediter, timeout time.Duration, logger *slog.Logger) *Notifier {
	return &Notifier{
		crediter: crediter,
		timeout:  timeout,
		logger:   logger,
	}
}

// Dispatch starts delivering credit and returns immediately. The delivery
// runs on a context detached from the caller's request.
func (n *Notifier) Dispatch(credit Credit) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.logger.Error("wallet credit panicked",
					slog.String("user_id", string(credit.UserID)),
					slog.Any("panic", r),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.crediter.Credit(ctx, credit); err != nil {
			n.logger.Error("wallet credit failed",
				slog.String("user_id", string(credit.UserID)),
				slog.String("game_id", string(credit.GameID)),
				slog.Int("amount", credit.Amount),
				slog.String("error", err.Error()),
			)
			return
		}

		n.logger.Info("wallet credited",
			slog.String("user_id", string(credit.UserID)),
			slog.String("game_id", string(credit.GameID)),
			slog.Int("amount", credit.Amount),
		)
	}()
}

// Wait blocks until every dispatched credit has finished
func (n *Notifier) Wait() {
	n.wg.Wait()
}
