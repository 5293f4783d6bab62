// Package worker hosts the background consumers of the service.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/quickdesk/helpdesk/internal/mail"
)

// MailWorker drains the outbox and hands messages to the mailer. Delivery
// failures are logged and absorbed; the triggering ticket operation has
// already committed.
type MailWorker struct {
	outbox *mail.Outbox
	mailer mail.Mailer
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewMailWorker creates the worker.
func NewMailWorker(outbox *mail.Outbox, mailer mail.Mailer, logger *zap.Logger) *MailWorker {
	return &MailWorker{outbox: outbox, mailer: mailer, logger: logger}
}

// Start launches the consumer goroutine.
func (w *MailWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for msg := range w.outbox.Messages() {
			if err := w.mailer.Send(ctx, msg); err != nil {
				w.logger.Warn("email delivery failed",
					zap.String("subject", msg.Subject),
					zap.Strings("recipients", msg.Recipients),
					zap.Error(err))
				continue
			}
			w.logger.Debug("email sent",
				zap.String("subject", msg.Subject),
				zap.Strings("recipients", msg.Recipients))
		}
	}()
}

// Stop closes the outbox and waits for queued messages to drain.
func (w *MailWorker) Stop() {
	w.outbox.Close()
	w.wg.Wait()
}
