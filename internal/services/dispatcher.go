package services

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/internal/repositories"
	"github.com/anonto42/gamematch/backend/pkg/logger"
	"github.com/anonto42/gamematch/backend/pkg/pubsub"
)

// Dispatcher publishes notifications on the recipient's realtime channel and
// appends them to the inbox. Delivery is at most once: failures are logged and
// dropped, and never reach the request that caused them.
type Dispatcher struct {
	publisher pubsub.Publisher
	inbox     repositories.NotificationRepository
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. inbox may be nil.
func NewDispatcher(publisher pubsub.Publisher, inbox repositories.NotificationRepository, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{publisher: publisher, inbox: inbox, timeout: timeout}
}

// Notify delivers in the background. Only the request logger is taken from
// ctx; the delivery is not cancelled when the request ends.
func (d *Dispatcher) Notify(ctx context.Context, target *models.User, notification *models.Notification) {
	recipient := *target
	n := *notification
	l := logger.Ctx(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		bg, cancel := context.WithTimeout(logger.WithLogger(context.Background(), l), d.timeout)
		defer cancel()
		d.deliver(bg, &recipient, &n)
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, target *models.User, n *models.Notification) {
	l := logger.Ctx(ctx)
	channel := pubsub.UserChannel(target.ExternalID)

	msg, err := pubsub.NewMessage(channel, n.EventName(), n.Payload())
	if err != nil {
		l.Error().Err(err).Str("channel", channel).Msg("failed to encode notification")
		return
	}
	if err := d.publisher.Publish(ctx, msg); err != nil {
		l.Warn().Err(err).Str("channel", channel).Str("event", msg.Event).Msg("failed to publish notification")
	}

	if d.inbox == nil {
		return
	}
	if err := d.inbox.CreateNotification(ctx, n); err != nil {
		l.Warn().Err(err).Str("notification_id", n.ID).Msg("failed to store notification")
	}
}

// Wait blocks until in-flight deliveries finish.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
