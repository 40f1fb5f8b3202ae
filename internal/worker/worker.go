package worker

import (
	"context"
	"log"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/notifier"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes order events and drives the bot notifier.
// Delivery failures are logged and counted, never retried against the
// order itself.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	notifier     *notifier.BotNotifier
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, bot *notifier.BotNotifier) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		notifier: bot,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCreated(w.handleOrderCreated)
	w.eventHandler = eventHandler

	return w
}

func (w *NotificationWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	if err := w.notifier.SendOrderCreated(ctx, event); err != nil {
		util.NotificationsFailedTotal.Inc()
		w.logger.Error("Failed to send order notification",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
		// Swallowed on purpose: the message is committed either way.
		return nil
	}

	util.NotificationsSentTotal.Inc()
	return nil
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	log.Println("Starting notification worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	log.Println("Stopping notification worker...")
	return w.consumer.Close()
}
