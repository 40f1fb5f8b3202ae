package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// BotNotifier posts order summaries to a messaging-bot webhook. Delivery is
// best-effort: the caller treats every failure as log-and-forget.
type BotNotifier struct {
	webhookURL string
	chatID     string
	client     *http.Client
	logger     *zap.Logger
}

// NewBotNotifier creates a bot notifier. An empty webhook URL disables
// delivery; SendOrderCreated becomes a no-op.
func NewBotNotifier(webhookURL, chatID string, timeout time.Duration) *BotNotifier {
	return &BotNotifier{
		webhookURL: webhookURL,
		chatID:     chatID,
		client:     &http.Client{Timeout: timeout},
		logger:     util.GetLogger(),
	}
}

type botMessage struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// SendOrderCreated delivers a new-order notification.
func (n *BotNotifier) SendOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	if n.webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(botMessage{
		ChatID: n.chatID,
		Text:   formatOrderSummary(event),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification dispatch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification dispatch failed: status %d", resp.StatusCode)
	}

	n.logger.Info("Order notification sent", zap.String("order_id", event.OrderID))
	return nil
}

func formatOrderSummary(event *models.OrderCreatedEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order %s\n", event.OrderID)
	fmt.Fprintf(&b, "Customer: %s (%s)\n", event.CustomerName, event.CustomerPhone)
	fmt.Fprintf(&b, "Address: %s\n", event.DeliveryAddress)
	if event.CustomerComment != "" {
		fmt.Fprintf(&b, "Comment: %s\n", event.CustomerComment)
	}
	for _, item := range event.Items {
		fmt.Fprintf(&b, "- %s x%d", item.ProductName, item.Quantity)
		if item.SizeName != "" {
			fmt.Fprintf(&b, ", size %s", item.SizeName)
		}
		if item.ColorName != "" {
			fmt.Fprintf(&b, ", color %s", item.ColorName)
		}
		fmt.Fprintf(&b, " = %.2f\n", item.Price*float64(item.Quantity))
	}
	fmt.Fprintf(&b, "Total: %.2f", event.TotalAmount)
	return b.String()
}
