package services

import (
	"context"
	"fmt"

	"github.com/getmentor/profile-editor/internal/models"
	"github.com/getmentor/profile-editor/pkg/httpclient"
	"github.com/getmentor/profile-editor/pkg/logger"
	"github.com/getmentor/profile-editor/pkg/metrics"
	"github.com/getmentor/profile-editor/pkg/trigger"
	json "github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// LogNotifier writes notifications to the application log
type LogNotifier struct{}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the notification at a level matching its status
func (n *LogNotifier) Notify(_ context.Context, notification models.Notification) {
	fields := []zap.Field{
		zap.String("title", notification.Title),
		zap.String("description", notification.Description),
	}
	if notification.Status == models.NotificationError {
		logger.Warn("Form notification", fields...)
		return
	}
	logger.Info("Form notification", fields...)
}

// TriggerPublisher posts the saved event to a webhook without blocking submit
type TriggerPublisher struct {
	url    string
	client httpclient.Client
}

// NewTriggerPublisher creates a webhook publisher
func NewTriggerPublisher(url string, client httpclient.Client) *TriggerPublisher {
	return &TriggerPublisher{url: url, client: client}
}

// Name identifies the channel
func (p *TriggerPublisher) Name() string {
	return "webhook"
}

// PublishProfileSaved starts the webhook call; the outcome is recorded asynchronously
func (p *TriggerPublisher) PublishProfileSaved(ctx context.Context, event models.ProfileSavedEvent) error {
	if p.url == "" {
		return fmt.Errorf("trigger URL is not configured")
	}
	trigger.CallAsync(ctx, p.url, event, p.client, func(err error) {
		if err != nil {
			metrics.EventDeliveries.WithLabelValues("webhook_async", "error").Inc()
			return
		}
		metrics.EventDeliveries.WithLabelValues("webhook_async", "success").Inc()
	})
	return nil
}

// AMQPChannel is the subset of *amqp.Channel used for publishing
type AMQPChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

var _ AMQPChannel = (*amqp.Channel)(nil)

// AMQPPublisher sends the saved event as a persistent JSON message to a queue
type AMQPPublisher struct {
	channel AMQPChannel
	queue   string
}

// NewAMQPPublisher creates a queue publisher on the default exchange
func NewAMQPPublisher(channel AMQPChannel, queue string) *AMQPPublisher {
	return &AMQPPublisher{channel: channel, queue: queue}
}

// Name identifies the channel
func (p *AMQPPublisher) Name() string {
	return "amqp"
}

// PublishProfileSaved publishes the event to the queue
func (p *AMQPPublisher) PublishProfileSaved(ctx context.Context, event models.ProfileSavedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode profile saved event: %w", err)
	}

	message := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Type:         "profile.saved",
		Headers: amqp.Table{
			"message_type": "JSON",
		},
	}

	if err := p.channel.PublishWithContext(ctx, "", p.queue, false, false, message); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logger.Debug("Profile saved event published", zap.String("queue", p.queue))
	return nil
}
