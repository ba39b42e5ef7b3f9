package gcp

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"

	"github.com/tripweave/itinerary-engine/pkg/orchestrator"
)

// EnsureTopic returns the named topic, creating it if it does not exist
func (c *Client) EnsureTopic(ctx context.Context, topicName string) (*pubsub.Topic, error) {
	if c.PubSubClient == nil {
		return nil, fmt.Errorf("pub/sub client not initialized")
	}
	topic := c.PubSubClient.Topic(topicName)

	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check topic existence: %w", err)
	}

	if !exists {
		topic, err = c.PubSubClient.CreateTopic(ctx, topicName)
		if err != nil {
			return nil, fmt.Errorf("failed to create topic: %w", err)
		}
	}
	return topic, nil
}

// ProgressPublisher publishes generation progress events to a Pub/Sub topic
type ProgressPublisher struct {
	topic  *pubsub.Topic
	logger *zap.Logger
}

// NewProgressPublisher opens (or creates) topicName for progress events
func (c *Client) NewProgressPublisher(ctx context.Context, topicName string) (*ProgressPublisher, error) {
	topic, err := c.EnsureTopic(ctx, topicName)
	if err != nil {
		return nil, err
	}
	return &ProgressPublisher{topic: topic, logger: c.logger}, nil
}

// Publish implements orchestrator.ProgressSink. Delivery is confirmed in the
// background so the pipeline never waits on the broker.
func (p *ProgressPublisher) Publish(ctx context.Context, progress orchestrator.Progress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: progressAttributes(progress),
	})

	go func() {
		if _, err := result.Get(context.Background()); err != nil {
			p.logger.Warn("failed to publish progress event",
				zap.String("run_id", progress.RunID),
				zap.Error(err),
			)
		}
	}()
	return nil
}

// Stop flushes pending messages
func (p *ProgressPublisher) Stop() {
	p.topic.Stop()
}

func progressAttributes(progress orchestrator.Progress) map[string]string {
	return map[string]string{
		"run_id": progress.RunID,
		"stage":  string(progress.Stage),
	}
}
