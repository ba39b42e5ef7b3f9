package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	run "cloud.google.com/go/run/apiv2"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Services selects which GCP clients to open
type Services struct {
	Run       bool
	Firestore bool
	PubSub    bool
}

// Client wraps the GCP service clients used by the engine. Clients that were
// not requested are nil.
type Client struct {
	ProjectID       string
	Region          string
	RunClient       *run.ServicesClient
	FirestoreClient *firestore.Client
	PubSubClient    *pubsub.Client

	logger *zap.Logger
}

// NewClient creates a GCP client with the requested services
func NewClient(ctx context.Context, projectID, region string, services Services, logger *zap.Logger, opts ...option.ClientOption) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{ProjectID: projectID, Region: region, logger: logger}

	if services.Run {
		runClient, err := run.NewServicesClient(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Cloud Run client: %w", err)
		}
		c.RunClient = runClient
	}

	if services.Firestore {
		firestoreClient, err := firestore.NewClient(ctx, projectID, opts...)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to create Firestore client: %w", err)
		}
		c.FirestoreClient = firestoreClient
	}

	if services.PubSub {
		pubsubClient, err := pubsub.NewClient(ctx, projectID, opts...)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to create Pub/Sub client: %w", err)
		}
		c.PubSubClient = pubsubClient
	}

	return c, nil
}

// Close closes all opened GCP clients
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	var errs []error

	if c.RunClient != nil {
		if err := c.RunClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Cloud Run client: %w", err))
		}
	}

	if c.FirestoreClient != nil {
		if err := c.FirestoreClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Firestore client: %w", err))
		}
	}

	if c.PubSubClient != nil {
		if err := c.PubSubClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Pub/Sub client: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing clients: %v", errs)
	}

	return nil
}

// ClientOptions builds client options from a credentials file path
func ClientOptions(credentialsFile string) []option.ClientOption {
	if credentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(credentialsFile)}
}
