// Package engine wires configuration, logging, GCP clients, the gateway and
// the orchestrator into one runnable unit.
package engine

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/tripweave/itinerary-engine/pkg/config"
	"github.com/tripweave/itinerary-engine/pkg/gateway"
	"github.com/tripweave/itinerary-engine/pkg/gcp"
	"github.com/tripweave/itinerary-engine/pkg/orchestrator"
	"github.com/tripweave/itinerary-engine/pkg/retry"
)

// Engine owns every long-lived collaborator of the orchestrator
type Engine struct {
	Config       *config.Config
	Orchestrator *orchestrator.Orchestrator
	Dispatcher   *gateway.Dispatcher

	logger    *zap.Logger
	gcp       *gcp.Client
	publisher *gcp.ProgressPublisher
}

// New builds an engine from configuration
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{Config: cfg, logger: logger}

	services := gcp.Services{
		Run:       cfg.UsesCloudRun(),
		Firestore: cfg.SaveBackend == config.SaveBackendFirestore,
		PubSub:    cfg.ProgressTopic != "",
	}
	if services.Run || services.Firestore || services.PubSub {
		client, err := gcp.NewClient(ctx, cfg.ProjectID, cfg.Region, services, logger, gcp.ClientOptions(cfg.CredentialsFile)...)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCP client: %w", err)
		}
		e.gcp = client
	}

	var resolver gateway.EndpointResolver = gateway.StaticResolver{BaseURL: cfg.GatewayBaseURL}
	if cfg.UsesCloudRun() {
		resolver = gcp.NewServiceResolver(e.gcp, cfg.GatewayServicePrefix)
	}

	dispatcher := gateway.NewDispatcher(gateway.NewDefaultTimeouts(cfg.GatewayTimeout, cfg.AITimeout), logger)
	transport := gateway.NewHTTPHandler(&http.Client{}, resolver, logger)
	for _, op := range gateway.Operations {
		dispatcher.Register(op, transport.Handle)
	}
	if services.Firestore {
		dispatcher.Register(gateway.OpSaveItinerary, e.gcp.SaveItineraryHandler(cfg.FirestoreCollection))
	}
	e.Dispatcher = dispatcher

	strategy, err := orchestrator.NewStrategy(cfg.Strategy)
	if err != nil {
		e.Close()
		return nil, err
	}

	opts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithStrategy(strategy),
		orchestrator.WithRetryPolicy(retry.Policy{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			MaxDelay:    cfg.RetryMaxDelay,
			Multiplier:  cfg.RetryMultiplier,
			Jitter:      cfg.RetryJitter,
		}),
	}
	if services.PubSub {
		publisher, err := e.gcp.NewProgressPublisher(ctx, cfg.ProgressTopic)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("failed to open progress topic: %w", err)
		}
		e.publisher = publisher
		opts = append(opts, orchestrator.WithProgressSink(publisher))
	}

	e.Orchestrator = orchestrator.New(dispatcher, opts...)

	logger.Info("itinerary engine ready",
		zap.String("strategy", strategy.Name()),
		zap.String("save_backend", cfg.SaveBackend),
		zap.Bool("cloud_run_endpoints", cfg.UsesCloudRun()),
		zap.Bool("progress_events", services.PubSub),
		zap.Strings("operations", dispatcher.ListOperations()),
	)
	return e, nil
}

// Close releases the GCP clients
func (e *Engine) Close() error {
	if e.publisher != nil {
		e.publisher.Stop()
	}
	if e.gcp != nil {
		return e.gcp.Close()
	}
	return nil
}
