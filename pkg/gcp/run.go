package gcp

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	runpb "cloud.google.com/go/run/apiv2/runpb"
	"go.uber.org/zap"
)

// GetServiceURL retrieves the URL for a Cloud Run service
func (c *Client) GetServiceURL(ctx context.Context, serviceName string) (string, error) {
	if c.RunClient == nil {
		return "", fmt.Errorf("cloud run client not initialized")
	}

	req := &runpb.GetServiceRequest{
		Name: fmt.Sprintf("projects/%s/locations/%s/services/%s", c.ProjectID, c.Region, serviceName),
	}

	service, err := c.RunClient.GetService(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to get service: %w", err)
	}

	if service.Uri == "" {
		return "", fmt.Errorf("service URL not available yet")
	}
	if !serviceReady(service) {
		return "", fmt.Errorf("service %s is not ready", serviceName)
	}

	return service.Uri, nil
}

func serviceReady(service *runpb.Service) bool {
	if len(service.Conditions) == 0 {
		return true
	}
	for _, condition := range service.Conditions {
		if condition.Type == "Ready" {
			return condition.State == runpb.Condition_CONDITION_SUCCEEDED
		}
	}
	return true
}

// ServiceName derives the Cloud Run service backing an operation, e.g.
// "itinerary-" + "searchAccommodations" -> "itinerary-search-accommodations".
func ServiceName(prefix, operation string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for i, r := range operation {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ServiceResolver resolves gateway endpoints from Cloud Run services and
// caches each URL for the life of the process.
type ServiceResolver struct {
	client *Client
	prefix string
	lookup func(ctx context.Context, serviceName string) (string, error)

	mu    sync.RWMutex
	cache map[string]string
}

// NewServiceResolver creates a resolver backed by client
func NewServiceResolver(client *Client, prefix string) *ServiceResolver {
	return &ServiceResolver{
		client: client,
		prefix: prefix,
		lookup: client.GetServiceURL,
		cache:  make(map[string]string),
	}
}

// Endpoint implements gateway.EndpointResolver
func (r *ServiceResolver) Endpoint(ctx context.Context, operation string) (string, error) {
	r.mu.RLock()
	url, ok := r.cache[operation]
	r.mu.RUnlock()
	if ok {
		return url, nil
	}

	name := ServiceName(r.prefix, operation)
	url, err := r.lookup(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve service %s: %w", name, err)
	}

	r.mu.Lock()
	r.cache[operation] = url
	r.mu.Unlock()

	if r.client != nil {
		r.client.logger.Debug("resolved operation endpoint",
			zap.String("operation", operation),
			zap.String("service", name),
			zap.String("url", url),
		)
	}
	return url, nil
}
