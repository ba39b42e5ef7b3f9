package gcp

import (
	"context"
	"fmt"
	"testing"

	runpb "cloud.google.com/go/run/apiv2/runpb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceName(t *testing.T) {
	assert.Equal(t, "itinerary-search-accommodations", ServiceName("itinerary-", "searchAccommodations"))
	assert.Equal(t, "itinerary-generate-ground-transportation-advice", ServiceName("itinerary-", "generateGroundTransportationAdvice"))
	assert.Equal(t, "save-itinerary", ServiceName("", "saveItinerary"))
}

func TestServiceResolverCachesLookups(t *testing.T) {
	calls := 0
	r := &ServiceResolver{
		prefix: "itinerary-",
		cache:  make(map[string]string),
		lookup: func(ctx context.Context, serviceName string) (string, error) {
			calls++
			return "https://" + serviceName + ".run.app", nil
		},
	}

	for i := 0; i < 3; i++ {
		url, err := r.Endpoint(context.Background(), "searchFlights")
		require.NoError(t, err)
		assert.Equal(t, "https://itinerary-search-flights.run.app", url)
	}
	assert.Equal(t, 1, calls)
}

func TestServiceResolverDoesNotCacheFailures(t *testing.T) {
	calls := 0
	r := &ServiceResolver{
		prefix: "itinerary-",
		cache:  make(map[string]string),
		lookup: func(ctx context.Context, serviceName string) (string, error) {
			calls++
			if calls == 1 {
				return "", fmt.Errorf("service URL not available yet")
			}
			return "https://ready.run.app", nil
		},
	}

	_, err := r.Endpoint(context.Background(), "saveItinerary")
	assert.ErrorContains(t, err, "itinerary-save-itinerary")

	url, err := r.Endpoint(context.Background(), "saveItinerary")
	require.NoError(t, err)
	assert.Equal(t, "https://ready.run.app", url)
}

func TestServiceReady(t *testing.T) {
	assert.True(t, serviceReady(&runpb.Service{}))
	assert.True(t, serviceReady(&runpb.Service{Conditions: []*runpb.Condition{
		{Type: "Ready", State: runpb.Condition_CONDITION_SUCCEEDED},
	}}))
	assert.False(t, serviceReady(&runpb.Service{Conditions: []*runpb.Condition{
		{Type: "RoutesReady", State: runpb.Condition_CONDITION_SUCCEEDED},
		{Type: "Ready", State: runpb.Condition_CONDITION_RECONCILING},
	}}))
}

func TestGetServiceURLWithoutClient(t *testing.T) {
	_, err := (&Client{}).GetServiceURL(context.Background(), "itinerary-search-flights")
	assert.EqualError(t, err, "cloud run client not initialized")
}
