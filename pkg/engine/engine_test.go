package engine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripweave/itinerary-engine/pkg/config"
	"github.com/tripweave/itinerary-engine/pkg/gateway"
	"github.com/tripweave/itinerary-engine/pkg/orchestrator"
	"github.com/tripweave/itinerary-engine/pkg/types"
)

var cannedResults = map[string]string{
	gateway.OpSearchAccommodations:     `{"result": {"success": true, "data": {"hotels": [{"name": "Hotel Lisboa Plaza", "phone": "+351 21"}]}}}`,
	gateway.OpSearchActivities:         `{"result": {"activities": [{"name": "Belem Tower", "website": "https://example.com/belem"}], "restaurants": [{"name": "Time Out Market", "priceLevel": 2}]}}`,
	gateway.OpGenerateItineraryContent: `{"result": {"content": "Lisbon in three days.\n\nTrams, tiles and pastries."}}`,
	gateway.OpSaveItinerary:            `{"result": {"success": true, "data": {"id": "doc-42"}}}`,
}

type backend struct {
	mu    sync.Mutex
	calls []string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	op := strings.TrimPrefix(r.URL.Path, "/")
	b.mu.Lock()
	b.calls = append(b.calls, op)
	b.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil || envelope["data"] == nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error": {"status": "INVALID_ARGUMENT", "message": "missing data"}}`)
		return
	}

	result, ok := cannedResults[op]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, result)
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Environment:          "test",
		Strategy:             config.StrategyContentFirst,
		GatewayBaseURL:       baseURL,
		GatewayServicePrefix: "itinerary-",
		GatewayTimeout:       5 * time.Second,
		AITimeout:            5 * time.Second,
		SaveBackend:          config.SaveBackendHTTP,
		RetryMaxAttempts:     2,
		RetryBaseDelay:       time.Millisecond,
		RetryMaxDelay:        time.Millisecond,
		RetryMultiplier:      1,
	}
}

func TestEngineGeneratesOverHTTP(t *testing.T) {
	b := &backend{}
	srv := httptest.NewServer(b)
	defer srv.Close()

	eng, err := New(context.Background(), testConfig(srv.URL), nil)
	require.NoError(t, err)
	defer eng.Close()

	res := eng.Orchestrator.GenerateItinerary(context.Background(), &types.GenerationRequest{
		Destination: "Lisbon, Portugal",
		StartDate:   "2025-04-01",
		EndDate:     "2025-04-03",
		TripType:    types.TripTypeCouple,
	}, &types.User{UID: "user-7"})

	require.True(t, res.Success, "%+v", res.Error)
	assert.Equal(t, "doc-42", res.ItineraryID)
	assert.Empty(t, res.SaveError)
	assert.Equal(t, "Lisbon in three days.", res.Data.Summary)
	require.Len(t, res.Data.DailyPlans, 3)
	assert.Equal(t, "Belem Tower", res.Data.DailyPlans[2].Activities[0].Name)
	assert.Equal(t, "Time Out Market", res.Data.DailyPlans[0].Meals[0].Name)
	assert.Equal(t, orchestrator.StageDone, eng.Orchestrator.Progress().Stage)

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.ElementsMatch(t, []string{
		gateway.OpSearchAccommodations,
		gateway.OpSearchActivities,
		gateway.OpGenerateItineraryContent,
		gateway.OpSaveItinerary,
	}, b.calls)
}

func TestEngineRejectsUnknownStrategy(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:0")
	cfg.Strategy = "random"

	_, err := New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "unknown itinerary strategy")
}

func TestEngineRegistersEveryOperation(t *testing.T) {
	eng, err := New(context.Background(), testConfig("http://127.0.0.1:0"), nil)
	require.NoError(t, err)
	defer eng.Close()

	assert.ElementsMatch(t, gateway.Operations, eng.Dispatcher.ListOperations())
}
