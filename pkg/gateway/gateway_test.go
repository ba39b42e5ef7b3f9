package gateway

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripweave/itinerary-engine/pkg/errors"
	"github.com/tripweave/itinerary-engine/pkg/timeout"
)

func TestDispatcherRoutesByOperation(t *testing.T) {
	d := NewDispatcher(nil, nil)
	var gotOp string
	var gotPayload any
	d.Register(OpSearchActivities, func(ctx context.Context, op string, payload any) (*Response, error) {
		gotOp, gotPayload = op, payload
		return &Response{Success: true, Data: json.RawMessage(`{"activities":[]}`)}, nil
	})

	resp, err := d.Call(context.Background(), OpSearchActivities, map[string]any{"destination": "Rome"})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, OpSearchActivities, gotOp)
	assert.Equal(t, map[string]any{"destination": "Rome"}, gotPayload)
	assert.Equal(t, []string{OpSearchActivities}, d.ListOperations())
}

func TestDispatcherUnsuccessfulResponseBecomesError(t *testing.T) {
	d := NewDispatcher(nil, nil)
	d.Register(OpSearchFlights, func(ctx context.Context, op string, payload any) (*Response, error) {
		return &Response{Success: false, Error: "no flights on that date"}, nil
	})
	d.Register(OpSearchAccommodations, func(ctx context.Context, op string, payload any) (*Response, error) {
		return &Response{Success: false}, nil
	})

	_, err := d.Call(context.Background(), OpSearchFlights, nil)
	assert.EqualError(t, err, "no flights on that date")

	_, err = d.Call(context.Background(), OpSearchAccommodations, nil)
	assert.EqualError(t, err, "searchAccommodations failed")
}

func TestDispatcherUnknownOperation(t *testing.T) {
	_, err := NewDispatcher(nil, nil).Call(context.Background(), "bookTaxi", nil)

	require.Error(t, err)
	assert.Equal(t, errors.KindPermissionDenied, errors.KindOf(err))
	assert.Contains(t, err.Error(), "invalid-argument")
}

func TestDispatcherAppliesOperationTimeout(t *testing.T) {
	tm := timeout.NewManager(time.Minute)
	tm.SetOperationTimeout(OpGenerateFullItinerary, 20*time.Millisecond)
	d := NewDispatcher(tm, nil)
	d.Register(OpGenerateFullItinerary, func(ctx context.Context, op string, payload any) (*Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, err := d.Call(context.Background(), OpGenerateFullItinerary, nil)

	require.Error(t, err)
	assert.Equal(t, errors.KindTimeout, errors.KindOf(err))
}

func TestNewDefaultTimeouts(t *testing.T) {
	tm := NewDefaultTimeouts(30*time.Second, 2*time.Minute)
	ctx := context.Background()

	assert.Equal(t, 2*time.Minute, tm.GetTimeout(ctx, OpGenerateItineraryContent))
	assert.Equal(t, 2*time.Minute, tm.GetTimeout(ctx, OpGroundTransportAdvice))
	assert.Equal(t, 30*time.Second, tm.GetTimeout(ctx, OpSearchFlights))
	assert.Equal(t, OperationTimeouts[OpSaveItinerary], tm.GetTimeout(ctx, OpSaveItinerary))
}
