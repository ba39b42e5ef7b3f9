package orchestrator

import (
	"context"
	"encoding/json"

	"github.com/tripweave/itinerary-engine/pkg/errors"
	"github.com/tripweave/itinerary-engine/pkg/gateway"
	"github.com/tripweave/itinerary-engine/pkg/retry"
	"github.com/tripweave/itinerary-engine/pkg/types"
)

// persist writes the legacy view of record through saveItinerary and
// returns the stored id.
func (o *Orchestrator) persist(ctx context.Context, record *types.AssembledItinerary) (string, error) {
	view, err := LegacyView(record)
	if err != nil {
		return "", errors.Wrap(err, errors.KindUnknown)
	}
	payload := map[string]any{"itinerary": view}

	resp, err := retry.ExecuteWithRetry(ctx, func() (*gateway.Response, error) {
		return o.gateway.Call(ctx, gateway.OpSaveItinerary, payload)
	}, o.retryConfig(gateway.OpSaveItinerary), errors.KindServer)
	if err != nil {
		return "", err
	}

	var saved struct {
		ID string `json:"id"`
	}
	if len(resp.Data) > 0 {
		_ = json.Unmarshal(resp.Data, &saved)
	}
	if saved.ID == "" {
		saved.ID = record.ID
	}
	return saved.ID, nil
}
