package gcp

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tripweave/itinerary-engine/pkg/gateway"
)

// StoreDocument stores a document in Firestore
func (c *Client) StoreDocument(ctx context.Context, collection, docID string, data interface{}) error {
	if c.FirestoreClient == nil {
		return fmt.Errorf("firestore client not initialized")
	}
	_, err := c.FirestoreClient.Collection(collection).Doc(docID).Set(ctx, data)
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	return nil
}

// SaveItineraryHandler serves the saveItinerary operation from Firestore.
// The payload is {"itinerary": {...}}; the document id is the itinerary id.
func (c *Client) SaveItineraryHandler(collection string) gateway.Handler {
	return func(ctx context.Context, operation string, payload any) (*gateway.Response, error) {
		doc, err := itineraryDocument(payload)
		if err != nil {
			return nil, err
		}

		id, _ := doc["id"].(string)
		if id == "" {
			id = uuid.New().String()
			doc["id"] = id
		}
		doc["savedAt"] = firestore.ServerTimestamp

		if err := c.StoreDocument(ctx, collection, id, doc); err != nil {
			return nil, err
		}

		c.logger.Info("itinerary stored",
			zap.String("collection", collection),
			zap.String("id", id),
		)

		data, _ := json.Marshal(map[string]any{"id": id})
		return &gateway.Response{Success: true, Data: data}, nil
	}
}

func itineraryDocument(payload any) (map[string]any, error) {
	var envelope map[string]any
	if m, ok := payload.(map[string]any); ok {
		envelope = m
	} else {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid-argument: itinerary payload is not serializable: %v", err)
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("invalid-argument: itinerary payload must be an object")
		}
	}

	doc, ok := envelope["itinerary"].(map[string]any)
	if !ok || doc == nil {
		return nil, fmt.Errorf("invalid-argument: itinerary is required")
	}

	out := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	return out, nil
}
