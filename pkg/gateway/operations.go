package gateway

import "time"

// Remote operation names
const (
	OpSearchAccommodations     = "searchAccommodations"
	OpSearchActivities         = "searchActivities"
	OpSearchFlights            = "searchFlights"
	OpGenerateItineraryContent = "generateItineraryContent"
	OpGenerateFullItinerary    = "generateFullItinerary"
	OpGroundTransportAdvice    = "generateGroundTransportationAdvice"
	OpSaveItinerary            = "saveItinerary"
)

// Operations lists every operation the engine may call
var Operations = []string{
	OpSearchAccommodations,
	OpSearchActivities,
	OpSearchFlights,
	OpGenerateItineraryContent,
	OpGenerateFullItinerary,
	OpGroundTransportAdvice,
	OpSaveItinerary,
}

// OperationTimeouts defines default per-call deadlines
var OperationTimeouts = map[string]time.Duration{
	OpSearchAccommodations:     45 * time.Second,
	OpSearchActivities:         45 * time.Second,
	OpSearchFlights:            60 * time.Second,
	OpGenerateItineraryContent: 5 * time.Minute,
	OpGenerateFullItinerary:    5 * time.Minute,
	OpGroundTransportAdvice:    90 * time.Second,
	OpSaveItinerary:            30 * time.Second,
}

// IsAIOperation reports whether op is a long-running AI generation call
func IsAIOperation(op string) bool {
	return op == OpGenerateItineraryContent || op == OpGenerateFullItinerary || op == OpGroundTransportAdvice
}
