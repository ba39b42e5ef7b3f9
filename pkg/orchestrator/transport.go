package orchestrator

import (
	"strings"

	"github.com/tripweave/itinerary-engine/pkg/preferences"
	"github.com/tripweave/itinerary-engine/pkg/types"
)

var airModes = map[string]bool{
	"airplane": true,
	"flight":   true,
	"flights":  true,
	"air":      true,
}

// TransportPlan is the resolved travel decision for one request
type TransportPlan struct {
	Mode           types.TravelMode
	IncludeFlights bool
	// SearchFlights additionally requires both airport codes
	SearchFlights bool
}

// ResolveTravelMode maps a profile's free-form primary mode onto the closed enum
func ResolveTravelMode(profile *types.PreferenceProfile) types.TravelMode {
	profile = preferences.WithDefaults(profile)
	if airModes[profile.Transportation.PrimaryMode.Normalized()] {
		return types.TravelModeAir
	}
	return types.TravelModeGround
}

// IncludeFlights reports whether the profile asks for air travel, either by
// the explicit override or by its travel mode.
func IncludeFlights(profile *types.PreferenceProfile) bool {
	profile = preferences.WithDefaults(profile)
	return profile.Transportation.IncludeFlights || ResolveTravelMode(profile) == types.TravelModeAir
}

// ResolveTransport decides whether a flight search should be issued
func ResolveTransport(req *types.GenerationRequest) TransportPlan {
	include := IncludeFlights(req.PreferenceProfile)
	mode := types.TravelModeGround
	if include {
		mode = types.TravelModeAir
	}
	return TransportPlan{
		Mode:           mode,
		IncludeFlights: include,
		SearchFlights: include &&
			strings.TrimSpace(req.DepartureAirportCode) != "" &&
			strings.TrimSpace(req.DestinationAirportCode) != "",
	}
}
