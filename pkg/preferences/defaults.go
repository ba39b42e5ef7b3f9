package preferences

import (
	"github.com/tripweave/itinerary-engine/pkg/types"
)

// Conservative defaults used when a profile is absent or partial
const (
	DefaultPrimaryMode       = "ground"
	DefaultPace              = "moderate"
	DefaultTravelStyle       = "balanced"
	DefaultAccommodationType = "hotel"
)

// Default returns a fresh profile holding only conservative defaults
func Default() *types.PreferenceProfile {
	return &types.PreferenceProfile{
		Name:              "Default",
		TravelStyle:       DefaultTravelStyle,
		BudgetLevel:       types.BudgetMidRange,
		Pace:              DefaultPace,
		AccommodationType: DefaultAccommodationType,
		Transportation: &types.TransportationPreferences{
			PrimaryMode:    DefaultPrimaryMode,
			IncludeFlights: false,
		},
		IsDefault: true,
	}
}

// WithDefaults returns a copy of profile with every absent field filled.
// Explicit choices are never overridden.
func WithDefaults(profile *types.PreferenceProfile) *types.PreferenceProfile {
	if profile == nil {
		return Default()
	}

	out := profile.Clone()
	def := Default()

	if out.TravelStyle == "" {
		out.TravelStyle = def.TravelStyle
	}
	if out.BudgetLevel == "" {
		out.BudgetLevel = def.BudgetLevel
	}
	if out.Pace == "" {
		out.Pace = def.Pace
	}
	if out.AccommodationType == "" {
		out.AccommodationType = def.AccommodationType
	}
	if out.Transportation == nil {
		out.Transportation = def.Transportation
	} else if out.Transportation.PrimaryMode == "" {
		out.Transportation.PrimaryMode = def.Transportation.PrimaryMode
	}
	return out
}
