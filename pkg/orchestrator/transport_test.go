package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripweave/itinerary-engine/pkg/types"
)

func profileWithMode(mode string, includeFlights bool) *types.PreferenceProfile {
	return &types.PreferenceProfile{
		Transportation: &types.TransportationPreferences{
			PrimaryMode:    types.FlexString(mode),
			IncludeFlights: includeFlights,
		},
	}
}

func TestResolveTravelMode(t *testing.T) {
	assert.Equal(t, types.TravelModeGround, ResolveTravelMode(nil))
	assert.Equal(t, types.TravelModeAir, ResolveTravelMode(profileWithMode(" Airplane ", false)))
	assert.Equal(t, types.TravelModeAir, ResolveTravelMode(profileWithMode("FLIGHTS", false)))
	assert.Equal(t, types.TravelModeGround, ResolveTravelMode(profileWithMode("train", false)))
	assert.Equal(t, types.TravelModeGround, ResolveTravelMode(profileWithMode("", false)))
}

func TestIncludeFlights(t *testing.T) {
	assert.False(t, IncludeFlights(nil))
	assert.True(t, IncludeFlights(profileWithMode("air", false)))
	assert.True(t, IncludeFlights(profileWithMode("car", true)))
	assert.False(t, IncludeFlights(profileWithMode("car", false)))
}

func TestResolveTransport(t *testing.T) {
	cases := []struct {
		name string
		req  *types.GenerationRequest
		want TransportPlan
	}{
		{
			name: "no profile",
			req:  &types.GenerationRequest{DepartureAirportCode: "SFO", DestinationAirportCode: "HND"},
			want: TransportPlan{Mode: types.TravelModeGround},
		},
		{
			name: "air with both codes",
			req: &types.GenerationRequest{
				DepartureAirportCode:   "SFO",
				DestinationAirportCode: "HND",
				PreferenceProfile:      profileWithMode("Airplane", false),
			},
			want: TransportPlan{Mode: types.TravelModeAir, IncludeFlights: true, SearchFlights: true},
		},
		{
			name: "air missing destination code",
			req: &types.GenerationRequest{
				DepartureAirportCode: "SFO",
				PreferenceProfile:    profileWithMode("Airplane", false),
			},
			want: TransportPlan{Mode: types.TravelModeAir, IncludeFlights: true},
		},
		{
			name: "explicit override with blank code",
			req: &types.GenerationRequest{
				DepartureAirportCode:   "  ",
				DestinationAirportCode: "HND",
				PreferenceProfile:      profileWithMode("ground", true),
			},
			want: TransportPlan{Mode: types.TravelModeAir, IncludeFlights: true},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveTransport(tc.req))
		})
	}
}
