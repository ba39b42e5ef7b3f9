package orchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tripweave/itinerary-engine/pkg/types"
)

func TestDescribe(t *testing.T) {
	req := &types.GenerationRequest{
		Destination: "Tokyo, Japan",
		StartDate:   "2025-12-01",
		EndDate:     "2025-12-07",
		TripType:    types.TripTypeSolo,
	}
	assert.Equal(t, "7-day solo trip to Tokyo, Japan (2025-12-01 to 2025-12-07)", Describe(req, 7, types.TravelModeGround))

	req.TripType = ""
	req.DepartureLocation = "San Francisco"
	assert.Equal(t, "7-day trip to Tokyo, Japan (2025-12-01 to 2025-12-07) from San Francisco by air", Describe(req, 7, types.TravelModeAir))
}

func TestAssembleCopiesRequestAndFallsBack(t *testing.T) {
	req := &types.GenerationRequest{
		Destination: "Lisbon",
		StartDate:   "2025-04-01",
		EndDate:     "2025-04-03",
		MustInclude: []string{"tram 28"},
		UserInfo:    &types.UserInfo{UID: "u1", DOB: "1990-04-02"},
	}
	run := &Run{
		Request:   req,
		UserID:    "u1",
		Profile:   &types.PreferenceProfile{Pace: "relaxed"},
		Transport: TransportPlan{Mode: types.TravelModeGround},
		TripDays:  3,
	}
	draft := &Draft{
		Search: &SearchResults{GroundTransport: &types.GroundTransportAdvice{Summary: "Walk and take trams"}},
	}

	it := Assemble(AssembleInput{
		ID:        "it-9",
		Run:       run,
		Draft:     draft,
		Strategy:  StrategyAIFirst,
		CreatedAt: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, "it-9", it.ID)
	assert.Equal(t, types.StatusGenerated, it.Status)
	assert.Equal(t, StrategyAIFirst, it.Strategy)
	assert.Equal(t, 34, it.Age)
	assert.Equal(t, "Walk and take trams", it.TransportationTips)
	assert.Equal(t, it.Description, it.Summary)
	assert.NotSame(t, run.Profile, it.PreferenceProfile)

	it.MustInclude[0] = "changed"
	assert.Equal(t, "tram 28", req.MustInclude[0])
}
