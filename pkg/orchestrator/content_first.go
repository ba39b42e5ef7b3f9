package orchestrator

import (
	"context"

	"github.com/tripweave/itinerary-engine/pkg/errors"
	"github.com/tripweave/itinerary-engine/pkg/gateway"
	"github.com/tripweave/itinerary-engine/pkg/types"
)

// contentFirst searches first, synthesizes day plans from the results and
// then asks the AI to narrate around them.
type contentFirst struct{}

// ContentPayload is sent to generateItineraryContent
type ContentPayload struct {
	SearchPayload
	Departure      string                `json:"departure"`
	TravelMode     types.TravelMode      `json:"travelMode"`
	Accommodations []types.Accommodation `json:"accommodations"`
	Activities     []types.Place         `json:"activities"`
	Restaurants    []types.Place         `json:"restaurants"`
	Flights        []types.Flight        `json:"flights"`
	DailyPlans     []types.DayPlan       `json:"dailyPlans"`
}

func (contentFirst) Name() string { return StrategyContentFirst }

func (contentFirst) Generate(ctx context.Context, run *Run) (*Draft, error) {
	run.Advance(StageSearching, 25, "Searching accommodations and activities")

	results := &SearchResults{}
	degraded, err := fanOut(ctx, run.Logger, searchTasks(run, results, false))
	if err != nil {
		return nil, err
	}
	results.Degraded = degraded
	ensureSlices(results)

	synth := SynthesizeDayPlans(run.Start, run.TripDays, results.Activities, results.Restaurants)
	logDiagnostics(run.Logger, run.ID, synth.Diagnostics)

	run.Advance(StageAIGeneration, 40, "Writing your itinerary")
	payload := ContentPayload{
		SearchPayload:  run.searchPayload(),
		Departure:      run.Request.DepartureLocation,
		TravelMode:     run.Transport.Mode,
		Accommodations: results.Accommodations,
		Activities:     results.Activities,
		Restaurants:    results.Restaurants,
		Flights:        results.Flights,
		DailyPlans:     synth.Plans,
	}
	resp, err := run.Call(ctx, gateway.OpGenerateItineraryContent, payload, errors.KindServer)
	if err != nil {
		return nil, err
	}
	content, err := parseContent(gateway.OpGenerateItineraryContent, resp)
	if err != nil {
		return nil, err
	}

	run.Advance(StageActivities, 60, "Arranging daily activities")
	mergeNarrative(synth.Plans, content)

	return &Draft{
		Plans:       synth.Plans,
		Search:      results,
		Content:     content,
		Diagnostics: synth.Diagnostics,
	}, nil
}

// mergeNarrative copies AI themes and narratives onto the matching days
func mergeNarrative(plans []types.DayPlan, content *GeneratedContent) {
	for _, day := range content.Days {
		idx := day.Day - 1
		if idx < 0 || idx >= len(plans) {
			continue
		}
		if day.Theme != "" {
			plans[idx].Theme = day.Theme
		}
		if day.Narrative != "" {
			plans[idx].Narrative = day.Narrative
		}
	}
}
