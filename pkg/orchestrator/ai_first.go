package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripweave/itinerary-engine/pkg/errors"
	"github.com/tripweave/itinerary-engine/pkg/gateway"
	"github.com/tripweave/itinerary-engine/pkg/types"
)

// DiagUnverifiedPlaces counts AI places with no matching search result
const DiagUnverifiedPlaces = "unverified_ai_places"

// aiFirst asks the AI for the full day-by-day structure while the searches
// run, then verifies the AI's places against enriched search results.
type aiFirst struct{}

// FullItineraryPayload is sent to generateFullItinerary
type FullItineraryPayload struct {
	SearchPayload
	Departure  string           `json:"departure"`
	TravelMode types.TravelMode `json:"travelMode"`
}

func (aiFirst) Name() string { return StrategyAIFirst }

func (aiFirst) Generate(ctx context.Context, run *Run) (*Draft, error) {
	run.Advance(StageAIGeneration, 25, "Generating your itinerary")

	results := &SearchResults{}
	var content *GeneratedContent

	payload := FullItineraryPayload{
		SearchPayload: run.searchPayload(),
		Departure:     run.Request.DepartureLocation,
		TravelMode:    run.Transport.Mode,
	}
	tasks := append(searchTasks(run, results, true), task{
		name:      gateway.OpGenerateFullItinerary,
		mandatory: true,
		run: func(ctx context.Context) error {
			resp, err := run.Call(ctx, gateway.OpGenerateFullItinerary, payload, errors.KindServer)
			if err != nil {
				return err
			}
			content, err = parseContent(gateway.OpGenerateFullItinerary, resp)
			return err
		},
	})

	degraded, err := fanOut(ctx, run.Logger, tasks)
	if err != nil {
		return nil, err
	}
	results.Degraded = degraded
	ensureSlices(results)

	run.Advance(StageVerifying, 55, "Verifying places")

	synth := SynthesizeDayPlans(run.Start, run.TripDays, results.Activities, results.Restaurants)
	plans, unverified := verifyPlans(run, content, EnrichedOnly(results.Activities), EnrichedOnly(results.Restaurants))
	fillEmptyDays(plans, synth.Plans)

	diags := synth.Diagnostics
	if unverified > 0 {
		diags = append(diags, types.Diagnostic{
			Code:    DiagUnverifiedPlaces,
			Message: fmt.Sprintf("%d AI places could not be matched to search results", unverified),
			Actual:  unverified,
		})
	}
	logDiagnostics(run.Logger, run.ID, diags)

	run.Advance(StageActivities, 60, "Arranging daily activities")

	return &Draft{
		Plans:       plans,
		Search:      results,
		Content:     content,
		Diagnostics: diags,
	}, nil
}

// verifyPlans turns the AI day structure into plans, attaching search
// metadata to every place that matches an enriched result.
func verifyPlans(run *Run, content *GeneratedContent, activities, restaurants []types.Place) ([]types.DayPlan, int) {
	plans := make([]types.DayPlan, run.TripDays)
	for i := range plans {
		plans[i] = types.DayPlan{
			Day:        i + 1,
			Date:       run.Start.AddDate(0, 0, i).Format(dateLayout),
			Activities: []types.PlanItem{},
			Meals:      []types.PlanItem{},
		}
	}

	unverified := 0
	for _, day := range content.Days {
		idx := day.Day - 1
		if idx < 0 || idx >= len(plans) {
			continue
		}
		plans[idx].Theme = day.Theme
		plans[idx].Narrative = day.Narrative
		for _, item := range day.Activities {
			pi := verifyItem(item, activities)
			if !pi.Verified {
				unverified++
			}
			plans[idx].Activities = append(plans[idx].Activities, pi)
		}
		for _, item := range day.Meals {
			pi := verifyItem(item, restaurants)
			if !pi.Verified {
				unverified++
			}
			plans[idx].Meals = append(plans[idx].Meals, pi)
		}
	}
	return plans, unverified
}

func verifyItem(item GeneratedItem, pool []types.Place) types.PlanItem {
	if match, ok := matchPlace(item.Name, pool); ok {
		return types.PlanItem{
			Place:         match,
			Time:          item.Time,
			EstimatedCost: EstimateCost(match),
			Verified:      true,
			Source:        types.SourceAI,
		}
	}

	place := types.Place{
		Name:        item.Name,
		Description: item.Description,
		Category:    item.Category,
		Address:     item.Address,
	}
	cost := EstimateCost(place)
	if item.EstimatedCost != nil {
		cost = *item.EstimatedCost
	}
	return types.PlanItem{
		Place:         place,
		Time:          item.Time,
		EstimatedCost: cost,
		Source:        types.SourceAI,
	}
}

// matchPlace finds a pool entry whose name equals or contains name, ignoring case
func matchPlace(name string, pool []types.Place) (types.Place, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return types.Place{}, false
	}
	for _, p := range pool {
		if strings.ToLower(p.Name) == needle {
			return p, true
		}
	}
	for _, p := range pool {
		candidate := strings.ToLower(p.Name)
		if candidate != "" && (strings.Contains(candidate, needle) || strings.Contains(needle, candidate)) {
			return p, true
		}
	}
	return types.Place{}, false
}

// fillEmptyDays takes activities and meals from the synthesized fallback for
// every day the AI left empty.
func fillEmptyDays(plans, fallback []types.DayPlan) {
	for i := range plans {
		if i >= len(fallback) {
			return
		}
		if len(plans[i].Activities) == 0 {
			plans[i].Activities = fallback[i].Activities
		}
		if len(plans[i].Meals) == 0 {
			plans[i].Meals = fallback[i].Meals
		}
	}
}
