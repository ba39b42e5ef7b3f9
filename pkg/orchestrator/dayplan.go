package orchestrator

import (
	"fmt"
	"time"

	"github.com/tripweave/itinerary-engine/pkg/types"
)

// Diagnostic codes raised by the synthesizer
const (
	DiagNoEnrichedActivities = "no_enriched_activities"
	DiagEnrichedShortfall    = "enriched_activity_shortfall"
)

const maxExpectedEnriched = 6

// Default slot times for synthesized plans
const (
	activityTime = "10:00"
	mealTime     = "19:00"
)

// Synthesis is the output of day-plan synthesis
type Synthesis struct {
	Plans       []types.DayPlan
	Diagnostics []types.Diagnostic
}

// EnrichedOnly keeps places that carry a phone, website or price tier
func EnrichedOnly(places []types.Place) []types.Place {
	out := make([]types.Place, 0, len(places))
	for _, p := range places {
		if p.Enriched() {
			out = append(out, p)
		}
	}
	return out
}

// SynthesizeDayPlans assigns enriched activities and restaurants to each day
// of the trip by cyclic rotation: day i gets enriched[i mod len].
func SynthesizeDayPlans(start time.Time, tripDays int, activities, restaurants []types.Place) Synthesis {
	enrichedActivities := EnrichedOnly(activities)
	enrichedRestaurants := EnrichedOnly(restaurants)

	var diags []types.Diagnostic
	expected := tripDays
	if expected > maxExpectedEnriched {
		expected = maxExpectedEnriched
	}
	n := len(enrichedActivities)
	if n == 0 {
		diags = append(diags, types.Diagnostic{
			Code:    DiagNoEnrichedActivities,
			Message: fmt.Sprintf("no enriched activities among %d candidates", len(activities)),
			Actual:  0,
		})
	}
	if n < expected {
		diags = append(diags, types.Diagnostic{
			Code:     DiagEnrichedShortfall,
			Message:  fmt.Sprintf("only %d enriched activities, expected at least %d", n, expected),
			Expected: expected,
			Actual:   n,
		})
	}

	plans := make([]types.DayPlan, tripDays)
	for i := 0; i < tripDays; i++ {
		plans[i] = types.DayPlan{
			Day:        i + 1,
			Date:       start.AddDate(0, 0, i).Format(dateLayout),
			Activities: []types.PlanItem{},
			Meals:      []types.PlanItem{},
		}
		if p, ok := cyclicPick(enrichedActivities, i); ok {
			plans[i].Activities = append(plans[i].Activities, searchItem(p, activityTime))
		}
		if p, ok := cyclicPick(enrichedRestaurants, i); ok {
			plans[i].Meals = append(plans[i].Meals, searchItem(p, mealTime))
		}
	}

	return Synthesis{Plans: plans, Diagnostics: diags}
}

func cyclicPick(pool []types.Place, day int) (types.Place, bool) {
	if len(pool) == 0 {
		return types.Place{}, false
	}
	return pool[day%len(pool)], true
}

func searchItem(p types.Place, at string) types.PlanItem {
	return types.PlanItem{
		Place:         p,
		Time:          at,
		EstimatedCost: EstimateCost(p),
		Verified:      true,
		Source:        types.SourceSearch,
	}
}
