package orchestrator

import (
	"strings"

	"github.com/tripweave/itinerary-engine/pkg/types"
)

const defaultCost = 25

var tierCosts = map[int]float64{
	0: 0,
	1: 15,
	2: 35,
	3: 65,
	4: 100,
}

// Evaluated in order; the first matching keyword group wins
var categoryCosts = []struct {
	keywords []string
	cost     float64
}{
	{[]string{"museum", "gallery"}, 20},
	{[]string{"park", "beach"}, 0},
	{[]string{"restaurant", "food"}, 40},
	{[]string{"theater", "theatre", "show"}, 75},
	{[]string{"tour", "attraction"}, 30},
}

// EstimateCost maps a place's price tier to a currency estimate, falling back
// to a keyword heuristic on its category text.
func EstimateCost(p types.Place) float64 {
	if p.PriceLevel != nil {
		if cost, ok := tierCosts[*p.PriceLevel]; ok {
			return cost
		}
		return defaultCost
	}
	return costForCategory(p.Category + " " + strings.Join(p.Types, " "))
}

func costForCategory(text string) float64 {
	text = strings.ToLower(text)
	for _, c := range categoryCosts {
		for _, kw := range c.keywords {
			if strings.Contains(text, kw) {
				return c.cost
			}
		}
	}
	return defaultCost
}
