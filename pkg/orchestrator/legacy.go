package orchestrator

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/tripweave/itinerary-engine/pkg/types"
)

// LegacyView projects the canonical record into the persisted shape older
// consumers read: flights and accommodations are duplicated at the root,
// under response.data.itinerary and under recommendations, and every field
// of the record schema is present, unset ones as explicit null.
func LegacyView(it *types.AssembledItinerary) (map[string]any, error) {
	if it == nil {
		return nil, fmt.Errorf("itinerary is required")
	}

	raw, err := json.Marshal(it)
	if err != nil {
		return nil, fmt.Errorf("failed to encode itinerary: %w", err)
	}
	var view map[string]any
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, fmt.Errorf("failed to decode itinerary: %w", err)
	}

	fillNulls(view, reflect.TypeOf(*it))

	flights := view["flights"]
	accommodations := view["accommodations"]

	view["response"] = map[string]any{
		"success": true,
		"data": map[string]any{
			"itinerary": map[string]any{
				"id":             view["id"],
				"destination":    view["destination"],
				"startDate":      view["startDate"],
				"endDate":        view["endDate"],
				"dailyPlans":     view["dailyPlans"],
				"flights":        flights,
				"accommodations": accommodations,
			},
		},
	}
	view["recommendations"] = map[string]any{
		"flights":        flights,
		"accommodations": accommodations,
	}
	return view, nil
}

// fillNulls walks value alongside the Go type it was encoded from and adds
// an explicit nil for every json field that the encoder omitted.
func fillNulls(value any, t reflect.Type) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Struct:
		m, ok := value.(map[string]any)
		if !ok {
			return
		}
		for _, f := range reflect.VisibleFields(t) {
			if f.Anonymous || !f.IsExported() {
				continue
			}
			name := jsonName(f)
			if name == "" {
				continue
			}
			v, present := m[name]
			if !present || v == nil {
				m[name] = nil
				continue
			}
			fillNulls(v, f.Type)
		}
	case reflect.Slice, reflect.Array:
		items, ok := value.([]any)
		if !ok {
			return
		}
		for _, item := range items {
			fillNulls(item, t.Elem())
		}
	}
}

func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}
