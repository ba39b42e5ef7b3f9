package orchestrator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tripweave/itinerary-engine/pkg/types"
)

// Upstream search services do not agree on field names; each accessor below
// takes the accepted aliases in priority order.

func decodeAny(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// listAt returns the first array found under keys, or data itself if it is an array
func listAt(data any, keys ...string) []any {
	switch v := data.(type) {
	case []any:
		return v
	case map[string]any:
		for _, k := range keys {
			if arr, ok := v[k].([]any); ok {
				return arr
			}
		}
		// {"data": {...}} wrappers
		if inner, ok := v["data"]; ok {
			return listAt(inner, keys...)
		}
		if inner, ok := v["results"].([]any); ok {
			return inner
		}
	}
	return nil
}

func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func num(m map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return &v
		case string:
			cleaned := strings.TrimLeft(strings.TrimSpace(v), "$€£¥")
			if f, err := strconv.ParseFloat(strings.ReplaceAll(cleaned, ",", ""), 64); err == nil {
				return &f
			}
		case map[string]any:
			if f := num(v, "amount", "total", "value", "units"); f != nil {
				return f
			}
		}
	}
	return nil
}

func strList(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		arr, ok := m[k].([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(arr))
		for _, item := range arr {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

var priceLevelNames = map[string]int{
	"PRICE_LEVEL_FREE":           0,
	"PRICE_LEVEL_INEXPENSIVE":    1,
	"PRICE_LEVEL_MODERATE":       2,
	"PRICE_LEVEL_EXPENSIVE":      3,
	"PRICE_LEVEL_VERY_EXPENSIVE": 4,
}

// priceLevel accepts 0-4 numbers, Places API enum names and "$$" strings
func priceLevel(m map[string]any) *int {
	for _, k := range []string{"price_level", "priceLevel"} {
		switch v := m[k].(type) {
		case float64:
			tier := int(v)
			if tier >= 0 && tier <= 4 {
				return &tier
			}
		case string:
			if tier, ok := priceLevelNames[strings.ToUpper(v)]; ok {
				return &tier
			}
			if v != "" && strings.Trim(v, "$") == "" && len(v) <= 4 {
				tier := len(v)
				return &tier
			}
			if tier, err := strconv.Atoi(v); err == nil && tier >= 0 && tier <= 4 {
				return &tier
			}
		}
	}
	return nil
}

func coordinates(m map[string]any) (*float64, *float64) {
	lat := num(m, "latitude", "lat")
	lng := num(m, "longitude", "lng", "lon")
	if lat != nil && lng != nil {
		return lat, lng
	}
	if geo, ok := m["geometry"].(map[string]any); ok {
		if loc, ok := geo["location"].(map[string]any); ok {
			return coordinates(loc)
		}
	}
	if loc, ok := m["location"].(map[string]any); ok {
		return coordinates(loc)
	}
	if loc, ok := m["coordinates"].(map[string]any); ok {
		return coordinates(loc)
	}
	return nil, nil
}

func normalizePlace(m map[string]any) types.Place {
	p := types.Place{
		ID:          str(m, "id", "place_id", "placeId"),
		PlaceID:     str(m, "place_id", "placeId", "googlePlaceId"),
		Name:        str(m, "name", "title", "displayName"),
		Description: str(m, "description", "summary", "editorial_summary"),
		Category:    str(m, "category", "primaryType", "type"),
		Types:       strList(m, "types"),
		Address:     str(m, "address", "formatted_address", "formattedAddress", "vicinity", "location"),
		Phone:       str(m, "phone", "formatted_phone_number", "international_phone_number", "phoneNumber", "nationalPhoneNumber"),
		Website:     str(m, "website", "websiteUri", "url"),
		Rating:      num(m, "rating"),
		PriceLevel:  priceLevel(m),
	}
	if dn, ok := m["displayName"].(map[string]any); ok && p.Name == "" {
		p.Name = str(dn, "text")
	}
	if es, ok := m["editorial_summary"].(map[string]any); ok && p.Description == "" {
		p.Description = str(es, "overview")
	}
	if p.Category == "" && len(p.Types) > 0 {
		p.Category = p.Types[0]
	}
	p.Latitude, p.Longitude = coordinates(m)
	return p
}

// NormalizePlaces maps a list of heterogeneous place objects to Place values.
// Entries without a name are dropped.
func NormalizePlaces(items []any) []types.Place {
	out := make([]types.Place, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		p := normalizePlace(m)
		if p.Name == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ParseAccommodations reads {hotels|accommodations: [...]}
func ParseAccommodations(raw json.RawMessage) []types.Accommodation {
	items := listAt(decodeAny(raw), "hotels", "accommodations", "properties")
	out := make([]types.Accommodation, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		place := normalizePlace(m)
		if place.Name == "" {
			continue
		}
		out = append(out, types.Accommodation{
			Place:         place,
			PricePerNight: num(m, "pricePerNight", "price_per_night", "rate_per_night", "price"),
			TotalPrice:    num(m, "totalPrice", "total_price", "total_rate"),
			Currency:      str(m, "currency"),
			CheckIn:       str(m, "checkIn", "check_in", "checkInDate"),
			CheckOut:      str(m, "checkOut", "check_out", "checkOutDate"),
			BookingURL:    str(m, "bookingUrl", "booking_url", "link"),
		})
	}
	return out
}

// ParseActivities reads {activities|places: [...], restaurants: [...]}
func ParseActivities(raw json.RawMessage) (activities, restaurants []types.Place) {
	data := decodeAny(raw)
	activities = NormalizePlaces(listAt(data, "activities", "places", "attractions"))
	if m, ok := data.(map[string]any); ok {
		if inner, ok := m["data"].(map[string]any); ok && m["restaurants"] == nil {
			m = inner
		}
		if arr, ok := m["restaurants"].([]any); ok {
			restaurants = NormalizePlaces(arr)
		}
	}
	if restaurants == nil {
		restaurants = []types.Place{}
	}
	return activities, restaurants
}

// ParseFlights reads {flights: [...]}
func ParseFlights(raw json.RawMessage) []types.Flight {
	items := listAt(decodeAny(raw), "flights", "offers", "best_flights")
	out := make([]types.Flight, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		f := types.Flight{
			ID:            str(m, "id", "offerId"),
			Airline:       str(m, "airline", "carrier", "airlineName"),
			FlightNumber:  str(m, "flightNumber", "flight_number", "number"),
			Origin:        str(m, "origin", "departureAirport", "from"),
			Destination:   str(m, "destination", "arrivalAirport", "to"),
			DepartureTime: str(m, "departureTime", "departure_time", "departure"),
			ArrivalTime:   str(m, "arrivalTime", "arrival_time", "arrival"),
			ReturnTime:    str(m, "returnTime", "return_time"),
			Duration:      str(m, "duration", "totalDuration"),
			CabinClass:    str(m, "cabinClass", "cabin_class", "class"),
			Price:         num(m, "price", "totalPrice", "amount"),
			Currency:      str(m, "currency"),
			BookingURL:    str(m, "bookingUrl", "booking_url", "link"),
		}
		if stops := num(m, "stops", "numberOfStops"); stops != nil {
			f.Stops = int(*stops)
		}
		if price, ok := m["price"].(map[string]any); ok && f.Currency == "" {
			f.Currency = str(price, "currency")
		}
		if f.ID == "" {
			f.ID = fmt.Sprintf("flight-%d", i+1)
		}
		out = append(out, f)
	}
	return out
}

// ParseGroundAdvice reads a textual or structured ground-transport recommendation
func ParseGroundAdvice(raw json.RawMessage) *types.GroundTransportAdvice {
	data := decodeAny(raw)
	if s, ok := data.(string); ok {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return &types.GroundTransportAdvice{Summary: strings.TrimSpace(s), Options: []types.TransportOption{}}
	}
	m, ok := data.(map[string]any)
	if !ok {
		return nil
	}
	if inner, ok := m["data"].(map[string]any); ok {
		m = inner
	}

	advice := &types.GroundTransportAdvice{
		Summary: str(m, "summary", "advice", "recommendation", "content"),
		Options: []types.TransportOption{},
	}
	for _, item := range listAt(m, "options", "routes", "recommendations") {
		o, ok := item.(map[string]any)
		if !ok {
			continue
		}
		advice.Options = append(advice.Options, types.TransportOption{
			Mode:          str(o, "mode", "type"),
			Description:   str(o, "description", "details"),
			Duration:      str(o, "duration"),
			EstimatedCost: num(o, "estimatedCost", "cost", "price"),
		})
	}
	if advice.Summary == "" && len(advice.Options) == 0 {
		return nil
	}
	return advice
}
