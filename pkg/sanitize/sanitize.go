// Package sanitize cleans caller-supplied generation requests before they
// reach the orchestrator. It never mutates its input.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tripweave/itinerary-engine/pkg/types"
)

// Limits bounds free-text and list sizes
type Limits struct {
	MaxFieldLength    int
	MaxFreeTextLength int
	MaxListItems      int
}

// DefaultLimits are applied when the caller does not override them
var DefaultLimits = Limits{
	MaxFieldLength:    200,
	MaxFreeTextLength: 2000,
	MaxListItems:      20,
}

var markupPattern = regexp.MustCompile(`(?s)<[^>]*>`)

// Text strips markup and control characters, collapses whitespace runs and
// truncates to max runes.
func Text(s string, max int) string {
	s = markupPattern.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	if max > 0 && utf8.RuneCountInString(s) > max {
		s = string([]rune(s)[:max])
		s = strings.TrimSpace(s)
	}
	return s
}

// List sanitizes every entry, drops empties and caps the list size
func List(in []string, maxLen, maxItems int) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, item := range in {
		if maxItems > 0 && len(out) >= maxItems {
			break
		}
		if cleaned := Text(item, maxLen); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

// Request returns a sanitized deep copy of req
func Request(req *types.GenerationRequest, limits Limits) *types.GenerationRequest {
	if req == nil {
		return nil
	}
	out := req.Clone()
	field := limits.MaxFieldLength

	out.Destination = Text(out.Destination, field)
	out.DepartureLocation = Text(out.DepartureLocation, field)
	out.DepartureAirportCode = strings.ToUpper(Text(out.DepartureAirportCode, 8))
	out.DestinationAirportCode = strings.ToUpper(Text(out.DestinationAirportCode, 8))
	out.StartDate = Text(out.StartDate, 40)
	out.EndDate = Text(out.EndDate, 40)
	out.TripType = types.TripType(strings.ToLower(Text(string(out.TripType), 40)))
	out.PreferenceProfileID = Text(out.PreferenceProfileID, field)
	out.SpecialRequests = Text(out.SpecialRequests, limits.MaxFreeTextLength)
	out.MustInclude = List(out.MustInclude, field, limits.MaxListItems)
	out.MustAvoid = List(out.MustAvoid, field, limits.MaxListItems)

	if fp := out.FlightPreferences; fp != nil {
		fp.CabinClass = Text(fp.CabinClass, 40)
		fp.Stops = Text(fp.Stops, 40)
		fp.PreferredAirlines = List(fp.PreferredAirlines, field, limits.MaxListItems)
	}

	if p := out.PreferenceProfile; p != nil {
		p.Name = Text(p.Name, field)
		p.TravelStyle = Text(p.TravelStyle, field)
		p.Pace = Text(p.Pace, 40)
		p.AccommodationType = Text(p.AccommodationType, field)
		p.Interests = List(p.Interests, field, limits.MaxListItems)
		p.DietaryRestrictions = List(p.DietaryRestrictions, field, limits.MaxListItems)
		p.AccessibilityNeeds = List(p.AccessibilityNeeds, field, limits.MaxListItems)
		if t := p.Transportation; t != nil {
			t.PrimaryMode = types.FlexString(Text(t.PrimaryMode.String(), 40))
		}
	}

	if u := out.UserInfo; u != nil {
		u.UID = Text(u.UID, 128)
		u.Username = Text(u.Username, field)
		u.Gender = Text(u.Gender, 40)
		u.DOB = Text(u.DOB, 40)
		u.Status = Text(u.Status, 40)
		u.SexualOrientation = Text(u.SexualOrientation, 40)
		u.Email = Text(u.Email, field)
		u.BlockedUsers = List(u.BlockedUsers, 128, 500)
	}

	return out
}
