package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// TripType represents the kind of party travelling
type TripType string

const (
	TripTypeSolo     TripType = "solo"
	TripTypeCouple   TripType = "couple"
	TripTypeFamily   TripType = "family"
	TripTypeFriends  TripType = "friends"
	TripTypeBusiness TripType = "business"
	TripTypeGroup    TripType = "group"
)

// TravelMode is the normalized primary transport mode
type TravelMode string

const (
	TravelModeGround TravelMode = "ground"
	TravelModeAir    TravelMode = "air"
)

// BudgetLevel represents the spending tier of a profile
type BudgetLevel string

const (
	BudgetLow      BudgetLevel = "budget"
	BudgetMidRange BudgetLevel = "mid-range"
	BudgetLuxury   BudgetLevel = "luxury"
)

// FlexString accepts any JSON scalar or object and keeps a string rendering
// of it. Upstream profile records are not trusted to carry text.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexString(num.String())
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = FlexString(strconv.FormatBool(b))
		return nil
	}

	// Objects such as {"mode": "airplane"} or {"value": "air"}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err == nil {
		for _, key := range []string{"mode", "value", "type", "name"} {
			if raw, ok := obj[key]; ok {
				return f.UnmarshalJSON(raw)
			}
		}
	}

	*f = FlexString(string(data))
	return nil
}

// String returns the raw stringified value
func (f FlexString) String() string {
	return string(f)
}

// Normalized returns the value lowercased and trimmed
func (f FlexString) Normalized() string {
	return strings.ToLower(strings.TrimSpace(string(f)))
}

// TransportationPreferences holds the user's travel-mode choices
type TransportationPreferences struct {
	PrimaryMode    FlexString `json:"primaryMode"`
	IncludeFlights bool       `json:"includeFlights"`
	MaxTravelHours int        `json:"maxTravelHours,omitempty"`
}

// PreferenceProfile is the user's stored travel preference record
type PreferenceProfile struct {
	ID                   string                     `json:"id,omitempty"`
	Name                 string                     `json:"name,omitempty"`
	TravelStyle          string                     `json:"travelStyle,omitempty"`
	BudgetLevel          BudgetLevel                `json:"budgetLevel,omitempty"`
	Pace                 string                     `json:"pace,omitempty"`
	Interests            []string                   `json:"interests,omitempty"`
	DietaryRestrictions  []string                   `json:"dietaryRestrictions,omitempty"`
	AccessibilityNeeds   []string                   `json:"accessibilityNeeds,omitempty"`
	AccommodationType    string                     `json:"accommodationType,omitempty"`
	Transportation       *TransportationPreferences `json:"transportation,omitempty"`
	IsDefault            bool                       `json:"isDefault,omitempty"`
	ActivityLevel        string                     `json:"activityLevel,omitempty"`
	GroupSizePreferences string                     `json:"groupSizePreferences,omitempty"`
}

// FlightPreferences narrows the flight search
type FlightPreferences struct {
	CabinClass        string   `json:"cabinClass,omitempty"`
	Stops             string   `json:"stops,omitempty"`
	PreferredAirlines []string `json:"preferredAirlines,omitempty"`
}

// UserInfo carries identity and demographic fields supplied with a request
type UserInfo struct {
	UID               string   `json:"uid"`
	Username          string   `json:"username,omitempty"`
	Gender            string   `json:"gender,omitempty"`
	DOB               string   `json:"dob,omitempty"`
	Status            string   `json:"status,omitempty"`
	SexualOrientation string   `json:"sexualOrientation,omitempty"`
	Email             string   `json:"email,omitempty"`
	BlockedUsers      []string `json:"blocked,omitempty"`
}

// User is the authenticated caller, resolved outside the engine
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

// GenerationRequest is the high-level "plan my trip" input
type GenerationRequest struct {
	Destination            string             `json:"destination"`
	DepartureLocation      string             `json:"departure,omitempty"`
	DepartureAirportCode   string             `json:"departureAirportCode,omitempty"`
	DestinationAirportCode string             `json:"destinationAirportCode,omitempty"`
	StartDate              string             `json:"startDate"`
	EndDate                string             `json:"endDate"`
	TripType               TripType           `json:"tripType,omitempty"`
	PreferenceProfileID    string             `json:"preferenceProfileId,omitempty"`
	PreferenceProfile      *PreferenceProfile `json:"preferenceProfile,omitempty"`
	SpecialRequests        string             `json:"specialRequests,omitempty"`
	MustInclude            []string           `json:"mustInclude,omitempty"`
	MustAvoid              []string           `json:"mustAvoid,omitempty"`
	FlightPreferences      *FlightPreferences `json:"flightPreferences,omitempty"`
	UserInfo               *UserInfo          `json:"userInfo,omitempty"`
}

// Clone returns a deep copy of the request
func (r *GenerationRequest) Clone() *GenerationRequest {
	if r == nil {
		return nil
	}
	out := *r
	out.MustInclude = cloneStrings(r.MustInclude)
	out.MustAvoid = cloneStrings(r.MustAvoid)
	out.PreferenceProfile = r.PreferenceProfile.Clone()
	if r.FlightPreferences != nil {
		fp := *r.FlightPreferences
		fp.PreferredAirlines = cloneStrings(r.FlightPreferences.PreferredAirlines)
		out.FlightPreferences = &fp
	}
	if r.UserInfo != nil {
		ui := *r.UserInfo
		ui.BlockedUsers = cloneStrings(r.UserInfo.BlockedUsers)
		out.UserInfo = &ui
	}
	return &out
}

// Clone returns a deep copy of the profile
func (p *PreferenceProfile) Clone() *PreferenceProfile {
	if p == nil {
		return nil
	}
	out := *p
	out.Interests = cloneStrings(p.Interests)
	out.DietaryRestrictions = cloneStrings(p.DietaryRestrictions)
	out.AccessibilityNeeds = cloneStrings(p.AccessibilityNeeds)
	if p.Transportation != nil {
		t := *p.Transportation
		out.Transportation = &t
	}
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
