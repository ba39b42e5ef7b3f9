package types

import "time"

// Place is a normalized activity, restaurant or lodging search result
type Place struct {
	ID          string   `json:"id"`
	PlaceID     string   `json:"placeId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Types       []string `json:"types"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Phone       string   `json:"phone"`
	Website     string   `json:"website"`
	Rating      *float64 `json:"rating"`
	PriceLevel  *int     `json:"priceLevel"`
}

// Enriched reports whether the place carries a quality signal: a phone,
// a website or a known price tier.
func (p Place) Enriched() bool {
	return p.Phone != "" || p.Website != "" || p.PriceLevel != nil
}

// Accommodation is a normalized lodging option
type Accommodation struct {
	Place
	PricePerNight *float64 `json:"pricePerNight"`
	TotalPrice    *float64 `json:"totalPrice"`
	Currency      string   `json:"currency"`
	CheckIn       string   `json:"checkIn"`
	CheckOut      string   `json:"checkOut"`
	BookingURL    string   `json:"bookingUrl"`
}

// Flight is a normalized flight offer
type Flight struct {
	ID            string   `json:"id"`
	Airline       string   `json:"airline"`
	FlightNumber  string   `json:"flightNumber"`
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	DepartureTime string   `json:"departureTime"`
	ArrivalTime   string   `json:"arrivalTime"`
	ReturnTime    string   `json:"returnTime"`
	Duration      string   `json:"duration"`
	Stops         int      `json:"stops"`
	CabinClass    string   `json:"cabinClass"`
	Price         *float64 `json:"price"`
	Currency      string   `json:"currency"`
	BookingURL    string   `json:"bookingUrl"`
}

// TransportOption is one ground-transport recommendation
type TransportOption struct {
	Mode          string   `json:"mode"`
	Description   string   `json:"description"`
	Duration      string   `json:"duration"`
	EstimatedCost *float64 `json:"estimatedCost"`
}

// GroundTransportAdvice is the recommendation for trips without flights
type GroundTransportAdvice struct {
	Summary string            `json:"summary"`
	Options []TransportOption `json:"options"`
}

// PlanItem is one scheduled activity or meal in a day plan
type PlanItem struct {
	Place
	Time          string  `json:"time"`
	EstimatedCost float64 `json:"estimatedCost"`
	Verified      bool    `json:"verified"`
	Source        string  `json:"source"`
}

// Plan item sources
const (
	SourceSearch = "search"
	SourceAI     = "ai"
)

// DayPlan is the schedule for one calendar day of the trip
type DayPlan struct {
	Day        int        `json:"day"`
	Date       string     `json:"date"`
	Theme      string     `json:"theme"`
	Narrative  string     `json:"narrative"`
	Activities []PlanItem `json:"activities"`
	Meals      []PlanItem `json:"meals"`
}

// Diagnostic is an operational warning raised during synthesis
type Diagnostic struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Expected int    `json:"expected,omitempty"`
	Actual   int    `json:"actual"`
}

// Itinerary status markers
const (
	StatusGenerated = "generated"
)

// AssembledItinerary is the canonical generated record
type AssembledItinerary struct {
	ID                  string                 `json:"id"`
	UserID              string                 `json:"userId"`
	Destination         string                 `json:"destination"`
	DepartureLocation   string                 `json:"departure"`
	StartDate           string                 `json:"startDate"`
	EndDate             string                 `json:"endDate"`
	TripDays            int                    `json:"tripDays"`
	TripType            TripType               `json:"tripType"`
	TravelMode          TravelMode             `json:"travelMode"`
	Description         string                 `json:"description"`
	Summary             string                 `json:"summary"`
	DailyPlans          []DayPlan              `json:"dailyPlans"`
	Flights             []Flight               `json:"flights"`
	Accommodations      []Accommodation        `json:"accommodations"`
	Activities          []Place                `json:"activities"`
	Restaurants         []Place                `json:"restaurants"`
	GroundTransport     *GroundTransportAdvice `json:"groundTransportation"`
	TransportationTips  string                 `json:"transportationTips"`
	PackingList         []string               `json:"packingList"`
	Age                 int                    `json:"age"`
	UserInfo            *UserInfo              `json:"userInfo"`
	PreferenceProfileID string                 `json:"preferenceProfileId"`
	PreferenceProfile   *PreferenceProfile     `json:"preferenceProfile"`
	SpecialRequests     string                 `json:"specialRequests"`
	MustInclude         []string               `json:"mustInclude"`
	MustAvoid           []string               `json:"mustAvoid"`
	Strategy            string                 `json:"strategy"`
	Status              string                 `json:"status"`
	Diagnostics         []Diagnostic           `json:"diagnostics"`
	DegradedSlices      []string               `json:"degradedSlices"`
	CreatedAt           time.Time              `json:"createdAt"`
}
