package orchestrator

import (
	"fmt"
	"strings"
	"time"

	"github.com/tripweave/itinerary-engine/pkg/types"
)

// AssembleInput gathers everything the assembler merges into one record
type AssembleInput struct {
	ID        string
	Run       *Run
	Draft     *Draft
	Strategy  string
	CreatedAt time.Time
}

// Assemble builds the canonical itinerary record. It copies what it keeps
// from the request so the caller's request is never aliased.
func Assemble(in AssembleInput) *types.AssembledItinerary {
	req := in.Run.Request.Clone()
	draft := in.Draft
	search := draft.Search
	if search == nil {
		search = &SearchResults{}
	}

	it := &types.AssembledItinerary{
		ID:                  in.ID,
		UserID:              in.Run.UserID,
		Destination:         req.Destination,
		DepartureLocation:   req.DepartureLocation,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		TripDays:            in.Run.TripDays,
		TripType:            req.TripType,
		TravelMode:          in.Run.Transport.Mode,
		Description:         Describe(req, in.Run.TripDays, in.Run.Transport.Mode),
		DailyPlans:          draft.Plans,
		Flights:             search.Flights,
		Accommodations:      search.Accommodations,
		Activities:          search.Activities,
		Restaurants:         search.Restaurants,
		GroundTransport:     search.GroundTransport,
		UserInfo:            req.UserInfo,
		PreferenceProfileID: req.PreferenceProfileID,
		PreferenceProfile:   in.Run.Profile.Clone(),
		SpecialRequests:     req.SpecialRequests,
		MustInclude:         req.MustInclude,
		MustAvoid:           req.MustAvoid,
		Strategy:            in.Strategy,
		Status:              types.StatusGenerated,
		Diagnostics:         draft.Diagnostics,
		DegradedSlices:      search.Degraded,
		CreatedAt:           in.CreatedAt,
	}

	if req.UserInfo != nil {
		it.Age = CalculateAge(req.UserInfo.DOB, in.CreatedAt)
	}

	if c := draft.Content; c != nil {
		it.Summary = c.Summary
		it.TransportationTips = c.TransportationTips
		it.PackingList = c.PackingList
	}
	if it.TransportationTips == "" && it.GroundTransport != nil {
		it.TransportationTips = it.GroundTransport.Summary
	}
	if it.Summary == "" {
		it.Summary = it.Description
	}
	return it
}

// Describe renders a one-line human description such as
// "7-day solo trip to Tokyo, Japan (2025-12-01 to 2025-12-07)".
func Describe(req *types.GenerationRequest, tripDays int, mode types.TravelMode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d-day ", tripDays)
	if req.TripType != "" {
		b.WriteString(string(req.TripType))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "trip to %s (%s to %s)", req.Destination, req.StartDate, req.EndDate)
	if req.DepartureLocation != "" {
		fmt.Fprintf(&b, " from %s", req.DepartureLocation)
	}
	if mode == types.TravelModeAir {
		b.WriteString(" by air")
	}
	return b.String()
}
