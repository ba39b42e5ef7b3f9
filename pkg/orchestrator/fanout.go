package orchestrator

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tripweave/itinerary-engine/pkg/errors"
	"github.com/tripweave/itinerary-engine/pkg/types"
)

const dateLayout = "2006-01-02"

// TripDays returns the inclusive number of calendar days between start and end
func TripDays(start, end string) (int, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return 0, fmt.Errorf("invalid start date %q", start)
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return 0, fmt.Errorf("invalid end date %q", end)
	}
	if e.Before(s) {
		return 0, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return int(math.Ceil(e.Sub(s).Hours()/24)) + 1, nil
}

// SearchPayload is shared by the accommodation, activity and AI calls
type SearchPayload struct {
	Destination       string                   `json:"destination"`
	StartDate         string                   `json:"startDate"`
	EndDate           string                   `json:"endDate"`
	Days              int                      `json:"days"`
	TripType          types.TripType           `json:"tripType"`
	PreferenceProfile *types.PreferenceProfile `json:"preferenceProfile"`
	MustInclude       []string                 `json:"mustInclude"`
	MustAvoid         []string                 `json:"mustAvoid"`
	SpecialRequests   string                   `json:"specialRequests"`
}

// FlightSearchPayload carries only flight parameters
type FlightSearchPayload struct {
	DepartureAirportCode   string   `json:"departureAirportCode"`
	DestinationAirportCode string   `json:"destinationAirportCode"`
	DepartureDate          string   `json:"departureDate"`
	ReturnDate             string   `json:"returnDate"`
	CabinClass             string   `json:"cabinClass"`
	Stops                  string   `json:"stops"`
	PreferredAirlines      []string `json:"preferredAirlines"`
}

// GroundAdvicePayload asks for ground transport between departure and destination
type GroundAdvicePayload struct {
	Departure         string                   `json:"departure"`
	Destination       string                   `json:"destination"`
	StartDate         string                   `json:"startDate"`
	EndDate           string                   `json:"endDate"`
	Days              int                      `json:"days"`
	TripType          types.TripType           `json:"tripType"`
	PreferenceProfile *types.PreferenceProfile `json:"preferenceProfile"`
}

func newSearchPayload(req *types.GenerationRequest, profile *types.PreferenceProfile, days int) SearchPayload {
	return SearchPayload{
		Destination:       req.Destination,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Days:              days,
		TripType:          req.TripType,
		PreferenceProfile: profile,
		MustInclude:       nonNil(req.MustInclude),
		MustAvoid:         nonNil(req.MustAvoid),
		SpecialRequests:   req.SpecialRequests,
	}
}

func newFlightPayload(req *types.GenerationRequest) FlightSearchPayload {
	p := FlightSearchPayload{
		DepartureAirportCode:   req.DepartureAirportCode,
		DestinationAirportCode: req.DestinationAirportCode,
		DepartureDate:          req.StartDate,
		ReturnDate:             req.EndDate,
		CabinClass:             "economy",
		Stops:                  "any",
		PreferredAirlines:      []string{},
	}
	if fp := req.FlightPreferences; fp != nil {
		if fp.CabinClass != "" {
			p.CabinClass = fp.CabinClass
		}
		if fp.Stops != "" {
			p.Stops = fp.Stops
		}
		p.PreferredAirlines = nonNil(fp.PreferredAirlines)
	}
	return p
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// SearchResults collects every settled search slice
type SearchResults struct {
	Accommodations  []types.Accommodation
	Activities      []types.Place
	Restaurants     []types.Place
	Flights         []types.Flight
	GroundTransport *types.GroundTransportAdvice
	// Degraded names the optional slices that failed and were left empty
	Degraded []string
}

// task is one independent remote call in a fan-out batch. Each task writes
// only to its own result slot.
type task struct {
	name      string
	mandatory bool
	run       func(ctx context.Context) error
}

// fanOut runs tasks concurrently and waits for all of them to settle.
// Optional failures are returned as degraded slice names. A mandatory
// failure, or a permission, quota or cancellation failure from any task,
// aborts the batch and cancels the remaining calls.
func fanOut(ctx context.Context, logger *zap.Logger, tasks []task) ([]string, error) {
	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg    sync.WaitGroup
		once  sync.Once
		fatal error
		errs  = make([]error, len(tasks))
	)

	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t task) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = errors.NewWithCode(errors.KindUnknown, errors.CodePanic, fmt.Sprintf("%s panicked: %v", t.name, r))
				}
				if errs[i] != nil && (t.mandatory || abortsRun(errs[i])) {
					once.Do(func() {
						fatal = errs[i]
						cancel()
					})
				}
			}()
			errs[i] = t.run(batchCtx)
		}(i, t)
	}

	wg.Wait()

	if ctx.Err() != nil {
		return nil, errors.Cancelled()
	}
	if fatal != nil {
		return nil, fatal
	}

	var degraded []string
	for i, err := range errs {
		if err == nil {
			continue
		}
		degraded = append(degraded, tasks[i].name)
		logger.Warn("optional search failed, continuing without it",
			zap.String("slice", tasks[i].name),
			zap.String("kind", string(errors.KindOf(err))),
			zap.Error(err),
		)
	}
	return degraded, nil
}

// abortsRun reports whether a failure in any slice must stop the whole run
func abortsRun(err error) bool {
	if errors.IsCancelled(err) {
		return true
	}
	switch errors.KindOf(err) {
	case errors.KindPermissionDenied, errors.KindQuotaExceeded:
		return true
	}
	return false
}
