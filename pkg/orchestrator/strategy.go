package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tripweave/itinerary-engine/pkg/errors"
	"github.com/tripweave/itinerary-engine/pkg/gateway"
	"github.com/tripweave/itinerary-engine/pkg/types"
)

// Strategy names
const (
	StrategyContentFirst = "content_first"
	StrategyAIFirst      = "ai_first"
)

// Strategy produces day plans and search results for one run
type Strategy interface {
	Name() string
	Generate(ctx context.Context, run *Run) (*Draft, error)
}

// Draft is a strategy's output before assembly
type Draft struct {
	Plans       []types.DayPlan
	Search      *SearchResults
	Content     *GeneratedContent
	Diagnostics []types.Diagnostic
}

// Run is the validated, sanitized state of one generation
type Run struct {
	ID        string
	Request   *types.GenerationRequest
	UserID    string
	Profile   *types.PreferenceProfile
	Transport TransportPlan
	TripDays  int
	Start     time.Time
	Logger    *zap.Logger

	call    func(ctx context.Context, operation string, payload any, kind errors.Kind) (*gateway.Response, error)
	advance func(stage Stage, percent int, message string)
}

// Call invokes a remote operation through the retry executor
func (r *Run) Call(ctx context.Context, operation string, payload any, kind errors.Kind) (*gateway.Response, error) {
	return r.call(ctx, operation, payload, kind)
}

// Advance reports forward progress
func (r *Run) Advance(stage Stage, percent int, message string) {
	if r.advance != nil {
		r.advance(stage, percent, message)
	}
}

func (r *Run) searchPayload() SearchPayload {
	return newSearchPayload(r.Request, r.Profile, r.TripDays)
}

// NewStrategy returns the strategy registered under name
func NewStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyContentFirst:
		return contentFirst{}, nil
	case StrategyAIFirst:
		return aiFirst{}, nil
	default:
		return nil, fmt.Errorf("unknown itinerary strategy %q", name)
	}
}

// searchTasks builds the independent search calls. Each task writes only to
// its own field of results.
func searchTasks(run *Run, results *SearchResults, withGroundAdvice bool) []task {
	payload := run.searchPayload()

	tasks := []task{
		{
			name: gateway.OpSearchAccommodations,
			run: func(ctx context.Context) error {
				resp, err := run.Call(ctx, gateway.OpSearchAccommodations, payload, errors.KindNetwork)
				if err != nil {
					return err
				}
				results.Accommodations = ParseAccommodations(resp.Data)
				return nil
			},
		},
		{
			name: gateway.OpSearchActivities,
			run: func(ctx context.Context) error {
				resp, err := run.Call(ctx, gateway.OpSearchActivities, payload, errors.KindNetwork)
				if err != nil {
					return err
				}
				results.Activities, results.Restaurants = ParseActivities(resp.Data)
				return nil
			},
		},
	}

	if run.Transport.SearchFlights {
		flightPayload := newFlightPayload(run.Request)
		tasks = append(tasks, task{
			name: gateway.OpSearchFlights,
			run: func(ctx context.Context) error {
				resp, err := run.Call(ctx, gateway.OpSearchFlights, flightPayload, errors.KindNetwork)
				if err != nil {
					return err
				}
				results.Flights = ParseFlights(resp.Data)
				return nil
			},
		})
	} else if run.Transport.IncludeFlights {
		run.Logger.Info("air travel requested without both airport codes, skipping flight search",
			zap.String("run_id", run.ID),
		)
	}

	if withGroundAdvice && run.Request.DepartureLocation != "" && !run.Transport.SearchFlights {
		advicePayload := GroundAdvicePayload{
			Departure:         run.Request.DepartureLocation,
			Destination:       run.Request.Destination,
			StartDate:         run.Request.StartDate,
			EndDate:           run.Request.EndDate,
			Days:              run.TripDays,
			TripType:          run.Request.TripType,
			PreferenceProfile: run.Profile,
		}
		tasks = append(tasks, task{
			name: gateway.OpGroundTransportAdvice,
			run: func(ctx context.Context) error {
				resp, err := run.Call(ctx, gateway.OpGroundTransportAdvice, advicePayload, errors.KindServer)
				if err != nil {
					return err
				}
				results.GroundTransport = ParseGroundAdvice(resp.Data)
				return nil
			},
		})
	}

	return tasks
}

func ensureSlices(r *SearchResults) {
	if r.Accommodations == nil {
		r.Accommodations = []types.Accommodation{}
	}
	if r.Activities == nil {
		r.Activities = []types.Place{}
	}
	if r.Restaurants == nil {
		r.Restaurants = []types.Place{}
	}
	if r.Flights == nil {
		r.Flights = []types.Flight{}
	}
}

func logDiagnostics(logger *zap.Logger, runID string, diags []types.Diagnostic) {
	for _, d := range diags {
		logger.Warn("day plan diagnostic",
			zap.String("run_id", runID),
			zap.String("code", d.Code),
			zap.String("message", d.Message),
			zap.Int("expected", d.Expected),
			zap.Int("actual", d.Actual),
		)
	}
}

// parseContent converts an unusable AI payload into a server error so the
// mandatory call fails like any other upstream fault.
func parseContent(operation string, resp *gateway.Response) (*GeneratedContent, error) {
	content, err := ParseGeneratedContent(resp.Data)
	if err != nil {
		return nil, errors.NewWithCode(errors.KindServer, "", fmt.Sprintf("%s: %v", operation, err))
	}
	return content, nil
}
