package orchestrator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Stage is a step of the generation pipeline
type Stage string

const (
	StageInitializing Stage = "initializing"
	StageSearching    Stage = "searching"
	StageAIGeneration Stage = "ai_generation"
	StageActivities   Stage = "activities"
	StageVerifying    Stage = "verifying"
	StageSaving       Stage = "saving"
	StageDone         Stage = "done"
)

// Stages sharing a rank are alternatives used by different strategies
var stageRank = map[Stage]int{
	StageInitializing: 0,
	StageSearching:    1,
	StageAIGeneration: 1,
	StageActivities:   2,
	StageVerifying:    2,
	StageSaving:       3,
	StageDone:         4,
}

// Progress is a snapshot of the current generation state
type Progress struct {
	RunID     string    `json:"runId,omitempty"`
	Stage     Stage     `json:"stage"`
	Percent   int       `json:"percent"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProgressSink receives every accepted progress transition
type ProgressSink interface {
	Publish(ctx context.Context, p Progress) error
}

type progressTracker struct {
	mu      sync.RWMutex
	current Progress
	sink    ProgressSink
	logger  *zap.Logger
	now     func() time.Time
}

func newProgressTracker(sink ProgressSink, logger *zap.Logger, now func() time.Time) *progressTracker {
	t := &progressTracker{sink: sink, logger: logger, now: now}
	t.current = Progress{Stage: StageInitializing, UpdatedAt: now()}
	return t
}

func (t *progressTracker) snapshot() Progress {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// reset returns to the idle initializing state when runID is still the
// tracked run. A newer run is left untouched.
func (t *progressTracker) reset(runID string) {
	t.mu.Lock()
	if runID == t.current.RunID {
		t.current = Progress{Stage: StageInitializing, UpdatedAt: t.now()}
	}
	t.mu.Unlock()
}

// begin switches tracking to a new run without publishing
func (t *progressTracker) begin(runID string) Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = Progress{
		RunID:     runID,
		Stage:     StageInitializing,
		Percent:   5,
		Message:   "Preparing your trip",
		UpdatedAt: t.now(),
	}
	return t.current
}

// advance moves the run forward. Updates from a stale run, to an earlier
// stage or to a lower percent are ignored.
func (t *progressTracker) advance(runID string, stage Stage, percent int, message string) bool {
	t.mu.Lock()
	if runID == "" || runID != t.current.RunID ||
		stageRank[stage] < stageRank[t.current.Stage] ||
		percent < t.current.Percent {
		t.mu.Unlock()
		return false
	}
	t.current = Progress{
		RunID:     runID,
		Stage:     stage,
		Percent:   percent,
		Message:   message,
		UpdatedAt: t.now(),
	}
	p := t.current
	t.mu.Unlock()

	t.publish(p)
	return true
}

func (t *progressTracker) publish(p Progress) {
	if t.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.sink.Publish(ctx, p); err != nil {
		t.logger.Warn("failed to publish progress",
			zap.String("run_id", p.RunID),
			zap.String("stage", string(p.Stage)),
			zap.Error(err),
		)
	}
}
