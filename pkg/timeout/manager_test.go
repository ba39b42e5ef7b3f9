package timeout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTimeoutUsesOperationOverride(t *testing.T) {
	m := NewManager(time.Minute)
	m.SetOperationTimeout("searchFlights", 10*time.Second)

	assert.Equal(t, 10*time.Second, m.GetTimeout(context.Background(), "searchFlights"))
	assert.Equal(t, time.Minute, m.GetTimeout(context.Background(), "searchActivities"))
}

func TestGetTimeoutCappedByContextDeadline(t *testing.T) {
	m := NewManager(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.LessOrEqual(t, m.GetTimeout(ctx, "anything"), time.Second)
}

func TestRunReturnsTimeoutError(t *testing.T) {
	m := NewManager(20 * time.Millisecond)

	err := m.Run(context.Background(), "generateFullItinerary", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "generateFullItinerary", te.Operation)
}

func TestRunPassesThroughParentCancellation(t *testing.T) {
	m := NewManager(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Run(ctx, "searchActivities", func(ctx context.Context) error {
		return ctx.Err()
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsTimeout(err))
}

func TestRunSuccess(t *testing.T) {
	m := NewManager(time.Second)
	err := m.Run(context.Background(), "saveItinerary", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	})
	assert.NoError(t, err)
}
