package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer(t *testing.T) {
	t.Run("records custom metric", func(t *testing.T) {
		m := NewInMemoryMetrics()

		StartTimer("bootstrap").WithMetrics(m).WithMetric(MetricBootstrap).Stop(context.Background())

		assert.Len(t, m.GetTimings(MetricBootstrap, T("operation", "bootstrap")), 1)
		assert.Equal(t, int64(1), m.GetCounter(MetricOperationTotal, T("operation", "bootstrap")))
		assert.Equal(t, int64(0), m.GetCounter(MetricOperationErrors, T("operation", "bootstrap")))
	})

	t.Run("counts errors and logs them", func(t *testing.T) {
		m := NewInMemoryMetrics()
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelDebug, Format: LogFormatText, Output: &buf})

		StartTimer("persist").
			WithMetrics(m).
			WithLogger(logger).
			WithTags(T("driver", "file")).
			StopWithError(context.Background(), errors.New("disk full"))

		tags := []Tag{T("driver", "file"), T("operation", "persist")}
		assert.Equal(t, int64(1), m.GetCounter(MetricOperationErrors, tags...))
		assert.Contains(t, buf.String(), "operation failed")
		assert.Contains(t, buf.String(), "disk full")
	})

	t.Run("elapsed grows", func(t *testing.T) {
		timer := StartTimer("noop")
		time.Sleep(time.Millisecond)
		assert.GreaterOrEqual(t, timer.Elapsed(), time.Millisecond)
	})
}

func TestTimeOperationResult(t *testing.T) {
	m := NewInMemoryMetrics()

	n, err := TimeOperationResult(context.Background(), DiscardLogger(), m, "count", func() (int, error) {
		return 3, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int64(1), m.GetCounter(MetricOperationTotal, T("operation", "count")))
}

func TestTimeOperation_PropagatesError(t *testing.T) {
	m := NewInMemoryMetrics()
	boom := errors.New("boom")

	err := TimeOperation(context.Background(), DiscardLogger(), m, "fail", func() error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(1), m.GetCounter(MetricOperationErrors, T("operation", "fail")))
}
