package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	assert.Equal(t, StatusSuccess, Status(nil))
	assert.Equal(t, StatusFailed, Status(errors.New("boom")))
}

func TestRecordSimulation(t *testing.T) {
	running := testutil.ToFloat64(SimulationsRunning)
	before := testutil.ToFloat64(SimulationsTotal.WithLabelValues("metrics-test", StatusSuccess))

	RecordSimulationStart()
	assert.InDelta(t, running+1, testutil.ToFloat64(SimulationsRunning), 0)

	RecordSimulationComplete("metrics-test", StatusSuccess, 0.5)
	assert.InDelta(t, running, testutil.ToFloat64(SimulationsRunning), 0)
	assert.InDelta(t, before+1, testutil.ToFloat64(SimulationsTotal.WithLabelValues("metrics-test", StatusSuccess)), 0)
}

func TestRecordGraphBuild(t *testing.T) {
	RecordGraphBuild(StatusSuccess, 7, 0.01)
	assert.InDelta(t, 7, testutil.ToFloat64(GraphVariables), 0)

	RecordGraphBuild(StatusError, 0, 0.01)
	assert.InDelta(t, 7, testutil.ToFloat64(GraphVariables), 0)
}

func TestRecordCache(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("metrics-test"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("metrics-test"))

	RecordCacheHit("metrics-test")
	RecordCacheMiss("metrics-test")
	RecordCacheMiss("metrics-test")

	assert.InDelta(t, hits+1, testutil.ToFloat64(CacheHits.WithLabelValues("metrics-test")), 0)
	assert.InDelta(t, misses+2, testutil.ToFloat64(CacheMisses.WithLabelValues("metrics-test")), 0)
}
