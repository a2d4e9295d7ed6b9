package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsFinalize(t *testing.T) {
	s := Stats{Samples: []time.Duration{3 * time.Millisecond, time.Millisecond, 2 * time.Millisecond}}
	s.Finalize()
	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 3*time.Millisecond, s.Max)
	assert.Equal(t, 2*time.Millisecond, s.Avg)
	assert.Equal(t, 2*time.Millisecond, s.P50)
	assert.Equal(t, 3*time.Millisecond, s.P99)
	assert.Equal(t, 3*time.Millisecond, s.Samples[0], "samples keep their order")
}

func TestStressScheduleBuildsAndRuns(t *testing.T) {
	cfg := Config{Entities: 200, Systems: 20, Workers: 4}
	storage, schedule, err := setup(cfg)
	require.NoError(t, err)
	assert.Len(t, schedule.Plan(), 3)

	for range 5 {
		require.NoError(t, schedule.Once(0.016))
	}
	stats := schedule.GetStats()
	assert.Equal(t, 20, stats.SystemCount)
	assert.Equal(t, int64(100), stats.TotalExecutions)

	report := &Report{
		Config:     cfg,
		Plan:       schedule.Plan(),
		Schedule:   stats,
		Storage:    storage.CollectStats(),
		components: componentCount,
	}
	assert.Equal(t, 200, report.Storage.TotalEntityCount)
	var out bytes.Buffer
	require.NoError(t, report.Generate(&out))
	assert.Contains(t, out.String(), "Scheduled Systems:** 20")
	assert.Contains(t, out.String(), "stage 2:")
	assert.Contains(t, out.String(), "**Component Types:** 8")
	assert.NotContains(t, out.String(), "GC Pause")
}
