package ecs

import "time"

// ScheduleStats summarises how often and how long systems have run.
type ScheduleStats struct {
	SystemCount     int
	StageCount      int
	BatchCount      int
	Workers         int
	Sweeps          int64
	TotalExecutions int64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	Stage          int
	Batch          int
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

func (s *systemStatsInternal) record(d time.Duration) {
	s.executionCount++
	s.lastDuration = d
	s.totalDuration += d
	s.minDuration = min(s.minDuration, d)
	s.maxDuration = max(s.maxDuration, d)
}

// GetStats returns a snapshot of the statistics. It must not be called while Once is
// running.
func (s *Schedule) GetStats() *ScheduleStats {
	stats := &ScheduleStats{
		SystemCount: len(s.systems),
		StageCount:  len(s.stages),
		Workers:     s.workers,
		Sweeps:      s.sweeps,
		Systems:     make([]SystemStats, len(s.systems)),
	}

	for _, st := range s.stages {
		stats.BatchCount += len(st.batches)
	}

	for i, sys := range s.systems {
		internal := sys.stats
		var avg time.Duration
		minDuration := internal.minDuration
		if internal.executionCount > 0 {
			avg = internal.totalDuration / time.Duration(internal.executionCount)
		} else {
			minDuration = 0
		}

		stats.Systems[i] = SystemStats{
			Name:           sys.name,
			Stage:          sys.stage,
			Batch:          sys.batch,
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avg,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		stats.TotalExecutions += internal.executionCount
	}

	return stats
}
