package main

import (
	"fmt"
	"io"
	"runtime"
	"slices"
	"text/template"
	"time"

	"github.com/plus3/framehost/ecs"
)

// Report collects everything printed at the end of a run.
type Report struct {
	Config  Config
	Plan    []ecs.StagePlan
	Storage ecs.StorageStats

	Sweeps     int64
	Elapsed    time.Duration
	SweepTime  Stats
	Schedule   *ecs.ScheduleStats
	MemBefore  runtime.MemStats
	MemAfter   runtime.MemStats
	GCPauses   bool
	components int
}

// Stats summarises a set of duration samples.
type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	P50     time.Duration
	P99     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	sorted := slices.Clone(s.Samples)
	slices.Sort(sorted)

	var total time.Duration
	for _, sample := range sorted {
		total += sample
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Avg = total / time.Duration(len(sorted))
	s.P50 = percentile(sorted, 50)
	s.P99 = percentile(sorted, 99)
}

// percentile uses nearest-rank on an already sorted slice.
func percentile(sorted []time.Duration, p int) time.Duration {
	rank := (p*len(sorted) + 99) / 100
	return sorted[max(rank-1, 0)]
}

const reportTemplate = `
# ECS Stress Test Report

## Configuration
- **Run Duration:** {{.Config.Duration}}
- **Initial Entities:** {{.Config.Entities}}
- **Component Types:** {{.Components}}
- **Scheduled Systems:** {{.Config.Systems}}
- **Workers:** {{.Config.Workers}}

## Plan
{{range $i, $stage := .Plan}}- stage {{$i}}: {{len $stage.Batches}} batches
{{end}}
## Storage
- **Archetypes:** {{.Storage.ArchetypeCount}}
- **Entities:** {{.Storage.TotalEntityCount}}

## Sweeps
- **Count:** {{.Sweeps}} in {{.Elapsed}}
- **Avg:** {{.SweepTime.Avg}}  **P50:** {{.SweepTime.P50}}  **P99:** {{.SweepTime.P99}}
- **Min:** {{.SweepTime.Min}}  **Max:** {{.SweepTime.Max}}
{{with .Schedule}}
## Systems
| System | Stage | Batch | Runs | Avg | Max |
|---|---|---|---|---|---|
{{range .Systems}}| {{.Name}} | {{.Stage}} | {{.Batch}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.MaxDuration}} |
{{end}}{{end}}
## Memory
- Heap Alloc:  {{mb .MemBefore.HeapAlloc}} -> {{mb .MemAfter.HeapAlloc}} MiB
- Total Alloc: {{mb (delta .MemAfter.TotalAlloc .MemBefore.TotalAlloc)}} MiB during the run
- Heap In Use: {{mb .MemAfter.HeapInuse}} MiB
- GC Cycles:   {{sub32 .MemAfter.NumGC .MemBefore.NumGC}}
{{if .GCPauses}}- GC Pause:    {{ns (delta .MemAfter.PauseTotalNs .MemBefore.PauseTotalNs)}}
{{end}}`

var reportFuncs = template.FuncMap{
	"mb": func(v uint64) string {
		return fmt.Sprintf("%.2f", float64(v)/(1<<20))
	},
	"delta": func(after, before uint64) uint64 {
		if after < before {
			return 0
		}
		return after - before
	},
	"sub32": func(after, before uint32) uint32 {
		return after - before
	},
	"ns": func(ns uint64) string {
		return time.Duration(ns).String()
	},
}

var reportTmpl = template.Must(template.New("report").Funcs(reportFuncs).Parse(reportTemplate))

// Components is the number of generated component types exercised by the run.
func (r *Report) Components() int {
	return r.components
}

func (r *Report) Generate(w io.Writer) error {
	return reportTmpl.Execute(w, r)
}
