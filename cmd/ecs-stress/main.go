//go:generate go run ../ecs-stress-gen -components 8 -offset 3 -out generated.go

package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/plus3/framehost/ecs"
)

// Config holds the command line settings of a run.
type Config struct {
	Duration time.Duration
	Entities int
	Systems  int
	Workers  int
}

func parseFlags() (Config, bool) {
	var cfg Config
	flag.DurationVar(&cfg.Duration, "duration", 10*time.Second, "How long to keep sweeping the schedule.")
	flag.IntVar(&cfg.Entities, "entities", 10000, "Entities spawned before the first sweep.")
	flag.IntVar(&cfg.Systems, "systems", 32, "Systems added to the schedule.")
	flag.IntVar(&cfg.Workers, "workers", runtime.GOMAXPROCS(0), "Maximum systems running in parallel.")
	gcPauses := flag.Bool("gc-pause-metrics", false, "Include GC pause totals in the report.")
	flag.Parse()
	return cfg, *gcPauses
}

func setup(cfg Config) (*ecs.Storage, *ecs.Schedule, error) {
	registry := ecs.NewComponentRegistry()
	RegisterAllComponents(registry)
	storage := ecs.NewStorage(registry)

	builder := ecs.NewScheduleBuilder()
	builder.SetWorkers(cfg.Workers)
	RegisterAllSystems(builder, cfg.Systems)
	schedule, err := builder.Build(storage)
	if err != nil {
		return nil, nil, err
	}

	for range cfg.Entities {
		SpawnRandomEntity(storage, rand.Intn(5)+1)
	}
	return storage, schedule, nil
}

// sweep runs the schedule until ctx is done and records each sweep's wall time.
func sweep(ctx context.Context, schedule *ecs.Schedule, report *Report) error {
	start := time.Now()
	last := start
	for ctx.Err() == nil {
		now := time.Now()
		delta := now.Sub(last)
		last = now

		if err := schedule.Once(delta.Seconds()); err != nil {
			return err
		}
		report.SweepTime.Samples = append(report.SweepTime.Samples, time.Since(now))
		report.Sweeps++
	}
	report.Elapsed = time.Since(start)
	return nil
}

func main() {
	cfg, gcPauses := parseFlags()

	log.Printf("Building %d systems over %d entities...", cfg.Systems, cfg.Entities)
	storage, schedule, err := setup(cfg)
	if err != nil {
		log.Fatalf("Failed to build schedule: %v", err)
	}

	report := &Report{
		Config:     cfg,
		Plan:       schedule.Plan(),
		GCPauses:   gcPauses,
		components: componentCount,
	}
	runtime.ReadMemStats(&report.MemBefore)

	log.Printf("Sweeping for %s across %d stages...", cfg.Duration, len(report.Plan))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()
	if err := sweep(ctx, schedule, report); err != nil {
		log.Fatalf("Sweep %d failed: %v", report.Sweeps, err)
	}

	runtime.ReadMemStats(&report.MemAfter)
	report.SweepTime.Finalize()
	report.Schedule = schedule.GetStats()
	report.Storage = storage.CollectStats()

	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
}
