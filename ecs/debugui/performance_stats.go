package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/framehost/app"
	"github.com/plus3/framehost/ecs"
)

type PerformanceStatsComponent struct {
	historyFrames int
	frameHistory  []float32
	frameIndex    int
	lastFrame     uint64
}

func NewPerformanceStatsComponent(historyFrames int) PerformanceStatsComponent {
	historyFrames = max(historyFrames, 1)
	return PerformanceStatsComponent{
		historyFrames: historyFrames,
		frameHistory:  make([]float32, historyFrames),
	}
}

// record stores the delta of a frame once, however often it is called for that frame.
func (ps *PerformanceStatsComponent) record(ft app.FrameTime) {
	if ft.Frame == ps.lastFrame {
		return
	}
	ps.lastFrame = ft.Frame
	ps.frameHistory[ps.frameIndex] = float32(ft.Delta.Seconds() * 1000)
	ps.frameIndex = (ps.frameIndex + 1) % ps.historyFrames
}

// averageFrameTime is the mean of the recorded deltas in milliseconds, ignoring empty
// slots.
func (ps *PerformanceStatsComponent) averageFrameTime() float32 {
	var sum float32
	var n int
	for _, ft := range ps.frameHistory {
		if ft > 0 {
			sum += ft
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float32(n)
}

func (ps *PerformanceStatsComponent) Render(storage *ecs.Storage, schedule *ecs.Schedule, ft app.FrameTime) {
	ps.record(ft)

	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := storage.CollectStats()

	imgui.Text(fmt.Sprintf("Frame: %d (%s elapsed)", ft.Frame, ft.Elapsed.Truncate(time.Millisecond)))
	imgui.Text(fmt.Sprintf("Total Entities: %d", stats.TotalEntityCount))
	imgui.Text(fmt.Sprintf("Archetypes: %d", stats.ArchetypeCount))
	imgui.Text(fmt.Sprintf("Singletons: %d", stats.SingletonCount))

	if avg := ps.averageFrameTime(); avg > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avg, 1000.0/avg))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.frameHistory[0], int32(len(ps.frameHistory)))

	if schedule != nil && imgui.TreeNodeStr("Systems") {
		renderScheduleStats(schedule.GetStats())
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Archetype Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("ArchStatsTable", 3, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Archetype ID")
			imgui.TableSetupColumn("Components")
			imgui.TableSetupColumn("Entity Count")
			imgui.TableHeadersRow()

			for _, arch := range stats.ArchetypeBreakdown {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("0x%X", arch.ID))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", len(arch.ComponentTypes)))
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", arch.EntityCount))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singleton Details") {
		for _, singletonType := range stats.SingletonTypes {
			imgui.BulletText(singletonType)
		}
		imgui.TreePop()
	}

	imgui.End()
}

func renderScheduleStats(stats ecs.ScheduleStats) {
	imgui.Text(fmt.Sprintf("%d systems in %d stages, %d batches, %d workers",
		stats.SystemCount, stats.StageCount, stats.BatchCount, stats.Workers))

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if !imgui.BeginTableV("SystemStatsTable", 5, tableFlags, imgui.NewVec2(0, 0), 0) {
		return
	}
	imgui.TableSetupColumn("System")
	imgui.TableSetupColumn("Stage/Batch")
	imgui.TableSetupColumn("Runs")
	imgui.TableSetupColumn("Avg")
	imgui.TableSetupColumn("Max")
	imgui.TableHeadersRow()

	for _, sys := range stats.Systems {
		imgui.TableNextRow()
		imgui.TableNextColumn()
		imgui.Text(sys.Name)
		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%d/%d", sys.Stage, sys.Batch))
		imgui.TableNextColumn()
		imgui.Text(fmt.Sprintf("%d", sys.ExecutionCount))
		imgui.TableNextColumn()
		imgui.Text(sys.AvgDuration.String())
		imgui.TableNextColumn()
		imgui.Text(sys.MaxDuration.String())
	}
	imgui.EndTable()
}

// PerformanceStatsSystem renders every PerformanceStatsComponent. Schedule is optional
// and set once the orchestrator is built.
type PerformanceStatsSystem struct {
	Windows   ecs.Query[struct{ *PerformanceStatsComponent }]
	UI        ecs.Singleton[app.UI]        `ecs:"read"`
	FrameTime ecs.Singleton[app.FrameTime] `ecs:"read"`
	Schedule  *ecs.Schedule
}

func (s *PerformanceStatsSystem) Execute(frame *ecs.UpdateFrame) {
	if s.UI.Get() == nil || s.UI.Get().Frame == nil {
		return
	}

	var ft app.FrameTime
	if p := s.FrameTime.Get(); p != nil {
		ft = *p
	}
	for item := range s.Windows.Values() {
		window := item.PerformanceStatsComponent
		frame.Commands.Defer(func() {
			window.Render(frame.Storage, s.Schedule, ft)
		})
	}
}
