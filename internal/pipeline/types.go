package pipeline

import "time"

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageExtract reads documents and pulls out their diagrams.
	StageExtract Stage = "extract"
	// StageName derives output file names.
	StageName Stage = "name"
	// StageRender turns diagram sources into images.
	StageRender Stage = "render"
	// StageWrite persists mappings, galleries and linked documents.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the file finished the stage.
	StatusDone Status = "done"
	// StatusSkipped indicates the file had nothing to render.
	StatusSkipped Status = "skipped"
	// StatusError indicates the file failed the stage.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the overall pipeline when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from several goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
