package main

import (
	"fmt"
	"io"
	"time"

	"mermaidviz/internal/observ"
	"mermaidviz/internal/pipeline"
)

func printStageTimings(out io.Writer, timings pipeline.Timings) {
	if out == nil {
		return
	}
	stages := []struct {
		stage pipeline.Stage
		label string
	}{
		{pipeline.StageExtract, "extracted"},
		{pipeline.StageName, "named"},
		{pipeline.StageRender, "rendered"},
		{pipeline.StageWrite, "written"},
	}
	for _, s := range stages {
		if !timings.Has(s.stage) {
			continue
		}
		if _, err := fmt.Fprintf(out, "%s %.1f ms\n", s.label, toMillis(timings.Duration(s.stage))); err != nil {
			panic(err)
		}
	}
}

func printPhaseTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	if summary := timer.Summary(); summary != "" {
		fmt.Fprint(out, summary)
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
