package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"mermaidviz/internal/pipeline"
	"mermaidviz/internal/ui"
)

type generateOutcome struct {
	result pipeline.Result
	err    error
}

func runGenerateWithUI(ctx context.Context, title string, req *pipeline.Request) (pipeline.Result, error) {
	if req == nil {
		return pipeline.Result{}, fmt.Errorf("missing generate request")
	}
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan generateOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.Generate(ctx, &reqCopy)
		outcomeCh <- generateOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, req.Inputs(), events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		// UI не читает канал: дочитываем, чтобы пайплайн не заблокировался
		for range events {
		}
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
