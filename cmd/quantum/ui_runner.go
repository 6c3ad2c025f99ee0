package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"quantum/internal/result"
	"quantum/internal/scan"
	"quantum/internal/ui"
)

type scanOutcome struct {
	store *result.Store
	err   error
}

func runScanWithUI(ctx context.Context, title string, scanner *scan.Scanner, plan scan.Plan) (*result.Store, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan scan.Event, 256)
	outcomeCh := make(chan scanOutcome, 1)

	go func() {
		store, err := scanner.WithProgress(scan.ChannelSink{Ch: events}).Run(ctx, plan)
		outcomeCh <- scanOutcome{store: store, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, plan.Rel, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	final, uiErr := program.Run()
	if ui.Interrupted(final) {
		cancel()
	}
	// UI мог выйти раньше (ctrl+c); не даём сканеру заблокироваться на канале
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.store, uiErr
	}
	return outcome.store, outcome.err
}
