package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/linuxmatters/voicelift/internal/analysis"
	"github.com/linuxmatters/voicelift/internal/audio"
	"github.com/linuxmatters/voicelift/internal/batch"
	"github.com/linuxmatters/voicelift/internal/cli"
	"github.com/linuxmatters/voicelift/internal/logging"
	"github.com/linuxmatters/voicelift/internal/mains"
	"github.com/linuxmatters/voicelift/internal/processor"
	"github.com/linuxmatters/voicelift/internal/ui"
)

// runTUI processes files behind the Bubbletea progress display
func runTUI(ctx context.Context, args *CLI, files []string, pipeline *processor.Pipeline, opts processor.Options, log *logrus.Logger) batch.Summary {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var p *tea.Program
	runner, reports := newRunner(args, pipeline, opts, log, func(index int, pr processor.Progress) {
		p.Send(ui.ProgressMsg{Index: index, Progress: pr})
	})

	model := ui.NewModel(files, runner.Workers(len(files)), opts.Selection.Count(), cancel, log)
	p = tea.NewProgram(model, tea.WithAltScreen())

	runner.OnStart = func(index int, path string) {
		p.Send(ui.FileStartMsg{Index: index, OutputPath: processor.OutputPath(path, opts.OutputDir, opts.Suffix)})
	}
	runner.OnDone = func(fr batch.FileResult) {
		p.Send(ui.FileCompleteMsg{Index: fr.Index, Result: fr.Result, ReportPath: reports.get(fr.Index), Error: fr.Err})
	}

	done := make(chan []batch.FileResult, 1)
	go func() {
		results := runner.Run(ctx, files)
		p.Send(ui.AllCompleteMsg{Summary: batch.Summarise(results)})
		done <- results
	}()

	final, err := p.Run()
	if err != nil {
		log.WithError(err).Error("UI failed")
		cli.PrintError(fmt.Sprintf("UI error: %v", err))
	}

	// Quitting early cancels whatever is still queued; in-flight files stop
	// at their next stage boundary.
	cancel()
	results := <-done

	// The alternate screen is gone, so repeat the summary on the terminal
	if m, ok := final.(ui.Model); ok && m.Done {
		fmt.Print(m.View())
	}
	printFailures(results)
	return batch.Summarise(results)
}

// runPlain processes files printing one line per event
func runPlain(ctx context.Context, args *CLI, files []string, pipeline *processor.Pipeline, opts processor.Options, log *logrus.Logger) batch.Summary {
	runner, reports := newRunner(args, pipeline, opts, log, nil)

	var mu sync.Mutex
	total := len(files)
	runner.OnStart = func(index int, path string) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Printf("[%d/%d] %s\n", index+1, total, filepath.Base(path))
	}
	runner.OnDone = func(fr batch.FileResult) {
		mu.Lock()
		defer mu.Unlock()
		name := filepath.Base(fr.Path)
		switch {
		case fr.Err != nil:
			cli.PrintWarning(fmt.Sprintf("%s: %v", name, fr.Err))
		default:
			in, out := fr.Result.Input, fr.Result.Output
			fmt.Printf("[%d/%d] %s → %s (RMS %.1f → %.1f dBFS, %s)\n",
				fr.Index+1, total, name, filepath.Base(fr.Result.OutputPath),
				in.RMSDBFS, out.RMSDBFS, fr.Finished.Sub(fr.Started).Round(time.Millisecond))
			if rp := reports.get(fr.Index); rp != "" {
				cli.PrintKeyValue("Report", rp)
			}
		}
	}

	results := runner.Run(ctx, files)
	s := batch.Summarise(results)
	fmt.Printf("\n%d succeeded, %d failed, %d cancelled\n", s.Succeeded, s.Failed, s.Cancelled)
	return s
}

// printFailures lists failed files once the TUI has exited
func printFailures(results []batch.FileResult) {
	for _, r := range results {
		if r.Err != nil && !errors.Is(r.Err, batch.ErrNotStarted) {
			cli.PrintWarning(fmt.Sprintf("%s: %v", filepath.Base(r.Path), r.Err))
		}
	}
}

// analyseFile measures one file without processing it
func analyseFile(path string, hum mains.Detection) (logging.AnalysisData, error) {
	data := logging.AnalysisData{InputPath: path}
	buf, err := audio.Decode(path)
	if err != nil {
		return data, err
	}
	if len(buf.Samples) == 0 {
		return data, fmt.Errorf("%s: %w", path, processor.ErrEmptyBuffer)
	}
	data.Metadata = buf.Metadata()
	data.Levels = analysis.Measure(buf.Samples, buf.SampleRate, buf.Channels)
	if hum.Hz > 0 {
		data.Mains = &hum
	}
	return data, nil
}

// runAnalysis measures every file in turn and prints the results
func runAnalysis(ctx context.Context, files []string, hum mains.Detection, useTUI bool, log *logrus.Logger) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	results := make([]ui.AnalysisCompleteMsg, len(files))

	measure := func(send func(tea.Msg)) {
		for i, path := range files {
			if ctx.Err() != nil {
				results[i] = ui.AnalysisCompleteMsg{Index: i, Error: batch.ErrNotStarted}
				continue
			}
			send(ui.AnalysisStartMsg{Index: i})
			data, err := analyseFile(path, hum)
			if err != nil {
				log.WithError(err).WithField("file", path).Warn("analysis failed")
			}
			results[i] = ui.AnalysisCompleteMsg{Index: i, Data: data, Error: err}
			send(results[i])
		}
		send(ui.AnalysisDoneMsg{})
	}

	if useTUI {
		p := tea.NewProgram(ui.NewAnalysisModel(files))
		done := make(chan struct{})
		go func() {
			defer close(done)
			measure(p.Send)
		}()
		if _, err := p.Run(); err != nil {
			cli.PrintError(fmt.Sprintf("UI error: %v", err))
		}
		cancel()
		<-done
	} else {
		measure(func(tea.Msg) {})
	}

	code := 0
	for i, r := range results {
		if errors.Is(r.Error, batch.ErrNotStarted) {
			code = 130
			continue
		}
		if r.Error != nil {
			cli.PrintError(fmt.Sprintf("%s: %v", filepath.Base(files[i]), r.Error))
			code = 1
			continue
		}
		logging.DisplayAnalysisResults(os.Stdout, r.Data)
	}
	return code
}
