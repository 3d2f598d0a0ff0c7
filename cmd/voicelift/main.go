package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/linuxmatters/voicelift/internal/batch"
	"github.com/linuxmatters/voicelift/internal/cli"
	"github.com/linuxmatters/voicelift/internal/denoise"
	"github.com/linuxmatters/voicelift/internal/logging"
	"github.com/linuxmatters/voicelift/internal/mains"
	"github.com/linuxmatters/voicelift/internal/processor"
)

var (
	version = "0.0.1"
)

// userConfig holds flag defaults loaded before --config
const userConfig = "~/.config/voicelift/config.json"

// CLI defines the command-line interface
type CLI struct {
	Version bool            `short:"v" help:"Show version information"`
	Config  kong.ConfigFlag `short:"c" help:"Load flag defaults from a JSON file"`

	// Stages, all on unless turned off
	All   bool     `help:"Run every stage, overriding --no-* and --only"`
	Only  []string `help:"Run only these stages" enum:"noise,eq,deess,comp,sat,limit" placeholder:"stage" sep:","`
	Noise bool     `default:"true" negatable:"" help:"Noise reduction (--no-noise to skip)"`
	EQ    bool     `name:"eq" default:"true" negatable:"" help:"Rumble filter and tonal correction (--no-eq to skip)"`
	Deess bool     `default:"true" negatable:"" help:"De-esser (--no-deess to skip)"`
	Comp  bool     `default:"true" negatable:"" help:"Compressor (--no-comp to skip)"`
	Sat   bool     `default:"true" negatable:"" help:"Soft saturation (--no-sat to skip)"`
	Limit bool     `default:"true" negatable:"" help:"Peak limiter (--no-limit to skip)"`

	// Output
	Out    string `short:"o" type:"path" placeholder:"dir" help:"Write results here instead of next to each input"`
	Suffix string `placeholder:"text" help:"Appended to output names (default \" - edit\")"`
	Logs   bool   `help:"Save a processing report next to each output"`

	// Processing
	Jobs                 int    `short:"j" default:"0" help:"Files processed in parallel, 0 for one per CPU"`
	ChannelMode          string `enum:"per-channel,interleaved" default:"per-channel" help:"Filter each channel separately or the interleaved stream"`
	Dehum                string `default:"off" placeholder:"mode" help:"Mains hum removal: auto, 50, 60 or off"`
	SkipUnsupportedBands bool   `help:"Skip EQ and de-esser bands above the file's Nyquist frequency instead of failing"`

	// Behaviour
	Analyze bool `short:"a" help:"Measure levels and print recording tips without processing"`
	NoTUI   bool `name:"no-tui" help:"Print one line per file instead of the interactive display"`
	Debug   bool `help:"Write verbose diagnostics to voicelift-debug.log"`

	Files []string `arg:"" name:"files" help:"Audio files or directories to process" type:"path" optional:""`
}

// Selection resolves the stage flags
func (c *CLI) Selection() processor.StageSelection {
	if c.All {
		return processor.AllStages()
	}
	if len(c.Only) > 0 {
		var sel processor.StageSelection
		for _, name := range c.Only {
			switch name {
			case "noise":
				sel.NoiseReduction = true
			case "eq":
				sel.Equalizer = true
			case "deess":
				sel.DeEsser = true
			case "comp":
				sel.Compressor = true
			case "sat":
				sel.Saturator = true
			case "limit":
				sel.Limiter = true
			}
		}
		return sel
	}
	return processor.StageSelection{
		NoiseReduction: c.Noise,
		Equalizer:      c.EQ,
		DeEsser:        c.Deess,
		Compressor:     c.Comp,
		Saturator:      c.Sat,
		Limiter:        c.Limit,
	}
}

// ProcessingConfig applies the flags to the default DSP parameters
func (c *CLI) ProcessingConfig() *processor.Config {
	cfg := processor.DefaultConfig()
	cfg.ChannelMode = processor.ChannelMode(c.ChannelMode)
	cfg.SkipUnsupportedBands = c.SkipUnsupportedBands
	return cfg
}

// OutputSuffix returns the suffix outputs are named with
func (c *CLI) OutputSuffix() string {
	if c.Suffix == "" {
		return processor.DefaultSuffix
	}
	return c.Suffix
}

func main() {
	cliArgs := &CLI{}
	ctx := kong.Parse(cliArgs,
		kong.Name("voicelift"),
		kong.Description("Speech enhancement for spoken word recordings"),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, userConfig),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	if len(cliArgs.Files) == 0 {
		cli.PrintError("No input files specified")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	os.Exit(run(cliArgs))
}

// run processes or analyses every file and returns the exit code: 1 when a
// file failed, 130 when the batch was interrupted
func run(args *CLI) int {
	files, err := batch.Expand(args.Files, args.OutputSuffix())
	if err != nil {
		cli.PrintError(err.Error())
		return 1
	}
	if len(files) == 0 {
		cli.PrintError("No audio files found")
		return 1
	}

	log, closer, err := logging.NewDebugLogger(logging.DebugLogName, args.Debug)
	if err != nil {
		cli.PrintWarning(err.Error())
		log = logging.Discard()
	} else {
		defer closer.Close()
	}
	log.WithFields(logrus.Fields{"version": version, "files": len(files)}).Info("voicelift started")

	hum, err := mains.Resolve(args.Dehum)
	if err != nil {
		cli.PrintError(err.Error())
		return 1
	}
	log.WithFields(logrus.Fields{
		"hz":       hum.Hz,
		"source":   hum.Source,
		"timezone": hum.Timezone,
		"country":  hum.Country,
	}).Debug("mains frequency resolved")

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if args.Analyze {
		return runAnalysis(runCtx, files, hum, !args.NoTUI, log)
	}

	selection := args.Selection()
	if !selection.Any() {
		cli.PrintError("Every stage is disabled, nothing to do")
		return 1
	}

	pipeline, err := processor.NewPipeline(args.ProcessingConfig(), processor.Capabilities{
		NoiseReducer: newNoiseReducer(hum),
	}, log)
	if err != nil {
		cli.PrintError(err.Error())
		return 1
	}

	opts := processor.Options{
		Selection: selection,
		OutputDir: args.Out,
		Suffix:    args.OutputSuffix(),
	}

	var summary batch.Summary
	if args.NoTUI {
		summary = runPlain(runCtx, args, files, pipeline, opts, log)
	} else {
		summary = runTUI(runCtx, args, files, pipeline, opts, log)
	}

	log.WithFields(logrus.Fields{
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"cancelled": summary.Cancelled,
	}).Info("voicelift finished")

	switch {
	case summary.Failed > 0:
		return 1
	case summary.Cancelled > 0:
		return 130
	}
	return 0
}

// newNoiseReducer builds the noise reduction capability: the optional hum
// notches followed by the spectral gate
func newNoiseReducer(hum mains.Detection) denoise.Chain {
	var chain denoise.Chain
	if hum.Hz > 0 {
		chain = append(chain, denoise.NewHumRemover(hum.Hz))
	}
	return append(chain, denoise.NewSpectralGate())
}

// reportPaths records the reports written by workers, by file index
type reportPaths struct {
	mu    sync.Mutex
	paths map[int]string
}

func (r *reportPaths) set(index int, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[index] = path
}

func (r *reportPaths) get(index int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paths[index]
}

// newRunner wires ProcessAudio and the optional report into a batch runner.
// progress receives updates for the file at index and may be nil.
func newRunner(args *CLI, pipeline *processor.Pipeline, opts processor.Options, log logrus.FieldLogger, progress func(index int, p processor.Progress)) (*batch.Runner, *reportPaths) {
	reports := &reportPaths{paths: make(map[int]string)}

	runner := &batch.Runner{
		Jobs: args.Jobs,
		Log:  log,
		Process: func(ctx context.Context, index int, path string) (*processor.ProcessingResult, error) {
			start := time.Now()
			res, err := processor.ProcessAudio(ctx, path, pipeline, opts, func(p processor.Progress) {
				if progress != nil {
					progress(index, p)
				}
			})
			if err != nil || !args.Logs {
				return res, err
			}

			reportPath, err := logging.GenerateReport(logging.ReportData{
				InputPath: path,
				StartTime: start,
				EndTime:   time.Now(),
				Result:    res,
			})
			if err != nil {
				// the audio is written; a missing report does not fail the file
				log.WithError(err).WithField("file", path).Warn("failed to write report")
				return res, nil
			}
			reports.set(index, reportPath)
			return res, nil
		},
	}
	return runner, reports
}
