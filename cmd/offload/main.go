package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yuhaow/offload/internal/config"
	"github.com/yuhaow/offload/internal/engine"
	"github.com/yuhaow/offload/internal/event"
	"github.com/yuhaow/offload/internal/report"
	"github.com/yuhaow/offload/internal/stats"
)

var version = "dev"

func main() {
	os.Exit(run())
}

// hashFlag is a custom pflag.Value that validates the algorithm name at
// parse time instead of deep inside a job.
type hashFlag struct {
	algo *engine.Algorithm
}

var _ pflag.Value = (*hashFlag)(nil)

func (f *hashFlag) String() string { return string(*f.algo) }
func (*hashFlag) Type() string     { return "string" }

func (f *hashFlag) Set(val string) error {
	algo, err := engine.ParseAlgorithm(val)
	if err != nil {
		return err
	}
	*f.algo = algo
	return nil
}

// job is one resolved unit of work: a device label plus the source,
// target and suffix to ingest.
type job struct {
	device string
	spec   config.JobConfig
}

//nolint:gocyclo // main CLI entry point orchestrates flag parsing and mode selection
func run() int {
	var (
		configPath  string
		source      string
		target      string
		suffix      string
		preserve    []string
		workers     int
		overwrite   bool
		dateToken   string
		dryRun      bool
		verbose     bool
		quiet       bool
		logDir      string
		showVersion bool
	)
	algo := engine.DefaultAlgorithm

	rootCmd := &cobra.Command{
		Use:   "offload [flags] [device]...",
		Short: "Verified bulk ingestion of files from removable media",
		Long: `Offload discovers files by suffix under a source tree, copies them in
parallel to destinations derived from a target template, and verifies
every copy by digest. Devices are named profiles from the config file;
with no arguments, devices whose marker file is present are ingested.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "offload %s\n", version)
				return nil
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			applyConfigDefaults(cmd, cfg.Defaults, &workers, &overwrite, &dateToken, &algo)
			if logDir == "" {
				logDir = cfg.LogDir
			}

			// Console at a level driven by -v/-q; the dated log file, when
			// configured, captures everything as JSON.
			consoleLevel := slog.LevelInfo
			if verbose {
				consoleLevel = slog.LevelDebug
			} else if quiet {
				consoleLevel = slog.LevelError
			}
			textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: consoleLevel,
			})
			var logHandler slog.Handler = textHandler
			if logDir != "" {
				lf, lfErr := report.OpenLogFile(logDir)
				if lfErr != nil {
					return lfErr
				}
				defer lf.Close()
				jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})
				logHandler = report.NewMultiHandler(textHandler, jsonHandler)
			}
			logger := slog.New(logHandler)
			slog.SetDefault(logger)

			jobs, err := resolveJobs(cfg, args, source, target, suffix, preserve)
			if err != nil {
				return err
			}

			if dryRun {
				slog.Info("dry run mode")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			defer engine.CleanupTmpFiles()

			collector := stats.NewCollector()
			reporter := report.NewLogReporter(logger)

			events := make(chan event.Event, 256)
			var evWg sync.WaitGroup
			evWg.Add(1)
			go func() {
				defer evWg.Done()
				for ev := range events {
					attrs := []slog.Attr{
						slog.String("type", ev.Type.String()),
						slog.String("path", ev.Path),
					}
					if ev.Size > 0 {
						attrs = append(attrs, slog.Int64("size", ev.Size))
					}
					if ev.Error != nil {
						attrs = append(attrs, slog.String("error", ev.Error.Error()))
					}
					slog.LogAttrs(context.Background(), slog.LevelDebug, "offload.event", attrs...)
				}
			}()

			dirty := false
			var jobErr error
			for _, j := range jobs {
				slog.Info("starting job",
					"device", j.device,
					"source", j.spec.Source,
					"target", j.spec.Target,
					"suffix", j.spec.Suffix,
				)

				result, err := engine.Run(ctx, engine.Request{
					SourceRoot:   j.spec.Source,
					TargetRoot:   j.spec.Target,
					PreserveDirs: j.spec.Preserve,
					Suffix:       j.spec.Suffix,
					Overwrite:    overwrite,
					Algorithm:    algo,
					DateToken:    dateToken,
					Workers:      workers,
					DryRun:       dryRun,
					Events:       events,
					Stats:        collector,
				})
				if err != nil {
					slog.Error("job failed", "device", j.device, "error", err)
					jobErr = err
					break
				}

				reporter.Report(j.device, j.spec.Suffix, result)
				if !result.Clean() {
					dirty = true
				}
			}

			stop()
			close(events)
			evWg.Wait()

			if !quiet {
				fmt.Fprintln(os.Stderr, collector.Snapshot())
			}

			if jobErr != nil {
				return jobErr // printed by Execute; exits 2
			}
			if dirty {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (default: $XDG_CONFIG_HOME/offload/config.toml)")
	rootCmd.Flags().StringVar(&source, "source", "", "one-off mode: source tree to scan")
	rootCmd.Flags().StringVar(&target, "target", "", "one-off mode: target template")
	rootCmd.Flags().StringVar(&suffix, "suffix", "", "one-off mode: filename suffix to match")
	rootCmd.Flags().StringSliceVar(&preserve, "preserve", nil, "directory names whose subtrees keep their structure (priority order)")
	rootCmd.Flags().IntVarP(&workers, "workers", "n", 0, "number of copy workers (default: min(NumCPU, 8))")
	rootCmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace existing destination files")
	rootCmd.Flags().Var(&hashFlag{algo: &algo}, "hash", "verification digest (sha256, sha1, md5, blake3)")
	rootCmd.Flags().StringVar(&dateToken, "date-token", "", "target path segment replaced by the file's creation date (default: data_str)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "discover candidates without copying")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.Flags().StringVar(&logDir, "log", "", "directory for dated JSON log files")

	rootCmd.AddCommand(docsCmd)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

// resolveJobs turns CLI arguments into the jobs to run: either a single
// one-off job from --source/--target/--suffix, the named device profiles,
// or every configured device whose marker file is present.
func resolveJobs(cfg config.Config, args []string, source, target, suffix string, preserve []string) ([]job, error) {
	if source != "" || target != "" || suffix != "" {
		if source == "" || target == "" || suffix == "" {
			return nil, errors.New("one-off mode needs --source, --target and --suffix together")
		}
		if len(args) > 0 {
			return nil, errors.New("device arguments cannot be combined with --source/--target/--suffix")
		}
		return []job{{
			device: "cli",
			spec: config.JobConfig{
				Source:   source,
				Target:   target,
				Suffix:   suffix,
				Preserve: preserve,
			},
		}}, nil
	}

	var jobs []job
	if len(args) > 0 {
		for _, name := range args {
			dev, ok := cfg.Device(name)
			if !ok {
				return nil, fmt.Errorf("unknown device %q", name)
			}
			for _, j := range dev.Jobs {
				jobs = append(jobs, job{device: dev.Name, spec: j})
			}
		}
		return jobs, nil
	}

	// No arguments: auto-detect connected devices by marker file.
	for _, dev := range cfg.Devices {
		if !dev.MarkerPresent() {
			continue
		}
		slog.Info("detected device", "device", dev.Name, "marker", dev.Marker)
		for _, j := range dev.Jobs {
			jobs = append(jobs, job{device: dev.Name, spec: j})
		}
	}
	if len(jobs) == 0 {
		return nil, errors.New("no device detected and none named; see offload --help")
	}
	return jobs, nil
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	workers *int,
	overwrite *bool,
	dateToken *string,
	algo *engine.Algorithm,
) {
	if !cmd.Flags().Changed("workers") && defaults.Workers != nil {
		*workers = *defaults.Workers
	}
	if !cmd.Flags().Changed("overwrite") && defaults.Overwrite != nil {
		*overwrite = *defaults.Overwrite
	}
	if !cmd.Flags().Changed("date-token") && defaults.DateToken != nil {
		*dateToken = *defaults.DateToken
	}
	if !cmd.Flags().Changed("hash") && defaults.Hash != nil {
		if parsed, err := engine.ParseAlgorithm(*defaults.Hash); err == nil {
			*algo = parsed
		} else {
			slog.Warn("ignoring invalid hash in config", "hash", *defaults.Hash, "error", err)
		}
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
