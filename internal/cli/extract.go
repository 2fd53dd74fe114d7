package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/intl-extract/internal/cache"
	"github.com/mvp-joe/intl-extract/internal/config"
	"github.com/mvp-joe/intl-extract/internal/messages"
	"github.com/mvp-joe/intl-extract/internal/runner"
	"github.com/mvp-joe/intl-extract/internal/watcher"
)

// ErrExtractionFailed is returned when at least one source file failed.
var ErrExtractionFailed = errors.New("extraction failed")

type extractOptions struct {
	*globalOptions

	messagesDir      string
	moduleSourceName string
	concurrency      int
	incremental      bool
	watch            bool
	out              string
	quiet            bool
}

func newExtractCommand(global *globalOptions) *cobra.Command {
	opts := &extractOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:   "extract [paths...]",
		Short: "Extract message descriptors",
		Long: `Extract walks the project (or the given files and directories), extracts the
message descriptors of every source file and reports all diagnostics.

With --messages-dir every file with messages gets a JSON sidecar that mirrors
its path relative to the project root.

Examples:
  # Extract the whole project and write sidecars
  intl-extract extract --messages-dir build/messages

  # Extract one directory with a custom catalog module
  intl-extract extract src/components --module-source-name my-intl

  # Keep a manifest and only extract changed files
  intl-extract extract --incremental --messages-dir build/messages

  # Write every message of the run to one file and keep watching
  intl-extract extract --out build/messages.json --watch
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.messagesDir, "messages-dir", "", "directory for per-file JSON sidecars")
	flags.StringVar(&opts.moduleSourceName, "module-source-name", "", "catalog module whose imports are tracked (default react-intl)")
	flags.IntVar(&opts.concurrency, "concurrency", 0, "files extracted in parallel")
	flags.BoolVar(&opts.incremental, "incremental", false, "reuse results of unchanged files from the manifest")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "watch for file changes and extract them")
	flags.StringVarP(&opts.out, "out", "o", "", "write every message of the run to one JSON file")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only print errors")

	return cmd
}

// loadConfig reads the project config and applies flag overrides.
func (o *extractOptions) loadConfig(cmd *cobra.Command, root string) (*config.Config, error) {
	var loader config.Loader
	if o.configFile != "" {
		loader = config.NewFileLoader(root, o.configFile)
	} else {
		loader = config.NewLoader(root)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("messages-dir") {
		cfg.MessagesDir = o.messagesDir
	}
	if flags.Changed("module-source-name") {
		cfg.ModuleSourceName = o.moduleSourceName
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = o.concurrency
	}
	if o.incremental {
		cfg.Cache.Enabled = true
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runExtract(cmd *cobra.Command, opts *extractOptions, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, err := opts.resolveRoot()
	if err != nil {
		return err
	}
	if root, err = filepath.Abs(root); err != nil {
		return fmt.Errorf("failed to resolve project root: %w", err)
	}

	cfg, err := opts.loadConfig(cmd, root)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
	rep := newReporter(cmd.OutOrStdout(), cmd.ErrOrStderr(), root, opts.quiet, opts.noColor)
	progress := NewCLIProgressReporter(cmd.ErrOrStderr(), opts.quiet || opts.watch)

	discovery, err := runner.NewDiscovery(root, cfg.Paths.Include, cfg.Paths.Ignore)
	if err != nil {
		return err
	}
	files, err := discovery.Discover(args...)
	if err != nil {
		return err
	}
	progress.OnDiscoveryComplete(len(files))

	runOpts := runner.Options{
		Extractor: messages.Options{
			ModuleSourceName: cfg.ModuleSourceName,
			MessagesDir:      config.ResolvePath(root, cfg.MessagesDir),
			WorkingDir:       root,
			Logger:           logger,
		},
		Concurrency: cfg.Concurrency,
		Progress:    progress,
		Logger:      logger,
	}

	if cfg.Cache.Enabled {
		manifest, err := cache.OpenManifest(config.ResolvePath(root, cfg.Cache.Location))
		if err != nil {
			return err
		}
		defer manifest.Close()
		runOpts.Manifest = manifest

		if len(args) == 0 {
			if pruned, err := manifest.Prune(ctx, files); err != nil {
				logger.Warn("failed to prune manifest", "error", err)
			} else if pruned > 0 {
				logger.Debug("pruned manifest", "entries", pruned)
			}
		}
	}

	if opts.watch {
		results, err := cache.NewResultCache(0)
		if err != nil {
			return err
		}
		defer results.Close()
		runOpts.Results = results
	}

	r, err := runner.New(runOpts)
	if err != nil {
		return err
	}

	report, err := r.Run(ctx, files)
	if report == nil {
		return err
	}
	if err := finishReport(opts, root, rep, report); err != nil {
		return err
	}

	if opts.watch {
		return watchProject(ctx, cmd, opts, root, r, discovery, rep)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if report.Failed() {
		return ErrExtractionFailed
	}
	return nil
}

// finishReport prints the report and writes the aggregate file.
func finishReport(opts *extractOptions, root string, rep *reporter, report *runner.Report) error {
	rep.report(report)
	if opts.out == "" {
		return nil
	}
	if err := runner.WriteAggregate(config.ResolvePath(root, opts.out), report); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.out, err)
	}
	return nil
}

func watchProject(ctx context.Context, cmd *cobra.Command, opts *extractOptions, root string, r *runner.Runner, d *runner.Discovery, rep *reporter) error {
	w, err := watcher.New([]string{root}, watcher.Options{
		Accept:  d.Match,
		SkipDir: d.SkipDir,
		Logger:  newLogger(cmd.ErrOrStderr(), opts.verbose),
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if !opts.quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Watching for changes (Ctrl+C to stop)...")
	}

	// With --out the aggregate is rebuilt from a full run so it never holds
	// only the last batch.
	return r.Watch(ctx, w, d, func(batch *runner.Report) {
		rep.report(batch)
		if opts.out == "" {
			return
		}
		files, err := d.Discover()
		if err != nil {
			rep.errorf("failed to rediscover files: %v", err)
			return
		}
		full, err := r.Run(ctx, files)
		if full == nil {
			rep.errorf("failed to rebuild %s: %v", opts.out, err)
			return
		}
		if err := runner.WriteAggregate(config.ResolvePath(root, opts.out), full); err != nil {
			rep.errorf("failed to write %s: %v", opts.out, err)
		}
	})
}
