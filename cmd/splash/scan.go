package main

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/gnana997/splash/pkg/indexer"
	"github.com/gnana997/splash/pkg/model"
)

type scanFlags struct {
	workers int
	include []string
	exclude []string
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.workers, "workers", "j", 0, "Parallel extraction workers (default: number of CPUs)")
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "Include glob, relative to the root (repeatable)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Exclude glob, relative to the root (repeatable)")
}

// options layers the flags over the config file over the defaults.
func (f *scanFlags) options(cfg *ProjectConfig) indexer.ScanOptions {
	opts := cfg.scanOptions()
	if len(f.include) > 0 {
		opts.Include = f.include
	}
	if len(f.exclude) > 0 {
		opts.Exclude = f.exclude
	}
	if f.workers > 0 {
		opts.MaxWorkers = f.workers
	}
	return opts
}

func newScanCmd(a *app) *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan <root> <output_file>",
		Short: "Extract the models of every C++ source under a directory",
		Long: `scan discovers C++ sources under root, extracts each file in parallel and
writes all models to one JSON file, ordered by file path and then by position
in the file. Files that cannot be parsed are reported and skipped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scanner, release, err := a.newScanner()
			if err != nil {
				return err
			}
			defer release()

			if err := a.scan(cmd.Context(), scanner, args[0], flags.options(a.config)); err != nil {
				return err
			}
			return model.WriteFile(args[1], scanner.Index().AllModels(), a.pretty)
		},
	}
	flags.register(cmd)
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var (
		flags    scanFlags
		debounce int
	)

	cmd := &cobra.Command{
		Use:   "watch <root> <output_file>",
		Short: "Scan a directory and rewrite the output whenever a source changes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, output := args[0], args[1]

			scanner, release, err := a.newScanner()
			if err != nil {
				return err
			}
			defer release()

			opts := flags.options(a.config)
			if err := a.scan(cmd.Context(), scanner, root, opts); err != nil {
				return err
			}

			var mu sync.Mutex
			write := func() error {
				mu.Lock()
				defer mu.Unlock()
				return model.WriteFile(output, scanner.Index().AllModels(), a.pretty)
			}
			if err := write(); err != nil {
				return err
			}

			watchOpts := indexer.DefaultWatchOptions()
			watchOpts.Scan = opts
			if debounce > 0 {
				watchOpts.DebounceMs = debounce
			}
			watchOpts.OnUpdate = func(path string) {
				if err := write(); err != nil {
					a.logger.Error("writing output failed", "output", output, "error", err)
					return
				}
				a.logger.Info("output updated", "changed", path, "output", output)
			}

			watcher, err := indexer.NewFileWatcher(scanner, watchOpts, a.logger)
			if err != nil {
				return err
			}
			if err := watcher.Start(root); err != nil {
				return err
			}
			a.logger.Info("watching for changes", "root", root)

			<-cmd.Context().Done()
			return watcher.Stop()
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&debounce, "debounce", 0, "Milliseconds to wait for writes to settle (default: 200)")
	return cmd
}

// scan runs an initial workspace scan and reports per-file failures.
func (a *app) scan(ctx context.Context, scanner *indexer.WorkspaceScanner, root string, opts indexer.ScanOptions) error {
	stats, err := scanner.ScanWorkspace(ctx, root, opts)
	if err != nil {
		return err
	}

	for _, fe := range stats.Errors {
		a.logger.Warn("extraction failed", "file", fe.FilePath, "error", fe.Error)
	}
	a.logger.Info("scan complete",
		"root", root,
		"files", stats.FilesProcessed,
		"failed", stats.FilesFailed,
		"models", stats.ModelsExtracted,
		"attributes", stats.AttributesExtracted,
		"workers", stats.WorkerCount,
		"duration_ms", stats.TotalTimeMs)
	return nil
}
