package main

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gnana997/splash/pkg/indexer"
	"github.com/gnana997/splash/pkg/mcp"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		flags   scanFlags
		watch   bool
		callLog string
	)

	cmd := &cobra.Command{
		Use:   "serve <root>",
		Short: "Serve the models of a source tree over MCP (stdio)",
		Long: `serve scans root and answers Model Context Protocol requests on stdin and
stdout. Tools: list_models, get_model, search_attributes and extract_file.
With --watch the index follows changes to the sources. Logs go to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			scanner, release, err := a.newScanner()
			if err != nil {
				return err
			}
			defer release()

			opts := flags.options(a.config)
			if err := a.scan(cmd.Context(), scanner, root, opts); err != nil {
				return err
			}

			calls, err := mcp.OpenCallLog(callLog)
			if err != nil {
				return err
			}
			if calls != nil {
				defer calls.Close()
			}

			srv, err := mcp.NewServer(mcp.Config{
				Scanner:   scanner,
				Root:      root,
				Qualifier: a.config.patterns().Qualifier(),
				CallLog:   calls,
				Logger:    a.logger,
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			g, ctx := errgroup.WithContext(ctx)

			if watch {
				watchOpts := indexer.DefaultWatchOptions()
				watchOpts.Scan = opts
				watcher, err := indexer.NewFileWatcher(scanner, watchOpts, a.logger)
				if err != nil {
					return err
				}
				if err := watcher.Start(root); err != nil {
					return err
				}
				g.Go(func() error {
					<-ctx.Done()
					return watcher.Stop()
				})
			}

			g.Go(func() error {
				// Closing stdin ends the session and the watcher with it.
				defer cancel()
				err := srv.Serve(ctx, a.stdin, a.stdout)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})

			a.logger.Info("serving models over stdio", "root", root, "watch", watch)
			return g.Wait()
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&watch, "watch", false, "Re-extract sources as they change")
	cmd.Flags().StringVar(&callLog, "call-log", "", "Append a JSON line per tool call to this file")
	return cmd
}
