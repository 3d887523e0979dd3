package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gnana997/splash/pkg/ast"
	"github.com/gnana997/splash/pkg/extractor"
	"github.com/gnana997/splash/pkg/frontend"
	"github.com/gnana997/splash/pkg/indexer"
	"github.com/gnana997/splash/pkg/model"
	"github.com/gnana997/splash/pkg/util"
)

const version = "0.1.0-dev"

var (
	errMissingInput  = errors.New("AST File Path hasn't been specified.")
	errMissingOutput = errors.New("Output File Path hasn't been specified.")
)

// app carries the global flags and the state shared by all commands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	debug      bool
	pretty     bool
	logFormat  string
	configPath string

	logger *slog.Logger
	config *ProjectConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := newRootCmd(a)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, errorMessage(err))
		return 1
	}
	return 0
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, errMissingInput), errors.Is(err, errMissingOutput):
		return err.Error()
	case errors.Is(err, ast.ErrLoad):
		return "Cannot create translation unit."
	default:
		return "Error: " + err.Error()
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "splash <ast_file_path> <output_file>",
		Short: "Extract simulation model descriptions from C++ sources",
		Long: `splash finds every class defining GetTypeId in an ns-3 style C++ source
(or a saved AST artifact) and writes its name, parent and attributes as JSON.

The input is either a C/C++ source file, parsed on the fly, or an AST
artifact (.ast, .ast.json) written by 'splash dump'.`,
		Example: `  splash src/network/utils/drop-tail-queue.cc models.json
  splash -d queue.ast.json models.json
  splash scan ~/ns-3 models.json`,
		Version:           version,
		Args:              cobra.MaximumNArgs(2),
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.runExtract,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetVersionTemplate("{{.Version}}\n")
	root.SetGlobalNormalizationFunc(dashedFlags)

	root.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "Show debug messages")
	root.PersistentFlags().BoolVar(&a.pretty, "pretty", false, "Indent JSON output")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", string(util.FormatText), "Log format (text|json)")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default: "+defaultConfigPath+")")

	root.AddCommand(
		newDumpCmd(a),
		newTreeCmd(a),
		newScanCmd(a),
		newWatchCmd(a),
		newResolveCmd(a),
		newNodesCmd(a),
		newInspectCmd(a),
		newServeCmd(a),
	)
	return root
}

// dashedFlags accepts --log_format for --log-format.
func dashedFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// setup builds the logger and loads the project configuration before any
// command runs.
func (a *app) setup(_ *cobra.Command, _ []string) error {
	format, err := util.ParseLogFormat(a.logFormat)
	if err != nil {
		return err
	}
	level := util.LevelInfo
	if a.debug {
		level = util.LevelDebug
	}
	a.logger = util.NewLogger(util.LoggerConfig{Level: level, Format: format, Output: a.stderr})

	cfg, err := loadProjectConfig(a.configPath)
	if err != nil {
		return err
	}
	a.config = cfg
	return nil
}

func (a *app) runExtract(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return errMissingInput
	}
	if len(args) < 2 {
		return errMissingOutput
	}
	input, output := args[0], args[1]

	loader, err := a.newLoader()
	if err != nil {
		return err
	}
	defer loader.Close()

	ext, err := a.newExtractor(loader)
	if err != nil {
		return err
	}

	result, err := ext.ExtractFile(cmd.Context(), input)
	if err != nil {
		a.logger.Debug("loading translation unit failed", "input", input, "error", err)
		return err
	}

	if a.debug {
		if err := model.PrintSummary(a.stdout, result.Models); err != nil {
			return err
		}
	}
	a.logger.Debug("exporting models", "count", len(result.Models), "output", output)
	return model.WriteFile(output, result.Models, a.pretty)
}

func (a *app) newLoader() (*frontend.Loader, error) {
	types, err := a.config.classifier()
	if err != nil {
		return nil, err
	}
	return frontend.NewLoader(frontend.LoaderConfig{
		Types:      types,
		Namespaces: []string{a.config.patterns().Namespace},
		Logger:     a.logger,
	})
}

func (a *app) newExtractor(loader extractor.UnitLoader) (*extractor.Extractor, error) {
	return extractor.New(extractor.Config{
		Patterns: a.config.patterns(),
		Loader:   loader,
		Logger:   a.logger,
	})
}

// newScanner wires a loader, an extractor and an empty index. The returned
// function releases the loader.
func (a *app) newScanner() (*indexer.WorkspaceScanner, func(), error) {
	loader, err := a.newLoader()
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := loader.Close(); err != nil {
			a.logger.Warn("closing loader", "error", err)
		}
	}

	ext, err := a.newExtractor(loader)
	if err != nil {
		release()
		return nil, nil, err
	}

	idx, err := indexer.NewModelIndex(indexer.DefaultModelIndexConfig(), a.logger)
	if err != nil {
		release()
		return nil, nil, err
	}
	return indexer.NewWorkspaceScanner(ext, idx, a.logger), release, nil
}
