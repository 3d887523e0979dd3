package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/splash/pkg/catalog"
	"github.com/gnana997/splash/pkg/hierarchy"
	"github.com/gnana997/splash/pkg/model"
	"github.com/gnana997/splash/pkg/nodes"
)

const suggestLimit = 3

func newResolveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <input_file> <output_file>",
		Short: "Fold inherited attributes into every model",
		Long: `resolve reads a model file written by splash and writes each model with its
own attributes followed by the attributes of its ancestors, nearest first.
Parents are matched by name without the namespace qualifier. The parent key is
dropped from the output.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			models, err := model.ReadFile(args[0])
			if err != nil {
				return err
			}
			resolved := hierarchy.Resolve(models, a.config.patterns().Qualifier())
			a.logger.Debug("resolved models", "count", len(resolved))
			return model.WriteFile(args[1], resolved, a.pretty)
		},
	}
}

func newNodesCmd(a *app) *cobra.Command {
	var pkg string

	cmd := &cobra.Command{
		Use:   "nodes <input_file> <output_directory>",
		Short: "Generate a Ryven node package from a model file",
		Long: `nodes writes <output_directory>/<package>/<package>.rpc and one node
module per model that has attributes. Run it on the output of 'splash resolve'
so that every node exposes inherited attributes too.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			models, err := model.ReadFile(args[0])
			if err != nil {
				return err
			}

			gen, err := nodes.NewGenerator(nodes.Config{
				Package:    pkg,
				ValueTypes: a.config.valueTypes(),
				Qualifier:  a.config.patterns().Qualifier(),
				Logger:     a.logger,
			})
			if err != nil {
				return err
			}

			res, err := gen.Generate(models, args[1])
			if err != nil {
				return err
			}
			a.logger.Info("generated node package",
				"package", res.PackageDir,
				"nodes", len(res.NodeFiles),
				"skipped", res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&pkg, "package", "p", "", "Node package name")
	_ = cmd.MarkFlagRequired("package")
	return cmd
}

func newInspectCmd(a *app) *cobra.Command {
	var resolved bool

	cmd := &cobra.Command{
		Use:   "inspect <input_file> [model]",
		Short: "Print the models of a model file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			qs, err := catalog.LoadAndQuery(args[0], a.config.patterns().Qualifier())
			if err != nil {
				return err
			}

			if len(args) == 1 {
				models := qs.ListModels("")
				if resolved {
					models = hierarchy.NewResolver(qs).ResolveAll()
				}
				return model.PrintSummary(a.stdout, models)
			}

			name := args[1]
			m, ok := qs.GetModel(name)
			if !ok {
				msg := fmt.Sprintf("model %q not found", name)
				if hints := qs.Suggest(name, suggestLimit); len(hints) > 0 {
					msg += "; did you mean: " + strings.Join(hints, ", ")
				}
				return errors.New(msg)
			}

			shown := m.Clone()
			if resolved {
				shown, _ = hierarchy.NewResolver(qs).Model(name)
			}
			return model.PrintSummary(a.stdout, []model.Model{shown})
		},
	}
	cmd.Flags().BoolVar(&resolved, "resolved", false, "Include inherited attributes")
	return cmd
}
