package main

import (
	"github.com/spf13/cobra"

	"github.com/gnana997/splash/pkg/ast"
)

func newDumpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <source> <artifact>",
		Short: "Parse a C++ source file and save it as an AST artifact",
		Long: `dump parses a C/C++ source file and writes the lowered translation unit as
a JSON artifact. The artifact can be passed to splash instead of the source;
literal text is still read from the source file it names.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := a.newLoader()
			if err != nil {
				return err
			}
			defer loader.Close()

			tu, err := loader.LoadContext(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := ast.WriteArtifactFile(args[1], tu); err != nil {
				return err
			}

			a.logger.Info("wrote AST artifact",
				"source", tu.MainFile(),
				"artifact", args[1],
				"cursors", tu.Len())
			return nil
		},
	}
}

func newTreeCmd(a *app) *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "tree <input>",
		Short: "Print the cursor tree of a source file or AST artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := a.newLoader()
			if err != nil {
				return err
			}
			defer loader.Close()

			tu, err := loader.LoadContext(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return ast.Fprint(a.stdout, tu.Root(), depth)
		},
	}
	cmd.Flags().IntVar(&depth, "depth", -1, "Maximum depth to print (-1 prints everything)")
	return cmd
}
