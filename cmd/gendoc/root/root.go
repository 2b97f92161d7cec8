package root

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/flarebyte/gendoc/cmd/gendoc/plan"
	"github.com/flarebyte/gendoc/cmd/gendoc/run"
	"github.com/flarebyte/gendoc/cmd/gendoc/version"
)

// NewRootCmd creates the root command for gendoc.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gendoc",
		Short: "Generate documentation pages from doc comments in stylesheets",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().String("log-format", "console", "Log format: console or json")

	cmd.AddCommand(version.NewCmd())
	cmd.AddCommand(run.NewCmd())
	cmd.AddCommand(plan.NewCmd())
	return cmd
}

// Execute runs the root command with provided args.
func Execute(args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

// ExecuteWith runs the root command writing to the given streams.
func ExecuteWith(args []string, stdout, stderr io.Writer) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.Execute()
}
