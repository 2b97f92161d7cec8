package version

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/flarebyte/gendoc/internal/buildinfo"
)

// NewCmd returns the `gendoc version` command.
func NewCmd() *cobra.Command {
	var flagShort, flagJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagShort || !flagJSON {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "gendoc %s\n", buildinfo.Summary())
				return err
			}
			// JSON goes to stdout, a human friendly line to stderr.
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "gendoc version: %s\n", buildinfo.Summary())
			info := buildinfo.Info()
			info["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
			return encodeJSON(cmd.OutOrStdout(), info)
		},
	}
	cmd.Flags().BoolVar(&flagShort, "short", false, "Print only the version string")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "Print detailed JSON version info")
	return cmd
}
