package plan

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flarebyte/gendoc/internal/config"
	"github.com/flarebyte/gendoc/internal/engine"
)

// JobPlan describes the pipeline a job would run.
type JobPlan struct {
	Index      int      `json:"index" yaml:"index"`
	Source     string   `json:"source" yaml:"source"`
	Gitignore  bool     `json:"gitignore" yaml:"gitignore"`
	Stages     []string `json:"stages" yaml:"stages"`
	Template   string   `json:"template" yaml:"template"`
	Extension  string   `json:"extension" yaml:"extension"`
	OutputFile string   `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
	OutputDir  string   `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`
}

// NewCmd returns the `gendoc plan` command.
func NewCmd() *cobra.Command {
	var (
		cfgPath string
		format  string
	)
	cmd := &cobra.Command{
		Use:           "plan",
		Short:         "Print the stages each job would run, without running them",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), format, Build(cfg))
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "Path to config file (.json, .cue, .yaml)")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json (one line per job) or yaml")
	return cmd
}

// Build returns the plan of every job in config order.
func Build(cfg config.Config) []JobPlan {
	plans := make([]JobPlan, 0, len(cfg.Jobs))
	for i, j := range cfg.Jobs {
		plans = append(plans, JobPlan{
			Index:      i,
			Source:     j.SourceFiles,
			Gitignore:  j.Gitignore,
			Stages:     engine.Plan(j),
			Template:   j.Template,
			Extension:  engine.OutputExtension(j),
			OutputFile: j.OutputFile,
			OutputDir:  j.OutputDir,
		})
	}
	return plans
}

func write(w io.Writer, format string, plans []JobPlan) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		for _, p := range plans {
			if err := enc.Encode(p); err != nil {
				return err
			}
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plans); err != nil {
			_ = enc.Close()
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %q (expected json or yaml)", format)
	}
}
