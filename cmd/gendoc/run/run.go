package run

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flarebyte/gendoc/internal/config"
	"github.com/flarebyte/gendoc/internal/engine"
	"github.com/flarebyte/gendoc/internal/logging"
)

type options struct {
	cfgPath string
	job     int
	workers int
}

// NewCmd returns the `gendoc run` command.
func NewCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:           "run",
		Short:         "Run the jobs defined in a config",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobs(cmd, o)
		},
	}
	cmd.Flags().StringVarP(&o.cfgPath, "config", "c", config.DefaultPath, "Path to config file (.json, .cue, .yaml)")
	cmd.Flags().IntVar(&o.job, "job", -1, "Run only the job at this index")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "Jobs run at once (default: number of CPUs)")
	return cmd
}

func runJobs(cmd *cobra.Command, o options) error {
	cfg, err := config.Load(o.cfgPath)
	if err != nil {
		return runExitError{code: exitCodeExecErr, msg: err.Error(), err: err}
	}
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	log := logging.New(logging.Options{Level: level, Format: format, Output: cmd.ErrOrStderr()})

	r := engine.NewRunner(log)
	r.Workers = o.workers
	r.Sandbox = engine.SandboxFrom(cfg.Lua)

	var results []engine.Result
	if o.job >= 0 {
		if o.job >= len(cfg.Jobs) {
			return runExitError{code: exitCodeExecErr, msg: fmt.Sprintf("job %d out of range (config has %d jobs)", o.job, len(cfg.Jobs))}
		}
		results = []engine.Result{r.RunJob(cmd.Context(), o.job, cfg.Jobs[o.job])}
	} else {
		results = r.Run(cmd.Context(), cfg.Jobs)
	}
	if err := writeSummary(cmd, results); err != nil {
		return err
	}
	return evaluateRunExit(results)
}

type jobSummary struct {
	Index int    `json:"index"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// writeSummary prints a single JSON line describing the run.
func writeSummary(cmd *cobra.Command, results []engine.Result) error {
	out := struct {
		OK   bool         `json:"ok"`
		Jobs []jobSummary `json:"jobs"`
	}{OK: engine.Failed(results) == 0, Jobs: make([]jobSummary, 0, len(results))}
	for _, r := range results {
		s := jobSummary{Index: r.Index, OK: r.Err == nil}
		if r.Err != nil {
			s.Error = r.Err.Error()
		}
		out.Jobs = append(out.Jobs, s)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
