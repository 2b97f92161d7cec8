package run

import (
	"fmt"

	"github.com/flarebyte/gendoc/internal/engine"
)

const exitCodeExecErr = 1

type runExitError struct {
	code int
	msg  string
	err  error
}

func (e runExitError) Error() string { return e.msg }
func (e runExitError) ExitCode() int { return e.code }
func (e runExitError) Unwrap() error { return e.err }

// evaluateRunExit fails the run when any job failed. The message names the
// first failure in config order.
func evaluateRunExit(results []engine.Result) error {
	failed := engine.Failed(results)
	if failed == 0 {
		return nil
	}
	for _, r := range results {
		if r.Err != nil {
			return runExitError{
				code: exitCodeExecErr,
				msg:  fmt.Sprintf("%d of %d jobs failed; job %d: %v", failed, len(results), r.Index, r.Err),
				err:  r.Err,
			}
		}
	}
	return nil
}
