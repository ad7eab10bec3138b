package fsl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"
	"time"

	"github.com/msageha/aslrun/internal/model"
)

// Result is the outcome of one executed command.
type Result struct {
	Descriptor model.CommandDescriptor
	ExitCode   int
	Output     string // combined stdout+stderr, also streamed to Out
	Err        error  // start or I/O failure (not a non-zero exit)
}

// Executor runs a command sequence strictly in order, draining each
// command's output and observing its exit status before starting the next.
// By default a non-zero exit aborts the remainder of the sequence: a
// failed staging step leaves nothing useful for the main analysis to
// consume. KeepGoing restores the run-everything behavior.
type Executor struct {
	Out       io.Writer // streamed combined output; required
	Logger    *log.Logger
	KeepGoing bool

	// Resolve maps a tool name to an executable path. Defaults to
	// ResolveProgram; tests substitute their own.
	Resolve func(name string) string
}

// ExecutionError reports the first failed command of a run.
type ExecutionError struct {
	Descriptor model.CommandDescriptor
	ExitCode   int
	Err        error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Descriptor.Program, e.Err)
	}
	return fmt.Sprintf("%s: exit code %d", e.Descriptor.Program, e.ExitCode)
}

// Run executes the sequence. It returns the per-command results collected
// so far and, unless every command succeeded, an *ExecutionError for the
// first failure (even with KeepGoing, so callers can report a non-zero
// overall status).
func (e *Executor) Run(ctx context.Context, seq model.CommandSequence) ([]Result, error) {
	resolve := e.Resolve
	if resolve == nil {
		resolve = ResolveProgram
	}

	var results []Result
	var firstErr *ExecutionError
	for _, desc := range seq {
		res := e.runOne(ctx, resolve, desc)
		results = append(results, res)

		if res.Err != nil || res.ExitCode != 0 {
			if firstErr == nil {
				firstErr = &ExecutionError{Descriptor: desc, ExitCode: res.ExitCode, Err: res.Err}
			}
			if !e.KeepGoing {
				break
			}
		}
	}
	if firstErr != nil {
		return results, firstErr
	}
	return results, nil
}

func (e *Executor) runOne(ctx context.Context, resolve func(string) string, desc model.CommandDescriptor) Result {
	fmt.Fprintln(e.Out, desc.String())
	e.log("command_start program=%s args=%d", desc.Program, len(desc.Args))
	start := time.Now()

	var buf bytes.Buffer
	sink := io.MultiWriter(e.Out, &buf)

	cmd := exec.CommandContext(ctx, resolve(desc.Program), desc.Args...)
	cmd.Stdout = sink
	cmd.Stderr = sink

	err := cmd.Run()
	res := Result{Descriptor: desc, Output: buf.String()}
	switch err.(type) {
	case nil:
	case *exec.ExitError:
		// Non-zero exit: reported through ExitCode, not Err.
	default:
		res.Err = err
		res.ExitCode = -1
		e.log("command_error program=%s error=%v", desc.Program, err)
		return res
	}
	res.ExitCode = cmd.ProcessState.ExitCode()

	fmt.Fprintf(e.Out, "Return code: %d\n", res.ExitCode)
	e.log("command_exit program=%s exit=%d duration=%s",
		desc.Program, res.ExitCode, time.Since(start).Round(time.Millisecond))
	return res
}

func (e *Executor) log(format string, args ...any) {
	if e.Logger == nil {
		return
	}
	e.Logger.Printf("%s fsl_executor: %s",
		time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
}
