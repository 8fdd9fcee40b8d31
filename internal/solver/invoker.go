// Package solver runs a selected RBA variant by starting the external
// solver backend, and writes default solver parameter files on request.
package solver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/srbaslam/internal/config"
	"github.com/harrison/srbaslam/internal/models"
)

// RunIDEnv carries the run id to the backend process
const RunIDEnv = "SRBA_RUN_ID"

// interruptGrace is how long the backend gets to exit after SIGINT before it is killed
const interruptGrace = 5 * time.Second

var (
	// ErrTimeout is returned when the backend outlives the configured timeout
	ErrTimeout = errors.New("solver timed out")

	// ErrBackendNotFound is returned when the backend executable cannot be started
	ErrBackendNotFound = errors.New("solver backend not found")
)

// Invoker starts the solver backend process
type Invoker struct {
	Command  string
	BaseArgs []string
	Env      []string // extra KEY=VALUE entries
	Timeout  time.Duration

	Stdout io.Writer
	Stderr io.Writer
}

// InvocationResult captures how the backend run ended
type InvocationResult struct {
	RunID    string
	Args     []string
	ExitCode int
	Duration time.Duration
}

// NewInvoker creates an Invoker from the solver section of the config,
// streaming backend output to stdout and stderr.
func NewInvoker(cfg config.SolverConfig, stdout, stderr io.Writer) *Invoker {
	return &Invoker{
		Command:  cfg.Command,
		BaseArgs: append([]string(nil), cfg.Args...),
		Env:      cfg.Environ(nil),
		Timeout:  cfg.Timeout,
		Stdout:   stdout,
		Stderr:   stderr,
	}
}

// BuildArgs constructs the backend argument vector: the configured base
// args, the variant-selecting flags, then every option in a fixed order.
func (inv *Invoker) BuildArgs(p models.Params) []string {
	args := append([]string(nil), inv.BaseArgs...)
	args = append(args, "--"+p.Pose.String())
	if p.Mode == models.ModeGraphSLAM {
		args = append(args, "--graph-slam")
	} else {
		args = append(args, "--"+p.Landmarks.String(), "--obs", p.Observation)
	}
	return append(args, OptionArgs(p.Options)...)
}

// OptionArgs renders options as --name=value flags. Numeric knobs are always
// present; strings only when set; booleans only when true.
func OptionArgs(o models.Options) []string {
	var args []string
	str := func(name, v string) {
		if v != "" {
			args = append(args, "--"+name+"="+v)
		}
	}
	flag := func(name string, v bool) {
		if v {
			args = append(args, "--"+name)
		}
	}
	num := func(name string, v int) {
		args = append(args, "--"+name+"="+strconv.Itoa(v))
	}
	float := func(name string, v float64) {
		args = append(args, "--"+name+"="+strconv.FormatFloat(v, 'g', -1, 64))
	}

	str("dataset", o.Dataset)
	str("gt-map", o.GTMap)
	str("gt-path", o.GTPath)
	str("sensor-params-cfg-file", o.SensorCfg)

	num("max-fixed-feats-per-kf", o.MaxFixedFeatsPerKF)
	flag("add-noise", o.AddNoise)
	float("noise", o.Noise)
	float("noise-ang", o.NoiseAng)
	num("random-seed", o.RandomSeed)

	num("max-spanning-tree-depth", o.MaxSpanningTreeDepth)
	num("max-optimize-depth", o.MaxOptimizeDepth)
	float("max-lambda", o.MaxLambda)
	num("max-iters", o.MaxIters)
	num("submap-size", o.SubmapSize)
	str("cfg-file-rba", o.RBACfgFile)

	flag("no-gui", o.NoGUI)
	flag("step-by-step", o.StepByStep)
	num("gui-delay", o.GUIDelayMs)
	str("create-video", o.Video)
	float("video-fps", o.VideoFPS)

	num("verbose", o.Verbose)
	str("profile-stats", o.ProfileStats)
	num("profile-stats-length", o.ProfileStatsLength)
	flag("debug-dump-cur-spantree", o.DebugDumpSpanTree)
	str("save-final-graph", o.SaveFinalGraph)
	str("save-final-graph-landmarks", o.SaveFinalGraphLandmarks)
	flag("eval-overall-sqr-error", o.EvalOverallSqrError)
	flag("eval-overall-se3-error", o.EvalOverallSE3Error)
	flag("eval-connectivity", o.EvalConnectivity)

	return args
}

// Invoke runs the backend for p and waits for it to exit.
// A non-zero exit code is a normal result, not an error. Errors are returned
// when the process cannot be started, times out, or is cancelled.
func (inv *Invoker) Invoke(ctx context.Context, p models.Params) (*InvocationResult, error) {
	result := &InvocationResult{
		RunID: uuid.New().String(),
		Args:  inv.BuildArgs(p),
	}

	runCtx := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, inv.Command, result.Args...)
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr
	cmd.Env = append(os.Environ(), inv.Env...)
	cmd.Env = append(cmd.Env, RunIDEnv+"="+result.RunID)
	// Let the backend flush its outputs before it is killed
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = interruptGrace

	start := time.Now()
	err := cmd.Run()
	result.Duration = time.Since(start)

	if err == nil {
		return result, nil
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return result, fmt.Errorf("%w: %s: %v", ErrBackendNotFound, inv.Command, err)
	}

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		return result, fmt.Errorf("%w after %v", ErrTimeout, inv.Timeout)
	case ctx.Err() != nil:
		return result, fmt.Errorf("solver run cancelled: %w", ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		if result.ExitCode < 0 {
			return result, fmt.Errorf("solver terminated: %w", err)
		}
		return result, nil
	}

	return result, fmt.Errorf("failed to run solver: %w", err)
}
