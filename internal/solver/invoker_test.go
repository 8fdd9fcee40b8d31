package solver

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/harrison/srbaslam/internal/config"
	"github.com/harrison/srbaslam/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func landmarkParams() models.Params {
	opts := models.DefaultOptions()
	opts.Dataset = "dataset1_SENSOR.txt"
	return models.Params{
		Pose:        models.PoseSE2,
		Mode:        models.ModeLandmarks,
		Landmarks:   models.LandmarksEuclidean2D,
		Observation: "RangeBearing_2D",
		Options:     opts,
	}
}

func graphParams() models.Params {
	return models.Params{
		Pose:    models.PoseSE3,
		Mode:    models.ModeGraphSLAM,
		Options: models.DefaultOptions(),
	}
}

// shInvoker runs script through sh; generated args become $1, $2, ...
func shInvoker(t *testing.T, script string) (*Invoker, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	inv := NewInvoker(config.SolverConfig{
		Command: "sh",
		Args:    []string{"-c", script, "srba-solver"},
	}, stdout, stderr)
	return inv, stdout, stderr
}

func TestNewInvoker(t *testing.T) {
	cfg := config.SolverConfig{
		Command: "/opt/srba-solver",
		Args:    []string{"--threads", "2"},
		Timeout: time.Minute,
		Env:     map[string]string{"OMP_NUM_THREADS": "2"},
	}

	inv := NewInvoker(cfg, nil, nil)

	assert.Equal(t, "/opt/srba-solver", inv.Command)
	assert.Equal(t, []string{"--threads", "2"}, inv.BaseArgs)
	assert.Equal(t, []string{"OMP_NUM_THREADS=2"}, inv.Env)
	assert.Equal(t, time.Minute, inv.Timeout)

	cfg.Args[0] = "mutated"
	assert.Equal(t, "--threads", inv.BaseArgs[0], "invoker must own its args")
}

func TestBuildArgs(t *testing.T) {
	inv := &Invoker{BaseArgs: []string{"--threads", "2"}}

	t.Run("landmarks", func(t *testing.T) {
		args := inv.BuildArgs(landmarkParams())
		require.GreaterOrEqual(t, len(args), 7)
		assert.Equal(t, []string{"--threads", "2", "--se2", "--lm-2d", "--obs", "RangeBearing_2D"}, args[:6])
		assert.Equal(t, "--dataset=dataset1_SENSOR.txt", args[6])
	})

	t.Run("graph-slam", func(t *testing.T) {
		args := inv.BuildArgs(graphParams())
		assert.Equal(t, []string{"--threads", "2", "--se3", "--graph-slam"}, args[:4])
		assert.NotContains(t, args, "--obs")
	})

	t.Run("base args untouched", func(t *testing.T) {
		inv.BuildArgs(landmarkParams())
		assert.Equal(t, []string{"--threads", "2"}, inv.BaseArgs)
	})
}

func TestOptionArgs(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		args := OptionArgs(models.DefaultOptions())

		assert.Equal(t, []string{
			"--max-fixed-feats-per-kf=0",
			"--noise=0",
			"--noise-ang=0",
			"--random-seed=-1",
			"--max-spanning-tree-depth=4",
			"--max-optimize-depth=4",
			"--max-lambda=1e+20",
			"--max-iters=20",
			"--submap-size=20",
			"--gui-delay=0",
			"--video-fps=30",
			"--verbose=1",
			"--profile-stats-length=10",
		}, args)
	})

	t.Run("strings and booleans", func(t *testing.T) {
		o := models.DefaultOptions()
		o.GTMap = "gt map.txt"
		o.NoGUI = true
		o.EvalConnectivity = true
		o.Noise = 0.25

		args := OptionArgs(o)

		assert.Contains(t, args, "--gt-map=gt map.txt")
		assert.Contains(t, args, "--no-gui")
		assert.Contains(t, args, "--eval-connectivity")
		assert.Contains(t, args, "--noise=0.25")
		assert.NotContains(t, args, "--add-noise")
	})
}

func TestInvokePropagatesExitCode(t *testing.T) {
	for _, code := range []int{0, 3, 42} {
		t.Run("exit "+strconv.Itoa(code), func(t *testing.T) {
			inv, _, _ := shInvoker(t, "exit "+strconv.Itoa(code))

			result, err := inv.Invoke(context.Background(), landmarkParams())
			require.NoError(t, err)
			assert.Equal(t, code, result.ExitCode)
			assert.NotEmpty(t, result.RunID)
		})
	}
}

func TestInvokeStreamsOutputAndArgs(t *testing.T) {
	inv, stdout, stderr := shInvoker(t, `echo "$1 $2 $3 $4"; echo "run=$SRBA_RUN_ID extra=$EXTRA"; echo oops >&2`)
	inv.Env = []string{"EXTRA=yes"}

	result, err := inv.Invoke(context.Background(), landmarkParams())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "--se2 --lm-2d --obs RangeBearing_2D", lines[0])
	assert.Equal(t, "run="+result.RunID+" extra=yes", lines[1])
	assert.Equal(t, "oops\n", stderr.String())
}

func TestInvokeTimeout(t *testing.T) {
	inv, _, _ := shInvoker(t, "exec sleep 30")
	inv.Timeout = 100 * time.Millisecond

	start := time.Now()
	_, err := inv.Invoke(context.Background(), graphParams())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 15*time.Second)
}

func TestInvokeCancelled(t *testing.T) {
	inv, _, _ := shInvoker(t, "exec sleep 30")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	_, err := inv.Invoke(ctx, graphParams())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestInvokeBackendNotFound(t *testing.T) {
	tests := []string{"srba-solver-does-not-exist", "/nonexistent/dir/srba-solver"}

	for _, command := range tests {
		t.Run(command, func(t *testing.T) {
			inv := &Invoker{Command: command}
			_, err := inv.Invoke(context.Background(), graphParams())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrBackendNotFound), "got %v", err)
		})
	}
}
