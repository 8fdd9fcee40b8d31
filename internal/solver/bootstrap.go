package solver

import (
	"context"
	"fmt"

	"github.com/harrison/srbaslam/internal/filelock"
	"github.com/harrison/srbaslam/internal/models"
	"gopkg.in/yaml.v3"
)

// Parameters is the solver parameter file written by --cfg-file-rba-bootstrap
// and read back by the backend through --cfg-file-rba.
type Parameters struct {
	MaxTreeDepth     int     `yaml:"max_tree_depth"`
	MaxOptimizeDepth int     `yaml:"max_optimize_depth"`
	SubmapSize       int     `yaml:"submap_size"`
	MaxIters         int     `yaml:"max_iters"`
	MaxLambda        float64 `yaml:"max_lambda"`

	// Levenberg-Marquardt stop criteria
	MaxErrorPerObsToStop float64 `yaml:"max_error_per_obs_to_stop"`
	MinErrorReduction    float64 `yaml:"min_error_reduction_ratio_to_relinearize"`

	UseRobustKernel bool    `yaml:"use_robust_kernel"`
	KernelParam     float64 `yaml:"kernel_param"`

	// Edge creation policy
	MinObsToLoopClosure int `yaml:"min_obs_to_loop_closure"`
}

// DefaultParameters returns the solver defaults with the depth, submap and
// iteration knobs taken from the command-line options.
func DefaultParameters(o models.Options) Parameters {
	return Parameters{
		MaxTreeDepth:         o.MaxSpanningTreeDepth,
		MaxOptimizeDepth:     o.MaxOptimizeDepth,
		SubmapSize:           o.SubmapSize,
		MaxIters:             o.MaxIters,
		MaxLambda:            o.MaxLambda,
		MaxErrorPerObsToStop: 1e-9,
		MinErrorReduction:    0.01,
		UseRobustKernel:      true,
		KernelParam:          3,
		MinObsToLoopClosure:  6,
	}
}

// WriteBootstrap writes DefaultParameters(o) as YAML to path. The write is
// atomic and serialized with other writers of the same path.
func WriteBootstrap(ctx context.Context, path string, o models.Options) error {
	data, err := yaml.Marshal(DefaultParameters(o))
	if err != nil {
		return fmt.Errorf("failed to encode solver parameters: %w", err)
	}

	header := []byte("# srba-slam solver parameters\n")
	if err := filelock.LockAndWrite(ctx, path, append(header, data...)); err != nil {
		return fmt.Errorf("failed to write solver parameters to %s: %w", path, err)
	}
	return nil
}
