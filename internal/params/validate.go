package params

import (
	"errors"
	"fmt"
	"io"

	"github.com/harrison/srbaslam/internal/models"
	"github.com/spf13/pflag"
)

// OutcomeKind enumerates the results of validating the arguments
type OutcomeKind int

const (
	// OutcomeSuccess carries a fully validated Params
	OutcomeSuccess OutcomeKind = iota
	// OutcomeList asks for the registered variants to be listed; not an error
	OutcomeList
	// OutcomeHelp asks for usage text; not an error
	OutcomeHelp
	// OutcomeFailure carries the first rule violation
	OutcomeFailure
)

// String returns the outcome name used in logs
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeList:
		return "list"
	case OutcomeHelp:
		return "help"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of Validate or Parse.
// Params is only meaningful for OutcomeSuccess, Err only for OutcomeFailure,
// Usage only for OutcomeHelp.
type Outcome struct {
	Kind   OutcomeKind
	Params models.Params
	Err    error
	Usage  string
}

// Failed wraps err as a failure outcome
func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeFailure, Err: err}
}

// Validate applies the cross-option rules to the parsed flags.
//
// --list-problems short-circuits before any rule is checked. Otherwise the
// rules run in order (observation tag, pose, landmarks, knob ranges) and the
// first violation is returned; a Params is only built when all pass.
func (r *RawFlags) Validate() Outcome {
	if r.ListProblems {
		return Outcome{Kind: OutcomeList}
	}

	if err := r.checkObservation(); err != nil {
		return Failed(err)
	}
	if err := r.checkPose(); err != nil {
		return Failed(err)
	}
	if err := r.checkLandmarks(); err != nil {
		return Failed(err)
	}
	if err := checkOptions(r.Options); err != nil {
		return Failed(err)
	}

	return Outcome{Kind: OutcomeSuccess, Params: r.build()}
}

func (r *RawFlags) checkObservation() error {
	obsSet := r.ObsSet()
	// An empty tag selects nothing, so landmark problems treat it as absent
	if !r.GraphSLAM && (!obsSet || r.Obs == "") {
		e := newValidationError(RuleObservation, "argument --obs is mandatory (in non-graph-SLAM) to select the type of observations")
		e.Hint = usageHint
		return e
	}
	if obsSet && r.GraphSLAM {
		e := newValidationError(RuleObservation, "argument --obs doesn't apply to relative graph-SLAM")
		e.Hint = usageHint
		return e
	}
	return nil
}

func (r *RawFlags) checkPose() error {
	if r.SE2 == r.SE3 {
		return newValidationError(RulePose, "exactly one of --se2 or --se3 flags must be set")
	}
	return nil
}

func (r *RawFlags) checkLandmarks() error {
	if r.GraphSLAM {
		if r.LM2D || r.LM3D {
			return newValidationError(RuleLandmarks, "--lm-2d and --lm-3d don't apply to relative graph-SLAM")
		}
		return nil
	}
	if r.LM2D == r.LM3D {
		return newValidationError(RuleLandmarks, "exactly one of --lm-2d or --lm-3d or --graph-slam flags must be set")
	}
	return nil
}

// checkOptions rejects knob values no variant could make sense of
func checkOptions(o models.Options) error {
	nonNegative := []struct {
		flag  string
		value int
	}{
		{"max-fixed-feats-per-kf", o.MaxFixedFeatsPerKF},
		{"max-spanning-tree-depth", o.MaxSpanningTreeDepth},
		{"max-optimize-depth", o.MaxOptimizeDepth},
		{"max-iters", o.MaxIters},
		{"submap-size", o.SubmapSize},
		{"profile-stats-length", o.ProfileStatsLength},
		{"gui-delay", o.GUIDelayMs},
	}
	for _, nn := range nonNegative {
		if nn.value < 0 {
			return newValidationError(RuleOption, "--%s must be >= 0, got %d", nn.flag, nn.value)
		}
	}

	if o.Noise < 0 {
		return newValidationError(RuleOption, "--noise must be >= 0, got %g", o.Noise)
	}
	if o.NoiseAng < 0 {
		return newValidationError(RuleOption, "--noise-ang must be >= 0, got %g", o.NoiseAng)
	}
	if o.MaxLambda <= 0 {
		return newValidationError(RuleOption, "--max-lambda must be > 0, got %g", o.MaxLambda)
	}
	if o.VideoFPS <= 0 {
		return newValidationError(RuleOption, "--video-fps must be > 0, got %g", o.VideoFPS)
	}
	if o.Verbose < 0 || o.Verbose > 2 {
		return newValidationError(RuleOption, "--verbose must be 0, 1 or 2, got %d", o.Verbose)
	}
	return nil
}

// build assembles the Params once every rule has passed
func (r *RawFlags) build() models.Params {
	p := models.Params{
		Pose:    models.PoseSE2,
		Options: r.Options,
	}
	if r.SE3 {
		p.Pose = models.PoseSE3
	}

	if r.GraphSLAM {
		p.Mode = models.ModeGraphSLAM
		p.Landmarks = models.LandmarksNone
		return p
	}

	p.Mode = models.ModeLandmarks
	p.Landmarks = models.LandmarksEuclidean2D
	if r.LM3D {
		p.Landmarks = models.LandmarksEuclidean3D
	}
	p.Observation = r.Obs
	return p
}

// NewFlagSet returns an empty flag set configured the way Parse uses it
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	return fs
}

// Parse parses args with a fresh flag set and validates the result, for
// callers that do not go through the cobra command.
// Syntax errors become RuleSyntax failures; -h/--help becomes OutcomeHelp.
func Parse(args []string) Outcome {
	fs := NewFlagSet("srba-slam")
	raw := AddFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Outcome{Kind: OutcomeHelp, Usage: Usage()}
		}
		return Failed(newValidationError(RuleSyntax, "%v", err))
	}
	if fs.NArg() > 0 {
		return Failed(newValidationError(RuleSyntax, "unexpected argument %q", fs.Arg(0)))
	}

	return raw.Validate()
}

// Usage returns the help text of every flag AddFlags declares
func Usage() string {
	fs := NewFlagSet("srba-slam")
	AddFlags(fs)
	return fmt.Sprintf("Usage:\n  srba-slam [flags]\n\nFlags:\n%s", fs.FlagUsages())
}
