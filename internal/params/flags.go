// Package params turns raw command-line flags into a validated models.Params.
//
// Flags are first bound to a pflag.FlagSet with no cross-field checking.
// Validate then applies the cross-option rules in a fixed order and returns
// an Outcome: a usable configuration, a request to list the known variants,
// a help request, or the first rule violation found.
package params

import (
	"github.com/harrison/srbaslam/internal/models"
	"github.com/spf13/pflag"
)

// Flag names that take part in variant selection
const (
	FlagSE2          = "se2"
	FlagSE3          = "se3"
	FlagLM2D         = "lm-2d"
	FlagLM3D         = "lm-3d"
	FlagGraphSLAM    = "graph-slam"
	FlagObs          = "obs"
	FlagListProblems = "list-problems"
)

// RawFlags holds flag values exactly as parsed, before any validation
type RawFlags struct {
	SE2          bool
	SE3          bool
	LM2D         bool
	LM3D         bool
	GraphSLAM    bool
	Obs          string
	ListProblems bool

	// Options is filled in place by the knob flags
	Options models.Options

	// obsSet records whether --obs appeared at all, even with an empty value.
	// It is only consulted when fs is nil.
	obsSet bool
	fs     *pflag.FlagSet
}

// AddFlags declares every srba-slam flag on fs and returns the struct the
// parsed values land in. Defaults for the knobs come from models.DefaultOptions.
func AddFlags(fs *pflag.FlagSet) *RawFlags {
	r := &RawFlags{fs: fs}
	def := models.DefaultOptions()
	o := &r.Options

	// Variant selection
	fs.BoolVar(&r.SE2, FlagSE2, false, "Relative poses are SE(2)")
	fs.BoolVar(&r.SE3, FlagSE3, false, "Relative poses are SE(3)")
	fs.BoolVar(&r.LM2D, FlagLM2D, false, "Relative landmarks are Euclidean 2D points")
	fs.BoolVar(&r.LM3D, FlagLM3D, false, "Relative landmarks are Euclidean 3D points")
	fs.BoolVar(&r.GraphSLAM, FlagGraphSLAM, false, "Define a relative graph-SLAM problem (no landmarks)")
	fs.StringVar(&r.Obs, FlagObs, "", "Type of observations in the dataset (use --list-problems to see available types)")
	fs.BoolVar(&r.ListProblems, FlagListProblems, false, "List all implemented problem types and exit")

	// Inputs
	fs.StringVarP(&o.Dataset, "dataset", "d", "", "Dataset file (e.g. 'dataset1_SENSOR.txt')")
	fs.StringVar(&o.GTMap, "gt-map", "", "Ground-truth landmark map file (e.g. 'dataset1_GT_MAP.txt')")
	fs.StringVar(&o.GTPath, "gt-path", "", "Ground-truth robot path file (e.g. 'dataset1_GT_PATH.txt')")
	fs.StringVar(&o.SensorCfg, "sensor-params-cfg-file", "", "Config file from where to load the sensor parameters")

	// Problem construction
	fs.IntVar(&o.MaxFixedFeatsPerKF, "max-fixed-feats-per-kf", 0, "Create fixed & known-location features")
	fs.BoolVar(&o.AddNoise, "add-noise", false, "Add AWG noise to the dataset")
	fs.Float64Var(&o.Noise, "noise", 0, "One sigma of the noise model of linear observation components (0: sensor default)")
	fs.Float64Var(&o.NoiseAng, "noise-ang", 0, "One sigma of the noise model of angular observation components, in degrees (0: sensor default)")
	fs.IntVar(&o.RandomSeed, "random-seed", def.RandomSeed, "<0: randomize; >=0: use this random seed")

	// Solver
	fs.IntVar(&o.MaxSpanningTreeDepth, "max-spanning-tree-depth", def.MaxSpanningTreeDepth, "Overrides this parameter in config files")
	fs.IntVar(&o.MaxOptimizeDepth, "max-optimize-depth", def.MaxOptimizeDepth, "Overrides this parameter in config files")
	fs.Float64Var(&o.MaxLambda, "max-lambda", def.MaxLambda, "Levenberg-Marquardt: maximum lambda to stop iterating")
	fs.IntVar(&o.MaxIters, "max-iters", def.MaxIters, "Max. number of optimization iterations")
	fs.IntVar(&o.SubmapSize, "submap-size", def.SubmapSize, "Number of KFs in each 'submap' of the arc-creation policy")
	fs.StringVar(&o.RBACfgFile, "cfg-file-rba", "", "Config file for the RBA parameters")
	fs.StringVar(&o.RBACfgBootstrap, "cfg-file-rba-bootstrap", "", "Write a default config file for the RBA parameters and exit")

	// GUI and video
	fs.BoolVar(&o.NoGUI, "no-gui", false, "Don't show the live gui")
	fs.BoolVar(&o.StepByStep, "step-by-step", false, "If showing the gui, go step by step")
	fs.IntVar(&o.GUIDelayMs, "gui-delay", 0, "Milliseconds of delay between GUI frames")
	fs.StringVar(&o.Video, "create-video", "", "Create a video with the animated GUI output (*.avi)")
	fs.Float64Var(&o.VideoFPS, "video-fps", def.VideoFPS, "If creating a video, its FPS (Hz)")

	// Outputs and evaluation
	fs.IntVarP(&o.Verbose, "verbose", "v", def.Verbose, "0: quiet, 1: informative, 2: tons of info")
	fs.StringVar(&o.ProfileStats, "profile-stats", "", "Generate profile stats to CSV files, with the given prefix")
	fs.IntVar(&o.ProfileStatsLength, "profile-stats-length", def.ProfileStatsLength, "Length in KFs of each saved profiled segment")
	fs.BoolVar(&o.DebugDumpSpanTree, "debug-dump-cur-spantree", false, "Dump to files the current spanning tree")
	fs.StringVar(&o.SaveFinalGraph, "save-final-graph", "", "Save the final graph-map of KFs to a .dot file")
	fs.StringVar(&o.SaveFinalGraphLandmarks, "save-final-graph-landmarks", "", "Save the final graph-map (all KFs and all landmarks) to a .dot file")
	fs.BoolVar(&o.EvalOverallSqrError, "eval-overall-sqr-error", false, "At end, evaluate the overall square error for all observations")
	fs.BoolVar(&o.EvalOverallSE3Error, "eval-overall-se3-error", false, "At end, evaluate the overall SE3 error for all relative poses")
	fs.BoolVar(&o.EvalConnectivity, "eval-connectivity", false, "At end, make stats on the graph connectivity")

	return r
}

// ObsSet reports whether --obs was given on the command line.
// An explicit empty value (--obs "") still counts as given.
func (r *RawFlags) ObsSet() bool {
	if r.fs != nil {
		return r.fs.Changed(FlagObs)
	}
	return r.obsSet || r.Obs != ""
}

// SetObs marks --obs as given. It is meant for RawFlags built without a flag set.
func (r *RawFlags) SetObs(tag string) {
	r.Obs = tag
	r.obsSet = true
}
