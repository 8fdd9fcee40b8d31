package models

// Option defaults shared by the flag declarations and DefaultOptions
const (
	DefaultProfileStatsLength   = 10
	DefaultMaxSpanningTreeDepth = 4
	DefaultMaxOptimizeDepth     = 4
	DefaultMaxLambda            = 1e20
	DefaultMaxIters             = 20
	DefaultSubmapSize           = 20
	DefaultVerbose              = 1
	DefaultRandomSeed           = -1
	DefaultVideoFPS             = 30.0
)

// Options carries every knob the dispatcher does not interpret.
// The selected variant decides what each one means.
type Options struct {
	// Input datasets
	Dataset   string // Sensor dataset file (e.g. dataset1_SENSOR.txt)
	GTMap     string // Ground-truth landmark map file
	GTPath    string // Ground-truth robot path file
	SensorCfg string // Config file with the sensor parameters

	// Problem construction
	MaxFixedFeatsPerKF int     // Fixed, known-location features created per keyframe
	AddNoise           bool    // Add AWG noise to the dataset
	Noise              float64 // One sigma of linear observation components (0 = sensor default)
	NoiseAng           float64 // One sigma of angular components, in degrees (0 = sensor default)
	RandomSeed         int     // <0 randomize, >=0 fixed seed

	// Solver
	MaxSpanningTreeDepth int     // Overrides the solver config file
	MaxOptimizeDepth     int     // Overrides the solver config file
	MaxLambda            float64 // Levenberg-Marquardt lambda at which iteration stops
	MaxIters             int     // Maximum optimization iterations
	SubmapSize           int     // Keyframes per submap in the edge-creation policy
	RBACfgFile           string  // Solver parameter file to load
	RBACfgBootstrap      string  // Write a default solver parameter file here and exit

	// GUI and video
	NoGUI      bool    // Don't show the live GUI
	StepByStep bool    // Step through the GUI one keyframe at a time
	GUIDelayMs int     // Delay between GUI frames in milliseconds
	Video      string  // Record the GUI to this video file
	VideoFPS   float64 // Frame rate of the recorded video

	// Outputs and evaluation
	Verbose                 int    // 0 quiet, 1 informative, 2 everything
	ProfileStats            string // Prefix of profile statistics CSV files
	ProfileStatsLength      int    // Keyframes per profiled segment
	DebugDumpSpanTree       bool   // Dump the current spanning tree to files
	SaveFinalGraph          string // Keyframe graph .dot output
	SaveFinalGraphLandmarks string // Keyframe and landmark graph .dot output
	EvalOverallSqrError     bool   // Evaluate overall squared error at the end
	EvalOverallSE3Error     bool   // Evaluate overall SE3 error at the end
	EvalConnectivity        bool   // Collect graph connectivity statistics at the end
}

// DefaultOptions returns the options used when no knob flag is given
func DefaultOptions() Options {
	return Options{
		RandomSeed:           DefaultRandomSeed,
		MaxSpanningTreeDepth: DefaultMaxSpanningTreeDepth,
		MaxOptimizeDepth:     DefaultMaxOptimizeDepth,
		MaxLambda:            DefaultMaxLambda,
		MaxIters:             DefaultMaxIters,
		SubmapSize:           DefaultSubmapSize,
		VideoFPS:             DefaultVideoFPS,
		Verbose:              DefaultVerbose,
		ProfileStatsLength:   DefaultProfileStatsLength,
	}
}
