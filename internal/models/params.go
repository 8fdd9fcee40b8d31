package models

import (
	"fmt"
	"strings"
)

// PoseType identifies how relative poses between keyframes are parameterized
type PoseType int

const (
	// PoseSE2 selects planar rigid transforms (x, y, yaw)
	PoseSE2 PoseType = iota + 1
	// PoseSE3 selects full 3D rigid transforms
	PoseSE3
)

// String returns the command-line spelling of the pose type
func (p PoseType) String() string {
	switch p {
	case PoseSE2:
		return "se2"
	case PoseSE3:
		return "se3"
	default:
		return "unknown"
	}
}

// ProblemMode distinguishes landmark-based RBA from relative graph-SLAM
type ProblemMode int

const (
	// ModeLandmarks is bundle adjustment over keyframes and landmarks
	ModeLandmarks ProblemMode = iota + 1
	// ModeGraphSLAM has no landmarks, only relative pose constraints
	ModeGraphSLAM
)

// String returns a short name for the problem mode
func (m ProblemMode) String() string {
	switch m {
	case ModeLandmarks:
		return "landmarks"
	case ModeGraphSLAM:
		return "graph-slam"
	default:
		return "unknown"
	}
}

// LandmarkType identifies the landmark geometry of a landmark-based problem
type LandmarkType int

const (
	// LandmarksNone is the only valid geometry in graph-SLAM mode
	LandmarksNone LandmarkType = iota
	// LandmarksEuclidean2D are 2D points relative to their base keyframe
	LandmarksEuclidean2D
	// LandmarksEuclidean3D are 3D points relative to their base keyframe
	LandmarksEuclidean3D
)

// String returns the command-line spelling of the landmark type
func (l LandmarkType) String() string {
	switch l {
	case LandmarksNone:
		return "none"
	case LandmarksEuclidean2D:
		return "lm-2d"
	case LandmarksEuclidean3D:
		return "lm-3d"
	default:
		return "unknown"
	}
}

// Combination is the part of Params that decides which variant runs
type Combination struct {
	Pose        PoseType
	Mode        ProblemMode
	Landmarks   LandmarkType
	Observation string // empty in graph-SLAM mode
}

// String renders the combination as the flags that select it,
// e.g. "--se2 --lm-2d --obs RangeBearing_2D" or "--se3 --graph-slam".
func (c Combination) String() string {
	parts := []string{"--" + c.Pose.String()}
	if c.Mode == ModeGraphSLAM {
		parts = append(parts, "--graph-slam")
		return strings.Join(parts, " ")
	}
	parts = append(parts, "--"+c.Landmarks.String())
	parts = append(parts, "--obs", c.Observation)
	return strings.Join(parts, " ")
}

// Params is the validated configuration handed to a solver variant.
// Values are only produced by the params validator after every cross-option
// rule has passed; handlers receive copies and never see a partial value.
type Params struct {
	Pose        PoseType     // Relative pose parameterization
	Mode        ProblemMode  // Landmark-based RBA or graph-SLAM
	Landmarks   LandmarkType // LandmarksNone iff Mode == ModeGraphSLAM
	Observation string       // Sensor/observation tag, empty iff Mode == ModeGraphSLAM
	Options     Options      // Opaque knobs forwarded to the variant
}

// Combination returns the variant-selecting subset of the parameters
func (p Params) Combination() Combination {
	return Combination{
		Pose:        p.Pose,
		Mode:        p.Mode,
		Landmarks:   p.Landmarks,
		Observation: p.Observation,
	}
}

// Key renders the variant-selecting flags, see Combination.String
func (p Params) Key() string {
	return p.Combination().String()
}

// CheckConsistency reports whether the combination obeys the cross-option
// rules. The validator never builds a Params for which this returns an error;
// it exists so hand-built values (tests, embedders) can be checked too.
func (p Params) CheckConsistency() error {
	if p.Pose != PoseSE2 && p.Pose != PoseSE3 {
		return fmt.Errorf("invalid pose type %d", p.Pose)
	}
	switch p.Mode {
	case ModeGraphSLAM:
		if p.Landmarks != LandmarksNone {
			return fmt.Errorf("graph-SLAM problems have no landmarks, got %s", p.Landmarks)
		}
		if p.Observation != "" {
			return fmt.Errorf("graph-SLAM problems take no observation type, got %q", p.Observation)
		}
	case ModeLandmarks:
		if p.Landmarks != LandmarksEuclidean2D && p.Landmarks != LandmarksEuclidean3D {
			return fmt.Errorf("landmark problems need a landmark type, got %s", p.Landmarks)
		}
		if p.Observation == "" {
			return fmt.Errorf("landmark problems need an observation type")
		}
	default:
		return fmt.Errorf("invalid problem mode %d", p.Mode)
	}
	return nil
}
