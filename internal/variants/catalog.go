// Package variants lists the solver variants bundled with srba-slam.
//
// Each variant is one (pose, landmark, observation) combination the backend
// was built for. Catalog order is the order --list-problems prints and the
// order FindMatch tries them.
package variants

import (
	"github.com/harrison/srbaslam/internal/models"
	"github.com/harrison/srbaslam/internal/registry"
)

// Observation tags understood by the bundled backend
const (
	ObsRangeBearing2D  = "RangeBearing_2D"
	ObsCartesian2D     = "Cartesian_2D"
	ObsRangeBearing3D  = "RangeBearing_3D"
	ObsCartesian3D     = "Cartesian_3D"
	ObsMonocularCamera = "MonocularCamera"
	ObsStereoCamera    = "StereoCamera"
)

func landmarks(pose models.PoseType, lm models.LandmarkType, obs string) models.Combination {
	return models.Combination{Pose: pose, Mode: models.ModeLandmarks, Landmarks: lm, Observation: obs}
}

func graph(pose models.PoseType) models.Combination {
	return models.Combination{Pose: pose, Mode: models.ModeGraphSLAM}
}

// Catalog returns the bundled combinations in registration order
func Catalog() []models.Combination {
	return []models.Combination{
		landmarks(models.PoseSE2, models.LandmarksEuclidean2D, ObsRangeBearing2D),
		landmarks(models.PoseSE2, models.LandmarksEuclidean2D, ObsCartesian2D),
		landmarks(models.PoseSE3, models.LandmarksEuclidean3D, ObsRangeBearing3D),
		landmarks(models.PoseSE3, models.LandmarksEuclidean3D, ObsCartesian3D),
		landmarks(models.PoseSE3, models.LandmarksEuclidean3D, ObsMonocularCamera),
		landmarks(models.PoseSE3, models.LandmarksEuclidean3D, ObsStereoCamera),
		graph(models.PoseSE2),
		graph(models.PoseSE3),
	}
}

// RegisterAll registers an exact matcher per catalog entry, all built by build
func RegisterAll(reg *registry.Registry, build registry.Factory) {
	for _, c := range Catalog() {
		reg.RegisterExact(c, build)
	}
}
