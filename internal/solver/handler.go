package solver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/harrison/srbaslam/internal/logger"
	"github.com/harrison/srbaslam/internal/models"
	"github.com/harrison/srbaslam/internal/registry"
)

// ErrNoDataset is returned when a solve is requested without --dataset
var ErrNoDataset = errors.New("missing mandatory argument --dataset")

// Handler is the registry.Handler shared by every bundled variant
type Handler struct {
	Invoker *Invoker
	Logger  logger.Logger
}

// NewHandler creates a Handler. A nil logger discards messages.
func NewHandler(inv *Invoker, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Handler{Invoker: inv, Logger: log}
}

// Factory returns a registry.Factory that hands out h for every accepted configuration
func (h *Handler) Factory() registry.Factory {
	return func(models.Params) registry.Handler {
		return h
	}
}

// Run either bootstraps a solver parameter file or solves the dataset.
// The returned code is the backend's exit code.
func (h *Handler) Run(ctx context.Context, p models.Params) (int, error) {
	if path := p.Options.RBACfgBootstrap; path != "" {
		if err := WriteBootstrap(ctx, path, p.Options); err != nil {
			return 1, err
		}
		h.Logger.LogInfo(fmt.Sprintf("Wrote default solver parameters to %s", path))
		return 0, nil
	}

	if err := checkInputs(p.Options); err != nil {
		return 1, err
	}

	if h.Invoker == nil {
		return 1, fmt.Errorf("no solver backend configured")
	}

	h.Logger.LogDebug(fmt.Sprintf("Starting %s %s", h.Invoker.Command, strings.Join(h.Invoker.BuildArgs(p), " ")))

	result, err := h.Invoker.Invoke(ctx, p)
	if err != nil {
		return 1, err
	}
	h.Logger.LogDebug(fmt.Sprintf("Solver run %s exited with code %d", result.RunID, result.ExitCode))
	return result.ExitCode, nil
}

// checkInputs verifies the dataset and every optional input file exist
func checkInputs(o models.Options) error {
	if o.Dataset == "" {
		return ErrNoDataset
	}

	inputs := []struct{ flag, path string }{
		{"--dataset", o.Dataset},
		{"--gt-map", o.GTMap},
		{"--gt-path", o.GTPath},
		{"--sensor-params-cfg-file", o.SensorCfg},
		{"--cfg-file-rba", o.RBACfgFile},
	}
	for _, in := range inputs {
		if in.path == "" {
			continue
		}
		info, err := os.Stat(in.path)
		if err != nil {
			return fmt.Errorf("%s: cannot open %s: %w", in.flag, in.path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("%s: %s is a directory", in.flag, in.path)
		}
	}
	return nil
}
