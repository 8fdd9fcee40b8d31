// Package dispatch is the srba-slam entry point logic: it turns a validation
// outcome into an exit code by listing variants, reporting failures, or
// running the one variant registered for the configuration.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/harrison/srbaslam/internal/logger"
	"github.com/harrison/srbaslam/internal/params"
	"github.com/harrison/srbaslam/internal/registry"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// ListHeader precedes the variant descriptions printed by --list-problems
const ListHeader = "Implemented RBA problem types:"

// ErrNoMatchingVariant is reported when no registered variant accepts the configuration
var ErrNoMatchingVariant = errors.New("Sorry: the given combination of pose, landmark and sensor models wasn't precompiled in this program!")

// HandlerError wraps a failure returned by the selected variant.
// Its message is the handler's own, unchanged.
type HandlerError struct {
	Variant string
	Err     error
}

func (e *HandlerError) Error() string {
	return e.Err.Error()
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Dispatcher selects and runs a variant from a registry
type Dispatcher struct {
	Registry *registry.Registry
	Logger   logger.Logger
	Stdout   io.Writer
	Stderr   io.Writer

	// ErrorLog also records every reported error. Leave it nil when the
	// logger already writes to Stderr, or each error shows up twice there.
	ErrorLog logger.Logger

	// ColorOutput highlights the list header; only set it for a terminal
	ColorOutput bool
}

// New creates a Dispatcher. A nil logger discards log messages.
func New(reg *registry.Registry, log logger.Logger, stdout, stderr io.Writer) *Dispatcher {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Dispatcher{
		Registry: reg,
		Logger:   log,
		Stdout:   stdout,
		Stderr:   stderr,
	}
}

// Run parses args without cobra and dispatches the outcome. It is the entry
// point for programs embedding the dispatcher; the srba-slam binary parses
// through cobra and calls Dispatch directly.
func (d *Dispatcher) Run(ctx context.Context, args []string) int {
	return d.Dispatch(ctx, params.Parse(args))
}

// Dispatch branches on the outcome and returns the process exit code:
// 0 for list and help, 1 for any failure, otherwise the handler's code.
// A panic anywhere below is recovered and reported as a failure.
func (d *Dispatcher) Dispatch(ctx context.Context, o params.Outcome) (code int) {
	defer func() {
		if r := recover(); r != nil {
			d.report(fmt.Errorf("unexpected failure: %v", r))
			code = ExitFailure
		}
	}()

	switch o.Kind {
	case params.OutcomeList:
		d.list()
		return ExitSuccess
	case params.OutcomeHelp:
		if o.Usage != "" {
			fmt.Fprint(d.stdout(), o.Usage)
		}
		return ExitSuccess
	case params.OutcomeFailure:
		d.report(o.Err)
		return ExitFailure
	case params.OutcomeSuccess:
	default:
		d.report(fmt.Errorf("unknown validation outcome %d", o.Kind))
		return ExitFailure
	}

	handler, desc, ok := d.Registry.FindMatch(o.Params)
	if !ok {
		d.report(ErrNoMatchingVariant)
		return ExitFailure
	}
	d.log().LogVariantSelected(desc, o.Params)

	start := time.Now()
	code, err := handler.Run(ctx, o.Params)
	if err != nil {
		code = ExitFailure
		d.report(&HandlerError{Variant: desc, Err: err})
	}
	d.log().LogRunComplete(desc, code, time.Since(start))
	return code
}

// list prints every registered description, one per line, in registration order
func (d *Dispatcher) list() {
	header := ListHeader
	if d.ColorOutput {
		header = color.New(color.Bold).Sprint(header)
	}
	w := d.stdout()
	fmt.Fprintln(w, header)
	for _, desc := range d.Registry.Descriptions() {
		fmt.Fprintf(w, " %s\n", desc)
	}
}

func (d *Dispatcher) stdout() io.Writer {
	if d.Stdout == nil {
		return io.Discard
	}
	return d.Stdout
}

// report writes "Error: <message>" to stderr, plus the usage hint of a
// validation error. Empty messages are dropped.
func (d *Dispatcher) report(err error) {
	if err == nil || err.Error() == "" {
		return
	}
	msg := err.Error()
	if d.ErrorLog != nil {
		d.ErrorLog.LogError(msg)
	}

	if d.Stderr == nil {
		return
	}
	fmt.Fprintf(d.Stderr, "Error: %s\n", msg)

	var verr *params.ValidationError
	if errors.As(err, &verr) && verr.Hint != "" {
		fmt.Fprintln(d.Stderr, verr.Hint)
	}
}

func (d *Dispatcher) log() logger.Logger {
	if d.Logger == nil {
		return logger.NewNoOpLogger()
	}
	return d.Logger
}
