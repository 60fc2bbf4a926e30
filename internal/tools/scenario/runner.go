package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	core "github.com/louisbranch/calcdeck/internal/calculator"
	platformgrpc "github.com/louisbranch/calcdeck/internal/platform/grpc"
	calcapi "github.com/louisbranch/calcdeck/internal/services/calc/api/grpc/calculator"
	"google.golang.org/grpc"
)

const defaultStepTimeout = 10 * time.Second

// Config controls scenario execution.
type Config struct {
	Driver      DriverKind
	CalcAddr    string
	DialTimeout time.Duration
	Timeout     time.Duration
	Assertions  AssertionMode
	Verbose     bool
	Logger      *log.Logger
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Driver:      DriverLocal,
		CalcAddr:    "localhost:8095",
		DialTimeout: 2 * time.Second,
		Timeout:     defaultStepTimeout,
		Assertions:  AssertionStrict,
	}
}

// Runner executes Lua scenarios against a calculator driver.
type Runner struct {
	conn       *grpc.ClientConn
	driver     Driver
	assertions Assertions
	logger     *log.Logger
	verbose    bool
	timeout    time.Duration
}

// scenarioState tracks the display between steps.
type scenarioState struct {
	display core.State
}

// NewRunner prepares a runner for cfg.Driver, dialing the calculator
// service for the gRPC driver.
func NewRunner(ctx context.Context, cfg Config) (*Runner, error) {
	switch cfg.Driver {
	case "", DriverLocal:
		return newRunnerWithDriver(cfg, newLocalDriver()), nil
	case DriverGRPC:
	default:
		return nil, fmt.Errorf("driver %q is not supported", cfg.Driver)
	}

	if cfg.CalcAddr == "" {
		return nil, errors.New("calculator address is required")
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = DefaultConfig().DialTimeout
	}
	conn, err := platformgrpc.DialWithHealth(ctx, nil, cfg.CalcAddr, calcapi.ServiceName, dialTimeout, nil)
	if err != nil {
		return nil, fmt.Errorf("dial calculator: %w", err)
	}
	r := newRunnerWithDriver(cfg, newGRPCDriver(calcapi.NewClient(conn)))
	r.conn = conn
	return r, nil
}

// newRunnerWithDriver applies config defaults around driver.
func newRunnerWithDriver(cfg Config, driver Driver) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultStepTimeout
	}
	return &Runner{
		driver:     driver,
		assertions: Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
		timeout:    timeout,
	}
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	if grpcDriver, ok := r.driver.(*grpcDriver); ok {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		err := grpcDriver.finish(ctx)
		cancel()
		if err != nil {
			r.logger.Printf("cleanup: %v", err)
		}
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) error {
	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}

	runner, err := NewRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	return runner.RunScenario(ctx, scenario)
}

// RunScenario executes the scenario steps on a fresh calculator.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))

	startCtx, cancel := context.WithTimeout(ctx, r.timeout)
	display, err := r.driver.Start(startCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("start scenario %s: %w", scenario.Name, err)
	}
	state := &scenarioState{display: display}

	failuresBefore := r.assertions.Failures()
	for index, step := range scenario.Steps {
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStep(stepCtx, state, step)
		cancel()
		if err != nil {
			return fmt.Errorf("step %d (%s, line %d): %w", stepNumber, step.Kind, step.Line, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}

	if failed := r.assertions.Failures() - failuresBefore; failed > 0 {
		r.logger.Printf("scenario %s: %d expectation(s) failed", scenario.Name, failed)
	}
	r.logf("scenario done: %s", scenario.Name)
	return nil
}

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	switch step.Kind {
	case StepPress:
		actions := make([]core.Action, 0, len(step.Inputs))
		for _, input := range step.Inputs {
			action, err := core.ParseInput(input)
			if err != nil {
				return r.failf("unknown input %q", input)
			}
			actions = append(actions, action)
		}
		return r.apply(state, func() (core.State, error) { return r.driver.Press(ctx, actions) })
	case StepKeys:
		return r.apply(state, func() (core.State, error) { return r.driver.PressKeys(ctx, step.Inputs) })
	case StepClear:
		return r.apply(state, func() (core.State, error) { return r.driver.Press(ctx, []core.Action{core.Clear}) })
	case StepExpect:
		return r.expect(state, step.Expect)
	default:
		return r.failf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) apply(state *scenarioState, press func() (core.State, error)) error {
	display, err := press()
	if err != nil {
		return err
	}
	state.display = display
	r.logf("display: %q | %q", display.Previous, display.Current)
	return nil
}

func (r *Runner) expect(state *scenarioState, fields map[string]any) error {
	got := map[string]any{
		"current":  state.display.Current,
		"previous": state.display.Previous,
		"operator": string(state.display.Operator),
		"awaiting": state.display.AwaitingNext,
	}
	for _, key := range []string{"current", "previous", "operator", "awaiting"} {
		want, ok := fields[key]
		if !ok {
			continue
		}
		if got[key] != want {
			if err := r.assertf("%s = %v, want %v", key, got[key], want); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) failf(format string, args ...any) error {
	return r.assertions.Failf(format, args...)
}

func (r *Runner) assertf(format string, args ...any) error {
	return r.assertions.Assertf(format, args...)
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}
