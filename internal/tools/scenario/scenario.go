// Package scenario loads Lua calculator scripts and replays them against a
// calculator driver, checking the display after each expectation.
package scenario

// Step kinds recorded by the Lua DSL.
const (
	StepPress  = "press"
	StepKeys   = "keys"
	StepExpect = "expect"
	StepClear  = "clear"
)

// Scenario is a named list of steps built by a Lua script.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one recorded DSL call.
//
// Inputs is set for press and keys steps. Expect holds the display fields
// an expect step checks, keyed by current, previous, operator or awaiting.
type Step struct {
	Kind   string
	Inputs []string
	Expect map[string]any
	Line   int
}

// AssertionMode selects how a failed expectation is reported.
type AssertionMode int

const (
	// AssertionStrict stops the scenario at the first failed expectation.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs failed expectations and keeps going.
	AssertionLogOnly
)

// DriverKind selects where scenario inputs are applied.
type DriverKind string

const (
	// DriverLocal applies inputs to an in-process calculator.
	DriverLocal DriverKind = "local"
	// DriverGRPC applies inputs to a session on the calculator service.
	DriverGRPC DriverKind = "grpc"
)
