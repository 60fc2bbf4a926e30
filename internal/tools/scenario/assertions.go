package scenario

import (
	"fmt"
	"log"
)

// Assertions reports expectation failures according to Mode.
type Assertions struct {
	Mode   AssertionMode
	Logger *log.Logger

	failures int
}

// Failf always returns an error. It is used for broken scenarios rather
// than wrong results.
func (a *Assertions) Failf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Assertf records a failed expectation. In strict mode it returns the
// error; in log-only mode it logs and returns nil.
func (a *Assertions) Assertf(format string, args ...any) error {
	a.failures++
	if a.Mode == AssertionStrict {
		return fmt.Errorf(format, args...)
	}
	if a.Logger != nil {
		a.Logger.Printf("expectation failed: "+format, args...)
	}
	return nil
}

// Failures counts the expectations that failed so far.
func (a *Assertions) Failures() int {
	return a.failures
}
