// Package calculator implements the keypad input state machine shared by every
// calcdeck surface.
package calculator

import (
	"fmt"
	"strings"
)

// ErrorMarker occupies the current operand after a division by zero.
const ErrorMarker = "Error"

// initialOperand is the current operand of a fresh or cleared machine.
const initialOperand = "0"

// Operator is an arithmetic operator waiting for its second operand.
type Operator string

const (
	OperatorNone     Operator = ""
	OperatorAdd      Operator = "+"
	OperatorSubtract Operator = "-"
	OperatorMultiply Operator = "*"
	OperatorDivide   Operator = "/"
)

// Valid reports whether o is one of the four arithmetic operators.
func (o Operator) Valid() bool {
	switch o {
	case OperatorAdd, OperatorSubtract, OperatorMultiply, OperatorDivide:
		return true
	default:
		return false
	}
}

// ParseOperator parses an operator symbol.
func ParseOperator(value string) (Operator, error) {
	op := Operator(strings.TrimSpace(value))
	if !op.Valid() {
		return OperatorNone, fmt.Errorf("%w: operator %q", ErrUnknownAction, value)
	}
	return op, nil
}

// State holds the four fields of the calculator.
//
// Current is always a partial or complete decimal numeral, or ErrorMarker.
// Previous is display text ("<first operand> <operator>") and is only read
// back to recover the first operand on equals.
type State struct {
	Current      string   `json:"current"`
	Previous     string   `json:"previous"`
	Operator     Operator `json:"operator"`
	AwaitingNext bool     `json:"awaiting_next"`
}

// NewState returns the state of a freshly started or cleared calculator.
func NewState() State {
	return State{Current: initialOperand}
}

// IsError reports whether the current operand holds the error marker.
func (s State) IsError() bool {
	return s.Current == ErrorMarker
}

// HasPendingOperator reports whether an operator is waiting for a second operand.
func (s State) HasPendingOperator() bool {
	return s.Operator != OperatorNone
}

// FirstOperand recovers the first operand from the previous expression.
func (s State) FirstOperand() string {
	first, _, _ := strings.Cut(s.Previous, " ")
	return first
}

// Display is what the two display fields show.
type Display struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// Display returns the display fields for s.
func (s State) Display() Display {
	return Display{Previous: s.Previous, Current: s.Current}
}
