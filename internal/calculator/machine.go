package calculator

import "strings"

// Machine owns one calculator state and applies input events to it.
//
// A Machine is not safe for concurrent use; callers deliver events one at a
// time in arrival order.
type Machine struct {
	state State
}

// NewMachine returns a machine in the initial state.
func NewMachine() *Machine {
	return &Machine{state: NewState()}
}

// Restore returns a machine continuing exactly from a previously saved state.
func Restore(state State) *Machine {
	return &Machine{state: state}
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	return m.state
}

// InputDigit enters one digit. Runes outside '0'..'9' are ignored.
//
// After an operator or equals the digit starts a new operand; otherwise it is
// appended, replacing a lone "0".
func (m *Machine) InputDigit(digit rune) {
	if digit < '0' || digit > '9' {
		return
	}
	d := string(digit)
	if m.state.AwaitingNext {
		m.state.Current = d
		m.state.AwaitingNext = false
		return
	}
	if m.state.Current == initialOperand {
		m.state.Current = d
		return
	}
	m.state.Current += d
}

// InputDecimal enters a decimal point; a second point in the same operand is ignored.
func (m *Machine) InputDecimal() {
	if m.state.AwaitingNext {
		m.state.Current = initialOperand + "."
		m.state.AwaitingNext = false
		return
	}
	if !strings.Contains(m.state.Current, ".") {
		m.state.Current += "."
	}
}

// Clear restores the initial state.
func (m *Machine) Clear() {
	m.state = NewState()
}

// DeleteLast removes the last typed character. It does nothing while the
// machine waits for a new operand.
func (m *Machine) DeleteLast() {
	if m.state.AwaitingNext {
		return
	}
	if len(m.state.Current) <= 1 {
		m.state.Current = initialOperand
		return
	}
	m.state.Current = m.state.Current[:len(m.state.Current)-1]
}

// ToggleSign flips the sign of the current operand text. "0" is left alone.
func (m *Machine) ToggleSign() {
	if m.state.Current == initialOperand {
		return
	}
	if rest, ok := strings.CutPrefix(m.state.Current, "-"); ok {
		m.state.Current = rest
		return
	}
	m.state.Current = "-" + m.state.Current
}

// Percent divides the current operand by 100. Unparsable operands are left alone.
func (m *Machine) Percent() {
	value, ok := ParseNumber(m.state.Current)
	if !ok {
		return
	}
	m.state.Current = FormatNumber(value / 100)
}

// ApplyOperator selects op as the pending operator.
//
// When an operator is already pending and a second operand has been typed,
// the pending operation is evaluated first and its result becomes the new
// first operand. If that evaluation divides by zero, the pending state is
// dropped and the machine waits for a new operand with the error marker on
// display. The returned evaluation is reported only when one happened.
func (m *Machine) ApplyOperator(op Operator) (Evaluation, bool) {
	if !op.Valid() {
		return Evaluation{}, false
	}

	var (
		evaluation Evaluation
		evaluated  bool
	)
	if m.state.HasPendingOperator() && !m.state.AwaitingNext {
		evaluation = m.evaluate()
		evaluated = true
		m.state.Current = evaluation.Result
		if evaluation.IsError() {
			m.state.Previous = ""
			m.state.Operator = OperatorNone
			m.state.AwaitingNext = true
			return evaluation, evaluated
		}
	}

	m.state.Previous = m.state.Current + " " + string(op)
	m.state.Operator = op
	m.state.AwaitingNext = true
	return evaluation, evaluated
}

// Equals evaluates the pending operation. Without a pending operator, or
// before a second operand is typed, it does nothing.
func (m *Machine) Equals() (Evaluation, bool) {
	if !m.state.HasPendingOperator() || m.state.AwaitingNext {
		return Evaluation{}, false
	}
	evaluation := m.evaluate()
	m.state.Current = evaluation.Result
	m.state.Previous = ""
	m.state.Operator = OperatorNone
	m.state.AwaitingNext = true
	return evaluation, true
}

func (m *Machine) evaluate() Evaluation {
	first := m.state.FirstOperand()
	return Evaluation{
		First:    first,
		Operator: m.state.Operator,
		Second:   m.state.Current,
		Result:   Evaluate(first, m.state.Current, m.state.Operator),
	}
}
