package calculator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction indicates an input name that maps to no calculator action.
var ErrUnknownAction = errors.New("unknown calculator action")

// ActionKind names one class of input event.
type ActionKind string

const (
	ActionDigit    ActionKind = "digit"
	ActionDecimal  ActionKind = "decimal"
	ActionOperator ActionKind = "operator"
	ActionEquals   ActionKind = "equals"
	ActionClear    ActionKind = "clear"
	ActionDelete   ActionKind = "delete"
	ActionSign     ActionKind = "sign"
	ActionPercent  ActionKind = "percent"
)

// Action is one discrete input event. Digit is set for ActionDigit and
// Operator for ActionOperator.
type Action struct {
	Kind     ActionKind
	Digit    rune
	Operator Operator
}

// Digit returns the action for pressing digit d.
func Digit(d rune) Action {
	return Action{Kind: ActionDigit, Digit: d}
}

// Op returns the action for pressing operator op.
func Op(op Operator) Action {
	return Action{Kind: ActionOperator, Operator: op}
}

// Decimal, Equals, Clear, Delete, Sign and Percent are the parameterless actions.
var (
	Decimal = Action{Kind: ActionDecimal}
	Equals  = Action{Kind: ActionEquals}
	Clear   = Action{Kind: ActionClear}
	Delete  = Action{Kind: ActionDelete}
	Sign    = Action{Kind: ActionSign}
	Percent = Action{Kind: ActionPercent}
)

// String returns the canonical action name, e.g. "digit:7" or "operator:/".
func (a Action) String() string {
	switch a.Kind {
	case ActionDigit:
		return string(ActionDigit) + ":" + string(a.Digit)
	case ActionOperator:
		return string(ActionOperator) + ":" + string(a.Operator)
	default:
		return string(a.Kind)
	}
}

// ParseAction parses a canonical action name as produced by Action.String.
func ParseAction(name string) (Action, error) {
	name = strings.TrimSpace(name)
	kind, value, hasValue := strings.Cut(name, ":")
	switch ActionKind(kind) {
	case ActionDigit:
		if !hasValue || len(value) != 1 || value[0] < '0' || value[0] > '9' {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, name)
		}
		return Digit(rune(value[0])), nil
	case ActionOperator:
		if !hasValue {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, name)
		}
		op, err := ParseOperator(value)
		if err != nil {
			return Action{}, err
		}
		return Op(op), nil
	case ActionDecimal, ActionEquals, ActionClear, ActionDelete, ActionSign, ActionPercent:
		if hasValue {
			return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, name)
		}
		return Action{Kind: ActionKind(kind)}, nil
	default:
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
}

// ActionForKey maps a keyboard key name to its action.
//
// Digits, ".", the four operator symbols, "Enter" and "=" (equals),
// "Backspace" (delete) and "Escape" (clear) are mapped. Other keys report
// false and should be ignored.
func ActionForKey(key string) (Action, bool) {
	switch key {
	case ".":
		return Decimal, true
	case "Backspace":
		return Delete, true
	case "Escape":
		return Clear, true
	case "Enter", "=":
		return Equals, true
	case "+", "-", "*", "/":
		return Op(Operator(key)), true
	}
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return Digit(rune(key[0])), true
	}
	return Action{}, false
}

// ParseInput accepts either a canonical action name or a keyboard key name.
func ParseInput(input string) (Action, error) {
	if action, ok := ActionForKey(input); ok {
		return action, nil
	}
	return ParseAction(input)
}

// Apply dispatches action to the matching machine operation. The returned
// evaluation is reported only when the action evaluated a pending operation.
func (m *Machine) Apply(action Action) (Evaluation, bool) {
	switch action.Kind {
	case ActionDigit:
		m.InputDigit(action.Digit)
	case ActionDecimal:
		m.InputDecimal()
	case ActionOperator:
		return m.ApplyOperator(action.Operator)
	case ActionEquals:
		return m.Equals()
	case ActionClear:
		m.Clear()
	case ActionDelete:
		m.DeleteLast()
	case ActionSign:
		m.ToggleSign()
	case ActionPercent:
		m.Percent()
	}
	return Evaluation{}, false
}

// Step is the outcome of applying one action to a state.
type Step struct {
	Action     Action
	State      State
	Evaluation *Evaluation
}

// Apply applies actions in order to state and returns each intermediate step.
func Apply(state State, actions ...Action) (State, []Step) {
	machine := Restore(state)
	steps := make([]Step, 0, len(actions))
	for _, action := range actions {
		step := Step{Action: action}
		if evaluation, ok := machine.Apply(action); ok {
			step.Evaluation = &evaluation
		}
		step.State = machine.State()
		steps = append(steps, step)
	}
	return machine.State(), steps
}
