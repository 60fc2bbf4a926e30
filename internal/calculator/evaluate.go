package calculator

// Evaluation records one arithmetic evaluation performed by the machine.
type Evaluation struct {
	First    string   `json:"first"`
	Operator Operator `json:"operator"`
	Second   string   `json:"second"`
	Result   string   `json:"result"`
}

// IsError reports whether the evaluation produced the error marker.
func (e Evaluation) IsError() bool {
	return e.Result == ErrorMarker
}

// Evaluate applies op to the operand texts first and second.
//
// # Fallback
//
// When either operand has no numeric value, or op is not an arithmetic
// operator, second is returned unchanged. This keeps the input loop running
// on corrupted or error-marked operands instead of failing.
//
// # Division by zero
//
// Dividing by zero (of either sign) returns ErrorMarker. No other input
// produces the marker.
//
// # Rendering
//
// Results are plain float64 arithmetic rendered with FormatNumber, so long
// binary tails are kept: Evaluate("0.1", "0.2", "+") is "0.30000000000000004".
func Evaluate(first, second string, op Operator) string {
	a, ok := ParseNumber(first)
	if !ok {
		return second
	}
	b, ok := ParseNumber(second)
	if !ok {
		return second
	}

	switch op {
	case OperatorAdd:
		return FormatNumber(a + b)
	case OperatorSubtract:
		return FormatNumber(a - b)
	case OperatorMultiply:
		return FormatNumber(a * b)
	case OperatorDivide:
		if b == 0 {
			return ErrorMarker
		}
		return FormatNumber(a / b)
	default:
		return second
	}
}
