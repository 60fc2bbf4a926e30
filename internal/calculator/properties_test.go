package calculator

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func actionGenerator() *rapid.Generator[Action] {
	return rapid.OneOf(
		rapid.Map(rapid.IntRange(0, 9), func(d int) Action { return Digit(rune('0' + d)) }),
		rapid.Map(rapid.SampledFrom([]Operator{OperatorAdd, OperatorSubtract, OperatorMultiply, OperatorDivide}), Op),
		rapid.SampledFrom([]Action{Decimal, Equals, Clear, Delete, Sign, Percent}),
	)
}

// TestDigitsConcatenate_Property checks that fresh digit entry yields the
// typed digits with leading zeros collapsed.
func TestDigitsConcatenate_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		digits := rapid.SliceOfN(rapid.IntRange(0, 9), 1, 40).Draw(rt, "digits")

		m := NewMachine()
		var typed strings.Builder
		for _, d := range digits {
			m.InputDigit(rune('0' + d))
			typed.WriteByte(byte('0' + d))
		}

		want := strings.TrimLeft(typed.String(), "0")
		if want == "" {
			want = "0"
		}
		if got := m.State().Current; got != want {
			rt.Fatalf("current = %q, want %q", got, want)
		}
	})
}

// TestDecimalIdempotent_Property checks that a second decimal press changes nothing.
func TestDecimalIdempotent_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		history := rapid.SliceOf(actionGenerator()).Draw(rt, "history")

		m := NewMachine()
		for _, action := range history {
			m.Apply(action)
		}
		m.InputDecimal()
		once := m.State()
		m.InputDecimal()
		if got := m.State(); got != once {
			rt.Fatalf("second decimal changed state: %+v -> %+v", once, got)
		}
	})
}

// TestClearRestoresInitialState_Property checks clear after any history.
func TestClearRestoresInitialState_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		history := rapid.SliceOf(actionGenerator()).Draw(rt, "history")

		m := NewMachine()
		for _, action := range history {
			m.Apply(action)
		}
		m.Clear()
		if got := m.State(); got != NewState() {
			rt.Fatalf("state after clear = %+v, want %+v", got, NewState())
		}
	})
}

// TestToggleSignInvolution_Property checks that two sign toggles cancel out.
func TestToggleSignInvolution_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		history := rapid.SliceOf(actionGenerator()).Draw(rt, "history")

		m := NewMachine()
		for _, action := range history {
			m.Apply(action)
		}
		before := m.State()
		m.ToggleSign()
		m.ToggleSign()
		if got := m.State(); got != before {
			rt.Fatalf("double toggle = %+v, want %+v", got, before)
		}
	})
}

// TestPreviousTracksPendingOperator_Property checks that the previous
// expression is present exactly while an operator is pending.
func TestPreviousTracksPendingOperator_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		history := rapid.SliceOf(actionGenerator()).Draw(rt, "history")

		m := NewMachine()
		for _, action := range history {
			m.Apply(action)
			state := m.State()
			if state.HasPendingOperator() && !strings.HasSuffix(state.Previous, " "+string(state.Operator)) {
				rt.Fatalf("previous %q does not end with pending operator %q", state.Previous, state.Operator)
			}
			if !state.HasPendingOperator() && state.Previous != "" {
				rt.Fatalf("previous %q without pending operator", state.Previous)
			}
		}
	})
}

// TestApplySplitEquivalence_Property checks that saving and reloading the
// state between any two actions does not change the outcome.
func TestApplySplitEquivalence_Property(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		actions := rapid.SliceOfN(actionGenerator(), 1, 30).Draw(rt, "actions")
		cut := rapid.IntRange(0, len(actions)).Draw(rt, "cut")

		want, _ := Apply(NewState(), actions...)
		mid, _ := Apply(NewState(), actions[:cut]...)
		got, _ := Apply(mid, actions[cut:]...)
		if got != want {
			rt.Fatalf("split at %d: state = %+v, want %+v", cut, got, want)
		}
	})
}
