package calculator

import (
	"time"

	core "github.com/louisbranch/calcdeck/internal/calculator"
	"github.com/louisbranch/calcdeck/internal/services/calc/storage"
)

// State is the wire form of a calculator state.
type State struct {
	Current      string `json:"current"`
	Previous     string `json:"previous"`
	Operator     string `json:"operator,omitempty"`
	AwaitingNext bool   `json:"awaiting_next"`
}

// Evaluation is one binary operation performed by an input.
type Evaluation struct {
	First    string `json:"first"`
	Operator string `json:"operator"`
	Second   string `json:"second"`
	Result   string `json:"result"`
}

// Step reports the state after one applied action.
type Step struct {
	Action     string      `json:"action"`
	State      State       `json:"state"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
}

// Session is the wire form of a stored session.
type Session struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TapeEntry is the wire form of a stored evaluation.
type TapeEntry struct {
	Seq       int64     `json:"seq"`
	First     string    `json:"first"`
	Operator  string    `json:"operator"`
	Second    string    `json:"second"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateSessionRequest struct{}

type CreateSessionResponse struct {
	Session Session `json:"session"`
}

type GetSessionRequest struct {
	SessionID string `json:"session_id"`
}

type GetSessionResponse struct {
	Session Session `json:"session"`
}

type DeleteSessionRequest struct {
	SessionID string `json:"session_id"`
}

type DeleteSessionResponse struct{}

// PressRequest carries canonical action names such as "digit:7".
type PressRequest struct {
	SessionID string   `json:"session_id"`
	Actions   []string `json:"actions"`
}

// PressKeyRequest carries keyboard key names such as "7" or "Enter".
type PressKeyRequest struct {
	SessionID string   `json:"session_id"`
	Keys      []string `json:"keys"`
}

// PressResponse is returned by Press and PressKey. Ignored lists keys that
// map to no action.
type PressResponse struct {
	State   State       `json:"state"`
	Steps   []Step      `json:"steps,omitempty"`
	Tape    []TapeEntry `json:"tape,omitempty"`
	Ignored []string    `json:"ignored,omitempty"`
}

type EvaluateRequest struct {
	First    string `json:"first"`
	Second   string `json:"second"`
	Operator string `json:"operator"`
}

type EvaluateResponse struct {
	Result string `json:"result"`
}

type ListTapeRequest struct {
	SessionID string `json:"session_id"`
	PageSize  int32  `json:"page_size,omitempty"`
	PageToken string `json:"page_token,omitempty"`
	Filter    string `json:"filter,omitempty"`
}

type ListTapeResponse struct {
	Entries       []TapeEntry `json:"entries"`
	NextPageToken string      `json:"next_page_token,omitempty"`
}

// StateFromCore converts a calculator state to its wire form.
func StateFromCore(state core.State) State {
	return State{
		Current:      state.Current,
		Previous:     state.Previous,
		Operator:     string(state.Operator),
		AwaitingNext: state.AwaitingNext,
	}
}

// Core converts the wire state back to a calculator state.
func (s State) Core() core.State {
	return core.State{
		Current:      s.Current,
		Previous:     s.Previous,
		Operator:     core.Operator(s.Operator),
		AwaitingNext: s.AwaitingNext,
	}
}

func sessionFromStorage(session storage.Session) Session {
	return Session{
		ID:        session.ID,
		State:     StateFromCore(session.State),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

func tapeFromStorage(entries []storage.TapeEntry) []TapeEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]TapeEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, TapeEntry{
			Seq:       entry.Seq,
			First:     entry.First,
			Operator:  string(entry.Operator),
			Second:    entry.Second,
			Result:    entry.Result,
			CreatedAt: entry.CreatedAt,
		})
	}
	return out
}

func stepsFromCore(steps []core.Step) []Step {
	out := make([]Step, 0, len(steps))
	for _, step := range steps {
		wire := Step{Action: step.Action.String(), State: StateFromCore(step.State)}
		if step.Evaluation != nil {
			wire.Evaluation = &Evaluation{
				First:    step.Evaluation.First,
				Operator: string(step.Evaluation.Operator),
				Second:   step.Evaluation.Second,
				Result:   step.Evaluation.Result,
			}
		}
		out = append(out, wire)
	}
	return out
}
