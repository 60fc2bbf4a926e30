package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	core "github.com/louisbranch/calcdeck/internal/calculator"
	"github.com/louisbranch/calcdeck/internal/platform/timeouts"
	calcapi "github.com/louisbranch/calcdeck/internal/services/calc/api/grpc/calculator"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// CalculatorClient is the slice of the calculator API the tools use.
type CalculatorClient interface {
	CreateSession(ctx context.Context, in *calcapi.CreateSessionRequest, opts ...grpc.CallOption) (*calcapi.CreateSessionResponse, error)
	GetSession(ctx context.Context, in *calcapi.GetSessionRequest, opts ...grpc.CallOption) (*calcapi.GetSessionResponse, error)
	Press(ctx context.Context, in *calcapi.PressRequest, opts ...grpc.CallOption) (*calcapi.PressResponse, error)
	Evaluate(ctx context.Context, in *calcapi.EvaluateRequest, opts ...grpc.CallOption) (*calcapi.EvaluateResponse, error)
	ListTape(ctx context.Context, in *calcapi.ListTapeRequest, opts ...grpc.CallOption) (*calcapi.ListTapeResponse, error)
}

// StateResult is the display state returned by most calculator tools.
type StateResult struct {
	Current      string `json:"current" jsonschema:"operand being typed or the last result"`
	Previous     string `json:"previous" jsonschema:"pending expression such as '12 +', empty when none"`
	Operator     string `json:"operator,omitempty" jsonschema:"pending operator, one of + - * /"`
	AwaitingNext bool   `json:"awaiting_next" jsonschema:"whether the next digit starts a fresh operand"`
}

// EvaluationResult is one binary operation performed by a press.
type EvaluationResult struct {
	First    string `json:"first" jsonschema:"first operand"`
	Operator string `json:"operator" jsonschema:"operator applied"`
	Second   string `json:"second" jsonschema:"second operand"`
	Result   string `json:"result" jsonschema:"formatted result or Error"`
}

// SessionCreateInput represents the MCP tool input for starting a calculator.
type SessionCreateInput struct{}

// SessionCreateResult represents the MCP tool output for a new calculator.
type SessionCreateResult struct {
	SessionID string      `json:"session_id" jsonschema:"calculator session identifier"`
	State     StateResult `json:"state" jsonschema:"initial display state"`
}

// PressInput represents the MCP tool input for pressing calculator keys.
type PressInput struct {
	SessionID string   `json:"session_id" jsonschema:"calculator session identifier"`
	Inputs    []string `json:"inputs" jsonschema:"keys in order; key names like 7 . + Enter Backspace Escape or action names like percent sign digit:7 operator:/"`
}

// PressResult represents the MCP tool output after pressing keys.
type PressResult struct {
	State       StateResult        `json:"state" jsonschema:"display state after the last input"`
	Evaluations []EvaluationResult `json:"evaluations,omitempty" jsonschema:"operations evaluated by the inputs"`
}

// StateInput represents the MCP tool input for reading a calculator display.
type StateInput struct {
	SessionID string `json:"session_id" jsonschema:"calculator session identifier"`
}

// TapeInput represents the MCP tool input for listing past evaluations.
type TapeInput struct {
	SessionID string `json:"session_id" jsonschema:"calculator session identifier"`
	PageSize  int    `json:"page_size,omitempty" jsonschema:"maximum entries to return (default 20, max 100)"`
	PageToken string `json:"page_token,omitempty" jsonschema:"next_page_token from a previous call"`
	Filter    string `json:"filter,omitempty" jsonschema:"optional filter such as operator = \"/\" or result = \"Error\""`
}

// TapeResult represents the MCP tool output for the evaluation tape.
type TapeResult struct {
	Entries       []EvaluationResult `json:"entries" jsonschema:"evaluations, newest first"`
	NextPageToken string             `json:"next_page_token,omitempty" jsonschema:"token for the next page, empty on the last page"`
}

// EvaluateInput represents the MCP tool input for a one-off binary operation.
type EvaluateInput struct {
	First    string `json:"first" jsonschema:"first operand as displayed, e.g. 12.5"`
	Operator string `json:"operator" jsonschema:"one of + - * /"`
	Second   string `json:"second" jsonschema:"second operand as displayed"`
}

// EvaluateResult represents the MCP tool output for a one-off operation.
type EvaluateResult struct {
	Result string `json:"result" jsonschema:"formatted result or Error"`
}

// SessionCreateTool defines the MCP tool schema for starting a calculator.
func SessionCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "calculator_session_create",
		Description: "Start a new calculator showing 0 and return its session id",
	}
}

// PressTool defines the MCP tool schema for pressing calculator keys.
func PressTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "calculator_press",
		Description: "Press calculator keys in order and return the resulting display",
	}
}

// StateTool defines the MCP tool schema for reading the display.
func StateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "calculator_state",
		Description: "Read the current calculator display without pressing anything",
	}
}

// TapeTool defines the MCP tool schema for listing past evaluations.
func TapeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "calculator_tape",
		Description: "List the evaluations a calculator session has performed, newest first",
	}
}

// EvaluateTool defines the MCP tool schema for a one-off operation.
func EvaluateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "calculator_evaluate",
		Description: "Evaluate a single binary operation the way the calculator would, without a session",
	}
}

// SessionCreateHandler starts a calculator session.
func SessionCreateHandler(client CalculatorClient) mcp.ToolHandlerFor[SessionCreateInput, SessionCreateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ SessionCreateInput) (*mcp.CallToolResult, SessionCreateResult, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()

		resp, err := client.CreateSession(callCtx, &calcapi.CreateSessionRequest{})
		if err != nil {
			return nil, SessionCreateResult{}, toolError("create session", err)
		}
		if resp == nil || resp.Session.ID == "" {
			return nil, SessionCreateResult{}, errors.New("create session: empty response")
		}
		return &mcp.CallToolResult{}, SessionCreateResult{
			SessionID: resp.Session.ID,
			State:     stateResult(resp.Session.State),
		}, nil
	}
}

// PressHandler applies inputs to a calculator session. Key names are
// translated to action names before the call so that an unknown input is
// rejected before anything is applied.
func PressHandler(client CalculatorClient) mcp.ToolHandlerFor[PressInput, PressResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PressInput) (*mcp.CallToolResult, PressResult, error) {
		sessionID := strings.TrimSpace(input.SessionID)
		if sessionID == "" {
			return nil, PressResult{}, errors.New("session_id is required")
		}
		if len(input.Inputs) == 0 {
			return nil, PressResult{}, errors.New("inputs are required")
		}
		actions := make([]string, 0, len(input.Inputs))
		for _, raw := range input.Inputs {
			action, err := core.ParseInput(raw)
			if err != nil {
				return nil, PressResult{}, fmt.Errorf("input %q is not a calculator key", raw)
			}
			actions = append(actions, action.String())
		}

		callCtx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()

		resp, err := client.Press(callCtx, &calcapi.PressRequest{SessionID: sessionID, Actions: actions})
		if err != nil {
			return nil, PressResult{}, toolError("press", err)
		}
		if resp == nil {
			return nil, PressResult{}, errors.New("press: empty response")
		}

		result := PressResult{State: stateResult(resp.State)}
		for _, step := range resp.Steps {
			if step.Evaluation != nil {
				result.Evaluations = append(result.Evaluations, evaluationResult(*step.Evaluation))
			}
		}
		return &mcp.CallToolResult{}, result, nil
	}
}

// StateHandler reads a calculator session's display.
func StateHandler(client CalculatorClient) mcp.ToolHandlerFor[StateInput, StateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input StateInput) (*mcp.CallToolResult, StateResult, error) {
		sessionID := strings.TrimSpace(input.SessionID)
		if sessionID == "" {
			return nil, StateResult{}, errors.New("session_id is required")
		}

		callCtx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()

		resp, err := client.GetSession(callCtx, &calcapi.GetSessionRequest{SessionID: sessionID})
		if err != nil {
			return nil, StateResult{}, toolError("get session", err)
		}
		if resp == nil {
			return nil, StateResult{}, errors.New("get session: empty response")
		}
		return &mcp.CallToolResult{}, stateResult(resp.Session.State), nil
	}
}

// TapeHandler lists a session's evaluations.
func TapeHandler(client CalculatorClient) mcp.ToolHandlerFor[TapeInput, TapeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input TapeInput) (*mcp.CallToolResult, TapeResult, error) {
		sessionID := strings.TrimSpace(input.SessionID)
		if sessionID == "" {
			return nil, TapeResult{}, errors.New("session_id is required")
		}
		if input.PageSize < 0 {
			return nil, TapeResult{}, errors.New("page_size must not be negative")
		}

		callCtx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()

		resp, err := client.ListTape(callCtx, &calcapi.ListTapeRequest{
			SessionID: sessionID,
			PageSize:  int32(min(input.PageSize, 1<<16)),
			PageToken: input.PageToken,
			Filter:    input.Filter,
		})
		if err != nil {
			return nil, TapeResult{}, toolError("list tape", err)
		}
		if resp == nil {
			return nil, TapeResult{}, errors.New("list tape: empty response")
		}

		result := TapeResult{
			Entries:       make([]EvaluationResult, 0, len(resp.Entries)),
			NextPageToken: resp.NextPageToken,
		}
		for _, entry := range resp.Entries {
			result.Entries = append(result.Entries, EvaluationResult{
				First:    entry.First,
				Operator: entry.Operator,
				Second:   entry.Second,
				Result:   entry.Result,
			})
		}
		return &mcp.CallToolResult{}, result, nil
	}
}

// EvaluateHandler performs a one-off binary operation.
func EvaluateHandler(client CalculatorClient) mcp.ToolHandlerFor[EvaluateInput, EvaluateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EvaluateInput) (*mcp.CallToolResult, EvaluateResult, error) {
		if _, err := core.ParseOperator(strings.TrimSpace(input.Operator)); err != nil {
			return nil, EvaluateResult{}, fmt.Errorf("operator %q must be one of + - * /", input.Operator)
		}

		callCtx, cancel := context.WithTimeout(ctx, timeouts.ToolCall)
		defer cancel()

		resp, err := client.Evaluate(callCtx, &calcapi.EvaluateRequest{
			First:    input.First,
			Second:   input.Second,
			Operator: strings.TrimSpace(input.Operator),
		})
		if err != nil {
			return nil, EvaluateResult{}, toolError("evaluate", err)
		}
		if resp == nil {
			return nil, EvaluateResult{}, errors.New("evaluate: empty response")
		}
		return &mcp.CallToolResult{}, EvaluateResult{Result: resp.Result}, nil
	}
}

func stateResult(state calcapi.State) StateResult {
	return StateResult{
		Current:      state.Current,
		Previous:     state.Previous,
		Operator:     state.Operator,
		AwaitingNext: state.AwaitingNext,
	}
}

func evaluationResult(evaluation calcapi.Evaluation) EvaluationResult {
	return EvaluationResult{
		First:    evaluation.First,
		Operator: evaluation.Operator,
		Second:   evaluation.Second,
		Result:   evaluation.Result,
	}
}

// toolError reports the status message of gRPC errors without the code prefix.
func toolError(op string, err error) error {
	if st, ok := status.FromError(err); ok {
		return fmt.Errorf("%s: %s", op, st.Message())
	}
	return fmt.Errorf("%s: %w", op, err)
}
