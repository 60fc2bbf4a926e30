package scenario

import (
	"context"
	"errors"
	"fmt"

	core "github.com/louisbranch/calcdeck/internal/calculator"
	calcapi "github.com/louisbranch/calcdeck/internal/services/calc/api/grpc/calculator"
	"google.golang.org/grpc"
)

// Driver applies scenario inputs to a calculator and reports its display.
type Driver interface {
	// Start begins a fresh calculator for a scenario.
	Start(ctx context.Context) (core.State, error)
	// Press applies actions in order.
	Press(ctx context.Context, actions []core.Action) (core.State, error)
	// PressKeys applies keyboard keys in order; unmapped keys are ignored.
	PressKeys(ctx context.Context, keys []string) (core.State, error)
}

// localDriver runs scenarios against an in-process machine.
type localDriver struct {
	machine *core.Machine
}

func newLocalDriver() *localDriver {
	return &localDriver{machine: core.NewMachine()}
}

func (d *localDriver) Start(context.Context) (core.State, error) {
	d.machine = core.NewMachine()
	return d.machine.State(), nil
}

func (d *localDriver) Press(_ context.Context, actions []core.Action) (core.State, error) {
	for _, action := range actions {
		d.machine.Apply(action)
	}
	return d.machine.State(), nil
}

func (d *localDriver) PressKeys(_ context.Context, keys []string) (core.State, error) {
	for _, key := range keys {
		if action, ok := core.ActionForKey(key); ok {
			d.machine.Apply(action)
		}
	}
	return d.machine.State(), nil
}

// calculatorClient is the slice of the calculator API the gRPC driver uses.
type calculatorClient interface {
	CreateSession(ctx context.Context, in *calcapi.CreateSessionRequest, opts ...grpc.CallOption) (*calcapi.CreateSessionResponse, error)
	Press(ctx context.Context, in *calcapi.PressRequest, opts ...grpc.CallOption) (*calcapi.PressResponse, error)
	PressKey(ctx context.Context, in *calcapi.PressKeyRequest, opts ...grpc.CallOption) (*calcapi.PressResponse, error)
	DeleteSession(ctx context.Context, in *calcapi.DeleteSessionRequest, opts ...grpc.CallOption) (*calcapi.DeleteSessionResponse, error)
}

// grpcDriver runs scenarios against sessions on the calculator service.
// Each Start opens a new session and deletes the previous one.
type grpcDriver struct {
	client    calculatorClient
	sessionID string
}

func newGRPCDriver(client calculatorClient) *grpcDriver {
	return &grpcDriver{client: client}
}

func (d *grpcDriver) Start(ctx context.Context) (core.State, error) {
	if err := d.finish(ctx); err != nil {
		return core.State{}, err
	}
	resp, err := d.client.CreateSession(ctx, &calcapi.CreateSessionRequest{})
	if err != nil {
		return core.State{}, fmt.Errorf("create session: %w", err)
	}
	d.sessionID = resp.Session.ID
	return resp.Session.State.Core(), nil
}

func (d *grpcDriver) Press(ctx context.Context, actions []core.Action) (core.State, error) {
	if d.sessionID == "" {
		return core.State{}, errors.New("session not started")
	}
	names := make([]string, 0, len(actions))
	for _, action := range actions {
		names = append(names, action.String())
	}
	resp, err := d.client.Press(ctx, &calcapi.PressRequest{SessionID: d.sessionID, Actions: names})
	if err != nil {
		return core.State{}, fmt.Errorf("press: %w", err)
	}
	return resp.State.Core(), nil
}

func (d *grpcDriver) PressKeys(ctx context.Context, keys []string) (core.State, error) {
	if d.sessionID == "" {
		return core.State{}, errors.New("session not started")
	}
	resp, err := d.client.PressKey(ctx, &calcapi.PressKeyRequest{SessionID: d.sessionID, Keys: keys})
	if err != nil {
		return core.State{}, fmt.Errorf("press keys: %w", err)
	}
	return resp.State.Core(), nil
}

// finish deletes the current session, if any.
func (d *grpcDriver) finish(ctx context.Context) error {
	if d.sessionID == "" {
		return nil
	}
	id := d.sessionID
	d.sessionID = ""
	if _, err := d.client.DeleteSession(ctx, &calcapi.DeleteSessionRequest{SessionID: id}); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}
