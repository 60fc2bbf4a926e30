package calculator

import (
	"context"

	"github.com/louisbranch/calcdeck/internal/platform/grpc/jsoncodec"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Client calls the calculator service over an existing connection.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps conn.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// WithLocale returns a context that asks the server for error messages in
// locale.
func WithLocale(ctx context.Context, locale string) context.Context {
	if locale == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, LocaleHeader, locale)
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(jsoncodec.Name)}, opts...)
	return c.conn.Invoke(ctx, method, in, out, opts...)
}

func (c *Client) CreateSession(ctx context.Context, in *CreateSessionRequest, opts ...grpc.CallOption) (*CreateSessionResponse, error) {
	if in == nil {
		in = &CreateSessionRequest{}
	}
	out := new(CreateSessionResponse)
	if err := c.invoke(ctx, methodCreateSession, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSession(ctx context.Context, in *GetSessionRequest, opts ...grpc.CallOption) (*GetSessionResponse, error) {
	out := new(GetSessionResponse)
	if err := c.invoke(ctx, methodGetSession, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteSession(ctx context.Context, in *DeleteSessionRequest, opts ...grpc.CallOption) (*DeleteSessionResponse, error) {
	out := new(DeleteSessionResponse)
	if err := c.invoke(ctx, methodDeleteSession, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Press(ctx context.Context, in *PressRequest, opts ...grpc.CallOption) (*PressResponse, error) {
	out := new(PressResponse)
	if err := c.invoke(ctx, methodPress, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PressKey(ctx context.Context, in *PressKeyRequest, opts ...grpc.CallOption) (*PressResponse, error) {
	out := new(PressResponse)
	if err := c.invoke(ctx, methodPressKey, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Evaluate(ctx context.Context, in *EvaluateRequest, opts ...grpc.CallOption) (*EvaluateResponse, error) {
	out := new(EvaluateResponse)
	if err := c.invoke(ctx, methodEvaluate, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListTape(ctx context.Context, in *ListTapeRequest, opts ...grpc.CallOption) (*ListTapeResponse, error) {
	out := new(ListTapeResponse)
	if err := c.invoke(ctx, methodListTape, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
