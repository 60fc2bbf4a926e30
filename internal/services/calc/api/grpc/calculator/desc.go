package calculator

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "calcdeck.v1.CalculatorService"

const (
	methodCreateSession = "/" + ServiceName + "/CreateSession"
	methodGetSession    = "/" + ServiceName + "/GetSession"
	methodDeleteSession = "/" + ServiceName + "/DeleteSession"
	methodPress         = "/" + ServiceName + "/Press"
	methodPressKey      = "/" + ServiceName + "/PressKey"
	methodEvaluate      = "/" + ServiceName + "/Evaluate"
	methodListTape      = "/" + ServiceName + "/ListTape"
)

// CalculatorServiceServer is the server API for the calculator service.
type CalculatorServiceServer interface {
	CreateSession(context.Context, *CreateSessionRequest) (*CreateSessionResponse, error)
	GetSession(context.Context, *GetSessionRequest) (*GetSessionResponse, error)
	DeleteSession(context.Context, *DeleteSessionRequest) (*DeleteSessionResponse, error)
	Press(context.Context, *PressRequest) (*PressResponse, error)
	PressKey(context.Context, *PressKeyRequest) (*PressResponse, error)
	Evaluate(context.Context, *EvaluateRequest) (*EvaluateResponse, error)
	ListTape(context.Context, *ListTapeRequest) (*ListTapeResponse, error)
}

// RegisterCalculatorServiceServer registers srv on registrar.
func RegisterCalculatorServiceServer(registrar grpc.ServiceRegistrar, srv CalculatorServiceServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

// ServiceDesc describes the calculator service. Messages travel through the
// JSON codec, so callers must select it as the call content subtype.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateSession", Handler: unaryHandler(methodCreateSession, CalculatorServiceServer.CreateSession)},
		{MethodName: "GetSession", Handler: unaryHandler(methodGetSession, CalculatorServiceServer.GetSession)},
		{MethodName: "DeleteSession", Handler: unaryHandler(methodDeleteSession, CalculatorServiceServer.DeleteSession)},
		{MethodName: "Press", Handler: unaryHandler(methodPress, CalculatorServiceServer.Press)},
		{MethodName: "PressKey", Handler: unaryHandler(methodPressKey, CalculatorServiceServer.PressKey)},
		{MethodName: "Evaluate", Handler: unaryHandler(methodEvaluate, CalculatorServiceServer.Evaluate)},
		{MethodName: "ListTape", Handler: unaryHandler(methodListTape, CalculatorServiceServer.ListTape)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "calcdeck/v1/calculator.proto",
}

// unaryHandler adapts a typed server method to grpc.MethodDesc.Handler.
func unaryHandler[Req any, Resp any](
	fullMethod string,
	call func(CalculatorServiceServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(CalculatorServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(server, ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
