// Package requestctx carries the request id across HTTP and gRPC hops.
package requestctx

import (
	"context"
	"log"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// MetadataKey is the gRPC metadata key holding the request id.
const MetadataKey = "x-request-id"

// requestIDContextKey is the context key for the correlation id.
type requestIDContextKey struct{}

// WithRequestID stores a request identifier in context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext returns the request identifier stored in context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDContextKey{}).(string)
	return value
}

// OutgoingContext forwards the context's request id as gRPC metadata.
func OutgoingContext(ctx context.Context) context.Context {
	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, MetadataKey, requestID)
}

// UnaryClientInterceptor forwards the request id of each call's context.
func UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		return invoker(OutgoingContext(ctx), method, req, reply, cc, opts...)
	}
}

// UnaryServerInterceptor restores the caller's request id into the handler
// context and logs failed calls with it.
func UnaryServerInterceptor(logger *log.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(MetadataKey); len(values) > 0 {
				requestID = strings.TrimSpace(values[0])
			}
		}
		if requestID != "" {
			ctx = WithRequestID(ctx, requestID)
		}

		resp, err := handler(ctx, req)
		if err != nil {
			if requestID == "" {
				requestID = "-"
			}
			printf := log.Printf
			if logger != nil {
				printf = logger.Printf
			}
			printf("grpc %s code=%s request_id=%s: %s", info.FullMethod, status.Code(err), requestID, status.Convert(err).Message())
		}
		return resp, err
	}
}
