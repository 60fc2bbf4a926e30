// Package timeouts holds the durations calcdeck services agree on.
package timeouts

import "time"

const (
	// GRPCDial bounds dialing the calc service and waiting for it to report
	// healthy.
	GRPCDial = 2 * time.Second
	// GRPCRequest bounds one calc call made while serving a browser request.
	GRPCRequest = 2 * time.Second
	// ToolCall bounds one calc call made by an MCP tool.
	ToolCall = 5 * time.Second
	// ReadHeader bounds how long HTTP servers wait for request headers.
	ReadHeader = 5 * time.Second
	// Shutdown bounds graceful shutdown of HTTP and gRPC servers.
	Shutdown = 5 * time.Second
)
