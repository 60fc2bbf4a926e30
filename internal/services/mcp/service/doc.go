// Package service runs the calculator MCP server over stdio or streamable
// HTTP and registers the domain tools against a calculator API connection.
package service
