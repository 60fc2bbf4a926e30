// Package domain maps MCP tool calls onto the calculator gRPC API.
//
// Each tool has an input and result struct whose json and jsonschema tags
// drive the schema advertised to MCP clients, a Tool constructor and a
// handler built over CalculatorClient.
package domain
