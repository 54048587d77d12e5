// Package server implements the MCP (Model Context Protocol) server for
// document verification.
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - document_scan: Extract identity data from an image file and score
//     its authenticity, optionally with a second tilted frame
//   - document_parse_mrz: Parse machine-readable zone text and report
//     which check digits match
//   - image_forensics: Run the forensic checks alone on one or two frames
//   - capabilities: Report document types, OCR and barcode backends and
//     forensic checks available in this build
//
// Images are read from disk on every call; nothing is cached between
// calls, so no document data outlives the request that carried it.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// An unreadable document is not an error: document_scan returns a result
// with success=false and a remediation hint, exactly like the HTTP API.
package server
