// Package normalisers turns upstream records into the shapes returned to
// MCP clients.
package normalisers
