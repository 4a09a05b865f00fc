// Package file loads budget-mcp configuration from the local filesystem.
//
// Settings are layered: built-in defaults, then the TOML file
// (~/.budget-mcp/config.toml), then a .env file in the working directory,
// then the process environment. A Watcher reloads the file when it changes.
package file
