// Package memory provides in-memory implementations of the driven store ports.
//
// The token store is the default session store: the credential lives only as
// long as the process. The authorization request store always lives here,
// since pending flows never outlive the process that started them.
package memory
