// Package script runs user-supplied Lua inside a restricted gopher-lua state.
//
// Only the base, table, string and math libraries are opened. Functions
// that load code from disk or strings are removed, and require only
// resolves the libraries that are already open. Execution is bound to the
// caller's context: cancelling the context stops a running script.
package script
