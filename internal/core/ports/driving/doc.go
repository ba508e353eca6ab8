// Package driving defines the interfaces through which external actors
// drive the core (primary/inbound ports).
//
// The MCP server, the diagnostic HTTP façade, the CLI, and the TUI all
// call the core exclusively through these interfaces; core services
// implement them.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driving
