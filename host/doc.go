// Package host isolates a rendering backend inside a child OS process.
//
// The parent side is Process: Start launches a child executable with two
// pipes attached (a command pipe the parent writes and a result pipe the
// child writes), Render performs one blocking request/response round
// trip, and Stop shuts the child down gracefully with a bounded grace
// period before force-killing it.
//
// The child side is Serve: a command loop that reads render requests off
// the command pipe, runs them against a backend, and writes fixed-size
// results back. A failed render is reported in the result and the loop
// continues; only shutdown, EOF on the command pipe, or a wire error
// ends it. ServeFDs serves on the pipe descriptors inherited from a
// parent Process.
//
// The wire protocol is little-endian and strictly request/response with
// at most one render in flight. Driver crashes or hostile SDCS input can
// take down the child, never the parent.
package host
