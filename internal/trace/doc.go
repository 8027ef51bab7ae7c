// Package trace records spans of the lowering pipeline to help diagnose slow
// or failing compilations.
//
// Enable tracing from the command line:
//
//	scriptc compile --trace=- --trace-level=detail app.prog.yaml
//
// Tracers:
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to a file or stderr
//   - RingTracer: last N events kept in memory, dumped on demand
//   - MultiTracer: fans out to several tracers
//
// Spans are scoped: ScopeDriver for the CLI run, ScopePass for the walk and
// the constructor passes, ScopeUnit for one source unit and ScopeDecl for a
// single declaration. The tracer level decides which scopes are recorded.
//
//	t := trace.FromContext(ctx)
//	span := trace.Begin(t, trace.ScopePass, "walk", parentID)
//	defer span.End("")
package trace
