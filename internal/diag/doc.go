// Package diag defines the diagnostic model shared by the loader and the
// declaration passes.
//
// Diagnostic is the central record: Severity, a stable Code (see codes.go, the
// thousands digit selects the DCL/IO/OBS/INT family), a short Message, the Primary
// span and optional Notes.
//
// Producers never store diagnostics themselves. They report through a Reporter;
// BagReporter collects into a Bag (limit, sort, dedup), DedupReporter filters
// repeats, and Locator adds the "current location" used by the declaration passes.
//
// Rendering lives in internal/diagfmt.
package diag
