// Package services defines shared utilities consumed by the session
// controller and the processing service client.
//
// Key responsibilities:
//   - Context helpers that stamp task identifiers and correlation IDs for
//     logging and request tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     (validation, transport, protocol, server-reported, retry exhaustion)
//     and carry the user-facing notice text alongside the cause.
//
// Use these helpers when adding new failure paths so notices, status text,
// and logs stay uniform.
package services
