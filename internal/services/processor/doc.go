// Package processor talks to the remote video-processing service.
//
// The service exposes three endpoints: a multipart upload that returns a task
// identifier, a status endpoint polled with that identifier, and a result
// endpoint that streams the processed MP4. Every failure is tagged with one of
// the markers from internal/services so callers can tell transport problems
// from malformed replies and server-reported failures.
package processor
