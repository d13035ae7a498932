// Package preflight provides readiness checks for the processing service and
// the local directories vidup writes to.
//
// "vidup check" prints every result, and "vidup run" refuses to start when
// the service check fails so a session never begins against a dead endpoint.
package preflight
