// Package main hosts the vidup CLI entrypoint and command graph.
//
// The Cobra command tree wraps the session controller for end-to-end runs
// ("vidup run") and exposes the individual service calls (upload, status,
// fetch) for scripting. Configuration resolution and logger setup live in the
// shared command context so subcommands only deal with their own flags.
package main
