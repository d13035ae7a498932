// Package ui renders session snapshots to a terminal.
//
// Terminal implements session.View: state changes become one status line
// each, notices are shown until they expire or are dismissed, and the file
// picker reads a path from the configured input. Colour is only emitted when
// the output is a terminal.
package ui
