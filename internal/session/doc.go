// Package session drives one upload/poll/result cycle against the processing
// service.
//
// A Controller owns the Session and is the only goroutine that mutates it.
// User actions arrive through Dispatch, network completions are posted back to
// the loop by the goroutines that issued them, and every transition is pushed
// to the View as an immutable Snapshot. Completions carry the epoch and task id
// they were issued for; anything that no longer matches the live session is
// dropped, which keeps Completed and Failed sticky against late replies.
//
// State flow:
//
//	Idle -> Previewing -> Uploading -> Processing -> Completed | Failed
//
// Reset and Reselect return any state to Idle.
package session
