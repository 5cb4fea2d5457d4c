// Package nav owns top-level tab navigation: the fixed tab set, a bounded
// history of visited tabs, and the Navigator state machine with its animated
// (delayed, last-write-wins) transitions.
//
// Allowed here:
// - tab metadata, history policy, transition scheduling
// - observer and subscriber fan-out
//
// Not allowed here:
// - rendering, key handling, persistence
package nav
