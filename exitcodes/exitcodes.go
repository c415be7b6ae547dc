// Package exitcodes defines the standard exit codes used by spectree.
package exitcodes

// Exit code constants used by the spectree CLI:
//
// * Success (0): every selected test passed (or was pending/ignored)
// * TestFailure (1): one or more tests failed
// * RuntimeErr (2): registration failures, bad configuration, panics
const (
	Success     = 0
	TestFailure = 1
	RuntimeErr  = 2
)
