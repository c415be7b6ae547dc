// Package types contains shared types used across the spectree engine.
package types

import (
	"errors"
	"time"
)

// TestStatus represents the possible states of a test execution
type TestStatus string

const (
	TestStatusNotRun  TestStatus = "notrun"
	TestStatusPass    TestStatus = "pass"
	TestStatusFail    TestStatus = "fail"
	TestStatusPending TestStatus = "pending"
	TestStatusIgnored TestStatus = "ignored"
)

// String implements the Stringer interface for TestStatus
func (s TestStatus) String() string {
	return string(s)
}

// ErrPending is the sentinel a test body returns (or panics with) to signal
// that the test is a declared-but-unimplemented placeholder. A pending test
// counts as executed, not failed.
var ErrPending = errors.New("test pending")

// TestFunc is a test body. A nil return is a pass, ErrPending is a pending
// outcome, and any other error is a failure. Panics are recovered by the
// dispatcher and converted to failures.
type TestFunc func() error

// TestLeaf is a single registered test. Immutable after registration; owned
// exclusively by the registry.
type TestLeaf struct {
	Name         string          // full name, ancestor scope names joined with single spaces
	Fn           TestFunc        // raw test body, invoked only through the fixture hook
	ExplicitTags map[string]bool // tags declared on the leaf itself
	Location     string          // opaque source location, used for navigation only
}

// TestResult captures the outcome of a single test run
type TestResult struct {
	Name     string
	Status   TestStatus
	Error    error // failure cause, invocation-wrapper layers stripped
	Duration time.Duration
}
