// Package runner executes the units of a registry and reports the outcome.
//
// Execution is strictly sequential, in the registry's iteration order.
// Every unit runs inside its own failure boundary on a goroutine that
// Execute waits for: returned errors, panics and runtime.Goexit are
// classified into an Outcome and recorded, and the next unit always runs.
// A failure value that panics while being inspected is reported as
// FailedUnknown. Execute never fails toward its caller. There is no
// timeout, so a unit that never returns blocks the whole run.
//
// The transcript is streamed to an injected sink.Sink:
//
//	------------------------------------------------------------
//	tidrun | tidrun | built unknown | 2 tests registered
//	------------------------------------------------------------
//	------------------------------------------------------------
//	BEGIN [[TID:000]alpha]
//	PASSED
//	END [[TID:000]alpha]
//	------------------------------------------------------------
//	...
//	------------------------------------------------------------
//	ALL TESTS DONE
//	2 passed, 0 failed, 2 total
//	------------------------------------------------------------
package runner
