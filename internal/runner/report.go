package runner

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/specialistvlad/tidrun/internal/registry"
)

// Outcome is the state of a single unit's run.
type Outcome int

const (
	NotStarted Outcome = iota
	Running
	Passed
	// FailedDomain: the unit failed with a structured error carrying a code.
	FailedDomain
	// FailedStandard: the unit failed with a plain error.
	FailedStandard
	// FailedUnknown: the unit panicked with a value that is not an error.
	FailedUnknown
)

func (o Outcome) String() string {
	switch o {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Passed:
		return "passed"
	case FailedDomain:
		return "failed_domain"
	case FailedStandard:
		return "failed_standard"
	case FailedUnknown:
		return "failed_unknown"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Terminal reports whether o ends a unit's run.
func (o Outcome) Terminal() bool {
	return o >= Passed
}

// Failed reports whether o is one of the failure outcomes.
func (o Outcome) Failed() bool {
	return o == FailedDomain || o == FailedStandard || o == FailedUnknown
}

// RunResult is the record of one unit's run.
type RunResult struct {
	Entry   registry.Entry
	Outcome Outcome
	// Message is the error text, or the printed panic value for
	// FailedUnknown. Empty when the unit passed.
	Message string
	Code    int
	HasCode bool
	// Err is the error the unit failed with, nil for Passed and
	// FailedUnknown.
	Err      error
	Duration time.Duration
}

// Line renders the result line written between the BEGIN and END banners.
func (r RunResult) Line() string {
	switch r.Outcome {
	case Passed:
		return "PASSED"
	case FailedDomain:
		return fmt.Sprintf("FAILED [code %d] %s", r.Code, r.Message)
	case FailedStandard:
		return "FAILED " + r.Message
	case FailedUnknown:
		return "FAILED Unknown exception"
	default:
		return "NOT RUN"
	}
}

// Report is the result of one Execute call.
type Report struct {
	RunID    uuid.UUID
	Started  time.Time
	Finished time.Time
	Results  []RunResult
}

// Len returns the number of units that ran.
func (r *Report) Len() int { return len(r.Results) }

// Passed returns the number of passing units.
func (r *Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == Passed {
			n++
		}
	}
	return n
}

// Failed returns the number of failing units.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome.Failed() {
			n++
		}
	}
	return n
}

// OK reports whether no unit failed. An empty report is OK.
func (r *Report) OK() bool { return r.Failed() == 0 }

// Summary renders the closing count line.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d passed, %d failed, %d total", r.Passed(), r.Failed(), r.Len())
}
