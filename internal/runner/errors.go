package runner

import (
	"errors"
	"fmt"
	"syscall"
)

// Coder is implemented by structured errors that carry a numeric code.
// Units failing with such an error are reported as FailedDomain.
type Coder interface {
	Code() int
}

// CodedError is a ready-made error with a message and a code.
type CodedError struct {
	Message string
	Value   int
}

// Errorf builds a CodedError with a formatted message.
func Errorf(code int, format string, args ...any) *CodedError {
	return &CodedError{Message: fmt.Sprintf(format, args...), Value: code}
}

func (e *CodedError) Error() string { return e.Message }

// Code implements Coder.
func (e *CodedError) Code() int { return e.Value }

// classifyError maps a unit's error onto an outcome. Coded errors win over
// plain ones; system errno values count as coded.
func classifyError(err error, res *RunResult) {
	if err == nil {
		res.Outcome = Passed
		return
	}
	res.Message = err.Error()
	res.Err = err

	var coder Coder
	if errors.As(err, &coder) {
		res.Outcome = FailedDomain
		res.Code = coder.Code()
		res.HasCode = true
		return
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		res.Outcome = FailedDomain
		res.Code = int(errno)
		res.HasCode = true
		return
	}
	res.Outcome = FailedStandard
}

// classifyPanic maps a recovered panic value onto an outcome. Panics with
// an error value are classified like returned errors; anything else is
// unknown.
func classifyPanic(v any, res *RunResult) {
	if err, ok := v.(error); ok {
		classifyError(err, res)
		return
	}
	res.Outcome = FailedUnknown
	res.Message = fmt.Sprint(v)
	res.Err = nil
}

// classifySafely runs classify and turns a panic raised while reading the
// failure value (a typed-nil error, a panicking Error or Code method) into
// FailedUnknown.
func classifySafely(res *RunResult, classify func()) {
	defer func() {
		if v := recover(); v != nil {
			res.Outcome = FailedUnknown
			res.Message = fmt.Sprint(v)
			res.Code, res.HasCode, res.Err = 0, false, nil
		}
	}()
	classify()
}
