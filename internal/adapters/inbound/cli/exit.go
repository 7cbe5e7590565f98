package cli

import "errors"

// Process exit codes.
const (
	ExitOK       = 0
	ExitErrors   = 1 // validation failed
	ExitWarnings = 2 // validate-sequence: warnings only
	ExitFailed   = 3 // the tool could not run
)

// ExitError carries a non-zero exit code. Err is nil when the result was
// already printed and there is nothing more to say.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps an Execute error to the process exit code. Errors that are
// not an *ExitError mean the command failed to run.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitFailed
}

// Message returns what should be printed to stderr for err, or "".
func Message(err error) string {
	var ee *ExitError
	if errors.As(err, &ee) && ee.Err == nil {
		return ""
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
