package serial

import "syscall"

// Error wraps a transport-level failure with the operation that
// produced it, the way the teacher's error.go wrapped syscall errors
// with a short message.
type Error struct {
	msg string
	err error
}

func (e Error) Error() string {
	if e.msg != "" {
		msg := e.msg
		if e.err != nil {
			msg += ": " + e.err.Error()
		}
		return msg
	}
	if e.err != nil {
		return e.err.Error()
	}
	return ""
}

func (e Error) Unwrap() error {
	return e.err
}

func wrapErr(msg string, e error) error {
	if e == nil {
		return nil
	}
	return Error{msg: msg, err: e}
}

// Sentinel transport errors, the three spec §4.1 names: "Timeout",
// "IoClosed", "Interrupted".
var (
	ErrTimeout     = Error{"read timed out", nil}
	ErrClosed      = Error{"port already closed", syscall.EBADF}
	ErrInterrupted = Error{"operation interrupted", syscall.EINTR}
)
