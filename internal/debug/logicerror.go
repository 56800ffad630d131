package debug

import "fmt"

// LogicError is panicked when an operation's documented contract is
// violated by the caller — invalid configuration, an out-of-range
// request, concurrent access — rather than a problem with stored data.
// Op names the violated contract so a recovered panic can be matched on
// without parsing Msg.
type LogicError struct {
	Op  string
	Msg string
}

func (e LogicError) Error() string { return e.Op + ": " + e.Msg }

// Panic panics with a LogicError built from op and a formatted message.
func Panic(op, format string, args ...any) {
	panic(LogicError{Op: op, Msg: fmt.Sprintf(format, args...)})
}
