package vm

import "fmt"

// ErrorKind is the closed taxonomy of execution failures (spec.md §4.7).
type ErrorKind int

const (
	// ErrUnsupportedCodeBlock reports an unknown code-block variant or an
	// unknown user op kind.
	ErrUnsupportedCodeBlock ErrorKind = iota
	// ErrUnexecutableCodeBlock reports an attempt to execute a Proxy block.
	ErrUnexecutableCodeBlock
	// ErrNotBinaryValue reports a control-flow predicate outside {0, 1}.
	ErrNotBinaryValue
	// ErrStackUnderflow reports an operation needing more elements than present.
	ErrStackUnderflow
	// ErrDivideByZero reports field division by zero.
	ErrDivideByZero
	// ErrFailedAssertion reports an assertion op whose top was not one.
	ErrFailedAssertion
	// ErrEmptyAdviceTape reports an advice read past the end of the tape.
	ErrEmptyAdviceTape
	// ErrAdviceSetNotFound reports a reference to an unknown advice set root.
	ErrAdviceSetNotFound
	// ErrAdviceSetLookupFailed reports a failed lookup inside an advice set.
	ErrAdviceSetLookupFailed
	// ErrAdviceSetUpdateFailed reports a failed update of an advice set.
	ErrAdviceSetUpdateFailed
	// ErrInvalidFmpValue reports fmp moving outside its valid range.
	ErrInvalidFmpValue
	// ErrNotU32Value reports a u32-domain operation seeing a value >= 2^32.
	ErrNotU32Value
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedCodeBlock:
		return "UnsupportedCodeBlock"
	case ErrUnexecutableCodeBlock:
		return "UnexecutableCodeBlock"
	case ErrNotBinaryValue:
		return "NotBinaryValue"
	case ErrStackUnderflow:
		return "StackUnderflow"
	case ErrDivideByZero:
		return "DivideByZero"
	case ErrFailedAssertion:
		return "FailedAssertion"
	case ErrEmptyAdviceTape:
		return "EmptyAdviceTape"
	case ErrAdviceSetNotFound:
		return "AdviceSetNotFound"
	case ErrAdviceSetLookupFailed:
		return "AdviceSetLookupFailed"
	case ErrAdviceSetUpdateFailed:
		return "AdviceSetUpdateFailed"
	case ErrInvalidFmpValue:
		return "InvalidFmpValue"
	case ErrNotU32Value:
		return "NotU32Value"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ExecutionError is the single error type execution can fail with. It always
// carries the clock cycle at which the failure was detected, plus whatever
// kind-specific parameter pins down the cause (spec.md §4.7, §7).
type ExecutionError struct {
	Kind  ErrorKind
	Clk   uint64
	Value string // offending value / site / root, formatted; kind-dependent
	Site  string // the code-block or op that raised it, where useful; for InvalidFmpValue, the fmp value before the move
}

func (e *ExecutionError) Error() string {
	switch {
	case e.Value != "" && e.Site != "":
		return fmt.Sprintf("%s at clk=%d (%s): %s", e.Kind, e.Clk, e.Site, e.Value)
	case e.Value != "":
		return fmt.Sprintf("%s at clk=%d: %s", e.Kind, e.Clk, e.Value)
	case e.Site != "":
		return fmt.Sprintf("%s at clk=%d (%s)", e.Kind, e.Clk, e.Site)
	default:
		return fmt.Sprintf("%s at clk=%d", e.Kind, e.Clk)
	}
}
