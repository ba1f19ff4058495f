package vm

import "github.com/vybium/vybium-block-vm/internal/vybiumblockvm/core"

// OpKind enumerates the user micro-operations a Span leaf can carry
// (spec.md §3 "Span", §4.1). Each one is dispatched by the executor and
// then notified to the decoder, together advancing the clock by one.
type OpKind int

const (
	// OpAdd pops two elements and pushes their sum.
	OpAdd OpKind = iota
	// OpMul pops two elements and pushes their product.
	OpMul
	// OpDiv pops two elements (divisor on top) and pushes their quotient.
	OpDiv
	// OpPush pushes the op's immediate argument.
	OpPush
	// OpDrop pops and discards the top element.
	OpDrop
	// OpDup duplicates the element at the immediate depth to the top.
	OpDup
	// OpSwap swaps the top element with the one at the immediate depth.
	OpSwap
	// OpEq pops two elements and pushes 1 if equal, 0 otherwise.
	OpEq
	// OpAssert pops the top element and fails unless it is 1.
	OpAssert
	// OpAssertU32 fails unless the top element is < 2^32 (spec.md §4.7
	// NotU32Value); it does not perform any bitwise decomposition, which
	// belongs to the out-of-scope U32 co-processor.
	OpAssertU32
	// OpAdviceRead consumes one element from the advice tape and pushes it.
	OpAdviceRead
	// OpMemRead pops an address and pushes the word stored there, so that
	// after the op the word's four elements read top-to-bottom in their
	// original order.
	OpMemRead
	// OpMemWrite pops an address and four elements (top-to-bottom) and
	// writes them, in that same order, as a word to that address.
	OpMemWrite
	// OpAdviceSetLookup pops four root chunks (top-to-bottom) and an index
	// and pushes the looked-up leaf.
	OpAdviceSetLookup
	// OpAdviceSetUpdate pops four root chunks (top-to-bottom), an index and
	// a value, updates the leaf, and pushes the set's new root as four
	// chunks, top-to-bottom.
	OpAdviceSetUpdate
	// OpFmpUpdate pops a signed offset and adds it to fmp, failing
	// InvalidFmpValue if the result would move fmp negative (spec.md §4.7
	// InvalidFmpValue; the original tnachen/miden processor's `fmpupdate`).
	OpFmpUpdate
)

func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpPush:
		return "push"
	case OpDrop:
		return "drop"
	case OpDup:
		return "dup"
	case OpSwap:
		return "swap"
	case OpEq:
		return "eq"
	case OpAssert:
		return "assert"
	case OpAssertU32:
		return "assert_u32"
	case OpAdviceRead:
		return "read"
	case OpMemRead:
		return "mem_read"
	case OpMemWrite:
		return "mem_write"
	case OpAdviceSetLookup:
		return "advice_set_lookup"
	case OpAdviceSetUpdate:
		return "advice_set_update"
	case OpFmpUpdate:
		return "fmpupdate"
	default:
		return "unknown_op"
	}
}

// Op is a single user micro-operation together with its immediate argument,
// when it takes one.
type Op struct {
	Kind OpKind
	Arg  *core.FieldElement // immediate for Push; depth for Dup/Swap
}

// OpBatch groups a straight-line run of user operations (spec.md §3
// "Span { op_batches: […] }").
type OpBatch struct {
	Ops []Op
}

// MaxBatchOps bounds how many operations NewSpanOps packs per batch before
// starting a new one.
const MaxBatchOps = 8

// NewSpanOps groups a flat list of ops into batches of at most MaxBatchOps,
// then returns the Span code block.
func NewSpanOps(ops ...Op) *CodeBlock {
	var batches []OpBatch
	for len(ops) > 0 {
		n := MaxBatchOps
		if n > len(ops) {
			n = len(ops)
		}
		batches = append(batches, OpBatch{Ops: append([]Op(nil), ops[:n]...)})
		ops = ops[n:]
	}
	if len(batches) == 0 {
		batches = []OpBatch{{}}
	}
	return NewSpan(batches...)
}
