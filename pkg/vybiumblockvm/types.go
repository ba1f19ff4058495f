package vybiumblockvm

import (
	"github.com/vybium/vybium-block-vm/internal/vybiumblockvm/core"
	"github.com/vybium/vybium-block-vm/internal/vybiumblockvm/vm"
)

// FieldElement is an element of the prime field the processor executes over.
type FieldElement = core.FieldElement

// Field is the prime field itself.
type Field = core.Field

// Word is the ordered 4-tuple of FieldElement that memory cells hold.
type Word = core.Word

// MinStackDepth is the minimum logical stack depth and the width of the
// stack's dense top segment (spec.md §3, §6).
const MinStackDepth = vm.MinStackDepth

// BlockKind identifies a CodeBlock's variant.
type BlockKind = vm.BlockKind

// The five code-block variants (spec.md §3).
const (
	KindSpan  = vm.KindSpan
	KindJoin  = vm.KindJoin
	KindSplit = vm.KindSplit
	KindLoop  = vm.KindLoop
	KindProxy = vm.KindProxy
)

// CodeBlock is a node in the program tree: Span, Join, Split, Loop, or Proxy.
type CodeBlock = vm.CodeBlock

// Script wraps a program's root CodeBlock with its deterministic hash.
type Script = vm.Script

// Hash is a CodeBlock or Script's structural identity.
type Hash = vm.Hash

// Op is a single user micro-operation with its immediate argument, if any.
type Op = vm.Op

// OpKind enumerates the user micro-operations a Span leaf may carry.
type OpKind = vm.OpKind

// The user micro-operation kinds (spec.md §3 "Span").
const (
	OpAdd             = vm.OpAdd
	OpMul             = vm.OpMul
	OpDiv             = vm.OpDiv
	OpPush            = vm.OpPush
	OpDrop            = vm.OpDrop
	OpDup             = vm.OpDup
	OpSwap            = vm.OpSwap
	OpEq              = vm.OpEq
	OpAssert          = vm.OpAssert
	OpAssertU32       = vm.OpAssertU32
	OpAdviceRead      = vm.OpAdviceRead
	OpMemRead         = vm.OpMemRead
	OpMemWrite        = vm.OpMemWrite
	OpAdviceSetLookup = vm.OpAdviceSetLookup
	OpAdviceSetUpdate = vm.OpAdviceSetUpdate
	OpFmpUpdate       = vm.OpFmpUpdate
)

// OpBatch groups a straight-line run of user operations inside a Span.
type OpBatch = vm.OpBatch

// AdviceSet is an authenticated set of field-element leaves.
type AdviceSet = vm.AdviceSet

// AdviceSetRoot is an AdviceSet's 32-byte authenticated identity.
type AdviceSetRoot = vm.AdviceSetRoot

// VmState is one per-cycle snapshot yielded by a StateIterator.
type VmState = vm.VmState

// AddressWord pairs a memory address with its resolved word.
type AddressWord = vm.AddressWord

// TraceInfo describes an ExecutionTrace's row count and row width.
type TraceInfo = vm.TraceInfo

// ExecutionTrace is the column-oriented view of a finished execution.
type ExecutionTrace = vm.ExecutionTrace

// StateIterator lazily replays a finished execution's per-cycle state.
type StateIterator = vm.StateIterator

// ExecutionError is the closed taxonomy of failures execution can stop on;
// VMError wraps it as Cause so callers can still errors.As into it.
type ExecutionError = vm.ExecutionError

// ErrorKind enumerates ExecutionError's taxonomy (spec.md §4.7).
type ErrorKind = vm.ErrorKind

// The execution error kinds (spec.md §4.7).
const (
	ErrUnsupportedCodeBlock  = vm.ErrUnsupportedCodeBlock
	ErrUnexecutableCodeBlock = vm.ErrUnexecutableCodeBlock
	ErrNotBinaryValue        = vm.ErrNotBinaryValue
	ErrStackUnderflow        = vm.ErrStackUnderflow
	ErrDivideByZero          = vm.ErrDivideByZero
	ErrFailedAssertion       = vm.ErrFailedAssertion
	ErrEmptyAdviceTape       = vm.ErrEmptyAdviceTape
	ErrAdviceSetNotFound     = vm.ErrAdviceSetNotFound
	ErrAdviceSetLookupFailed = vm.ErrAdviceSetLookupFailed
	ErrAdviceSetUpdateFailed = vm.ErrAdviceSetUpdateFailed
	ErrInvalidFmpValue       = vm.ErrInvalidFmpValue
	ErrNotU32Value           = vm.ErrNotU32Value
)

// ProgramInput bundles everything Execute needs beyond the script itself:
// the initial stack contents, the advice tape, and any advice sets the
// program may look up or update (spec.md §6 "program input envelope").
type ProgramInput struct {
	StackInit  []*FieldElement
	AdviceTape []*FieldElement
	AdviceSets []*AdviceSet
}
