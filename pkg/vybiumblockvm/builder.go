package vybiumblockvm

import "github.com/vybium/vybium-block-vm/internal/vybiumblockvm/vm"

// This file is the program-construction API that stands in for the textual
// assembler front-end, which is explicitly out of scope (spec.md §1):
// callers build a Script directly out of Op and CodeBlock values instead of
// compiling source text.

// Add pops two elements and pushes their sum.
func Add() Op { return Op{Kind: OpAdd} }

// Mul pops two elements and pushes their product.
func Mul() Op { return Op{Kind: OpMul} }

// Div pops two elements (divisor on top) and pushes their quotient.
func Div() Op { return Op{Kind: OpDiv} }

// Push pushes the given immediate value.
func Push(field *Field, value int64) Op {
	return Op{Kind: OpPush, Arg: field.NewElementFromInt64(value)}
}

// Drop pops and discards the top element.
func Drop() Op { return Op{Kind: OpDrop} }

// Dup duplicates the element at depth (0 = top) onto the top.
func Dup(field *Field, depth int) Op {
	return Op{Kind: OpDup, Arg: field.NewElementFromInt64(int64(depth))}
}

// Swap exchanges the top element with the one at depth.
func Swap(field *Field, depth int) Op {
	return Op{Kind: OpSwap, Arg: field.NewElementFromInt64(int64(depth))}
}

// Eq pops two elements and pushes 1 if they are equal, 0 otherwise.
func Eq() Op { return Op{Kind: OpEq} }

// Assert pops the top element and fails unless it is 1.
func Assert() Op { return Op{Kind: OpAssert} }

// AssertU32 fails unless the top element is below 2^32.
func AssertU32() Op { return Op{Kind: OpAssertU32} }

// AdviceRead consumes one element from the advice tape and pushes it.
func AdviceRead() Op { return Op{Kind: OpAdviceRead} }

// MemRead pops an address and pushes the word stored there.
func MemRead() Op { return Op{Kind: OpMemRead} }

// MemWrite pops an address and four elements and writes them as a word.
func MemWrite() Op { return Op{Kind: OpMemWrite} }

// AdviceSetLookup pops a root and an index and pushes the looked-up leaf.
func AdviceSetLookup() Op { return Op{Kind: OpAdviceSetLookup} }

// AdviceSetUpdate pops a root, an index and a value, and pushes the set's
// new root.
func AdviceSetUpdate() Op { return Op{Kind: OpAdviceSetUpdate} }

// FmpUpdate pops a signed offset and adds it to fmp.
func FmpUpdate() Op { return Op{Kind: OpFmpUpdate} }

// Span builds a Span code block from a flat list of ops, grouping them into
// batches automatically (spec.md §3 "Span").
func Span(ops ...Op) *CodeBlock {
	return vm.NewSpanOps(ops...)
}

// Join builds a Join code block sequencing first then second.
func Join(first, second *CodeBlock) *CodeBlock {
	return vm.NewJoin(first, second)
}

// Split builds a Split code block choosing onTrue or onFalse by the top of
// stack.
func Split(onTrue, onFalse *CodeBlock) *CodeBlock {
	return vm.NewSplit(onTrue, onFalse)
}

// Loop builds a Loop code block that repeats body while the top of stack is
// 1.
func Loop(body *CodeBlock) *CodeBlock {
	return vm.NewLoop(body)
}

// Proxy builds a reference to a block that is not inlined here; executing it
// is always an error.
func Proxy(target Hash) *CodeBlock {
	return vm.NewProxy(target)
}

// NewScript wraps root as the program entry point.
func NewScript(root *CodeBlock) *Script {
	return vm.NewScript(root)
}

// NewAdviceSet builds an authenticated advice set from leaves, failing if it
// would hold more than maxHeight leaves (0 disables the bound). Callers that
// already have a VM instance should prefer its NewAdviceSet method, which
// applies the VM's own ProcessorConfig.MaxAdviceSetHeight automatically.
func NewAdviceSet(leaves []*FieldElement, maxHeight int) (*AdviceSet, error) {
	return vm.NewAdviceSet(leaves, maxHeight)
}
