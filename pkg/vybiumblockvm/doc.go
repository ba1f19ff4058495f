// Package vybiumblockvm provides a stack-based virtual machine for a
// zero-knowledge-proof-friendly instruction set over a prime field.
//
// The VM executes a tree of code blocks — Span, Join, Split, Loop, and
// Proxy — deterministically over a field-element operand stack, emitting a
// column-oriented execution trace suitable as input to a STARK prover.
// Building that proof, and the textual assembler that would otherwise
// translate source text into the code-block tree, are both out of scope;
// this package starts one step downstream of the assembler, with a direct
// program-construction API, and stops one step upstream of the prover, at
// the execution trace.
//
// # Quick Start
//
// Building and executing a small program that pushes 2 and 3 and asserts
// their sum is 5:
//
//	vmInstance, err := vybiumblockvm.NewVM(nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	field := vmInstance.Field()
//
//	script := vybiumblockvm.NewScript(vybiumblockvm.Span(
//		vybiumblockvm.Push(field, 2),
//		vybiumblockvm.Push(field, 3),
//		vybiumblockvm.Add(),
//		vybiumblockvm.Push(field, 5),
//		vybiumblockvm.Eq(),
//		vybiumblockvm.Assert(),
//	))
//
//	trace, err := vmInstance.Execute(script, vybiumblockvm.ProgramInput{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(trace.Info())
//
// # Replaying execution cycle by cycle
//
//	it, err := vmInstance.ExecuteIter(script, vybiumblockvm.ProgramInput{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	for it.Next() {
//		state := it.State()
//		fmt.Println(state.Clk, state.Stack[0])
//	}
//	if err := it.Err(); err != nil {
//		log.Fatal(err)
//	}
//
// # Architecture
//
// vybium-block-vm uses the same hybrid public/private layout as its sibling
// projects:
//
//   - pkg/vybiumblockvm/: public API (this package)
//   - internal/vybiumblockvm/: private implementation (not importable)
//
// Implementation details in internal/ can be refactored without breaking
// the public API.
package vybiumblockvm
