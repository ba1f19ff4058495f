// Command vybium-block-vm is a thin driver over the public vybiumblockvm
// API: it builds a small example program, executes it, and prints the
// resulting stack and cycle count. Building a program from source text is
// out of scope, so the program is assembled directly with the package's
// builder functions rather than read from a file.
package main

import (
	"fmt"
	"os"

	"github.com/vybium/vybium-block-vm/pkg/vybiumblockvm"
)

func main() {
	vmInstance, err := vybiumblockvm.NewVM(nil)
	if err != nil {
		fatal(fmt.Sprintf("failed to create VM: %v", err))
	}
	field := vmInstance.Field()

	// add; push(5); mul; push(7), starting from stack_init = [1, 2].
	script := vybiumblockvm.NewScript(vybiumblockvm.Span(
		vybiumblockvm.Add(),
		vybiumblockvm.Push(field, 5),
		vybiumblockvm.Mul(),
		vybiumblockvm.Push(field, 7),
	))

	input := vybiumblockvm.ProgramInput{
		StackInit: []*vybiumblockvm.FieldElement{
			field.NewElementFromInt64(1),
			field.NewElementFromInt64(2),
		},
	}

	trace, err := vmInstance.Execute(script, input)
	if err != nil {
		fatal(fmt.Sprintf("execution failed: %v", err))
	}

	info := trace.Info()
	fmt.Printf("clk_final=%d trace_length=%d trace_width=%d\n", info.ClkFinal, trace.Length(), info.Width)

	// Row layout: column 0 is fmp, columns 1..16 are the stack top segment
	// (position 0 = top of stack), as built by trace.go's ExecutionTrace.Row.
	final := trace.Row(info.ClkFinal)
	fmt.Print("top of stack:")
	for i := 1; i <= vybiumblockvm.MinStackDepth && i < len(final); i++ {
		fmt.Printf(" %s", final[i].String())
	}
	fmt.Println()
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "vybium-block-vm:", msg)
	os.Exit(1)
}
