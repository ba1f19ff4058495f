package vm

import (
	"math/big"
	"testing"
)

// TestSpanArithmetic covers spec.md §8 E1: Span[add; push(5); mul; push(7)]
// with stack_init = [1, 2] (2 on top) must leave top=7, next=15.
func TestSpanArithmetic(t *testing.T) {
	f := testFieldVM(t)
	script := NewScript(NewSpanOps(
		Op{Kind: OpAdd},
		Op{Kind: OpPush, Arg: f.NewElementFromInt64(5)},
		Op{Kind: OpMul},
		Op{Kind: OpPush, Arg: f.NewElementFromInt64(7)},
	))

	p := NewProcess(f, elems(t, f, 1, 2), nil, nil, true)
	if err := p.Execute(script); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	top, err := p.Stack().PeekAt(0)
	if err != nil {
		t.Fatalf("PeekAt(0): %v", err)
	}
	next, err := p.Stack().PeekAt(1)
	if err != nil {
		t.Fatalf("PeekAt(1): %v", err)
	}
	if got := top.Big().Int64(); got != 7 {
		t.Errorf("top = %d, want 7", got)
	}
	if got := next.Big().Int64(); got != 15 {
		t.Errorf("next = %d, want 15", got)
	}
}

func TestJoinSequencesBothBlocks(t *testing.T) {
	f := testFieldVM(t)
	script := NewScript(NewJoin(
		NewSpanOps(Op{Kind: OpPush, Arg: f.NewElementFromInt64(1)}),
		NewSpanOps(Op{Kind: OpPush, Arg: f.NewElementFromInt64(2)}),
	))

	p := NewProcess(f, nil, nil, nil, true)
	if err := p.Execute(script); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	top, _ := p.Stack().PeekAt(0)
	next, _ := p.Stack().PeekAt(1)
	if top.Big().Int64() != 2 || next.Big().Int64() != 1 {
		t.Errorf("top=%s next=%s, want 2 then 1", top, next)
	}
}

func TestSplitTakesTrueBranch(t *testing.T) {
	f := testFieldVM(t)
	onTrue := NewSpanOps(Op{Kind: OpPush, Arg: f.NewElementFromInt64(111)})
	onFalse := NewSpanOps(Op{Kind: OpPush, Arg: f.NewElementFromInt64(222)})
	script := NewScript(NewJoin(
		NewSpanOps(Op{Kind: OpPush, Arg: f.One()}),
		NewSplit(onTrue, onFalse),
	))

	p := NewProcess(f, nil, nil, nil, true)
	if err := p.Execute(script); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	top, _ := p.Stack().PeekAt(0)
	if top.Big().Int64() != 111 {
		t.Errorf("top = %s, want 111 (true branch)", top)
	}
}

func TestSplitTakesFalseBranch(t *testing.T) {
	f := testFieldVM(t)
	onTrue := NewSpanOps(Op{Kind: OpPush, Arg: f.NewElementFromInt64(111)})
	onFalse := NewSpanOps(Op{Kind: OpPush, Arg: f.NewElementFromInt64(222)})
	script := NewScript(NewJoin(
		NewSpanOps(Op{Kind: OpPush, Arg: f.Zero()}),
		NewSplit(onTrue, onFalse),
	))

	p := NewProcess(f, nil, nil, nil, true)
	if err := p.Execute(script); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	top, _ := p.Stack().PeekAt(0)
	if top.Big().Int64() != 222 {
		t.Errorf("top = %s, want 222 (false branch)", top)
	}
}

func TestSplitRejectsNonBinaryPredicate(t *testing.T) {
	f := testFieldVM(t)
	onTrue := NewSpanOps(Op{Kind: OpPush, Arg: f.NewElementFromInt64(111)})
	onFalse := NewSpanOps(Op{Kind: OpPush, Arg: f.NewElementFromInt64(222)})
	script := NewScript(NewJoin(
		NewSpanOps(Op{Kind: OpPush, Arg: f.NewElementFromInt64(2)}),
		NewSplit(onTrue, onFalse),
	))

	p := NewProcess(f, nil, nil, nil, true)
	err := p.Execute(script)
	if err == nil {
		t.Fatal("expected NotBinaryValue error, got nil")
	}
	execErr, ok := err.(*ExecutionError)
	if !ok || execErr.Kind != ErrNotBinaryValue {
		t.Errorf("got %v, want ErrNotBinaryValue", err)
	}
}

func TestLoopZeroIterations(t *testing.T) {
	f := testFieldVM(t)
	body := NewSpanOps(Op{Kind: OpPush, Arg: f.NewElementFromInt64(999)})
	script := NewScript(NewJoin(
		NewSpanOps(Op{Kind: OpPush, Arg: f.Zero()}),
		NewLoop(body),
	))

	p := NewProcess(f, nil, nil, nil, true)
	if err := p.Execute(script); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	top, _ := p.Stack().PeekAt(0)
	if top.Big().Int64() != 0 {
		t.Errorf("top = %s, want 0 (the zero-iteration path leaves the padded zero on top)", top)
	}
}

func TestLoopRunsUntilPredicateFalse(t *testing.T) {
	f := testFieldVM(t)
	// Loop body: read the next advice bit, leaving it on top as the new
	// predicate. Drives the loop for exactly as many 1s as the tape holds
	// before its first 0.
	body := NewSpanOps(Op{Kind: OpAdviceRead})
	script := NewScript(NewJoin(
		NewSpanOps(Op{Kind: OpAdviceRead}),
		NewLoop(body),
	))

	tape := elems(t, f, 1, 1, 1, 0)
	p := NewProcess(f, nil, tape, nil, true)
	if err := p.Execute(script); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if p.advice.tapePos != len(tape) {
		t.Errorf("advice tape consumed %d elements, want %d", p.advice.tapePos, len(tape))
	}
}

func TestProxyIsUnexecutable(t *testing.T) {
	f := testFieldVM(t)
	script := NewScript(NewProxy(Hash{0x01}))
	p := NewProcess(f, nil, nil, nil, true)
	err := p.Execute(script)
	execErr, ok := err.(*ExecutionError)
	if !ok || execErr.Kind != ErrUnexecutableCodeBlock {
		t.Errorf("got %v, want ErrUnexecutableCodeBlock", err)
	}
}

func TestClockAdvancesByExactlyOnePerMicroOp(t *testing.T) {
	f := testFieldVM(t)
	script := NewScript(NewSpanOps(
		Op{Kind: OpPush, Arg: f.NewElementFromInt64(1)},
		Op{Kind: OpDrop},
	))
	p := NewProcess(f, nil, nil, nil, true)
	prevClk := p.Sys().Clk()
	if err := p.Execute(script); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// StartSpan no-op, push, drop, EndSpan no-op: 4 clock-advancing steps.
	if got := p.Sys().Clk(); got != prevClk+4 {
		t.Errorf("clk_final = %d, want %d", got, prevClk+4)
	}
}

func TestDivideByZero(t *testing.T) {
	f := testFieldVM(t)
	script := NewScript(NewSpanOps(
		Op{Kind: OpPush, Arg: f.NewElementFromInt64(10)},
		Op{Kind: OpPush, Arg: f.Zero()},
		Op{Kind: OpDiv},
	))
	p := NewProcess(f, nil, nil, nil, true)
	err := p.Execute(script)
	execErr, ok := err.(*ExecutionError)
	if !ok || execErr.Kind != ErrDivideByZero {
		t.Errorf("got %v, want ErrDivideByZero", err)
	}
}

func TestMemoryReadWriteRoundTrip(t *testing.T) {
	f := testFieldVM(t)
	script := NewScript(NewSpanOps(
		Op{Kind: OpPush, Arg: f.NewElementFromInt64(4)},
		Op{Kind: OpPush, Arg: f.NewElementFromInt64(3)},
		Op{Kind: OpPush, Arg: f.NewElementFromInt64(2)},
		Op{Kind: OpPush, Arg: f.NewElementFromInt64(1)},
		Op{Kind: OpPush, Arg: f.NewElementFromInt64(100)}, // address
		Op{Kind: OpMemWrite},
		Op{Kind: OpPush, Arg: f.NewElementFromInt64(100)}, // address
		Op{Kind: OpMemRead},
	))
	p := NewProcess(f, nil, nil, nil, true)
	if err := p.Execute(script); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got := make([]int64, 4)
	for i := 0; i < 4; i++ {
		v, err := p.Stack().PeekAt(i)
		if err != nil {
			t.Fatalf("PeekAt(%d): %v", i, err)
		}
		got[i] = v.Big().Int64()
	}
	want := []int64{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stack[%d] = %d, want %d (round-trip through memory)", i, got[i], want[i])
		}
	}
}

func TestAssertFailsOnNonOne(t *testing.T) {
	f := testFieldVM(t)
	script := NewScript(NewSpanOps(
		Op{Kind: OpPush, Arg: f.Zero()},
		Op{Kind: OpAssert},
	))
	p := NewProcess(f, nil, nil, nil, true)
	err := p.Execute(script)
	execErr, ok := err.(*ExecutionError)
	if !ok || execErr.Kind != ErrFailedAssertion {
		t.Errorf("got %v, want ErrFailedAssertion", err)
	}
}

func TestExecutionTraceShapeAndDeterminism(t *testing.T) {
	f := testFieldVM(t)
	script := NewScript(NewSpanOps(
		Op{Kind: OpPush, Arg: f.NewElementFromInt64(1)},
		Op{Kind: OpPush, Arg: f.NewElementFromInt64(2)},
		Op{Kind: OpAdd},
	))

	run := func() *ExecutionTrace {
		p := NewProcess(f, nil, nil, nil, true)
		if err := p.Execute(script); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		return NewExecutionTrace(p)
	}

	t1 := run()
	t2 := run()

	if t1.Info().ClkFinal != t2.Info().ClkFinal {
		t.Errorf("non-deterministic clk_final: %d vs %d", t1.Info().ClkFinal, t2.Info().ClkFinal)
	}

	length := t1.Length()
	if length&(length-1) != 0 {
		t.Errorf("trace length %d is not a power of two", length)
	}
	if length < t1.Info().ClkFinal {
		t.Errorf("trace length %d < clk_final %d", length, t1.Info().ClkFinal)
	}

	row1 := t1.Row(t1.Info().ClkFinal)
	row2 := t2.Row(t2.Info().ClkFinal)
	for i := range row1 {
		if !row1[i].Equal(row2[i]) {
			t.Fatalf("row mismatch at column %d: %s vs %s", i, row1[i], row2[i])
		}
	}
}

func TestStateIteratorAgreesWithFinalStack(t *testing.T) {
	f := testFieldVM(t)
	script := NewScript(NewSpanOps(
		Op{Kind: OpPush, Arg: f.NewElementFromInt64(3)},
		Op{Kind: OpPush, Arg: f.NewElementFromInt64(4)},
		Op{Kind: OpAdd},
	))

	p := NewProcess(f, nil, nil, nil, true)
	execErr := p.Execute(script)
	if execErr != nil {
		t.Fatalf("Execute: %v", execErr)
	}
	clkFinal := p.Sys().Clk()

	it := NewStateIterator(p, clkFinal, nil)
	var last VmState
	count := uint64(0)
	for it.Next() {
		last = it.State()
		count++
	}
	if err := it.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}
	if count != clkFinal+1 {
		t.Errorf("iterator yielded %d states, want %d", count, clkFinal+1)
	}

	want, err := p.Stack().PeekAt(0)
	if err != nil {
		t.Fatalf("PeekAt(0): %v", err)
	}
	if !last.Stack[0].Equal(want) {
		t.Errorf("iterator's final stack top = %s, want %s", last.Stack[0], want)
	}
}

func TestFmpUpdateMovesFmpForward(t *testing.T) {
	f := testFieldVM(t)
	script := NewScript(NewSpanOps(
		Op{Kind: OpPush, Arg: f.NewElementFromInt64(5)},
		Op{Kind: OpFmpUpdate},
	))

	p := NewProcess(f, nil, nil, nil, true)
	if err := p.Execute(script); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := p.Sys().Fmp().Big().Int64(); got != InitialFmp+5 {
		t.Errorf("fmp = %d, want %d", got, InitialFmp+5)
	}
}

func TestFmpUpdateRejectsNegativeResult(t *testing.T) {
	f := testFieldVM(t)
	// A residue past half the modulus represents a negative offset; choose
	// one large enough in magnitude to push fmp below zero.
	negOffset := f.NewElement(big.NewInt(-(InitialFmp + 1)))
	script := NewScript(NewSpanOps(
		Op{Kind: OpPush, Arg: negOffset},
		Op{Kind: OpFmpUpdate},
	))

	p := NewProcess(f, nil, nil, nil, true)
	err := p.Execute(script)
	if err == nil {
		t.Fatal("expected an error for fmp moving negative")
	}
	execErr, ok := err.(*ExecutionError)
	if !ok {
		t.Fatalf("error = %v (%T), want *ExecutionError", err, err)
	}
	if execErr.Kind != ErrInvalidFmpValue {
		t.Errorf("Kind = %v, want ErrInvalidFmpValue", execErr.Kind)
	}
}

func TestStateIteratorSurfacesStoredError(t *testing.T) {
	f := testFieldVM(t)
	p := NewProcess(f, nil, nil, nil, true)
	sentinel := &ExecutionError{Kind: ErrDivideByZero, Clk: 5}

	it := NewStateIterator(p, 0, sentinel)
	for it.Next() {
	}
	if it.Err() != error(sentinel) {
		t.Errorf("Err() = %v, want the stored sentinel error", it.Err())
	}
}
