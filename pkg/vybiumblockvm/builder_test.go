package vybiumblockvm

import "testing"

func TestBuilderRoundTripsThroughExecution(t *testing.T) {
	vmInstance, err := NewVM(nil)
	if err != nil {
		t.Fatalf("NewVM: %v", err)
	}
	field := vmInstance.Field()

	body := Span(AdviceRead())
	script := NewScript(Join(
		Span(AdviceRead()),
		Loop(body),
	))

	input := ProgramInput{
		AdviceTape: []*FieldElement{
			field.NewElementFromInt64(1),
			field.NewElementFromInt64(1),
			field.NewElementFromInt64(0),
		},
	}

	trace, err := vmInstance.Execute(script, input)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if trace.Info().ClkFinal == 0 {
		t.Error("ClkFinal = 0, want > 0")
	}
}

func TestDupAndSwap(t *testing.T) {
	vmInstance, err := NewVM(nil)
	if err != nil {
		t.Fatalf("NewVM: %v", err)
	}
	field := vmInstance.Field()

	script := NewScript(Span(
		Push(field, 10),
		Push(field, 20),
		Swap(field, 1),
		Dup(field, 0),
	))

	trace, err := vmInstance.Execute(script, ProgramInput{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	row := trace.Row(trace.Info().ClkFinal)
	// after push(10), push(20): [20, 10, ...]
	// after swap(1): [10, 20, ...]
	// after dup(0): [10, 10, 20, ...]
	if row[1].Big().Int64() != 10 || row[2].Big().Int64() != 10 || row[3].Big().Int64() != 20 {
		t.Errorf("top three = [%s, %s, %s], want [10, 10, 20]", row[1], row[2], row[3])
	}
}

func TestProxyBuilderIsUnexecutable(t *testing.T) {
	vmInstance, err := NewVM(nil)
	if err != nil {
		t.Fatalf("NewVM: %v", err)
	}

	var target Hash
	script := NewScript(Proxy(target))

	_, err = vmInstance.Execute(script, ProgramInput{})
	if err == nil {
		t.Fatal("expected executing a Proxy block to fail")
	}
}
