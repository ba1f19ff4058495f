package vybiumblockvm

import (
	"errors"
	"testing"
)

func TestNewVMDefaultsAndValidation(t *testing.T) {
	t.Run("NilConfigUsesDefaults", func(t *testing.T) {
		vmInstance, err := NewVM(nil)
		if err != nil {
			t.Fatalf("NewVM(nil): %v", err)
		}
		if vmInstance.Field() == nil {
			t.Fatal("Field() = nil")
		}
	})

	t.Run("InvalidConfigRejected", func(t *testing.T) {
		cfg := DefaultProcessorConfig()
		cfg.MaxAdviceSetHeight = 0
		_, err := NewVM(cfg)
		if err == nil {
			t.Fatal("expected an error for an invalid config")
		}
		var vmErr *VMError
		if !errors.As(err, &vmErr) {
			t.Fatalf("error = %v, want *VMError", err)
		}
		if vmErr.Code != ErrInvalidConfig {
			t.Errorf("Code = %v, want ErrInvalidConfig", vmErr.Code)
		}
	})
}

func TestVMNewAdviceSetEnforcesMaxHeight(t *testing.T) {
	cfg := DefaultProcessorConfig()
	cfg.MaxAdviceSetHeight = 2
	vmInstance, err := NewVM(cfg)
	if err != nil {
		t.Fatalf("NewVM: %v", err)
	}
	field := vmInstance.Field()

	leaves := []*FieldElement{field.NewElementFromInt64(1), field.NewElementFromInt64(2)}
	if _, err := vmInstance.NewAdviceSet(leaves); err != nil {
		t.Errorf("NewAdviceSet at the limit: %v", err)
	}

	tooMany := append(leaves, field.NewElementFromInt64(3))
	_, err = vmInstance.NewAdviceSet(tooMany)
	if err == nil {
		t.Fatal("expected an error for an advice set over MaxAdviceSetHeight")
	}
	var vmErr *VMError
	if !errors.As(err, &vmErr) {
		t.Fatalf("error = %v, want *VMError", err)
	}
	if vmErr.Code != ErrInvalidProgram {
		t.Errorf("Code = %v, want ErrInvalidProgram", vmErr.Code)
	}
}

func TestVMExecuteEndToEnd(t *testing.T) {
	vmInstance, err := NewVM(nil)
	if err != nil {
		t.Fatalf("NewVM: %v", err)
	}
	field := vmInstance.Field()

	script := NewScript(Span(
		Push(field, 2),
		Push(field, 3),
		Add(),
		Push(field, 5),
		Eq(),
		Assert(),
	))

	trace, err := vmInstance.Execute(script, ProgramInput{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	info := trace.Info()
	if info.ClkFinal == 0 {
		t.Error("ClkFinal = 0, want > 0")
	}
	if trace.Length() < info.ClkFinal+1 {
		t.Errorf("Length() = %d, want >= ClkFinal+1 (%d)", trace.Length(), info.ClkFinal+1)
	}
}

func TestVMExecuteSurfacesExecutionError(t *testing.T) {
	vmInstance, err := NewVM(nil)
	if err != nil {
		t.Fatalf("NewVM: %v", err)
	}
	field := vmInstance.Field()

	script := NewScript(Span(Push(field, 0), Assert()))

	_, err = vmInstance.Execute(script, ProgramInput{})
	if err == nil {
		t.Fatal("expected a failed assertion to surface as an error")
	}
	var vmErr *VMError
	if !errors.As(err, &vmErr) {
		t.Fatalf("error = %v, want *VMError", err)
	}
	if vmErr.Code != ErrExecution {
		t.Errorf("Code = %v, want ErrExecution", vmErr.Code)
	}
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected VMError to wrap an *ExecutionError, got %v", vmErr.Cause)
	}
	if execErr.Kind != ErrFailedAssertion {
		t.Errorf("ExecutionError.Kind = %v, want ErrFailedAssertion", execErr.Kind)
	}
}

func TestVMExecuteIterAgreesWithExecute(t *testing.T) {
	vmInstance, err := NewVM(nil)
	if err != nil {
		t.Fatalf("NewVM: %v", err)
	}
	field := vmInstance.Field()

	input := ProgramInput{
		StackInit: []*FieldElement{field.NewElementFromInt64(1), field.NewElementFromInt64(2)},
	}
	script := NewScript(Span(Add(), Push(field, 7), Mul()))

	trace, err := vmInstance.Execute(script, input)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	it, err := vmInstance.ExecuteIter(script, input)
	if err != nil {
		t.Fatalf("ExecuteIter: %v", err)
	}
	var last VmState
	for it.Next() {
		last = it.State()
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator reported an error: %v", err)
	}

	finalRow := trace.Row(trace.Info().ClkFinal)
	if last.Clk != trace.Info().ClkFinal {
		t.Errorf("final iterator clk = %d, want %d", last.Clk, trace.Info().ClkFinal)
	}
	if len(last.Stack) == 0 || finalRow[1].Big().Cmp(last.Stack[0].Big()) != 0 {
		t.Errorf("iterator final top = %v, trace final top = %v", last.Stack[0], finalRow[1])
	}
}
