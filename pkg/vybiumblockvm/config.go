package vybiumblockvm

import (
	"fmt"
	"math/big"
)

// ProcessorConfig configures a VM instance: which prime field it executes
// over and how much history it retains while doing so.
type ProcessorConfig struct {
	// FieldModulus is the prime modulus of the field the processor executes
	// over (spec.md §3 "Field element F").
	FieldModulus *big.Int

	// TraceCapture enables the overflow table's step->snapshot history,
	// without which ExecuteIter and NewExecutionTrace cannot reconstruct
	// overflow contents at past clock steps (spec.md §5 "Memory
	// discipline"). Disable it for one-shot executions that only need the
	// final stack and memory state.
	TraceCapture bool

	// MaxAdviceSetHeight bounds how many leaves an AdviceSet built with
	// VM.NewAdviceSet may hold. Advice sets passed in ProgramInput are not
	// checked against it.
	MaxAdviceSetHeight int
}

// DefaultProcessorConfig returns a default configuration using the same
// field the teacher repository's examples default to.
func DefaultProcessorConfig() *ProcessorConfig {
	return &ProcessorConfig{
		FieldModulus:       big.NewInt(3221225473), // 3 * 2^30 + 1
		TraceCapture:       true,
		MaxAdviceSetHeight: 1 << 20,
	}
}

// Validate checks if the configuration is valid.
func (c *ProcessorConfig) Validate() error {
	if c.FieldModulus == nil || c.FieldModulus.Cmp(big.NewInt(2)) <= 0 {
		return fmt.Errorf("field modulus must be greater than 2")
	}
	if c.MaxAdviceSetHeight <= 0 {
		return fmt.Errorf("max advice set height must be positive")
	}
	return nil
}

// Clone creates a copy of the configuration.
func (c *ProcessorConfig) Clone() *ProcessorConfig {
	return &ProcessorConfig{
		FieldModulus:       new(big.Int).Set(c.FieldModulus),
		TraceCapture:       c.TraceCapture,
		MaxAdviceSetHeight: c.MaxAdviceSetHeight,
	}
}

// WithFieldModulus sets the field modulus.
func (c *ProcessorConfig) WithFieldModulus(modulus *big.Int) *ProcessorConfig {
	c.FieldModulus = new(big.Int).Set(modulus)
	return c
}

// WithTraceCapture sets whether overflow snapshot history is retained.
func (c *ProcessorConfig) WithTraceCapture(capture bool) *ProcessorConfig {
	c.TraceCapture = capture
	return c
}
