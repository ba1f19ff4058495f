package vm

import (
	"math/big"

	"github.com/vybium/vybium-block-vm/internal/vybiumblockvm/core"
)

// InitialFmp is the free-memory pointer's value at the start of execution
// (spec.md §6).
const InitialFmp = 1 << 30

// Sys is the VM's system register file: the monotone clock and the
// free-memory pointer (spec.md §3 "System register file `Sys`"). spec.md
// lists an optional call-context depth stack; this core never populates one
// because the CodeBlock sum type it interprets (Span/Join/Split/Loop/Proxy)
// never introduces a call context, so no field for it is carried here.
type Sys struct {
	field *core.Field
	clk   uint64
	fmp   *core.FieldElement

	// fmpHistory[k] is fmp's value as of clock k, mirroring the stack's
	// per-cycle row history so the debug iterator can replay it.
	fmpHistory []*core.FieldElement
}

// NewSys creates a register file with fmp initialised to InitialFmp.
func NewSys(field *core.Field) *Sys {
	fmp := field.NewElementFromInt64(InitialFmp)
	return &Sys{field: field, clk: 0, fmp: fmp, fmpHistory: []*core.FieldElement{fmp}}
}

// Clk returns the current clock value.
func (s *Sys) Clk() uint64 {
	return s.clk
}

// Fmp returns the current free-memory pointer.
func (s *Sys) Fmp() *core.FieldElement {
	return s.fmp
}

// FmpAt returns the free-memory pointer's value as of the given clock step.
func (s *Sys) FmpAt(step uint64) *core.FieldElement {
	if step < uint64(len(s.fmpHistory)) {
		return s.fmpHistory[step]
	}
	return s.fmp
}

// Tick advances the clock by exactly one, recording fmp's value at the new
// step (spec.md §4.1 "every notify-decoder and micro-op call advances clk by
// exactly one cycle").
func (s *Sys) Tick() uint64 {
	s.clk++
	for uint64(len(s.fmpHistory)) <= s.clk {
		s.fmpHistory = append(s.fmpHistory, s.fmp)
	}
	s.fmpHistory[s.clk] = s.fmp
	return s.clk
}

// SetFmp sets the free-memory pointer to the given raw (pre-reduction)
// value, failing InvalidFmpValue if that value is negative — fmp addressing
// is only ever meant to move forward or within the field's positive range,
// never wrap past zero (spec.md §4.7 InvalidFmpValue).
func (s *Sys) SetFmp(raw *big.Int) error {
	if raw.Sign() < 0 {
		return &ExecutionError{
			Kind: ErrInvalidFmpValue, Clk: s.clk,
			Value: raw.String(), Site: s.fmp.String(),
		}
	}
	s.fmp = s.field.NewElement(raw)
	s.fmpHistory[s.clk] = s.fmp
	return nil
}
