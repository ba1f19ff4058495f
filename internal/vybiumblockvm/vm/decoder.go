package vm

import "github.com/vybium/vybium-block-vm/internal/vybiumblockvm/core"

// Decoder observes block-boundary and user-operation events as the executor
// walks the code-block tree. It is not a separate scheduler: it carries its
// own running counters but never drives the clock itself — every
// notification the executor sends it is paired, by the executor, with
// exactly one clock-advancing micro-operation (spec.md §4.5, §9
// "Decoder/executor lockstep").
type Decoder struct {
	opCount int
}

// NewDecoder creates a decoder with all counters at zero.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// OpCount returns how many notifications (structural and user-op alike)
// the decoder has observed so far.
func (d *Decoder) OpCount() int {
	return d.opCount
}

func (d *Decoder) StartJoin()  { d.opCount++ }
func (d *Decoder) EndJoin()    { d.opCount++ }
func (d *Decoder) StartSplit(predicate *core.FieldElement) { d.opCount++ }
func (d *Decoder) EndSplit()   { d.opCount++ }
func (d *Decoder) StartLoop(predicate *core.FieldElement)  { d.opCount++ }
func (d *Decoder) Repeat()     { d.opCount++ }
func (d *Decoder) EndLoop()    { d.opCount++ }
func (d *Decoder) StartSpan()  { d.opCount++ }
func (d *Decoder) Respan(batch OpBatch) { d.opCount++ }
func (d *Decoder) ExecuteUserOp(op Op) { d.opCount++ }
func (d *Decoder) EndSpan()    { d.opCount++ }
