package vm

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/vybium/vybium-block-vm/internal/vybiumblockvm/core"
)

// Process owns one execution of a Script end to end: the stack, memory,
// system registers, advice provider and decoder are all created with it and
// destroyed with it — nothing is shared across executions (spec.md §3
// "Lifecycle", §5 "Shared resources").
type Process struct {
	field *core.Field

	stack   *OperandStack
	memory  *Memory
	sys     *Sys
	advice  *AdviceProvider
	decoder *Decoder

	loopDepth        int
	loopDepthHistory []int

	maxLoopDepth  int
	maxStackDepth uint64
}

// NewProcess creates a process ready to execute a Script, seeded with the
// given stack_init and advice inputs (spec.md §6 "Program input envelope").
func NewProcess(field *core.Field, stackInit []*core.FieldElement, adviceTape []*core.FieldElement, adviceSets []*AdviceSet, traceCapture bool) *Process {
	return &Process{
		field:            field,
		stack:            NewOperandStack(field, stackInit, traceCapture),
		memory:           NewMemory(field),
		sys:              NewSys(field),
		advice:           NewAdviceProvider(adviceTape, adviceSets),
		decoder:          NewDecoder(),
		loopDepthHistory: []int{0},
		maxStackDepth:    MinStackDepth,
	}
}

// Stack, Memory, Sys and Decoder expose the process's components read-only
// to callers building a trace or debug view once execution has finished.
func (p *Process) Stack() *OperandStack { return p.stack }
func (p *Process) Memory() *Memory      { return p.memory }
func (p *Process) Sys() *Sys            { return p.sys }
func (p *Process) Decoder() *Decoder    { return p.decoder }

// LoopDepthAt returns the loop-nesting depth as of the given clock step.
func (p *Process) LoopDepthAt(step uint64) int {
	if step < uint64(len(p.loopDepthHistory)) {
		return p.loopDepthHistory[step]
	}
	return p.loopDepth
}

// MaxLoopDepth and MaxStackDepth report the high-water marks observed during
// execution, which size the execution trace (spec.md §6).
func (p *Process) MaxLoopDepth() int        { return p.maxLoopDepth }
func (p *Process) MaxStackDepth() uint64    { return p.maxStackDepth }

// tick advances the system clock by exactly one and records the bookkeeping
// columns (loop depth, stack high-water mark) that ride along with every
// cycle (spec.md §4.1 "Every notify-decoder and micro-op call advances clk
// by exactly one cycle").
func (p *Process) tick() uint64 {
	clk := p.sys.Tick()
	for uint64(len(p.loopDepthHistory)) <= clk {
		p.loopDepthHistory = append(p.loopDepthHistory, p.loopDepth)
	}
	p.loopDepthHistory[clk] = p.loopDepth
	if p.stack.Depth() > p.maxStackDepth {
		p.maxStackDepth = p.stack.Depth()
	}
	if p.loopDepth > p.maxLoopDepth {
		p.maxLoopDepth = p.loopDepth
	}
	return clk
}

// noop performs a clock-advancing structural no-op: the clock ticks but the
// stack does not change, so the row at the new clock simply repeats.
func (p *Process) noop() uint64 {
	clk := p.tick()
	p.stack.Touch(clk)
	return clk
}

// drop performs the clock-advancing DROP micro-op used at Split/Loop
// boundaries (spec.md §4.1).
func (p *Process) drop() (*core.FieldElement, uint64, error) {
	clk := p.tick()
	v, err := p.stack.Pop(clk)
	return v, clk, err
}

// Execute runs script's root block to completion, returning the first error
// encountered, if any (spec.md §4.1 "execute").
func (p *Process) Execute(script *Script) error {
	return p.execBlock(script.Root)
}

// execBlock recursively dispatches on the block variant (spec.md §4.1
// "Algorithm").
func (p *Process) execBlock(block *CodeBlock) error {
	switch block.Kind {
	case KindSpan:
		return p.execSpan(block)
	case KindJoin:
		return p.execJoin(block)
	case KindSplit:
		return p.execSplit(block)
	case KindLoop:
		p.loopDepth++
		err := p.execLoop(block)
		p.loopDepth--
		return err
	case KindProxy:
		return &ExecutionError{Kind: ErrUnexecutableCodeBlock, Clk: p.sys.Clk(), Value: fmt.Sprintf("%x", block.ProxyTarget)}
	default:
		return &ExecutionError{Kind: ErrUnsupportedCodeBlock, Clk: p.sys.Clk()}
	}
}

func (p *Process) execSpan(block *CodeBlock) error {
	p.decoder.StartSpan()
	p.noop()

	for i, batch := range block.Batches {
		if i > 0 {
			p.decoder.Respan(batch)
			p.noop()
		}
		for _, op := range batch.Ops {
			clk := p.tick()
			if err := p.execUserOp(op, clk); err != nil {
				// Stack-depth errors from PeekAt/SetAt carry no clock of
				// their own; stamp them with the op's cycle.
				if e, ok := err.(*ExecutionError); ok && e.Clk == 0 {
					e.Clk = clk
				}
				return err
			}
			p.decoder.ExecuteUserOp(op)
		}
	}

	p.decoder.EndSpan()
	p.noop()
	return nil
}

func (p *Process) execJoin(block *CodeBlock) error {
	p.decoder.StartJoin()
	p.noop()
	if err := p.execBlock(block.First); err != nil {
		return err
	}
	if err := p.execBlock(block.Second); err != nil {
		return err
	}
	p.decoder.EndJoin()
	p.noop()
	return nil
}

func (p *Process) execSplit(block *CodeBlock) error {
	pred := p.stack.Peek()
	p.decoder.StartSplit(pred)

	_, clk, err := p.drop()
	if err != nil {
		return err
	}

	switch {
	case pred.IsOne():
		if err := p.execBlock(block.First); err != nil {
			return err
		}
	case pred.IsZero():
		if err := p.execBlock(block.Second); err != nil {
			return err
		}
	default:
		return &ExecutionError{Kind: ErrNotBinaryValue, Clk: clk, Value: pred.String(), Site: "split"}
	}

	p.decoder.EndSplit()
	p.noop()
	return nil
}

func (p *Process) execLoop(block *CodeBlock) error {
	pred := p.stack.Peek()
	p.decoder.StartLoop(pred)

	switch {
	case pred.IsOne():
		if _, _, err := p.drop(); err != nil {
			return err
		}
		if err := p.execBlock(block.First); err != nil {
			return err
		}
		for {
			top := p.stack.Peek()
			switch {
			case top.IsOne():
				if _, _, err := p.drop(); err != nil {
					return err
				}
				p.decoder.Repeat()
				if err := p.execBlock(block.First); err != nil {
					return err
				}
			case top.IsZero():
				goto postLoop
			default:
				return &ExecutionError{Kind: ErrNotBinaryValue, Clk: p.sys.Clk(), Value: top.String(), Site: "loop"}
			}
		}
	case pred.IsZero():
		p.noop()
	default:
		return &ExecutionError{Kind: ErrNotBinaryValue, Clk: p.sys.Clk(), Value: pred.String(), Site: "loop"}
	}

postLoop:
	top := p.stack.Peek()
	if top.IsOne() {
		// Unreachable by construction (spec.md §9 "Unreachable invariant");
		// still checked rather than assumed away.
		return &ExecutionError{Kind: ErrNotBinaryValue, Clk: p.sys.Clk(), Value: top.String(), Site: "loop post-condition (unreachable)"}
	}
	if !top.IsZero() {
		return &ExecutionError{Kind: ErrNotBinaryValue, Clk: p.sys.Clk(), Value: top.String(), Site: "loop post-condition"}
	}
	if _, _, err := p.drop(); err != nil {
		return err
	}
	p.decoder.EndLoop()
	return nil
}

// execUserOp dispatches one user micro-operation, already ticked to clk
// (spec.md §4.1 "Span").
func (p *Process) execUserOp(op Op, clk uint64) error {
	switch op.Kind {
	case OpAdd:
		return p.binaryOp(clk, func(a, b *core.FieldElement) (*core.FieldElement, error) { return a.Add(b), nil })
	case OpMul:
		return p.binaryOp(clk, func(a, b *core.FieldElement) (*core.FieldElement, error) { return a.Mul(b), nil })
	case OpDiv:
		return p.binaryOp(clk, func(a, b *core.FieldElement) (*core.FieldElement, error) {
			if b.IsZero() {
				return nil, &ExecutionError{Kind: ErrDivideByZero, Clk: clk}
			}
			q, err := a.Div(b)
			if err != nil {
				return nil, &ExecutionError{Kind: ErrDivideByZero, Clk: clk}
			}
			return q, nil
		})
	case OpEq:
		return p.binaryOp(clk, func(a, b *core.FieldElement) (*core.FieldElement, error) {
			if a.Equal(b) {
				return p.field.One(), nil
			}
			return p.field.Zero(), nil
		})
	case OpPush:
		p.stack.Push(clk, op.Arg)
		return nil
	case OpDrop:
		_, err := p.stack.Pop(clk)
		return err
	case OpDup:
		depth := int(op.Arg.Big().Int64())
		v, err := p.stack.PeekAt(depth)
		if err != nil {
			return err
		}
		p.stack.Push(clk, v)
		return nil
	case OpSwap:
		depth := int(op.Arg.Big().Int64())
		top, err := p.stack.PeekAt(0)
		if err != nil {
			return err
		}
		other, err := p.stack.PeekAt(depth)
		if err != nil {
			return err
		}
		if err := p.stack.SetAt(clk, 0, other); err != nil {
			return err
		}
		return p.stack.SetAt(clk, depth, top)
	case OpAssert:
		v, err := p.stack.Pop(clk)
		if err != nil {
			return err
		}
		if !v.IsOne() {
			return &ExecutionError{Kind: ErrFailedAssertion, Clk: clk, Value: v.String()}
		}
		return nil
	case OpAssertU32:
		v := p.stack.Peek()
		if v.Big().BitLen() > 32 {
			return &ExecutionError{Kind: ErrNotU32Value, Clk: clk, Value: v.String()}
		}
		p.stack.Touch(clk)
		return nil
	case OpAdviceRead:
		v, err := p.advice.ReadTape(clk)
		if err != nil {
			return err
		}
		p.stack.Push(clk, v)
		return nil
	case OpMemRead:
		return p.execMemRead(clk)
	case OpMemWrite:
		return p.execMemWrite(clk)
	case OpAdviceSetLookup:
		return p.execAdviceSetLookup(clk)
	case OpAdviceSetUpdate:
		return p.execAdviceSetUpdate(clk)
	case OpFmpUpdate:
		return p.execFmpUpdate(clk)
	default:
		return &ExecutionError{Kind: ErrUnsupportedCodeBlock, Clk: clk, Value: op.Kind.String()}
	}
}

func (p *Process) binaryOp(clk uint64, f func(a, b *core.FieldElement) (*core.FieldElement, error)) error {
	b, err := p.stack.Pop(clk)
	if err != nil {
		return err
	}
	a, err := p.stack.Pop(clk)
	if err != nil {
		return err
	}
	r, err := f(a, b)
	if err != nil {
		return err
	}
	p.stack.Push(clk, r)
	return nil
}

func (p *Process) execMemRead(clk uint64) error {
	addr, err := p.stack.Pop(clk)
	if err != nil {
		return err
	}
	w := p.memory.Read(addr.Big().Uint64(), clk)
	for i := 3; i >= 0; i-- {
		p.stack.Push(clk, w[i])
	}
	return nil
}

func (p *Process) execMemWrite(clk uint64) error {
	addr, err := p.stack.Pop(clk)
	if err != nil {
		return err
	}
	var w core.Word
	for i := 0; i < 4; i++ {
		v, err := p.stack.Pop(clk)
		if err != nil {
			return err
		}
		w[i] = v
	}
	p.memory.Write(addr.Big().Uint64(), clk, w)
	return nil
}

func (p *Process) popRoot(clk uint64) (AdviceSetRoot, error) {
	var chunks [4]*core.FieldElement
	for i := 0; i < 4; i++ {
		v, err := p.stack.Pop(clk)
		if err != nil {
			return AdviceSetRoot{}, err
		}
		chunks[i] = v
	}
	var root AdviceSetRoot
	for i, c := range chunks {
		binary.BigEndian.PutUint64(root[i*8:i*8+8], c.Big().Uint64())
	}
	return root, nil
}

func (p *Process) pushRoot(clk uint64, root AdviceSetRoot) {
	var chunks [4]*core.FieldElement
	for i := 0; i < 4; i++ {
		chunks[i] = p.field.NewElementFromUint64(binary.BigEndian.Uint64(root[i*8 : i*8+8]))
	}
	for i := 3; i >= 0; i-- {
		p.stack.Push(clk, chunks[i])
	}
}

// execFmpUpdate pops a signed offset, encoded field-element-style (a value
// past half the modulus represents a negative offset), and adds it to fmp
// (spec.md §4.7 InvalidFmpValue; the original tnachen/miden processor's
// `fmpupdate`).
func (p *Process) execFmpUpdate(clk uint64) error {
	delta, err := p.stack.Pop(clk)
	if err != nil {
		return err
	}

	modulus := p.field.Modulus()
	half := new(big.Int).Rsh(modulus, 1)
	signedDelta := delta.Big()
	if signedDelta.Cmp(half) > 0 {
		signedDelta = new(big.Int).Sub(signedDelta, modulus)
	}

	raw := new(big.Int).Add(p.sys.Fmp().Big(), signedDelta)
	return p.sys.SetFmp(raw)
}

func (p *Process) execAdviceSetLookup(clk uint64) error {
	root, err := p.popRoot(clk)
	if err != nil {
		return err
	}
	idx, err := p.stack.Pop(clk)
	if err != nil {
		return err
	}
	v, err := p.advice.SetLookup(clk, root, idx.Big().Uint64())
	if err != nil {
		return err
	}
	p.stack.Push(clk, v)
	return nil
}

func (p *Process) execAdviceSetUpdate(clk uint64) error {
	root, err := p.popRoot(clk)
	if err != nil {
		return err
	}
	idx, err := p.stack.Pop(clk)
	if err != nil {
		return err
	}
	val, err := p.stack.Pop(clk)
	if err != nil {
		return err
	}
	newRoot, err := p.advice.SetUpdate(clk, root, idx.Big().Uint64(), val)
	if err != nil {
		return err
	}
	p.pushRoot(clk, newRoot)
	return nil
}
