package vm

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/vybium/vybium-block-vm/internal/vybiumblockvm/core"
)

// AdviceSetRoot is the 32-byte authenticated identity of an advice set
// (spec.md §6).
type AdviceSetRoot [32]byte

// AdviceSet is a read-only-from-the-processor's-perspective authenticated
// set of field-element leaves. Its internal authentication structure (the
// Merkle tree that makes lookups verifiable) is explicitly out of scope
// (spec.md §1); this type only carries enough for the processor to look up
// and update leaves by index and recompute its root.
type AdviceSet struct {
	leaves []*core.FieldElement
}

// NewAdviceSet builds an advice set from an ordered list of leaves, failing
// if the set would hold more than maxHeight leaves (0 disables the bound).
// The bound checked is the maxHeight passed here; sets handed to a process
// are not re-checked against pkg.ProcessorConfig's MaxAdviceSetHeight.
func NewAdviceSet(leaves []*core.FieldElement, maxHeight int) (*AdviceSet, error) {
	if maxHeight > 0 && len(leaves) > maxHeight {
		return nil, fmt.Errorf("advice set has %d leaves, exceeds the configured maximum of %d", len(leaves), maxHeight)
	}
	cp := make([]*core.FieldElement, len(leaves))
	copy(cp, leaves)
	return &AdviceSet{leaves: cp}, nil
}

// Root computes the set's 32-byte authenticated root by folding its leaves
// through SHA3-256, mirroring the Fiat-Shamir channel's
// bytes-in/digest-out pattern (internal/.../utils/channel.go in the teacher
// repository) rather than reimplementing a Merkle tree.
func (a *AdviceSet) Root() AdviceSetRoot {
	h := sha3.New256()
	for _, leaf := range a.leaves {
		b := leaf.Bytes()
		var lenBuf [8]byte
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(b)))
		h.Write(lenBuf[:])
		h.Write(b)
	}
	var out AdviceSetRoot
	copy(out[:], h.Sum(nil))
	return out
}

// Lookup returns the leaf at index, failing if index is out of range
// (AdviceProvider.SetLookup reports that as AdviceSetLookupFailed).
func (a *AdviceSet) Lookup(index uint64) (*core.FieldElement, error) {
	if index >= uint64(len(a.leaves)) {
		return nil, fmt.Errorf("index %d out of range (%d leaves)", index, len(a.leaves))
	}
	return a.leaves[index], nil
}

// Update replaces the leaf at index, failing if index is out of range
// (AdviceProvider.SetUpdate reports that as AdviceSetUpdateFailed).
func (a *AdviceSet) Update(index uint64, value *core.FieldElement) error {
	if index >= uint64(len(a.leaves)) {
		return fmt.Errorf("index %d out of range (%d leaves)", index, len(a.leaves))
	}
	a.leaves[index] = value
	return nil
}

// AdviceProvider supplies the non-deterministic inputs the processor may
// consume: a finite tape of field elements, consumed in order, and a
// collection of authenticated sets keyed by root (spec.md §3, §6).
type AdviceProvider struct {
	tape     []*core.FieldElement
	tapePos  int
	sets     map[AdviceSetRoot]*AdviceSet
}

// NewAdviceProvider creates a provider over the given tape and sets.
func NewAdviceProvider(tape []*core.FieldElement, sets []*AdviceSet) *AdviceProvider {
	m := make(map[AdviceSetRoot]*AdviceSet, len(sets))
	for _, s := range sets {
		m[s.Root()] = s
	}
	t := make([]*core.FieldElement, len(tape))
	copy(t, tape)
	return &AdviceProvider{tape: t, sets: m}
}

// ReadTape consumes and returns the next element of the advice tape,
// failing EmptyAdviceTape once exhausted.
func (a *AdviceProvider) ReadTape(clk uint64) (*core.FieldElement, error) {
	if a.tapePos >= len(a.tape) {
		return nil, &ExecutionError{Kind: ErrEmptyAdviceTape, Clk: clk}
	}
	v := a.tape[a.tapePos]
	a.tapePos++
	return v, nil
}

// Set returns the advice set with the given root, failing AdviceSetNotFound
// if it is not present.
func (a *AdviceProvider) Set(clk uint64, root AdviceSetRoot) (*AdviceSet, error) {
	s, ok := a.sets[root]
	if !ok {
		return nil, &ExecutionError{Kind: ErrAdviceSetNotFound, Clk: clk, Value: fmt.Sprintf("%x", root)}
	}
	return s, nil
}

// SetLookup looks up a leaf in the advice set identified by root.
func (a *AdviceProvider) SetLookup(clk uint64, root AdviceSetRoot, index uint64) (*core.FieldElement, error) {
	set, err := a.Set(clk, root)
	if err != nil {
		return nil, err
	}
	v, err := set.Lookup(index)
	if err != nil {
		return nil, &ExecutionError{Kind: ErrAdviceSetLookupFailed, Clk: clk, Value: err.Error()}
	}
	return v, nil
}

// SetUpdate updates a leaf in the advice set identified by root. Because the
// set's root changes once its leaves change, the provider re-keys the set
// under its new root and returns it so callers can track the new identity.
func (a *AdviceProvider) SetUpdate(clk uint64, root AdviceSetRoot, index uint64, value *core.FieldElement) (AdviceSetRoot, error) {
	set, err := a.Set(clk, root)
	if err != nil {
		return AdviceSetRoot{}, err
	}
	if err := set.Update(index, value); err != nil {
		return AdviceSetRoot{}, &ExecutionError{Kind: ErrAdviceSetUpdateFailed, Clk: clk, Value: err.Error()}
	}
	delete(a.sets, root)
	newRoot := set.Root()
	a.sets[newRoot] = set
	return newRoot, nil
}
