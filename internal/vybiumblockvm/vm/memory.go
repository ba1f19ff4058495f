package vm

import (
	"sort"

	"github.com/vybium/vybium-block-vm/internal/vybiumblockvm/core"
)

// memWrite is one chronological entry in an address's write history.
type memWrite struct {
	step uint64
	word core.Word
}

// Memory is the VM's sparse, word-addressed random-access memory. Each
// address retains a chronological list of writes so a read at any past
// clock step returns the value that was current then (spec.md §3, §4.4).
type Memory struct {
	field *core.Field
	cells map[uint64][]memWrite
}

// NewMemory creates an empty memory over the given field.
func NewMemory(field *core.Field) *Memory {
	return &Memory{field: field, cells: make(map[uint64][]memWrite)}
}

// Read returns the word most recently written to addr at a step <= step, or
// the zero word if addr was never written by then (spec.md §4.4, §8 "Memory
// read law").
func (m *Memory) Read(addr uint64, step uint64) core.Word {
	history := m.cells[addr]
	i := sort.Search(len(history), func(i int) bool { return history[i].step > step })
	if i == 0 {
		return core.ZeroWord(m.field)
	}
	return history[i-1].word
}

// Write appends a new entry to addr's chronology.
func (m *Memory) Write(addr uint64, step uint64, w core.Word) {
	m.cells[addr] = append(m.cells[addr], memWrite{step: step, word: w})
}

// AddressWord pairs a memory address with its resolved word, returned by
// GetValuesAt in address order.
type AddressWord struct {
	Addr uint64
	Word core.Word
}

// GetValuesAt returns, for every address in [lo, hi] that has at least one
// write, its state as of step, sorted by address (spec.md §4.4).
func (m *Memory) GetValuesAt(lo, hi uint64, step uint64) []AddressWord {
	addrs := make([]uint64, 0, len(m.cells))
	for a := range m.cells {
		if a >= lo && a <= hi {
			addrs = append(addrs, a)
		}
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	out := make([]AddressWord, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, AddressWord{Addr: a, Word: m.Read(a, step)})
	}
	return out
}
