package vm

import (
	"encoding/binary"

	cryptofield "github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	cryptohash "github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
	"golang.org/x/crypto/sha3"
)

// BlockKind identifies a CodeBlock's variant (spec.md §3 "Code block (sum
// type)").
type BlockKind int

const (
	KindSpan BlockKind = iota
	KindJoin
	KindSplit
	KindLoop
	KindProxy
)

func (k BlockKind) String() string {
	switch k {
	case KindSpan:
		return "Span"
	case KindJoin:
		return "Join"
	case KindSplit:
		return "Split"
	case KindLoop:
		return "Loop"
	case KindProxy:
		return "Proxy"
	default:
		return "Unknown"
	}
}

// Hash is a block's structural identity: two blocks are equivalent iff
// their hashes match (spec.md §3 "Invariant").
type Hash [32]byte

// CodeBlock is the tagged sum type at the leaves and joints of a program
// tree: Span, Join, Split, Loop, or Proxy (spec.md §3, §9 "DAG").
type CodeBlock struct {
	Kind BlockKind

	// Span
	Batches []OpBatch

	// Join: First/Second are the two sequential blocks.
	// Split: First is on_true, Second is on_false.
	// Loop: First is the body; Second is unused.
	First  *CodeBlock
	Second *CodeBlock

	// Proxy: the hash of the block this one stands in for.
	ProxyTarget Hash

	hash *Hash // memoized
}

// NewSpan builds a Span block from one or more operation batches.
func NewSpan(batches ...OpBatch) *CodeBlock {
	return &CodeBlock{Kind: KindSpan, Batches: batches}
}

// NewJoin builds a Join block sequencing first then second.
func NewJoin(first, second *CodeBlock) *CodeBlock {
	return &CodeBlock{Kind: KindJoin, First: first, Second: second}
}

// NewSplit builds a Split block choosing onTrue or onFalse by the top of
// stack.
func NewSplit(onTrue, onFalse *CodeBlock) *CodeBlock {
	return &CodeBlock{Kind: KindSplit, First: onTrue, Second: onFalse}
}

// NewLoop builds a Loop block that repeats body while the top of stack is 1.
func NewLoop(body *CodeBlock) *CodeBlock {
	return &CodeBlock{Kind: KindLoop, First: body}
}

// NewProxy builds a reference to a block that is not inlined here;
// executing it is always an error (spec.md §4.1 "Proxy").
func NewProxy(target Hash) *CodeBlock {
	return &CodeBlock{Kind: KindProxy, ProxyTarget: target}
}

// Script is the program wrapper: a root CodeBlock plus its deterministic
// program hash (spec.md §3 "Script").
type Script struct {
	Root *CodeBlock
	hash Hash
}

// NewScript wraps root as the program entry point, computing its hash once.
func NewScript(root *CodeBlock) *Script {
	return &Script{Root: root, hash: root.Hash()}
}

// Hash returns the Script's program hash.
func (s *Script) Hash() Hash {
	return s.hash
}

// Hash computes (and memoizes) the block's structural hash. Children are
// folded first, children-then-self, exactly like the teacher repo's
// program-digest computation
// (internal/.../vm/vm_state.go:computeProgramDigest) — encode structure as
// field elements, reduce with PoseidonHash, then stretch the single
// resulting field element into a full 32-byte identity via SHA3-256, the
// same byte-digest primitive internal/.../utils/channel.go uses for its
// Fiat-Shamir transcript.
func (b *CodeBlock) Hash() Hash {
	if b.hash != nil {
		return *b.hash
	}

	elements := []cryptofield.Element{cryptofield.New(uint64(b.Kind))}

	switch b.Kind {
	case KindSpan:
		for _, batch := range b.Batches {
			for _, op := range batch.Ops {
				elements = append(elements, cryptofield.New(uint64(op.Kind)))
				if op.Arg != nil {
					elements = append(elements, cryptofield.New(op.Arg.Big().Uint64()))
				} else {
					elements = append(elements, cryptofield.Zero)
				}
			}
			// An all-ones marker element closes each batch so batch
			// boundaries are part of the identity.
			elements = append(elements, cryptofield.New(^uint64(0)))
		}
	case KindJoin, KindSplit:
		elements = append(elements, hashToElements(b.First.Hash())...)
		elements = append(elements, hashToElements(b.Second.Hash())...)
	case KindLoop:
		elements = append(elements, hashToElements(b.First.Hash())...)
	case KindProxy:
		elements = append(elements, hashToElements(b.ProxyTarget)...)
	}

	digest := cryptohash.PoseidonHash(elements)

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], digest.Value())
	sum := sha3.Sum256(buf[:])

	h := Hash(sum)
	b.hash = &h
	return h
}

func hashToElements(h Hash) []cryptofield.Element {
	out := make([]cryptofield.Element, 4)
	for i := 0; i < 4; i++ {
		out[i] = cryptofield.New(binary.BigEndian.Uint64(h[i*8 : i*8+8]))
	}
	return out
}
