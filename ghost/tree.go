// Package ghost models a content-addressed block tree under a GHOST fork-choice
// rule, where a vote for a block counts towards the weight of every ancestor.
package ghost

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/xerrors"
)

// nameCacheSize bounds the number of base58 digest names a tree remembers.
const nameCacheSize = 1 << 12

type voteKey struct {
	slot  Timeslot
	party Party
}

type node struct {
	block Block
	// Children in insertion order.
	children []Digest
	// Sum of the weights of all distinct votes applied to this block or any of
	// its descendants.
	tally Weight
	// Weight of every (timeslot, party) vote tallied at this block.
	tallied map[voteKey]Weight
}

// Tree is a content-addressed block tree with ancestor-propagating vote
// tallies. It starts with genesis only, grows monotonically and never
// forgets a block or a vote.
//
// Tree is not safe for concurrent use.
type Tree struct {
	nodes   map[Digest]*node
	genesis Digest
	names   *lru.Cache[Digest, string]
}

// NewTree creates a tree containing only the genesis block.
func NewTree() *Tree {
	genesis := GenesisBlock()
	d := genesis.Digest()
	names, err := lru.New[Digest, string](nameCacheSize)
	if err != nil {
		panic(fmt.Sprintf("failed to instantiate digest name cache: %v", err))
	}
	return &Tree{
		nodes: map[Digest]*node{
			d: newNode(genesis),
		},
		genesis: d,
		names:   names,
	}
}

func newNode(b Block) *node {
	return &node{block: b, tallied: make(map[voteKey]Weight)}
}

func (t *Tree) Genesis() Digest {
	return t.genesis
}

// Name returns the base58 string form of d, remembering recently used names.
func (t *Tree) Name(d Digest) string {
	if name, ok := t.names.Get(d); ok {
		return name
	}
	name := d.String()
	t.names.Add(d, name)
	return name
}

// Len returns the number of blocks in the tree, genesis included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

func (t *Tree) Has(d Digest) bool {
	_, found := t.nodes[d]
	return found
}

// AddBlock inserts b below its parent and returns its digest.
func (t *Tree) AddBlock(b Block) (Digest, error) {
	if b.IsGenesis() {
		return Digest{}, xerrors.Errorf("adding parentless block %s: %w", b, ErrParentNotFound)
	}
	parent, found := t.nodes[b.Parent]
	if !found {
		return Digest{}, xerrors.Errorf("adding block %s with parent %s: %w", b, b.Parent, ErrParentNotFound)
	}
	d := b.Digest()
	if _, found := t.nodes[d]; found {
		return Digest{}, xerrors.Errorf("adding block %s: %w", b, ErrDuplicateBlock)
	}
	t.nodes[d] = newNode(b)
	parent.children = append(parent.children, d)
	metrics.blocksAdded.Add(context.Background(), 1, metric.WithAttributes(attrParty[partyOf(b)]))
	return d, nil
}

// AddVote applies a vote of weight w cast by party at slot to target and to
// every ancestor of target up to genesis. A block that already tallied the
// (slot, party) pair is skipped, provided the weight is unchanged.
//
// The vote is validated against the whole ancestor chain before any tally is
// modified, so a rejected vote leaves the tree untouched.
func (t *Tree) AddVote(target Digest, slot Timeslot, w Weight, party Party) error {
	if !t.Has(target) {
		return xerrors.Errorf("voting for %s: %w", target, ErrUnknownBlock)
	}
	key := voteKey{slot: slot, party: party}
	for n := t.nodes[target]; n != nil; n = t.parentOf(n) {
		if n.block.Slot > slot {
			return xerrors.Errorf("voting at slot %d for %s: %w", slot, n.block, ErrVoteBeforeBlock)
		}
		if prior, found := n.tallied[key]; found && prior != w {
			return xerrors.Errorf("voting %d at slot %d by %s for %s, previously %d: %w",
				w, slot, party, n.block, prior, ErrVoteWeightMismatch)
		}
	}
	var tallied, skipped int64
	for n := t.nodes[target]; n != nil; n = t.parentOf(n) {
		if _, found := n.tallied[key]; found {
			skipped++
			continue
		}
		n.tally += w
		n.tallied[key] = w
		tallied++
	}
	ctx := context.Background()
	metrics.votesTallied.Add(ctx, tallied, metric.WithAttributes(attrParty[party]))
	metrics.votesSkipped.Add(ctx, skipped, metric.WithAttributes(attrParty[party]))
	return nil
}

func (t *Tree) parentOf(n *node) *node {
	if n.block.IsGenesis() {
		return nil
	}
	return t.nodes[n.block.Parent]
}

// Tip runs the fork-choice rule: starting at genesis, repeatedly descend into
// the preferred child until a childless block is reached.
//
// Children are ranked by tally, then adversarial tag (tagged wins), then slot
// (earlier wins), then payload (smaller wins). Favouring the adversarial tag
// models the worst case for the honest chain.
func (t *Tree) Tip() Digest {
	current := t.genesis
	for {
		n := t.nodes[current]
		if len(n.children) == 0 {
			return current
		}
		best := n.children[0]
		for _, c := range n.children[1:] {
			if t.prefer(c, best) {
				best = c
			}
		}
		current = best
	}
}

// prefer reports whether block a ranks strictly above block b.
func (t *Tree) prefer(a, b Digest) bool {
	na, nb := t.nodes[a], t.nodes[b]
	switch {
	case na.tally != nb.tally:
		return na.tally > nb.tally
	case na.block.IsAdversarial() != nb.block.IsAdversarial():
		return na.block.IsAdversarial()
	case na.block.Slot != nb.block.Slot:
		return na.block.Slot < nb.block.Slot
	default:
		return na.block.Payload < nb.block.Payload
	}
}

// Block returns the block identified by d.
// Panics if d is not in the tree.
func (t *Tree) Block(d Digest) Block {
	return t.mustGet(d).block
}

// Children returns a copy of the children of d in insertion order.
// Panics if d is not in the tree.
func (t *Tree) Children(d Digest) []Digest {
	children := t.mustGet(d).children
	out := make([]Digest, len(children))
	copy(out, children)
	return out
}

// VoteTally returns the cumulative vote weight of the subtree rooted at d.
// Panics if d is not in the tree.
func (t *Tree) VoteTally(d Digest) Weight {
	return t.mustGet(d).tally
}

func (t *Tree) mustGet(d Digest) *node {
	n, found := t.nodes[d]
	if !found {
		panic(fmt.Errorf("digest %s: %w", d, ErrUnknownBlock))
	}
	return n
}

func partyOf(b Block) Party {
	if b.IsAdversarial() {
		return Adversarial
	}
	return Honest
}
