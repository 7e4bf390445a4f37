// Package trie implements the binary radix trie over IP address bits that
// maps prefixes to data-section offsets (spec.md §4.4).
//
// Nodes live in a flat arena (a []node slice) addressed by index, with
// left/right children stored as indices rather than pointers, per the
// Design Notes (spec.md §9): this keeps the breadth-first layout walk
// cache-friendly and sidesteps cycle concerns, since the trie is a pure
// tree. This mirrors how gaissmai/bart's node arrays avoid pointer-chasing
// in the hot path, adapted here from a 256-wide multibit stride to a
// plain two-child binary step per inserted address bit.
package trie

import (
	"github.com/pkg/errors"

	"github.com/bartdb/mmdbwriter/internal/errs"
)

// noChild marks the absence of a child edge.
const noChild = -1

// RootIndex is the arena index of the trie root, always node 0.
const RootIndex = 0

// node is one trie node: up to two child edges (left = bit 0, right = bit
// 1) and an optional data offset. Per spec.md §3, a node is either
// internal (has at least one child, no data) or terminal (has data, no
// children) once insertion completes; the carry-down rule (§4.4) may
// violate this temporarily mid-insertion, never after.
type node struct {
	left, right int
	hasData     bool
	data        int
}

func emptyNode() node {
	return node{left: noChild, right: noChild}
}

// Trie is an arena of nodes rooted at index 0.
type Trie struct {
	nodes []node
}

// New returns a Trie containing only the (empty) root.
func New() *Trie {
	return &Trie{nodes: []node{emptyNode()}}
}

// bit returns the i-th bit of addr counting from the most significant bit
// of the first byte, 0-indexed. Step i of the walk in spec.md §4.4 always
// resolves to this index: "position max_prefix_length - i - 1" counted
// from the least-significant bit is the same bit as index i counted from
// the most-significant one.
func bit(addr []byte, i int) int {
	byteIdx := i >> 3
	mask := byte(0x80 >> uint(i&7))
	if addr[byteIdx]&mask != 0 {
		return 1
	}
	return 0
}

// Insert adds (addr, prefixLen) -> dataID to the trie. addr must be at
// least prefixLen bits long. strict selects the overlap policy of
// spec.md §4.4: true rejects any overwrite or split of an existing
// prefix, false resolves overlaps by longest-prefix-match semantics.
func (t *Trie) Insert(addr []byte, prefixLen, dataID int, strict bool) error {
	if prefixLen == 0 {
		return t.insertTerminal(RootIndex, dataID, strict)
	}

	cur := RootIndex
	var carry *int

	for i := 0; i < prefixLen; i++ {
		b := bit(addr, i)

		if carry == nil && t.nodes[cur].hasData {
			// Only existing nodes lie above a data-holding node, so
			// rejecting here leaves the trie unchanged.
			if strict {
				return errors.Wrap(errs.ErrOverlap, "prefix would split an existing less specific prefix")
			}
			c := t.nodes[cur].data
			carry = &c
			t.nodes[cur].hasData = false
			t.nodes[cur].data = 0
		}

		if carry != nil {
			t.attachCarrySibling(cur, 1-b, *carry)
		}

		if t.nodes[cur].hasData {
			panic("logic error: internal node carries data")
		}

		if i == prefixLen-1 {
			child := t.ensureChild(cur, b)
			return t.insertTerminal(child, dataID, strict)
		}

		cur = t.ensureChild(cur, b)
	}

	panic("logic error: insert loop fell through")
}

// ensureChild returns the index of cur's child on branch b, creating an
// empty node there first if it doesn't already exist.
func (t *Trie) ensureChild(cur, b int) int {
	idx := t.child(cur, b)
	if idx != noChild {
		return idx
	}

	t.nodes = append(t.nodes, emptyNode())
	idx = len(t.nodes) - 1

	if b == 0 {
		t.nodes[cur].left = idx
	} else {
		t.nodes[cur].right = idx
	}

	return idx
}

// attachCarrySibling attaches a fresh terminal node bearing carried data
// on cur's branch b, if that branch is still empty. Per spec.md §4.4,
// the carried value belongs to a less-specific prefix that still applies
// to every address under cur not covered by the more specific prefix
// being inserted, so an already-populated sibling (from an earlier
// insertion carrying the same ancestor data down the same path) is left
// untouched rather than overwritten.
func (t *Trie) attachCarrySibling(cur, b, carry int) {
	if t.child(cur, b) != noChild {
		return
	}

	t.nodes = append(t.nodes, node{left: noChild, right: noChild, hasData: true, data: carry})
	idx := len(t.nodes) - 1

	if b == 0 {
		t.nodes[cur].left = idx
	} else {
		t.nodes[cur].right = idx
	}
}

// insertTerminal applies the strict/non-strict overlap policy of
// spec.md §4.4 at the terminal step of an insertion.
func (t *Trie) insertTerminal(idx, dataID int, strict bool) error {
	n := &t.nodes[idx]

	switch {
	case n.hasData:
		if strict {
			return errors.Wrap(errs.ErrOverlap, "prefix already has data")
		}
		// non-strict: preserve the existing, more specific or
		// earlier-inserted data; also covers idempotent reinsertion.
		return nil

	case t.hasChildren(idx):
		if strict {
			return errors.Wrap(errs.ErrOverlap, "prefix would split an existing more specific prefix")
		}
		t.fillEmptyTerminals(idx, dataID)
		return nil

	default:
		n.hasData = true
		n.data = dataID
		return nil
	}
}

// fillEmptyTerminals implements the non-strict "more specific prefix
// inserted first" branch of spec.md §4.4: depth-first descent that
// stamps dataID onto every still-empty terminal beneath idx, stopping
// immediately at any existing terminal it encounters.
func (t *Trie) fillEmptyTerminals(idx, dataID int) {
	if t.nodes[idx].hasData {
		return
	}

	if !t.hasChildren(idx) {
		t.nodes[idx].hasData = true
		t.nodes[idx].data = dataID
		return
	}

	for _, b := range [2]int{0, 1} {
		child := t.child(idx, b)
		if child == noChild {
			child = t.ensureChild(idx, b)
			t.nodes[child].hasData = true
			t.nodes[child].data = dataID
			continue
		}
		t.fillEmptyTerminals(child, dataID)
	}
}

func (t *Trie) child(idx, b int) int {
	if b == 0 {
		return t.nodes[idx].left
	}
	return t.nodes[idx].right
}

func (t *Trie) hasChildren(idx int) bool {
	return t.nodes[idx].left != noChild || t.nodes[idx].right != noChild
}

// IsInternal reports whether the node at idx has at least one child.
// Per spec.md §3, this is mutually exclusive with holding data, except
// at the root, which is always written to the node section regardless
// of whether it structurally holds data (see Walk).
func (t *Trie) IsInternal(idx int) bool {
	return t.hasChildren(idx)
}

// HasData reports whether the node at idx holds a data offset.
func (t *Trie) HasData(idx int) bool {
	return t.nodes[idx].hasData
}

// Data returns the data offset held by the node at idx. The caller must
// have checked HasData first.
func (t *Trie) Data(idx int) int {
	return t.nodes[idx].data
}

// Child returns the index of idx's child on branch b (0 = left, 1 =
// right), or -1 if absent.
func (t *Trie) Child(idx, b int) int {
	return t.child(idx, b)
}

// Walk performs the breadth-first traversal of spec.md §4.6: the root is
// always assigned id 0 regardless of whether it structurally holds data
// (this is what lets a single /0 insertion still produce a one-node
// artifact, per spec.md §8 scenario 1), and every subsequent internal
// child is assigned the next sequential id and enqueued in turn.
//
// It returns, in BFS id order, the arena index backing each assigned id;
// len(order) is the trie's node_count.
func (t *Trie) Walk() (order []int) {
	order = []int{RootIndex}
	queue := []int{RootIndex}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]

		for _, b := range [2]int{0, 1} {
			child := t.child(cur, b)
			if child == noChild || !t.IsInternal(child) {
				continue
			}

			order = append(order, child)
			queue = append(queue, child)
		}
	}

	return order
}
