package synctree

import (
	"sort"
	"sync"
)

// SyncTree owns every Node in the tree, indexed by primary key, and is the
// sole mutator of the dirty set. All mutation and refresh operations are
// serialized behind mu's write side; queries may run concurrently with one
// another under the read side, but never alongside a writer (§5).
type SyncTree struct {
	root   *Node
	nodes  map[int]*Node
	nextPK int
	dirty  map[int]struct{}

	mu sync.RWMutex
}

// New creates a tree whose root is pk 0, self-parented, with the given
// initial payload. ErrEmptyRoot is returned if attrs is empty, matching the
// reference implementation's refusal to start with no root data.
func New(attrs []Attr) (*SyncTree, error) {
	if len(attrs) == 0 {
		return nil, wrap(ErrEmptyRoot, "SyncTree.New")
	}
	t := &SyncTree{
		nodes: make(map[int]*Node),
		dirty: make(map[int]struct{}),
	}
	root := newNode(0, nil, 0, attrs, t)
	root.parent = root
	t.root = root
	t.nodes[0] = root
	t.dirty[0] = struct{}{}
	return t, nil
}

// Root returns the tree's root node.
func (t *SyncTree) Root() *Node { return t.root }

// markDirty enqueues pk for the next refresh. Callers must already hold
// t.mu for writing; Node's mutators (reached directly or through AddNode)
// and localRehash (reached through RefreshTree) are the only call sites.
func (t *SyncTree) markDirty(pk int) {
	t.dirty[pk] = struct{}{}
}

// AddNode assigns the next primary key, attaches a new node under parent
// with the given payload, and marks both parent and child dirty.
func (t *SyncTree) AddNode(parent *Node, attrs []Attr) (*Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if parent == nil {
		return nil, wrap(ErrInvalidChild, "AddNode: nil parent")
	}

	t.nextPK++
	pk := t.nextPK
	child := newNode(pk, parent, parent.depth+1, attrs, t)
	if err := parent.addChildLocked(child); err != nil {
		t.nextPK--
		return nil, err
	}
	t.nodes[pk] = child
	return child, nil
}

// GetNode looks up a node by primary key, or returns ErrUnknownKey.
func (t *SyncTree) GetNode(pk int) (*Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.getNodeLocked(pk)
}

// getNodeLocked is GetNode without its own locking, for callers (the sync
// query surface) that already hold t.mu for the whole multi-pk call so a
// concurrent refresh can never be observed mid-query.
func (t *SyncTree) getNodeLocked(pk int) (*Node, error) {
	n, ok := t.nodes[pk]
	if !ok {
		return nil, wrap(ErrUnknownKey, "pk %d", pk)
	}
	return n, nil
}

// RefreshTree reconciles every pending mutation: it collects the dirty set
// plus the full ancestor closure of each dirty node, rehashes in
// depth-descending order so every parent sees its children's final
// digests, and clears the dirty set. It is idempotent when called with no
// intervening mutation (§8 property 5).
func (t *SyncTree) RefreshTree() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.dirty) == 0 {
		return
	}

	work := make(map[int]*Node, len(t.dirty))
	for pk := range t.dirty {
		n, ok := t.nodes[pk]
		if !ok {
			// A dirty pk for a node that no longer exists cannot happen
			// (nodes are never removed), but guard defensively.
			continue
		}
		for {
			if _, seen := work[n.pk]; seen {
				break
			}
			work[n.pk] = n
			if n.parent == n {
				break
			}
			n = n.parent
		}
	}

	ordered := make([]*Node, 0, len(work))
	for _, n := range work {
		ordered = append(ordered, n)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].depth > ordered[j].depth
	})

	for _, n := range ordered {
		n.localRehash()
	}

	t.dirty = make(map[int]struct{})
}

// GetNodesAfterTime returns every node whose update_time strictly exceeds
// t, i.e. the since(t) sync query with no response envelope attached.
func (t *SyncTree) GetNodesAfterTime(since float64) []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []*Node
	for _, n := range t.nodes {
		if n.updateTime > since {
			out = append(out, n)
		}
	}
	return out
}
