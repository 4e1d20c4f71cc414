package synctree

import (
	"time"

	"github.com/byldsync/treesync/internal/digest"
)

// Node is one node of the synchronization tree: it owns an InformationNode
// payload, an ordered list of children, and the digests/timestamp that
// summarize the subtree rooted at it.
//
// Node's exported mutation methods (SetAttr, DelAttr, AddChild) take the
// owning tree's write lock themselves, so callers may invoke them directly
// on a *Node obtained from SyncTree.GetNode without going through the tree.
// Internal unlocked variants are used when the tree already holds the lock
// (e.g. from within AddNode).
type Node struct {
	pk       int
	parent   *Node
	children []*Node
	info     *InformationNode

	childrenHash string
	hash         string
	depth        int
	updateTime   float64

	tree *SyncTree
}

func newNode(pk int, parent *Node, depth int, attrs []Attr, tree *SyncTree) *Node {
	n := &Node{
		pk:           pk,
		parent:       parent,
		info:         newInformationNode(pk, attrs),
		childrenHash: digest.Sentinel,
		hash:         digest.Sentinel,
		depth:        depth,
		tree:         tree,
	}
	return n
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// PK returns the node's primary key.
func (n *Node) PK() int { return n.pk }

// Depth returns the node's depth (root = 0).
func (n *Node) Depth() int { return n.depth }

// Parent returns the node's parent. The root is its own parent.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in insertion order. The returned
// slice must not be mutated by the caller.
func (n *Node) Children() []*Node { return n.children }

// SetAttr sets a payload attribute and marks the node dirty for the next refresh.
func (n *Node) SetAttr(key string, value any) {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	n.setAttrLocked(key, value)
}

func (n *Node) setAttrLocked(key string, value any) {
	n.info.set(key, value)
	n.tree.markDirty(n.pk)
}

// GetAttr returns a payload attribute, or ErrMissingAttribute if absent.
// Reading never mutates state or marks the node dirty.
func (n *Node) GetAttr(key string) (any, error) {
	n.tree.mu.RLock()
	defer n.tree.mu.RUnlock()
	return n.info.get(key)
}

// DelAttr removes a payload attribute and marks the node dirty, or returns
// ErrMissingAttribute if the key was never set.
func (n *Node) DelAttr(key string) error {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	return n.delAttrLocked(key)
}

func (n *Node) delAttrLocked(key string) error {
	if err := n.info.delete(key); err != nil {
		return err
	}
	n.tree.markDirty(n.pk)
	return nil
}

// AddChild appends child to n's children, reparents it, and marks both n
// and child dirty for the next refresh.
func (n *Node) AddChild(child *Node) error {
	n.tree.mu.Lock()
	defer n.tree.mu.Unlock()
	return n.addChildLocked(child)
}

func (n *Node) addChildLocked(child *Node) error {
	if child == nil {
		return wrap(ErrInvalidChild, "nil child")
	}
	child.parent = n
	n.children = append(n.children, child)
	n.tree.markDirty(n.pk)
	n.tree.markDirty(child.pk)
	return nil
}

// RemoveChild is unsupported: deletions are modeled by a payload attribute.
func (n *Node) RemoveChild(*Node) error {
	return wrap(ErrUnsupported, "remove_child")
}

// GetHash, GetInfoHash, GetChildrenHash, GetSyncHash, GetUpdateTime and
// Payload read already-settled fields without locking: the sync query
// surface (SyncTree.Check/Fetch/...) takes the tree's lock once for
// the whole call and reads through these, so locking here too would
// deadlock on recursive RLock. Call them directly, outside the query
// surface, only between refreshes when no writer can be running
// concurrently (the single-writer model in §5).

// GetHash returns the combined digest summarizing the subtree rooted at n.
func (n *Node) GetHash() string { return n.hash }

// GetInfoHash returns the digest of n's own payload.
func (n *Node) GetInfoHash() string { return n.info.infoHash }

// GetChildrenHash returns the digest over n's children's combined digests.
func (n *Node) GetChildrenHash() string { return n.childrenHash }

// SyncHash is the (hash, info_hash, children_hash) triple returned by every
// sync query.
type SyncHash struct {
	Hash         string `json:"hash"`
	InfoHash     string `json:"info_hash"`
	ChildrenHash string `json:"children_hash"`
}

// GetSyncHash returns n's full sync triple.
func (n *Node) GetSyncHash() SyncHash {
	return SyncHash{Hash: n.hash, InfoHash: n.info.infoHash, ChildrenHash: n.childrenHash}
}

// GetUpdateTime returns the last time n.hash changed.
func (n *Node) GetUpdateTime() float64 { return n.updateTime }

// Payload returns a snapshot of n's attributes, safe for the caller to read
// or serialize. Mutating the returned map has no effect on the node.
func (n *Node) Payload() map[string]any { return n.info.snapshot() }

// localRehash recomputes info_hash, children_hash and hash, advances
// update_time if hash changed, and propagates dirtiness to the parent. It
// is invoked exclusively by SyncTree.RefreshTree, in depth-descending
// order, never by any public Node method.
func (n *Node) localRehash() {
	old := n.hash

	n.info.rehash()

	if len(n.children) == 0 {
		n.childrenHash = digest.Sentinel
	} else {
		parts := make([]string, len(n.children))
		for i, c := range n.children {
			parts[i] = c.hash
		}
		n.childrenHash = digest.Sum(digest.Concat(parts...))
	}

	n.hash = digest.Sum(digest.Concat(n.childrenHash, n.info.infoHash))

	if n.hash != old {
		n.updateTime = nowSeconds()
		if n.parent != n {
			n.tree.markDirty(n.parent.pk)
		}
	}
}
