// Package synctree's sync query surface answers the questions a client
// holding a previous snapshot asks to diff against the live tree: Check,
// Fetch, CheckChildren, GetParents and Since. Every query is read-only; none
// of them touch the dirty set or trigger a refresh, and all of them fail
// whole (no partial success) if any requested pk is unknown.
package synctree

import (
	"context"

	"github.com/byldsync/treesync/internal/digest"
	"golang.org/x/sync/errgroup"
)

// FetchEntry is one node's sync triple plus its payload, as returned by Fetch.
type FetchEntry struct {
	Hash SyncHash       `json:"hash"`
	Data map[string]any `json:"data"`
}

// CheckChildrenResult is the reply to CheckChildren: the number of children
// and each child's sync triple, keyed by child pk.
type CheckChildrenResult struct {
	NumberOfChildren int              `json:"number_of_children"`
	Hash             map[int]SyncHash `json:"hash"`
}

// SinceEntry is one node's sync triple plus its update time, as returned by Since.
type SinceEntry struct {
	Hash        SyncHash `json:"hash"`
	UpdatedTime float64  `json:"updated_time"`
}

// Check returns the sync triple of every requested pk. Unknown pks fail the
// whole call.
func (t *SyncTree) Check(pks []int) (map[int]SyncHash, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	nodes, err := t.resolveLocked(pks)
	if err != nil {
		return nil, err
	}
	out := make(map[int]SyncHash, len(nodes))
	for pk, n := range nodes {
		sh := n.GetSyncHash()
		if err := validateSyncHash(sh); err != nil {
			return nil, err
		}
		out[pk] = sh
	}
	return out, nil
}

// Fetch returns the sync triple and payload of every requested pk. Unknown
// pks fail the whole call.
func (t *SyncTree) Fetch(pks []int) (map[int]FetchEntry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	nodes, err := t.resolveLocked(pks)
	if err != nil {
		return nil, err
	}
	out := make(map[int]FetchEntry, len(nodes))
	for pk, n := range nodes {
		sh := n.GetSyncHash()
		if err := validateSyncHash(sh); err != nil {
			return nil, err
		}
		out[pk] = FetchEntry{Hash: sh, Data: n.Payload()}
	}
	return out, nil
}

// validateSyncHash guards against handing a client a corrupt digest: every
// hash Sum produces is well-formed by construction, so this only ever trips
// if a node's hash fields were left zero-valued or otherwise bypassed Sum,
// which ErrDigestFailure exists to report.
func validateSyncHash(sh SyncHash) error {
	if !digest.Valid(sh.Hash) || !digest.Valid(sh.InfoHash) || !digest.Valid(sh.ChildrenHash) {
		return wrap(ErrDigestFailure, "corrupt sync hash")
	}
	return nil
}

// CheckChildren returns the sync triple of pk's immediate children.
func (t *SyncTree) CheckChildren(pk int) (CheckChildrenResult, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n, err := t.getNodeLocked(pk)
	if err != nil {
		return CheckChildrenResult{}, err
	}
	hashes := make(map[int]SyncHash, len(n.children))
	for _, c := range n.children {
		hashes[c.pk] = c.GetSyncHash()
	}
	return CheckChildrenResult{NumberOfChildren: len(n.children), Hash: hashes}, nil
}

// GetParents returns, for every requested pk, the chain of ancestor pks
// from its immediate parent up to (but excluding) the root, in root-ward
// order. Unknown pks fail the whole call.
func (t *SyncTree) GetParents(pks []int) (map[int][]int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	nodes, err := t.resolveLocked(pks)
	if err != nil {
		return nil, err
	}
	out := make(map[int][]int, len(nodes))
	for pk, n := range nodes {
		var ancestors []int
		cur := n
		for cur.parent != cur {
			cur = cur.parent
			if cur == t.root {
				break
			}
			ancestors = append(ancestors, cur.pk)
		}
		out[pk] = ancestors
	}
	return out, nil
}

// Since returns the sync triple and update time of every node whose
// update_time strictly exceeds the given timestamp.
func (t *SyncTree) Since(since float64) map[int]SinceEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[int]SinceEntry)
	for pk, n := range t.nodes {
		if n.updateTime > since {
			out[pk] = SinceEntry{Hash: n.GetSyncHash(), UpdatedTime: n.updateTime}
		}
	}
	return out
}

// resolveLocked validates and gathers the nodes for pks concurrently using
// an errgroup: the batch is still all-or-nothing (any unknown pk fails the
// whole call) but each pk is looked up in its own goroutine instead of
// serially. It is always called with t.mu
// already held for reading, so the goroutines only ever read shared state,
// never mutate it.
func (t *SyncTree) resolveLocked(pks []int) (map[int]*Node, error) {
	results := make([]*Node, len(pks))
	g, _ := errgroup.WithContext(context.Background())
	for i, pk := range pks {
		i, pk := i, pk
		g.Go(func() error {
			n, err := t.getNodeLocked(pk)
			if err != nil {
				return err
			}
			results[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[int]*Node, len(pks))
	for i, pk := range pks {
		out[pk] = results[i]
	}
	return out, nil
}
