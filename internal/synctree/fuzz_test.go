package synctree

import (
	"fmt"
	"testing"

	"github.com/byldsync/treesync/internal/digest"
	"github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
)

// TestFuzzMutationSequenceInvariants generates random payload mutations
// across a small tree and checks, after every refresh, that the global
// invariants in spec §3/§8 still hold: children_hash/hash agree with their
// definitions, non-root update_time never exceeds the parent's, and the
// dirty set is empty.
func TestFuzzMutationSequenceInvariants(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(1, 3)

	tree, a, a1, b := buildSample(t)
	nodes := []*Node{tree.root, a, a1, b}

	for i := 0; i < 200; i++ {
		var key string
		var value string
		var n int
		f.Fuzz(&key)
		f.Fuzz(&value)
		f.Fuzz(&n)

		target := nodes[(n%len(nodes)+len(nodes))%len(nodes)]
		if key == "" {
			key = fmt.Sprintf("k%d", i)
		}
		target.SetAttr(key, value)
		tree.RefreshTree()

		assertTreeInvariants(t, tree)
	}
}

func assertTreeInvariants(t *testing.T, tree *SyncTree) {
	t.Helper()
	require.Empty(t, tree.dirty)

	for _, n := range tree.nodes {
		if len(n.children) == 0 {
			require.Equal(t, "0", n.childrenHash)
		} else {
			parts := make([]string, len(n.children))
			for i, c := range n.children {
				parts[i] = c.hash
			}
			require.Equal(t, digest.Sum(digest.Concat(parts...)), n.childrenHash)
		}
		require.Equal(t, digest.Sum(digest.Concat(n.childrenHash, n.info.infoHash)), n.hash)
		if n != tree.root {
			require.LessOrEqual(t, n.updateTime, n.parent.updateTime)
		}
	}
}
