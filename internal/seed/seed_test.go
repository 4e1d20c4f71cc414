package seed_test

import (
	"testing"

	"github.com/byldsync/treesync/internal/seed"
	"github.com/stretchr/testify/require"
)

func TestBasicExampleTreeShape(t *testing.T) {
	tree, err := seed.BasicExampleTree()
	require.NoError(t, err)

	root := tree.Root()
	require.Len(t, root.Children(), 2)

	cse := root.Children()[0]
	require.Equal(t, "CSE events", mustGet(t, cse, "category_name"))
	require.Len(t, cse.Children(), 3)

	ece := root.Children()[1]
	require.Len(t, ece.Children(), 1)

	hashes, err := tree.Check([]int{root.PK()})
	require.NoError(t, err)
	require.NotEqual(t, "0", hashes[root.PK()].Hash)
}

func mustGet(t *testing.T, n interface {
	GetAttr(string) (any, error)
}, key string) any {
	t.Helper()
	v, err := n.GetAttr(key)
	require.NoError(t, err)
	return v
}
