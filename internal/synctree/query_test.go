package synctree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAllOrNothing(t *testing.T) {
	tree, a, _, _ := buildSample(t)

	res, err := tree.Check([]int{a.pk})
	require.NoError(t, err)
	assert.Equal(t, a.GetSyncHash(), res[a.pk])

	_, err = tree.Check([]int{a.pk, 999})
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestFetchIncludesPayload(t *testing.T) {
	tree, a, _, _ := buildSample(t)

	res, err := tree.Fetch([]int{a.pk})
	require.NoError(t, err)
	entry := res[a.pk]
	assert.Equal(t, a.GetSyncHash(), entry.Hash)
	assert.Equal(t, "CSE events", entry.Data["category_name"])
}

func TestCheckChildren(t *testing.T) {
	tree, a, a1, _ := buildSample(t)

	res, err := tree.CheckChildren(a.pk)
	require.NoError(t, err)
	assert.Equal(t, 1, res.NumberOfChildren)
	assert.Equal(t, a1.GetSyncHash(), res.Hash[a1.pk])

	_, err = tree.CheckChildren(999)
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestGetParentsRootExcluded(t *testing.T) {
	tree, a, a1, _ := buildSample(t)

	res, err := tree.GetParents([]int{a1.pk, a.pk, tree.root.pk})
	require.NoError(t, err)

	assert.Equal(t, []int{a.pk}, res[a1.pk])
	assert.Empty(t, res[a.pk])
	assert.Empty(t, res[tree.root.pk])
}

func TestCheckRejectsCorruptHash(t *testing.T) {
	tree, a, _, _ := buildSample(t)
	a.hash = "" // not a valid digest nor the sentinel

	_, err := tree.Check([]int{a.pk})
	assert.ErrorIs(t, err, ErrDigestFailure)
}

func TestFetchRejectsCorruptHash(t *testing.T) {
	tree, a, _, _ := buildSample(t)
	a.childrenHash = "not-hex"

	_, err := tree.Fetch([]int{a.pk})
	assert.ErrorIs(t, err, ErrDigestFailure)
}

func TestSinceQuery(t *testing.T) {
	tree, _, a1, _ := buildSample(t)
	t0 := a1.updateTime

	a1.SetAttr("hours", 20)
	tree.RefreshTree()

	res := tree.Since(t0)
	entry, ok := res[a1.pk]
	require.True(t, ok)
	assert.Equal(t, a1.GetSyncHash(), entry.Hash)
	assert.Equal(t, a1.updateTime, entry.UpdatedTime)
}
