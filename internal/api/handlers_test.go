package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/byldsync/treesync/internal/api"
	"github.com/byldsync/treesync/internal/synctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestTree(t *testing.T) *synctree.SyncTree {
	t.Helper()
	tree, err := synctree.New([]synctree.Attr{{Key: "name", Value: "root"}})
	require.NoError(t, err)

	child, err := tree.AddNode(tree.Root(), []synctree.Attr{{Key: "name", Value: "child"}})
	require.NoError(t, err)

	_, err = tree.AddNode(child, []synctree.Attr{{Key: "name", Value: "grandchild"}})
	require.NoError(t, err)

	tree.RefreshTree()
	return tree
}

type decoded struct {
	Success      bool            `json:"success"`
	Data         json.RawMessage `json:"data"`
	ErrorMessage string          `json:"error_message"`
}

func doGet(t *testing.T, h http.Handler, target string) decoded {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out decoded
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandleNodeCheckDefaultsType(t *testing.T) {
	tree := buildTestTree(t)
	h := api.New(tree).Handler()

	out := doGet(t, h, "/api/sync/node?pk=0")
	require.True(t, out.Success)

	var hashes map[string]synctree.SyncHash
	require.NoError(t, json.Unmarshal(out.Data, &hashes))
	require.Contains(t, hashes, "0")
	require.NotEqual(t, "0", hashes["0"].Hash)
}

func TestHandleNodeFetchReturnsPayload(t *testing.T) {
	tree := buildTestTree(t)
	h := api.New(tree).Handler()

	out := doGet(t, h, "/api/sync/node?type=fetch&pk=0")
	require.True(t, out.Success)

	var entries map[string]synctree.FetchEntry
	require.NoError(t, json.Unmarshal(out.Data, &entries))
	require.Equal(t, "root", entries["0"].Data["name"])
}

func TestHandleNodeUnknownPK(t *testing.T) {
	tree := buildTestTree(t)
	h := api.New(tree).Handler()

	out := doGet(t, h, "/api/sync/node?type=check&pk=999")
	require.False(t, out.Success)
	require.Equal(t, "Could not find pk", out.ErrorMessage)
}

func TestHandleNodeUnknownPKLogsAtWarnDespiteHTTP200(t *testing.T) {
	tree := buildTestTree(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := api.New(tree, api.WithLogger(logger)).Handler()

	out := doGet(t, h, "/api/sync/node?type=check&pk=999")
	require.False(t, out.Success)
	assert.Contains(t, buf.String(), "\"status\":200")
	assert.Contains(t, buf.String(), "\"level\":\"WARN\"")
}

func TestHandleNodeUnknownType(t *testing.T) {
	tree := buildTestTree(t)
	h := api.New(tree).Handler()

	out := doGet(t, h, "/api/sync/node?type=bogus&pk=0")
	require.False(t, out.Success)
	require.Equal(t, "Unknown API call type.", out.ErrorMessage)
}

func TestHandleNodeCheckChildrenRequiresOnePK(t *testing.T) {
	tree := buildTestTree(t)
	h := api.New(tree).Handler()

	out := doGet(t, h, "/api/sync/node?type=check_children&pk=0&pk=1")
	require.False(t, out.Success)

	out = doGet(t, h, "/api/sync/node?type=check_children&pk=0")
	require.True(t, out.Success)

	var result synctree.CheckChildrenResult
	require.NoError(t, json.Unmarshal(out.Data, &result))
	require.Equal(t, 1, result.NumberOfChildren)
}

func TestHandleSinceDefaultsToZero(t *testing.T) {
	tree := buildTestTree(t)
	h := api.New(tree).Handler()

	out := doGet(t, h, "/api/sync")
	require.True(t, out.Success)

	var entries map[string]synctree.SinceEntry
	require.NoError(t, json.Unmarshal(out.Data, &entries))
	require.Len(t, entries, 3)
}

func TestHandleSinceMalformedDefaultsToZero(t *testing.T) {
	tree := buildTestTree(t)
	h := api.New(tree).Handler()

	out := doGet(t, h, "/api/sync?updated_time=not-a-number")
	require.True(t, out.Success)

	var entries map[string]synctree.SinceEntry
	require.NoError(t, json.Unmarshal(out.Data, &entries))
	require.Len(t, entries, 3)
}
