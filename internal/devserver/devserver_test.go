package devserver

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ademidova/go-stock-keeper/internal/adapter"
	"github.com/ademidova/go-stock-keeper/internal/logger"
	"github.com/ademidova/go-stock-keeper/models"
)

// The dev backend is exercised through the production HTTP adapter so both
// sides of the REST contract are checked at once.
func newDevRemote(t *testing.T) (*Server, adapter.RemoteStore) {
	t.Helper()

	server := New(logger.Nop())
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	remote := adapter.NewHTTPRemoteStore(adapter.HTTPClientConfig{BaseURL: ts.URL, Timeout: 2 * time.Second})
	return server, remote
}

func TestLogin_IssuesParseableToken(t *testing.T) {
	_, remote := newDevRemote(t)

	session, err := remote.Authenticate(context.Background(), "worker", "secret")
	require.NoError(t, err)

	assert.Equal(t, "worker", session.UserID)
	assert.True(t, session.Admin)
	assert.NotEmpty(t, remote.Token())
}

func TestLogin_RejectsEmptyCredentials(t *testing.T) {
	_, remote := newDevRemote(t)

	_, err := remote.Authenticate(context.Background(), "", "")
	require.ErrorIs(t, err, adapter.ErrUnauthorized)
}

func TestInsertAndSelect_RoundTrip(t *testing.T) {
	_, remote := newDevRemote(t)

	inserted, err := remote.Insert(context.Background(), models.CollectionItems,
		json.RawMessage(`{"id":"w1","name":"Widget","quantity":3}`))
	require.NoError(t, err)
	assert.Contains(t, string(inserted), `"name":"Widget"`)

	rows, err := remote.Select(context.Background(), models.CollectionItems, adapter.SelectOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestInsert_DuplicateIDIsUpsert(t *testing.T) {
	_, remote := newDevRemote(t)

	ctx := context.Background()
	_, err := remote.Insert(ctx, models.CollectionItems, json.RawMessage(`{"id":"w1","name":"Widget"}`))
	require.NoError(t, err)
	_, err = remote.Insert(ctx, models.CollectionItems, json.RawMessage(`{"id":"w1","name":"Widget v2"}`))
	require.NoError(t, err)

	rows, err := remote.Select(ctx, models.CollectionItems, adapter.SelectOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Contains(t, string(rows[0]), "Widget v2")
}

func TestPatch_MergesFields(t *testing.T) {
	_, remote := newDevRemote(t)

	ctx := context.Background()
	_, err := remote.Insert(ctx, models.CollectionItems, json.RawMessage(`{"id":"w1","name":"Widget","quantity":3}`))
	require.NoError(t, err)

	patched, err := remote.Update(ctx, models.CollectionItems, "w1", json.RawMessage(`{"quantity":8}`))
	require.NoError(t, err)

	assert.Contains(t, string(patched), `"quantity":8`)
	assert.Contains(t, string(patched), `"name":"Widget"`)
}

func TestPatch_MissingRow(t *testing.T) {
	_, remote := newDevRemote(t)

	_, err := remote.Update(context.Background(), models.CollectionItems, "ghost", json.RawMessage(`{"quantity":8}`))
	require.ErrorIs(t, err, adapter.ErrNotFound)
}

func TestDelete_IsIdempotent(t *testing.T) {
	_, remote := newDevRemote(t)

	ctx := context.Background()
	_, err := remote.Insert(ctx, models.CollectionItems, json.RawMessage(`{"id":"w1","name":"Widget"}`))
	require.NoError(t, err)

	require.NoError(t, remote.Delete(ctx, models.CollectionItems, "w1"))
	require.NoError(t, remote.Delete(ctx, models.CollectionItems, "w1"))
}

func TestSelect_FilterByColumn(t *testing.T) {
	server, remote := newDevRemote(t)

	require.NoError(t, server.Seed(models.CollectionItems, models.Item{ID: "w1", Name: "Widget", CategoryID: "c1"}))
	require.NoError(t, server.Seed(models.CollectionItems, models.Item{ID: "w2", Name: "Gadget", CategoryID: "c2"}))

	rows, err := remote.Select(context.Background(), models.CollectionItems, adapter.SelectOptions{
		Filters: map[string]string{"category_id": "c1"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Contains(t, string(rows[0]), "Widget")
}

func TestFetchItems_ExpandsRelations(t *testing.T) {
	server, remote := newDevRemote(t)

	require.NoError(t, server.Seed(models.CollectionCategories, models.Category{ID: "c1", Name: "Hardware"}))
	require.NoError(t, server.Seed(models.CollectionItems, models.Item{ID: "w1", Name: "Widget", CategoryID: "c1", Quantity: 5}))
	require.NoError(t, server.Seed(models.CollectionBatches, models.Batch{ID: "b1", ItemID: "w1", LotNumber: "L-7", Quantity: 5}))
	require.NoError(t, server.Seed(models.CollectionBatches, models.Batch{ID: "b2", ItemID: "other", Quantity: 1}))

	items, err := remote.FetchItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NotNil(t, items[0].Category)
	assert.Equal(t, "Hardware", items[0].Category.Name)
	require.Len(t, items[0].Batches, 1)
	assert.Equal(t, "b1", items[0].Batches[0].ID)
}

func TestFetchRecentTransactions_NewestFirstWithLimit(t *testing.T) {
	server, remote := newDevRemote(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, server.Seed(models.CollectionTransactions, models.Transaction{
			ID:        id,
			ItemID:    "w1",
			Type:      models.TransactionIn,
			Quantity:  1,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	txs, err := remote.FetchRecentTransactions(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "t3", txs[0].ID)
	assert.Equal(t, "t2", txs[1].ID)
}
