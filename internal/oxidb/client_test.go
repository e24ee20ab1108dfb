package oxidb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Prashu2024/form-builder-backend/internal/oxidb"
	"github.com/Prashu2024/form-builder-backend/internal/oxidb/oxidbtest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func getClient(t *testing.T) (*oxidb.Client, *oxidbtest.Server) {
	t.Helper()
	srv := oxidbtest.Start(t)
	c, err := oxidb.Connect(srv.Host(), srv.Port(), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, srv
}

func TestPing(t *testing.T) {
	c, _ := getClient(t)
	pong, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pong", pong)
}

func TestInsertAndFind(t *testing.T) {
	c, srv := getClient(t)
	ctx := context.Background()

	for _, name := range []string{"carol", "alice", "bob"} {
		result, err := c.Insert(ctx, "people", map[string]any{"name": name})
		require.NoError(t, err)
		assert.NotNil(t, result["id"])
	}
	assert.Len(t, srv.Docs("people"), 3)

	skip, limit := 1, 1
	docs, err := c.Find(ctx, "people", map[string]any{}, &oxidb.FindOptions{
		Sort:  map[string]any{"name": 1},
		Skip:  &skip,
		Limit: &limit,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "bob", docs[0]["name"])

	n, err := c.Count(ctx, "people", map[string]any{"name": map[string]any{"$regex": "^(a|b)"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestFindOneMissing(t *testing.T) {
	c, _ := getClient(t)
	doc, err := c.FindOne(context.Background(), "people", map[string]any{"name": "nobody"})
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestIndexes(t *testing.T) {
	c, srv := getClient(t)
	ctx := context.Background()
	require.NoError(t, c.CreateIndex(ctx, "people", "name"))
	require.NoError(t, c.CreateUniqueIndex(ctx, "people", "email"))
	assert.Equal(t, []string{"name", "email"}, srv.Indexes("people"))
}

func TestServerErrors(t *testing.T) {
	c, srv := getClient(t)
	ctx := context.Background()

	srv.Fail("insert", "disk full")
	_, err := c.Insert(ctx, "people", map[string]any{"name": "x"})
	var oerr *oxidb.Error
	require.True(t, errors.As(err, &oerr))
	assert.Equal(t, "disk full", oerr.Msg)

	srv.Fail("insert", "write conflict on key")
	_, err = c.Insert(ctx, "people", map[string]any{"name": "x"})
	var conflict *oxidb.TransactionConflictError
	assert.True(t, errors.As(err, &conflict))
}

func TestCanceledContext(t *testing.T) {
	c, _ := getClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Ping(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConnectRefused(t *testing.T) {
	srv := oxidbtest.Start(t)
	host, port := srv.Host(), srv.Port()
	srv.Close()

	_, err := oxidb.Connect(host, port, 200*time.Millisecond)
	assert.Error(t, err)
}
