package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Prashu2024/form-builder-backend/internal/oxidb/oxidbtest"
)

func TestPoolRoundRobin(t *testing.T) {
	srv := oxidbtest.Start(t)
	p, err := NewPool(srv.Host(), srv.Port(), 3, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(p.Close)

	seen := map[any]bool{}
	for i := 0; i < 3; i++ {
		seen[p.Get()] = true
	}
	assert.Len(t, seen, 3)
	assert.NoError(t, p.Ping(context.Background()))

	p.Close()
	p.Close()
}

func TestPoolConnectFailure(t *testing.T) {
	srv := oxidbtest.Start(t)
	host, port := srv.Host(), srv.Port()
	srv.Close()

	_, err := NewPool(host, port, 2, zap.NewNop())
	assert.Error(t, err)
}

func TestPoolRejectsEmptySize(t *testing.T) {
	_, err := NewPool("127.0.0.1", 4444, 0, zap.NewNop())
	assert.Error(t, err)
}
