package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Prashu2024/form-builder-backend/internal/db"
	"github.com/Prashu2024/form-builder-backend/internal/oxidb/oxidbtest"
)

var epoch = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

// sequence yields predictable ids and one-second-apart timestamps.
type sequence struct{ n int }

func (s *sequence) id() string {
	s.n++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", s.n)
}

func (s *sequence) now() time.Time {
	return epoch.Add(time.Duration(s.n) * time.Second)
}

func (s *sequence) options() []Option {
	return []Option{WithIDGenerator(s.id), WithClock(s.now)}
}

type storeFactory func(t *testing.T, opts ...Option) SubmissionStore

func factories() map[string]storeFactory {
	f := map[string]storeFactory{
		"sqlite": func(t *testing.T, opts ...Option) SubmissionStore {
			s, err := OpenSQL(context.Background(), "sqlite", ":memory:", opts...)
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		"oxidb": func(t *testing.T, opts ...Option) SubmissionStore {
			srv := oxidbtest.Start(t)
			pool, err := db.NewPool(srv.Host(), srv.Port(), 2, zap.NewNop())
			require.NoError(t, err)
			s := NewOxiStore(pool, zap.NewNop(), opts...)
			t.Cleanup(func() { s.Close() })
			require.NoError(t, s.EnsureIndexes(context.Background()))
			return s
		},
	}
	if dsn := os.Getenv("FORMS_TEST_POSTGRES_DSN"); dsn != "" {
		f["postgres"] = func(t *testing.T, opts ...Option) SubmissionStore {
			s, err := OpenSQL(context.Background(), "postgres", dsn, opts...)
			require.NoError(t, err)
			_, err = s.db.Exec(`TRUNCATE form_submissions`)
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		}
	}
	return f
}

func forEachStore(t *testing.T, fn func(t *testing.T, newStore storeFactory)) {
	for name, f := range factories() {
		t.Run(name, func(t *testing.T) { fn(t, f) })
	}
}

func seed(t *testing.T, s SubmissionStore, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := s.Create(context.Background(), map[string]any{"seq": i, "name": fmt.Sprintf("user-%d", i)})
		require.NoError(t, err)
	}
}

func ids(p *Page) []string {
	out := make([]string, len(p.Items))
	for i, it := range p.Items {
		out[i] = it.ID
	}
	return out
}

func TestCreateAndFind(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		ctx := context.Background()
		s := newStore(t)

		payload := map[string]any{
			"fullName": "Jane Doe",
			"age":      30,
			"skills":   []any{"go", "sql"},
			"agree":    true,
		}
		before := time.Now().UTC().Add(-time.Second)
		sub, err := s.Create(ctx, payload)
		require.NoError(t, err)

		_, err = uuid.Parse(sub.ID)
		assert.NoError(t, err, "id %q is not a uuid", sub.ID)
		assert.WithinRange(t, sub.CreatedAt, before, time.Now().UTC().Add(time.Second))

		got, err := s.FindByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, sub.ID, got.ID)
		assert.True(t, sub.CreatedAt.Equal(got.CreatedAt), "created_at %s != %s", sub.CreatedAt, got.CreatedAt)

		want, _ := json.Marshal(payload)
		have, _ := json.Marshal(got.Data)
		assert.JSONEq(t, string(want), string(have))
	})
}

func TestFindByIDMissing(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		s := newStore(t)
		_, err := s.FindByID(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.FindByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListOrdering(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		seq := &sequence{}
		s := newStore(t, seq.options()...)
		seed(t, s, 3)
		ctx := context.Background()
		first, second, third := "00000000-0000-4000-8000-000000000001", "00000000-0000-4000-8000-000000000002", "00000000-0000-4000-8000-000000000003"

		p, err := s.List(ctx, ListQuery{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, []string{third, second, first}, ids(p))

		p, err = s.List(ctx, ListQuery{Page: 1, Limit: 10, SortBy: SortByCreatedAt, Order: OrderAsc})
		require.NoError(t, err)
		assert.Equal(t, []string{first, second, third}, ids(p))

		p, err = s.List(ctx, ListQuery{Page: 1, Limit: 10, SortBy: "fullName", Order: OrderAsc})
		require.NoError(t, err)
		assert.Equal(t, []string{third, second, first}, ids(p))
	})
}

func TestListPagination(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		seq := &sequence{}
		s := newStore(t, seq.options()...)
		seed(t, s, 25)
		ctx := context.Background()

		p, err := s.List(ctx, ListQuery{Page: 3, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, p.Items, 5)
		assert.Equal(t, 25, p.Total)
		assert.Equal(t, 3, p.TotalPages)

		p, err = s.List(ctx, ListQuery{Page: 4, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, p.Items)
		assert.Equal(t, 25, p.Total)
		assert.Equal(t, 3, p.TotalPages)
		assert.Equal(t, 4, p.Page)

		p, err = s.List(ctx, ListQuery{Page: math.MaxInt, Limit: 20})
		require.NoError(t, err)
		assert.Empty(t, p.Items)
		assert.Equal(t, math.MaxInt, p.Page)
		assert.Equal(t, 25, p.Total)

		p, err = s.List(ctx, ListQuery{Page: -2, Limit: 7})
		require.NoError(t, err)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 10, p.Limit)
		assert.Len(t, p.Items, 10)

		p, err = s.List(ctx, ListQuery{Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Len(t, p.Items, 20)
		assert.Equal(t, 2, p.TotalPages)
	})
}

func TestListEmpty(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		s := newStore(t)
		p, err := s.List(context.Background(), ListQuery{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Empty(t, p.Items)
		assert.Equal(t, 0, p.Total)
		assert.Equal(t, 1, p.TotalPages)
	})
}

func TestListFilters(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		seq := &sequence{}
		s := newStore(t, seq.options()...)
		seed(t, s, 25)
		ctx := context.Background()

		p, err := s.List(ctx, ListQuery{Page: 1, Limit: 50, IDPrefix: "00000000-0000-4000-8000-00000000001"})
		require.NoError(t, err)
		assert.Equal(t, 10, p.Total)

		p, err = s.List(ctx, ListQuery{Page: 1, Limit: 50, IDPrefix: "00000000-0000-4000-8000-0000000000%"})
		require.NoError(t, err)
		assert.Equal(t, 0, p.Total)

		p, err = s.List(ctx, ListQuery{
			Page:          1,
			Limit:         50,
			CreatedAfter:  epoch.Add(5 * time.Second),
			CreatedBefore: epoch.Add(8 * time.Second),
		})
		require.NoError(t, err)
		assert.Equal(t, []string{
			"00000000-0000-4000-8000-000000000007",
			"00000000-0000-4000-8000-000000000006",
			"00000000-0000-4000-8000-000000000005",
		}, ids(p))
	})
}

func TestPing(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		assert.NoError(t, newStore(t).Ping(context.Background()))
	})
}
