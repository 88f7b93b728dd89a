package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(id string, start time.Time) *Summary {
	return &Summary{
		ID:             id,
		Start:          start,
		End:            start.Add(90 * time.Second),
		Duration:       90,
		Ticks:          900,
		Dwell:          []float64{10, 0, 0, 20, 0, 0, 5},
		Gestures:       map[string]int{"Gyan": 2, "Fist": 1},
		PostureAlerts:  3,
		MeanPosture:    0.72,
		AlignmentCount: 1,
		CrownCount:     2,
		Energies:       []float64{1, 0.1, 0.1, 0.6, 0.1, 0.1, 0.4},
		Strongest:      "Root",
		Weakest:        "Sacral",
		Calmness:       50,
	}
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	js, err := NewJSONStore(filepath.Join(dir, "json", "sessions.jsonl"))
	require.NoError(t, err)

	sq, err := NewSQLiteStore(filepath.Join(dir, "sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })

	return map[string]Store{"json": js, "sqlite": sq}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			want := sample("a", base)
			require.NoError(t, store.Save(ctx, want))

			got, err := store.Get(ctx, "a")
			require.NoError(t, err)
			assert.True(t, got.Start.Equal(want.Start))
			assert.True(t, got.End.Equal(want.End))
			assert.Equal(t, want.Dwell, got.Dwell)
			assert.Equal(t, want.Gestures, got.Gestures)
			assert.Equal(t, want.CrownCount, got.CrownCount)
			assert.Equal(t, want.Strongest, got.Strongest)
			assert.InDelta(t, want.MeanPosture, got.MeanPosture, 1e-9)
		})
	}
}

func TestStoreAssignsID(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			sum := sample("", time.Now())
			require.NoError(t, store.Save(ctx, sum))
			assert.NotEmpty(t, sum.ID)

			_, err := store.Get(ctx, sum.ID)
			assert.NoError(t, err)
		})
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(ctx, sample("old", base)))
			require.NoError(t, store.Save(ctx, sample("new", base.Add(time.Hour))))
			require.NoError(t, store.Save(ctx, sample("mid", base.Add(time.Minute))))

			list, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 3)
			assert.Equal(t, "new", list[0].ID)
			assert.Equal(t, "mid", list[1].ID)
			assert.Equal(t, "old", list[2].ID)

			n, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 3, n)
		})
	}
}

func TestStoreSaveReplaces(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			sum := sample("x", time.Now())
			require.NoError(t, store.Save(ctx, sum))

			sum.Calmness = 88
			require.NoError(t, store.Save(ctx, sum))

			got, err := store.Get(ctx, "x")
			require.NoError(t, err)
			assert.InDelta(t, 88, got.Calmness, 1e-9)

			n, err := store.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, store.Delete(ctx, "missing"), ErrNotFound)
		})
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(ctx, sample("d", time.Now())))
			require.NoError(t, store.Delete(ctx, "d"))

			_, err := store.Get(ctx, "d")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestJSONStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.jsonl")

	first, err := NewJSONStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, sample("p", time.Now())))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	second, err := NewJSONStore(path)
	require.NoError(t, err)
	got, err := second.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "Root", got.Strongest)
}

func TestJSONStoreRejectsCorruptLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{not json\n{\"id\":\"b\"}\n"), 0o644))

	_, err := NewJSONStore(path)
	assert.ErrorContains(t, err, "line 1")
}

func TestJSONStoreRecoversTornAppend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"id\":\"a\"}\n{\"id\":\"b\",\"sta"), 0o644))

	store, err := NewJSONStore(path)
	require.NoError(t, err)
	n, _ := store.Count(ctx)
	assert.Equal(t, 1, n)

	require.NoError(t, store.Save(ctx, sample("c", time.Now())))

	reopened, err := NewJSONStore(path)
	require.NoError(t, err)
	n, _ = reopened.Count(ctx)
	assert.Equal(t, 2, n)
	_, err = reopened.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestJSONStoreAppendsNewSessions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.jsonl")
	store, err := NewJSONStore(path)
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, sample("a", base)))
	require.NoError(t, store.Save(ctx, sample("b", base.Add(time.Hour))))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"id":"a"`)
	assert.Contains(t, lines[1], `"id":"b"`)
}

func TestSQLiteStoreMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewSQLiteStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Save(context.Background(), sample("m", time.Now())))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(dir)
	require.NoError(t, err)
	defer second.Close()

	require.NoError(t, second.Migrate())
	require.NoError(t, second.Health(context.Background()))

	n, err := second.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSplitSQL(t *testing.T) {
	stmts := splitSQL("-- comment\nCREATE TABLE a (x INT);\n\nCREATE INDEX i ON a(x);\n")
	assert.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a(x)"}, stmts)
}
