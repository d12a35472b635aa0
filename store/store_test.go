package store

import (
	"accircuit"
	"accircuit/element/capacitor"
	"accircuit/element/resistor"
	"accircuit/network"
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "db", "snapshots.db"), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func project(t *testing.T) *accircuit.Project {
	t.Helper()
	p := accircuit.NewProject()
	_, err := p.AddComponent(resistor.Type, 100)
	require.NoError(t, err)
	_, err = p.AddComponent(capacitor.Type, 1e-6)
	require.NoError(t, err)
	_, err = p.AddCircuit(network.Parallel, 50)
	require.NoError(t, err)
	require.NoError(t, p.Attach("P1", "R1", "C1"))
	_, err = p.AddCircuit(network.Series, 50)
	require.NoError(t, err)
	require.NoError(t, p.Attach("S2", "P1", "R1"))
	_, err = p.AddCircuit(network.Series, 60)
	require.NoError(t, err)
	return p
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	p := project(t)

	id, err := s.Save(ctx, "demo", p)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	for _, ref := range []string{id, "demo"} {
		loaded, err := s.Load(ctx, ref)
		require.NoError(t, err)
		want, got := p.Document(), loaded.Document()
		opts := []cmp.Option{
			cmpopts.IgnoreFields(want.Components[0], "Line"),
			cmpopts.IgnoreFields(want.Circuits[0], "Line"),
			cmpopts.EquateEmpty(),
		}
		if diff := cmp.Diff(want.Components, got.Components, opts...); diff != "" {
			t.Errorf("components mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(want.Circuits, got.Circuits, opts...); diff != "" {
			t.Errorf("circuits mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestLoadLatestByName(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	p := project(t)

	_, err := s.Save(ctx, "demo", p)
	require.NoError(t, err)
	require.NoError(t, p.Remove("S3"))
	_, err = s.Save(ctx, "demo", p)
	require.NoError(t, err)

	loaded, err := s.Load(ctx, "demo")
	require.NoError(t, err)
	assert.Len(t, loaded.Circuits(), 2)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 2, list[0].Circuits)
	assert.Equal(t, 3, list[1].Circuits)
	assert.Equal(t, 2, list[0].Components)
	assert.False(t, list[0].SavedAt.Before(list[1].SavedAt))
}

func TestMissingSnapshot(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	_, err := s.Load(ctx, "nothing")
	assert.ErrorIs(t, err, ErrNoSnapshot)
	assert.ErrorIs(t, s.Delete(ctx, "nothing"), ErrNoSnapshot)
	_, err = s.Save(ctx, "", project(t))
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	id, err := s.Save(ctx, "demo", project(t))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, id))

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`).Scan(&n))
	assert.Zero(t, n)
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshots.db")
	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	_, err = s.Save(ctx, "demo", project(t))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()
	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDeleteByName(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	first, err := s.Save(ctx, "demo", project(t))
	require.NoError(t, err)
	p := project(t)
	require.NoError(t, p.Remove("S3"))
	_, err = s.Save(ctx, "demo", p)
	require.NoError(t, err)

	// 按名称只删除最新一次
	require.NoError(t, s.Delete(ctx, "demo"))
	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first, list[0].ID)

	require.NoError(t, s.Delete(ctx, "demo"))
	assert.ErrorIs(t, s.Delete(ctx, "demo"), ErrNoSnapshot)
}
