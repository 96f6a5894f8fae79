package engine

import (
	"context"
	"testing"
	"time"

	"github.com/annel0/blockworld/internal/changes"
	"github.com/annel0/blockworld/internal/loader"
	"github.com/annel0/blockworld/internal/pos"
	"github.com/annel0/blockworld/internal/render"
	"github.com/annel0/blockworld/internal/world"
	"github.com/annel0/blockworld/internal/world/block"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// groundGenerator кладёт два слоя земли, занимая только нижний слот
var groundGenerator = world.GeneratorFunc(func(ctx context.Context, col pos.ColPos, dst *world.Column) error {
	for x := 0; x < world.ChunkSize; x++ {
		for z := 0; z < world.ChunkSize; z++ {
			if err := dst.FillVerticalSpan(pos.Local2{X: x, Z: z}, 1, 2, block.Dirt); err != nil {
				return err
			}
		}
	}
	return nil
})

type harness struct {
	eng    *Engine
	store  *world.Store
	queue  *changes.Queue
	orch   *loader.Orchestrator
	view   *render.Registry
	cancel context.CancelFunc
	ctx    context.Context
}

func newHarness(t *testing.T, radius int, sweep int) *harness {
	t.Helper()
	orch := loader.New(loader.Options{Radius: radius, LoadsPerStep: 4})
	queue := changes.New(orch, changes.Options{PerStep: 64})
	store := world.NewStore(groundGenerator, queue, world.StoreOptions{})
	view := render.NewRegistry(store, orch)
	eng := New(store, queue, orch, view, Options{Workers: 2, SweepEvery: sweep})

	ctx, cancel := context.WithCancel(context.Background())
	eng.Start(ctx)
	h := &harness{eng: eng, store: store, queue: queue, orch: orch, view: view, cancel: cancel, ctx: ctx}
	t.Cleanup(func() {
		cancel()
		eng.Close()
	})
	return h
}

// tickUntil крутит тики, пока условие не выполнится
func (h *harness) tickUntil(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, func() bool {
		if err := h.eng.Tick(h.ctx); err != nil {
			return false
		}
		return cond()
	}, 2*time.Second, time.Millisecond, msg)
}

func TestViewerColumnGetsMeshes(t *testing.T) {
	h := newHarness(t, 1, 0)
	h.orch.SetViewer(uuid.New(), pos.BlockPos{X: 8, Y: 10, Z: 8})

	h.tickUntil(t, func() bool { return h.view.Len() == 9 }, "ожидались ресурсы для 9 колонн")
	assert.Equal(t, 9, h.store.Len())
	for _, col := range h.orch.Target() {
		_, ok := h.view.Get(col.Chunk(0))
		assert.True(t, ok, "нет ресурса для %s", col)
	}
}

func TestWriteInInterestPatchesMesh(t *testing.T) {
	h := newHarness(t, 0, 0)
	h.orch.SetViewer(uuid.New(), pos.BlockPos{})
	cp := pos.ChunkPos{}
	h.tickUntil(t, func() bool { _, ok := h.view.Get(cp); return ok }, "ресурс не построен")
	before, _ := h.view.Get(cp)

	require.NoError(t, h.store.Write(h.ctx, pos.BlockPos{X: 3, Y: 2, Z: 3}, block.Stone))
	h.tickUntil(t, func() bool {
		m, _ := h.view.Get(cp)
		return m.Version > before.Version
	}, "правка не доставлена")

	m, _ := h.view.Get(cp)
	assert.Equal(t, before.Solid+1, m.Solid)
	assert.Equal(t, block.Stone, m.Blocks.Get(pos.Local{X: 3, Y: 2, Z: 3}))
}

func TestOutOfInterestWriteRebuiltOnEntry(t *testing.T) {
	h := newHarness(t, 0, 0)
	id := uuid.New()
	h.orch.SetViewer(id, pos.BlockPos{})
	h.tickUntil(t, func() bool { return h.view.Len() == 1 }, "ресурс начальной колонны")

	far := pos.BlockPos{X: 16 * 20, Y: 40, Z: 0}
	require.NoError(t, h.store.Write(h.ctx, far, block.Stone))
	farChunk := pos.ChunkOf(far)

	for i := 0; i < 5; i++ {
		require.NoError(t, h.eng.Tick(h.ctx))
	}
	_, ok := h.view.Get(farChunk)
	assert.False(t, ok, "изменения вне интереса не доходят до представления")
	_, pending := h.queue.Pending(farChunk)
	assert.False(t, pending, "запись вне интереса отброшена")

	h.orch.SetViewer(id, far)
	h.tickUntil(t, func() bool { _, ok := h.view.Get(farChunk); return ok }, "при входе в интерес нужен полный Created")

	m, _ := h.view.Get(farChunk)
	assert.Equal(t, block.Stone, m.Blocks.Get(pos.Local{X: 0, Y: 8, Z: 0}))
	_, ok = h.view.Get(pos.ChunkPos{})
	assert.False(t, ok, "старая колонна выгружена вместе с ресурсами")
	assert.False(t, h.store.IsResident(pos.ColPos{}))
}

func TestUnloadClearsEverything(t *testing.T) {
	h := newHarness(t, 1, 0)
	id := uuid.New()
	h.orch.SetViewer(id, pos.BlockPos{})
	h.tickUntil(t, func() bool { return h.view.Len() == 9 }, "ресурсы не построены")

	require.NoError(t, h.store.Write(h.ctx, pos.BlockPos{X: 1, Y: 1, Z: 1}, block.Sand))
	h.orch.RemoveViewer(id)
	require.NoError(t, h.eng.Tick(h.ctx))

	assert.Equal(t, 0, h.view.Len())
	assert.Equal(t, 0, h.queue.Len())
	h.tickUntil(t, func() bool { return h.store.Len() == 0 }, "колонны должны быть выгружены")
}

func TestSweepRemovesStrayColumns(t *testing.T) {
	h := newHarness(t, 0, 3)
	_, err := h.store.Read(h.ctx, pos.BlockPos{X: -100, Y: 1, Z: 100})
	require.NoError(t, err)
	require.Equal(t, 1, h.store.Len())

	for i := 0; i < 3; i++ {
		require.NoError(t, h.eng.Tick(h.ctx))
	}
	assert.Equal(t, 0, h.store.Len(), "колонна вне интереса убрана при обходе")
	assert.Equal(t, uint64(3), h.eng.Stats().Tick)
}

func TestInputDrivesViewers(t *testing.T) {
	orch := loader.New(loader.Options{Radius: 0, LoadsPerStep: 1})
	queue := changes.New(orch, changes.DefaultOptions())
	store := world.NewStore(groundGenerator, queue, world.StoreOptions{})
	view := render.NewRegistry(store, orch)
	viewer := uuid.New()
	eng := New(store, queue, orch, view, Options{
		Workers:      1,
		TickInterval: time.Millisecond,
		Input: func(tick uint64) []loader.Viewer {
			return []loader.Viewer{{ID: viewer, Pos: pos.BlockPos{X: 5, Z: 5}}}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	require.Eventually(t, func() bool { return eng.Stats().Meshes == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run не завершился")
	}
}

func TestInputKeepsOtherViewers(t *testing.T) {
	orch := loader.New(loader.Options{Radius: 0, LoadsPerStep: 4})
	queue := changes.New(orch, changes.DefaultOptions())
	store := world.NewStore(groundGenerator, queue, world.StoreOptions{})
	view := render.NewRegistry(store, orch)

	walker := uuid.New()
	eng := New(store, queue, orch, view, Options{
		Workers: 1,
		Input: func(tick uint64) []loader.Viewer {
			return []loader.Viewer{{ID: walker, Pos: pos.BlockPos{X: int(tick) * 16}}}
		},
	})
	ctx, cancel := context.WithCancel(context.Background())
	eng.Start(ctx)
	t.Cleanup(func() {
		cancel()
		eng.Close()
	})

	manual := uuid.New()
	orch.SetViewer(manual, pos.BlockPos{Z: 16 * 50})
	for i := 0; i < 3; i++ {
		require.NoError(t, eng.Tick(ctx))
	}

	vs := orch.Viewers()
	require.Len(t, vs, 2, "наблюдатель, добавленный вручную, не должен пропадать")
	byID := map[uuid.UUID]pos.BlockPos{}
	for _, v := range vs {
		byID[v.ID] = v.Pos
	}
	assert.Equal(t, pos.BlockPos{Z: 16 * 50}, byID[manual])
	assert.Equal(t, pos.BlockPos{X: 2 * 16}, byID[walker], "позиция из Input обновляется каждый тик")
	assert.True(t, orch.HasInterest(pos.ColPos{Z: 50}))
}
