package loader

import (
	"testing"

	"github.com/annel0/blockworld/internal/pos"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainLoads(o *Orchestrator, steps int) []pos.ColPos {
	var loads []pos.ColPos
	for i := 0; i < steps; i++ {
		loads = append(loads, o.Reconcile().Loads...)
	}
	return loads
}

func TestLoadsAreBoundedAndNearestFirst(t *testing.T) {
	o := New(Options{Radius: 1, LoadsPerStep: 1})
	o.SetViewer(uuid.New(), pos.BlockPos{X: 40, Y: 70, Z: -5})
	center := pos.ColPos{X: 2, Z: -1}

	plan := o.Reconcile()
	require.Len(t, plan.Loads, 1, "за шаг выдаётся не больше LoadsPerStep загрузок")
	assert.Equal(t, center, plan.Loads[0], "первой загружается колонна наблюдателя")
	assert.Empty(t, plan.Unloads)
	assert.Equal(t, 8, o.Backlog())
	assert.Len(t, o.Target(), 9)

	rest := drainLoads(o, 10)
	assert.Len(t, rest, 8)
	seen := map[pos.ColPos]bool{center: true}
	for _, c := range rest {
		assert.False(t, seen[c], "колонна %s выдана дважды", c)
		seen[c] = true
		assert.Equal(t, 1, c.Dist(center))
	}
	assert.Equal(t, 0, o.Backlog())
}

func TestMovingViewerUnloadsOldColumns(t *testing.T) {
	id := uuid.New()
	o := New(Options{Radius: 1, LoadsPerStep: 16})
	o.SetViewer(id, pos.BlockPos{})
	first := o.Reconcile()
	require.Len(t, first.Loads, 9)

	o.SetViewer(id, pos.BlockPos{X: 16 * 10})
	plan := o.Reconcile()
	assert.Len(t, plan.Unloads, 9)
	assert.Len(t, plan.Loads, 9)
	for _, c := range plan.Unloads {
		assert.False(t, o.HasInterest(c))
	}
	for _, c := range plan.Loads {
		assert.True(t, o.HasInterest(c))
	}
	assert.Equal(t, pos.ColPos{X: -1, Z: -1}, plan.Unloads[0], "выгрузки упорядочены")
}

func TestBacklogDropsColumnsLeavingInterest(t *testing.T) {
	id := uuid.New()
	o := New(Options{Radius: 2, LoadsPerStep: 1})
	o.SetViewer(id, pos.BlockPos{})
	o.Reconcile()
	require.Equal(t, 24, o.Backlog())

	o.SetViewer(id, pos.BlockPos{X: 16 * 100})
	plan := o.Reconcile()
	assert.Len(t, plan.Unloads, 25, "выгружаются и колонны, не успевшие загрузиться")
	for _, c := range append(plan.Loads, drainLoads(o, 30)...) {
		assert.GreaterOrEqual(t, c.X, 98, "загрузка колонны %s, которой уже нет в целях", c)
	}
}

func TestOverlappingViewers(t *testing.T) {
	o := New(Options{Radius: 1, LoadsPerStep: 100})
	a, b := uuid.New(), uuid.New()
	o.SetViewer(a, pos.BlockPos{})
	o.SetViewer(b, pos.BlockPos{X: 16})
	plan := o.Reconcile()
	assert.Len(t, plan.Loads, 12, "пересечение радиусов не дублирует колонны")

	require.True(t, o.RemoveViewer(a))
	plan = o.Reconcile()
	assert.ElementsMatch(t, []pos.ColPos{{X: -1, Z: -1}, {X: -1, Z: 0}, {X: -1, Z: 1}}, plan.Unloads)
	assert.Empty(t, plan.Loads)
	assert.False(t, o.RemoveViewer(a))
}

func TestRealmsAreSeparate(t *testing.T) {
	o := New(Options{Radius: 0, LoadsPerStep: 10})
	o.SetViewers([]Viewer{
		{ID: uuid.New(), Pos: pos.BlockPos{Realm: pos.Overworld}},
		{ID: uuid.New(), Pos: pos.BlockPos{Realm: pos.Dream}},
	})
	plan := o.Reconcile()
	assert.ElementsMatch(t, []pos.ColPos{{Realm: pos.Overworld}, {Realm: pos.Dream}}, plan.Loads)
	assert.Len(t, o.Viewers(), 2)

	o.SetViewers(nil)
	plan = o.Reconcile()
	assert.Len(t, plan.Unloads, 2)
	assert.False(t, o.HasInterest(pos.ColPos{Realm: pos.Dream}))
}

func TestRetry(t *testing.T) {
	o := New(Options{Radius: 1, LoadsPerStep: 1})
	o.SetViewer(uuid.New(), pos.BlockPos{})
	plan := o.Reconcile()
	require.Len(t, plan.Loads, 1)

	assert.True(t, o.Retry(plan.Loads[0]))
	assert.True(t, o.Retry(plan.Loads[0]), "повторный Retry не дублирует колонну")
	assert.Equal(t, 9, o.Backlog())
	assert.Equal(t, plan.Loads, o.Reconcile().Loads)

	assert.False(t, o.Retry(pos.ColPos{X: 50}), "колонна вне целей не возвращается")
}
