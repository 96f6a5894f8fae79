package render

import (
	"context"
	"sync"

	"github.com/annel0/blockworld/internal/changes"
	"github.com/annel0/blockworld/internal/logging"
	"github.com/annel0/blockworld/internal/pos"
	"github.com/annel0/blockworld/internal/world"
)

// ChunkSource даёт доступ к данным чанков только для чтения
type ChunkSource interface {
	ChunkSnapshot(cp pos.ChunkPos) (world.ChunkData, bool)
}

// Registry держит ресурсы представления по позициям чанков.
// Набор ресурсов соответствует материализованным чанкам колонн в интересе:
// ресурс создаётся только по Created для колонны в интересе и удаляется
// при выгрузке колонны.
type Registry struct {
	mu       sync.RWMutex
	meshes   map[pos.ChunkPos]*Mesh
	src      ChunkSource
	interest changes.Interest

	log *logging.Logger
}

// NewRegistry создаёт реестр. interest может быть nil.
func NewRegistry(src ChunkSource, interest changes.Interest) *Registry {
	return &Registry{
		meshes:   make(map[pos.ChunkPos]*Mesh),
		src:      src,
		interest: interest,
		log:      logging.GetComponentLogger("render"),
	}
}

// Apply применяет запись очереди изменений.
// Created строит ресурс заново, Edited накладывает правки на существующий
// или возвращает changes.ErrNotReady, если ресурса ещё нет.
func (r *Registry) Apply(_ context.Context, rec changes.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// под той же блокировкой, что и Teardown
	if r.interest != nil && !r.interest.HasInterest(rec.Pos.Column()) {
		meshOps.WithLabelValues("skip").Inc()
		return nil
	}

	data, ok := r.src.ChunkSnapshot(rec.Pos)
	if !ok {
		// чанк исчез из хранилища: ресурс ему не соответствует
		if _, had := r.meshes[rec.Pos]; had {
			delete(r.meshes, rec.Pos)
			liveMeshes.Set(float64(len(r.meshes)))
		}
		meshOps.WithLabelValues("missing").Inc()
		return nil
	}

	switch rec.Kind {
	case changes.Created:
		m, had := r.meshes[rec.Pos]
		if !had {
			m = &Mesh{Pos: rec.Pos}
			r.meshes[rec.Pos] = m
		}
		m.Blocks = data
		m.rebuild()
		meshOps.WithLabelValues("build").Inc()
		liveMeshes.Set(float64(len(r.meshes)))
		r.log.Trace("Построен ресурс %s: %d граней", rec.Pos, m.Faces)

	case changes.Edited:
		m, had := r.meshes[rec.Pos]
		if !had {
			return changes.ErrNotReady
		}
		for _, l := range rec.Offsets {
			i := l.Index()
			m.Blocks[i] = data[i]
		}
		m.rebuild()
		meshOps.WithLabelValues("patch").Inc()
	}
	return nil
}

// Teardown удаляет ресурсы всех вертикальных слотов колонны.
// Возвращает число удалённых ресурсов.
func (r *Registry) Teardown(col pos.ColPos) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for cy := 0; cy < world.ColumnChunks; cy++ {
		cp := col.Chunk(cy)
		if _, ok := r.meshes[cp]; ok {
			delete(r.meshes, cp)
			removed++
		}
	}
	if removed > 0 {
		meshOps.WithLabelValues("teardown").Add(float64(removed))
		liveMeshes.Set(float64(len(r.meshes)))
	}
	return removed
}

// Get возвращает копию ресурса чанка
func (r *Registry) Get(cp pos.ChunkPos) (Mesh, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.meshes[cp]
	if !ok {
		return Mesh{}, false
	}
	return *m, true
}

// Len возвращает число ресурсов
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.meshes)
}

// Positions возвращает позиции всех ресурсов
func (r *Registry) Positions() []pos.ChunkPos {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]pos.ChunkPos, 0, len(r.meshes))
	for cp := range r.meshes {
		out = append(out, cp)
	}
	return out
}

var _ changes.Consumer = (*Registry)(nil)
