package loader

import (
	"sort"
	"sync"

	"github.com/annel0/blockworld/internal/logging"
	"github.com/annel0/blockworld/internal/pos"
	"github.com/google/uuid"
)

// Viewer - наблюдатель, вокруг которого колонны должны быть загружены
type Viewer struct {
	ID  uuid.UUID
	Pos pos.BlockPos
}

// Plan - инструкции одного шага согласования
type Plan struct {
	// Loads - колонны для загрузки, ближайшие первыми
	Loads []pos.ColPos
	// Unloads - колонны, покинувшие радиус интереса
	Unloads []pos.ColPos
}

// Empty сообщает, что инструкций нет
func (p Plan) Empty() bool {
	return len(p.Loads) == 0 && len(p.Unloads) == 0
}

// Options - параметры оркестратора
type Options struct {
	// Radius - радиус интереса в колоннах (по Чебышёву)
	Radius int
	// LoadsPerStep - сколько загрузок выдаётся за шаг
	LoadsPerStep int
}

// Orchestrator отслеживает наблюдателей и решает, какие колонны держать
// в памяти. Очередь загрузок переживает шаги, так что за шаг выдаётся
// ограниченное число инструкций.
type Orchestrator struct {
	mu      sync.RWMutex
	opts    Options
	viewers map[uuid.UUID]pos.BlockPos
	target  map[pos.ColPos]struct{}
	backlog []pos.ColPos

	log *logging.Logger
}

// New создаёт оркестратор
func New(opts Options) *Orchestrator {
	if opts.Radius < 0 {
		opts.Radius = 0
	}
	if opts.LoadsPerStep <= 0 {
		opts.LoadsPerStep = 1
	}
	return &Orchestrator{
		opts:    opts,
		viewers: make(map[uuid.UUID]pos.BlockPos),
		target:  make(map[pos.ColPos]struct{}),
		log:     logging.GetComponentLogger("loader"),
	}
}

// SetViewer добавляет наблюдателя или перемещает существующего
func (o *Orchestrator) SetViewer(id uuid.UUID, p pos.BlockPos) {
	o.mu.Lock()
	o.viewers[id] = p
	n := len(o.viewers)
	o.mu.Unlock()
	activeViewers.Set(float64(n))
}

// RemoveViewer удаляет наблюдателя
func (o *Orchestrator) RemoveViewer(id uuid.UUID) bool {
	o.mu.Lock()
	_, ok := o.viewers[id]
	delete(o.viewers, id)
	n := len(o.viewers)
	o.mu.Unlock()
	activeViewers.Set(float64(n))
	return ok
}

// SetViewers заменяет весь набор наблюдателей (вход одного тика)
func (o *Orchestrator) SetViewers(vs []Viewer) {
	o.mu.Lock()
	o.viewers = make(map[uuid.UUID]pos.BlockPos, len(vs))
	for _, v := range vs {
		o.viewers[v.ID] = v.Pos
	}
	o.mu.Unlock()
	activeViewers.Set(float64(len(vs)))
}

// Viewers возвращает наблюдателей, отсортированных по ID
func (o *Orchestrator) Viewers() []Viewer {
	o.mu.RLock()
	out := make([]Viewer, 0, len(o.viewers))
	for id, p := range o.viewers {
		out = append(out, Viewer{ID: id, Pos: p})
	}
	o.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// HasInterest сообщает, входит ли колонна в текущий набор целей
func (o *Orchestrator) HasInterest(col pos.ColPos) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.target[col]
	return ok
}

// Reconcile пересчитывает набор целей по текущим наблюдателям.
// Новые колонны попадают в очередь загрузок, колонны вне радиуса
// выгружаются немедленно (и вычёркиваются из очереди, если не успели загрузиться).
func (o *Orchestrator) Reconcile() Plan {
	o.mu.Lock()
	defer o.mu.Unlock()

	centers := make([]pos.ColPos, 0, len(o.viewers))
	next := make(map[pos.ColPos]struct{})
	r := o.opts.Radius
	for _, p := range o.viewers {
		c := p.Column()
		centers = append(centers, c)
		for dx := -r; dx <= r; dx++ {
			for dz := -r; dz <= r; dz++ {
				next[pos.ColPos{X: c.X + dx, Z: c.Z + dz, Realm: c.Realm}] = struct{}{}
			}
		}
	}

	var plan Plan
	for col := range o.target {
		if _, ok := next[col]; !ok {
			plan.Unloads = append(plan.Unloads, col)
		}
	}

	kept := o.backlog[:0]
	for _, col := range o.backlog {
		if _, ok := next[col]; ok {
			kept = append(kept, col)
		}
	}
	o.backlog = kept
	for col := range next {
		if _, ok := o.target[col]; !ok {
			o.backlog = append(o.backlog, col)
		}
	}
	o.target = next

	sortByDistance(o.backlog, centers)
	sortCols(plan.Unloads)

	n := min(o.opts.LoadsPerStep, len(o.backlog))
	plan.Loads = append([]pos.ColPos(nil), o.backlog[:n]...)
	o.backlog = o.backlog[n:]

	targetColumns.Set(float64(len(o.target)))
	backlogColumns.Set(float64(len(o.backlog)))
	instructions.WithLabelValues("load").Add(float64(len(plan.Loads)))
	instructions.WithLabelValues("unload").Add(float64(len(plan.Unloads)))
	if len(plan.Unloads) > 0 {
		o.log.Debug("Выгрузка %d колонн, в очереди загрузки %d", len(plan.Unloads), len(o.backlog))
	}
	return plan
}

// Retry возвращает колонну в начало очереди загрузок, если она всё ещё нужна.
// Используется, когда загрузку не удалось запустить или она завершилась ошибкой.
func (o *Orchestrator) Retry(col pos.ColPos) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.target[col]; !ok {
		return false
	}
	for _, c := range o.backlog {
		if c == col {
			return true
		}
	}
	o.backlog = append([]pos.ColPos{col}, o.backlog...)
	backlogColumns.Set(float64(len(o.backlog)))
	return true
}

// Backlog возвращает число колонн, ожидающих загрузки
func (o *Orchestrator) Backlog() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.backlog)
}

// Target возвращает текущий набор целей в детерминированном порядке
func (o *Orchestrator) Target() []pos.ColPos {
	o.mu.RLock()
	out := make([]pos.ColPos, 0, len(o.target))
	for col := range o.target {
		out = append(out, col)
	}
	o.mu.RUnlock()
	sortCols(out)
	return out
}

// nearest возвращает расстояние до ближайшего наблюдателя
func nearest(col pos.ColPos, centers []pos.ColPos) int {
	best := pos.Unreachable
	for _, c := range centers {
		best = min(best, col.Dist(c))
	}
	return best
}

func lessCol(a, b pos.ColPos) bool {
	if a.Realm != b.Realm {
		return a.Realm < b.Realm
	}
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Z < b.Z
}

func sortCols(cols []pos.ColPos) {
	sort.Slice(cols, func(i, j int) bool { return lessCol(cols[i], cols[j]) })
}

func sortByDistance(cols []pos.ColPos, centers []pos.ColPos) {
	dist := make(map[pos.ColPos]int, len(cols))
	for _, c := range cols {
		dist[c] = nearest(c, centers)
	}
	sort.Slice(cols, func(i, j int) bool {
		di, dj := dist[cols[i]], dist[cols[j]]
		if di != dj {
			return di < dj
		}
		return lessCol(cols[i], cols[j])
	})
}
