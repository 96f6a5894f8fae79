package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/annel0/blockworld/internal/changes"
	"github.com/annel0/blockworld/internal/loader"
	"github.com/annel0/blockworld/internal/logging"
	"github.com/annel0/blockworld/internal/pos"
	"github.com/annel0/blockworld/internal/render"
	"github.com/annel0/blockworld/internal/world"
)

// Options - параметры тикового цикла
type Options struct {
	// Workers - число параллельных генераций колонн
	Workers int
	// SweepEvery - раз во сколько тиков выгружать колонны вне интереса, 0 - никогда
	SweepEvery int
	// TickInterval - период тика для Run
	TickInterval time.Duration
	// Input, если задан, на каждом тике выдаёт позиции своих наблюдателей.
	// Остальные наблюдатели (например, из API) не затрагиваются.
	Input func(tick uint64) []loader.Viewer
}

type loadResult struct {
	col pos.ColPos
	err error
}

// Stats - снимок состояния мира для отладки
type Stats struct {
	Tick     uint64 `json:"tick"`
	Resident int    `json:"resident_columns"`
	Pending  int    `json:"pending_changes"`
	Meshes   int    `json:"meshes"`
	Backlog  int    `json:"load_backlog"`
	Inflight int    `json:"loads_inflight"`
	Viewers  int    `json:"viewers"`
}

// Engine связывает оркестратор, хранилище, очередь изменений и
// представление в один тиковый цикл. Генерация колонн идёт в пуле
// воркеров, поэтому медленная колонна не задерживает тик.
type Engine struct {
	store *world.Store
	queue *changes.Queue
	orch  *loader.Orchestrator
	view  *render.Registry
	opts  Options

	jobs    chan pos.ColPos
	results chan loadResult
	wg      sync.WaitGroup
	started bool

	mu       sync.Mutex
	inflight map[pos.ColPos]struct{}
	tick     uint64

	log *logging.Logger
}

// New создаёт движок. Воркеры запускаются в Start.
func New(store *world.Store, queue *changes.Queue, orch *loader.Orchestrator, view *render.Registry, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second / 20
	}
	return &Engine{
		store:    store,
		queue:    queue,
		orch:     orch,
		view:     view,
		opts:     opts,
		jobs:     make(chan pos.ColPos, opts.Workers),
		results:  make(chan loadResult, opts.Workers*2),
		inflight: make(map[pos.ColPos]struct{}),
		log:      logging.GetComponentLogger("engine"),
	}
}

// Store возвращает хранилище мира
func (e *Engine) Store() *world.Store { return e.store }

// Orchestrator возвращает оркестратор загрузки
func (e *Engine) Orchestrator() *loader.Orchestrator { return e.orch }

// View возвращает реестр ресурсов представления
func (e *Engine) View() *render.Registry { return e.view }

// Start запускает воркеры генерации
func (e *Engine) Start(ctx context.Context) {
	if e.started {
		return
	}
	e.started = true
	for i := 0; i < e.opts.Workers; i++ {
		e.wg.Add(1)
		go e.worker(ctx)
	}
}

// Close останавливает воркеры и ждёт их завершения
func (e *Engine) Close() {
	if !e.started {
		return
	}
	close(e.jobs)
	e.wg.Wait()
	e.started = false
}

func (e *Engine) worker(ctx context.Context) {
	defer e.wg.Done()
	for col := range e.jobs {
		err := e.store.LoadColumn(ctx, col)
		select {
		case e.results <- loadResult{col: col, err: err}:
		case <-ctx.Done():
		}
	}
}

// Tick выполняет один шаг: принимает завершённые загрузки, согласует
// интерес, выдаёт выгрузки и загрузки, доставляет изменения.
func (e *Engine) Tick(ctx context.Context) error {
	if e.opts.Input != nil {
		for _, v := range e.opts.Input(e.currentTick()) {
			e.orch.SetViewer(v.ID, v.Pos)
		}
	}

	e.collect(ctx)

	plan := e.orch.Reconcile()
	for _, col := range plan.Unloads {
		e.unload(col)
	}
	for _, col := range plan.Loads {
		e.dispatch(col)
	}

	tick := e.advance()
	if e.opts.SweepEvery > 0 && tick%uint64(e.opts.SweepEvery) == 0 {
		e.sweep()
	}

	if _, err := e.queue.Step(ctx, e.view); err != nil {
		return err
	}
	return nil
}

func (e *Engine) currentTick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

func (e *Engine) advance() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tick++
	return e.tick
}

// collect обрабатывает загрузки, завершившиеся с прошлого тика
func (e *Engine) collect(ctx context.Context) {
	for {
		select {
		case res := <-e.results:
			e.mu.Lock()
			delete(e.inflight, res.col)
			e.mu.Unlock()

			switch {
			case res.err != nil:
				if ctx.Err() == nil && !world.IsBounds(res.err) {
					e.log.Warn("Загрузка %s не удалась: %v", res.col, res.err)
					e.orch.Retry(res.col)
				}
			case !e.orch.HasInterest(res.col):
				// колонна покинула интерес, пока генерировалась
				e.unload(res.col)
			}
		default:
			return
		}
	}
}

// dispatch отдаёт колонну воркерам. Если пул занят, колонна возвращается
// в очередь оркестратора до следующего тика.
func (e *Engine) dispatch(col pos.ColPos) {
	if !e.orch.HasInterest(col) {
		return
	}
	e.mu.Lock()
	if _, busy := e.inflight[col]; busy {
		e.mu.Unlock()
		return
	}
	select {
	case e.jobs <- col:
		e.inflight[col] = struct{}{}
		e.mu.Unlock()
	default:
		e.mu.Unlock()
		e.orch.Retry(col)
	}
}

// unload выгружает колонну из хранилища, очереди и представления
func (e *Engine) unload(col pos.ColPos) {
	dropped := e.queue.DiscardColumn(col)
	e.store.UnloadColumn(col)
	removed := e.view.Teardown(col)
	e.log.Debug("Выгрузка %s: записей %d, ресурсов %d", col, dropped, removed)
}

// sweep выгружает колонны, созданные обращениями вне интереса
func (e *Engine) sweep() {
	for _, col := range e.store.Resident() {
		if e.orch.HasInterest(col) {
			continue
		}
		e.mu.Lock()
		_, busy := e.inflight[col]
		e.mu.Unlock()
		if !busy {
			e.unload(col)
		}
	}
}

// Stats возвращает снимок состояния
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	tick, inflight := e.tick, len(e.inflight)
	e.mu.Unlock()
	return Stats{
		Tick:     tick,
		Resident: e.store.Len(),
		Pending:  e.queue.Len(),
		Meshes:   e.view.Len(),
		Backlog:  e.orch.Backlog(),
		Inflight: inflight,
		Viewers:  len(e.orch.Viewers()),
	}
}

// Run крутит тики с периодом TickInterval до отмены ctx
func (e *Engine) Run(ctx context.Context) error {
	e.Start(ctx)
	defer e.Close()

	ticker := time.NewTicker(e.opts.TickInterval)
	defer ticker.Stop()

	e.log.Info("🌍 Тиковый цикл запущен (период %s, воркеров %d)", e.opts.TickInterval, e.opts.Workers)
	for {
		select {
		case <-ctx.Done():
			e.log.Info("🛑 Тиковый цикл остановлен на тике %d", e.currentTick())
			return ctx.Err()
		case <-ticker.C:
			if err := e.Tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
				e.log.Error("Ошибка тика: %v", err)
			}
		}
	}
}
