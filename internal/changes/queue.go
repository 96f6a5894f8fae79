package changes

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/annel0/blockworld/internal/logging"
	"github.com/annel0/blockworld/internal/pos"
)

// Options - параметры очереди изменений
type Options struct {
	// PerStep - сколько записей доставляется за один шаг
	PerStep int
	// BackoffBase - задержка первой повторной доставки в шагах
	BackoffBase uint64
	// BackoffMax - верхняя граница задержки в шагах
	BackoffMax uint64
}

// DefaultOptions возвращает параметры по умолчанию
func DefaultOptions() Options {
	return Options{PerStep: 1, BackoffBase: 1, BackoffMax: 32}
}

// Queue хранит не более одной ожидающей записи на чанк и доставляет их
// единственному потребителю. Параллельные правки одного чанка сливаются:
// смещения объединяются, Created поглощает Edited.
type Queue struct {
	mu       sync.Mutex
	pending  map[pos.ChunkPos]*entry
	order    entryHeap
	seq      uint64
	tick     uint64
	interest Interest
	opts     Options

	// выгрузки, случившиеся пока записи были на руках у потребителя
	epoch     uint64
	held      int
	discarded map[pos.ColPos]uint64

	ready chan struct{}
	log   *logging.Logger
}

// New создаёт очередь. interest может быть nil - тогда доставляется всё.
func New(interest Interest, opts Options) *Queue {
	def := DefaultOptions()
	if opts.PerStep <= 0 {
		opts.PerStep = def.PerStep
	}
	if opts.BackoffBase == 0 {
		opts.BackoffBase = def.BackoffBase
	}
	if opts.BackoffMax < opts.BackoffBase {
		opts.BackoffMax = max(def.BackoffMax, opts.BackoffBase)
	}
	return &Queue{
		pending:   make(map[pos.ChunkPos]*entry),
		discarded: make(map[pos.ColPos]uint64),
		interest:  interest,
		opts:     opts,
		ready:    make(chan struct{}, 1),
		log:      logging.GetComponentLogger("changes"),
	}
}

// MarkCreated ставит полную перестройку чанка
func (q *Queue) MarkCreated(cp pos.ChunkPos) {
	q.Push(Created, cp)
}

// MarkEdited добавляет изменённую ячейку чанка
func (q *Queue) MarkEdited(cp pos.ChunkPos, l pos.Local) {
	q.Push(Edited, cp, l)
}

// Push добавляет запись или сливает её с уже ожидающей
func (q *Queue) Push(kind Kind, cp pos.ChunkPos, offsets ...pos.Local) {
	q.mu.Lock()
	if e, ok := q.pending[cp]; ok {
		e.merge(kind, offsets)
	} else {
		q.seq++
		e := &entry{pos: cp, kind: kind, seq: q.seq, due: q.tick}
		e.merge(kind, offsets)
		q.pending[cp] = e
		heap.Push(&q.order, e)
	}
	n := len(q.pending)
	q.mu.Unlock()

	pendingRecords.Set(float64(n))
	q.signal()
}

func (q *Queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *Queue) backoff(attempts int) uint64 {
	d := q.opts.BackoffBase
	for i := 1; i < attempts && d < q.opts.BackoffMax; i++ {
		d *= 2
	}
	return min(d, q.opts.BackoffMax)
}

// Requeue возвращает запись после ErrNotReady. Смещения не теряются:
// они сливаются с записью, пришедшей за это время, а порядковый номер
// сохраняется, чтобы чанк не отодвигался новыми ключами.
// Если колонну выгрузили, пока запись была у потребителя, запись отбрасывается.
func (q *Queue) Requeue(rec Record) {
	attempts := rec.Attempts + 1

	q.mu.Lock()
	if rec.issued && q.discarded[rec.Pos.Column()] > rec.epoch {
		q.release(rec)
		q.mu.Unlock()
		discardedRecords.WithLabelValues("unload").Inc()
		return
	}
	q.release(rec)
	due := q.tick + q.backoff(attempts)
	e, ok := q.pending[rec.Pos]
	if ok {
		e.merge(rec.Kind, rec.Offsets)
		e.attempts = max(e.attempts, attempts)
		if rec.seq != 0 && rec.seq < e.seq {
			e.seq = rec.seq
		}
		e.due = max(e.due, due)
		heap.Fix(&q.order, e.index)
	} else {
		seq := rec.seq
		if seq == 0 {
			q.seq++
			seq = q.seq
		}
		e = &entry{pos: rec.Pos, kind: rec.Kind, attempts: attempts, seq: seq, due: due}
		e.merge(rec.Kind, rec.Offsets)
		q.pending[rec.Pos] = e
		heap.Push(&q.order, e)
	}
	n := len(q.pending)
	q.mu.Unlock()

	requeuedRecords.Inc()
	pendingRecords.Set(float64(n))
}

// Pop извлекает самую старую готовую запись. Записи колонн вне интереса
// отбрасываются по пути: данные в хранилище остаются верными, а при
// возвращении колонны в интерес придёт полный Created.
// Выданная запись завершается вызовом Done или Requeue.
func (q *Queue) Pop() (Record, bool) {
	q.mu.Lock()
	defer func() {
		n := len(q.pending)
		q.mu.Unlock()
		pendingRecords.Set(float64(n))
	}()

	for len(q.order) > 0 {
		top := q.order[0]
		if top.due > q.tick {
			return Record{}, false
		}
		heap.Pop(&q.order)
		delete(q.pending, top.pos)

		if q.interest != nil && !q.interest.HasInterest(top.pos.Column()) {
			discardedRecords.WithLabelValues("interest").Inc()
			continue
		}
		q.held++
		rec := top.record()
		rec.epoch, rec.issued = q.epoch, true
		return rec, true
	}
	return Record{}, false
}

// Done отмечает выданную Pop запись как применённую
func (q *Queue) Done(rec Record) {
	q.mu.Lock()
	q.release(rec)
	q.mu.Unlock()
}

// release снимает запись с учёта выданных. Когда на руках ничего нет,
// история выгрузок больше не нужна.
func (q *Queue) release(rec Record) {
	if !rec.issued || q.held == 0 {
		return
	}
	q.held--
	if q.held == 0 {
		clear(q.discarded)
	}
}

// DiscardColumn удаляет все ожидающие записи колонны. Вызывается при выгрузке.
func (q *Queue) DiscardColumn(col pos.ColPos) int {
	q.mu.Lock()
	q.epoch++
	if q.held > 0 {
		q.discarded[col] = q.epoch
	}
	removed := 0
	for cp, e := range q.pending {
		if cp.Column() != col {
			continue
		}
		heap.Remove(&q.order, e.index)
		delete(q.pending, cp)
		removed++
	}
	n := len(q.pending)
	q.mu.Unlock()

	if removed > 0 {
		discardedRecords.WithLabelValues("unload").Add(float64(removed))
		pendingRecords.Set(float64(n))
	}
	return removed
}

// Pending возвращает ожидающую запись чанка
func (q *Queue) Pending(cp pos.ChunkPos) (Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.pending[cp]
	if !ok {
		return Record{}, false
	}
	return e.record(), true
}

// Len возвращает число ожидающих записей
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Tick возвращает текущий логический шаг очереди
func (q *Queue) Tick() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tick
}

// Ready сигнализирует о новых записях
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Step продвигает логическое время на один шаг и доставляет не более
// PerStep записей. ErrNotReady возвращает запись в очередь с задержкой.
func (q *Queue) Step(ctx context.Context, c Consumer) (int, error) {
	q.mu.Lock()
	q.tick++
	q.mu.Unlock()
	return q.deliver(ctx, c)
}

func (q *Queue) deliver(ctx context.Context, c Consumer) (int, error) {
	delivered := 0
	for delivered < q.opts.PerStep {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		rec, ok := q.Pop()
		if !ok {
			break
		}
		delivered++

		err := c.Apply(ctx, rec)
		switch {
		case err == nil:
			q.Done(rec)
			deliveredRecords.WithLabelValues(rec.Kind.String()).Inc()
		case errors.Is(err, ErrNotReady):
			q.log.Debug("Чанк %s не готов (%s, попытка %d), повтор позже", rec.Pos, rec.Kind, rec.Attempts+1)
			q.Requeue(rec)
		default:
			q.Requeue(rec)
			return delivered, err
		}
	}
	return delivered, nil
}

// Run доставляет записи в отдельной горутине: сразу по сигналу Ready и
// раз в every для записей, ожидающих повтора. Завершается с ctx.Err().
func (q *Queue) Run(ctx context.Context, c Consumer, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.ready:
			if _, err := q.deliver(ctx, c); err != nil && !errors.Is(err, context.Canceled) {
				q.log.Warn("Ошибка доставки изменений: %v", err)
			}
		case <-ticker.C:
			if _, err := q.Step(ctx, c); err != nil && !errors.Is(err, context.Canceled) {
				q.log.Warn("Ошибка доставки изменений: %v", err)
			}
		}
		if q.hasReady() {
			q.signal()
		}
	}
}

func (q *Queue) hasReady() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order) > 0 && q.order[0].due <= q.tick
}
