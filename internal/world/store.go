package world

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/annel0/blockworld/internal/logging"
	"github.com/annel0/blockworld/internal/pos"
	"github.com/annel0/blockworld/internal/world/block"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// ChangeSink получает уведомления об изменениях чанков.
// Реализуется очередью изменений.
type ChangeSink interface {
	MarkCreated(cp pos.ChunkPos)
	MarkEdited(cp pos.ChunkPos, l pos.Local)
}

type discardSink struct{}

func (discardSink) MarkCreated(pos.ChunkPos)            {}
func (discardSink) MarkEdited(pos.ChunkPos, pos.Local) {}

// StoreOptions - параметры хранилища
type StoreOptions struct {
	// WorldRadius ограничивает |x| и |z| в блоках, 0 - без ограничения
	WorldRadius int
}

// Store владеет всеми колоннами всех миров. Колонны материализуются лениво:
// первое обращение запускает генерацию, параллельные обращения к той же
// колонне ждут одного и того же результата.
type Store struct {
	gen  Generator
	sink ChangeSink
	opts StoreOptions

	mu     sync.RWMutex
	cols   map[pos.ColPos]*Column
	flight singleflight.Group

	tracer trace.Tracer
	log    *logging.Logger
}

// NewStore создаёт хранилище. sink может быть nil.
func NewStore(gen Generator, sink ChangeSink, opts StoreOptions) *Store {
	if sink == nil {
		sink = discardSink{}
	}
	return &Store{
		gen:    gen,
		sink:   sink,
		opts:   opts,
		cols:   make(map[pos.ColPos]*Column),
		tracer: otel.Tracer("github.com/annel0/blockworld/internal/world"),
		log:    logging.GetComponentLogger("store"),
	}
}

func (s *Store) lookup(col pos.ColPos) *Column {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cols[col]
}

func (s *Store) checkHorizontal(op string, p pos.BlockPos) error {
	r := s.opts.WorldRadius
	if r <= 0 {
		return nil
	}
	if p.X < -r || p.X >= r || p.Z < -r || p.Z >= r {
		return &BoundsError{Op: op, Pos: p, Low: p.Y, High: p.Y, Reason: fmt.Sprintf("за границей мира радиуса %d", r)}
	}
	return nil
}

// column возвращает колонну, генерируя её при первом обращении.
// Генерация одной колонны выполняется не более одного раза одновременно.
func (s *Store) column(ctx context.Context, col pos.ColPos) (*Column, error) {
	if c := s.lookup(col); c != nil {
		return c, nil
	}

	ch := s.flight.DoChan(col.Key(), func() (interface{}, error) {
		if c := s.lookup(col); c != nil {
			return c, nil
		}
		return s.generate(context.WithoutCancel(ctx), col)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Column), nil
	}
}

func (s *Store) generate(ctx context.Context, col pos.ColPos) (*Column, error) {
	ctx, span := s.tracer.Start(ctx, "world.GenerateColumn", trace.WithAttributes(
		attribute.Int("column.x", col.X),
		attribute.Int("column.z", col.Z),
		attribute.String("column.realm", col.Realm.String()),
	))
	defer span.End()

	if s.gen == nil {
		span.SetStatus(codes.Error, ErrNoGenerator.Error())
		return nil, ErrNoGenerator
	}

	start := time.Now()
	c := NewColumn(col)
	if err := s.gen.Generate(ctx, col, c); err != nil {
		generationErrors.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Error("❌ Генерация %s: %v", col, err)
		return nil, fmt.Errorf("генерация %s: %w", col, err)
	}
	elapsed := time.Since(start)
	generationSeconds.Observe(elapsed.Seconds())
	generatedColumns.Inc()
	span.SetAttributes(attribute.Int("column.chunks", len(c.Materialized())))

	s.mu.Lock()
	s.cols[col] = c
	n := len(s.cols)
	s.mu.Unlock()
	residentColumns.Set(float64(n))

	s.log.Debug("Колонна %s сгенерирована за %s", col, elapsed)
	return c, nil
}

// Read возвращает блок в позиции, при необходимости генерируя колонну.
// Пустой слот сгенерированной колонны читается как воздух.
func (s *Store) Read(ctx context.Context, p pos.BlockPos) (block.ID, error) {
	if err := checkY("read", p); err != nil {
		return block.Air, err
	}
	if err := s.checkHorizontal("read", p); err != nil {
		return block.Air, err
	}
	blockOps.WithLabelValues("read").Inc()

	c, err := s.column(ctx, p.Column())
	if err != nil {
		return block.Air, err
	}
	_, l := pos.Split(p)
	return c.Get(pos.Local2{X: l.X, Z: l.Z}, p.Y)
}

// Peek читает блок без генерации. ok=false, если колонны нет в памяти.
func (s *Store) Peek(p pos.BlockPos) (block.ID, bool) {
	if p.Y < 0 || p.Y >= MaxHeight {
		return block.Air, false
	}
	c := s.lookup(p.Column())
	if c == nil {
		return block.Air, false
	}
	_, l := pos.Split(p)
	id, err := c.Get(pos.Local2{X: l.X, Z: l.Z}, p.Y)
	return id, err == nil
}

// Write записывает блок. Если слот был пуст, чанк материализуется и
// в очередь уходит Created, иначе Edited с локальным смещением.
// Запись того же значения ничего не меняет и ничего не публикует.
func (s *Store) Write(ctx context.Context, p pos.BlockPos, id block.ID) error {
	if err := checkY("write", p); err != nil {
		return err
	}
	if err := s.checkHorizontal("write", p); err != nil {
		return err
	}
	blockOps.WithLabelValues("write").Inc()

	c, err := s.column(ctx, p.Column())
	if err != nil {
		return err
	}
	_, l := pos.Split(p)
	change, err := c.set(pos.Local2{X: l.X, Z: l.Z}, p.Y, id)
	if err != nil {
		return err
	}
	if change != nil {
		s.publish(c.Pos, []cellChange{*change})
	}
	return nil
}

// FillVerticalSpan заполняет отрезок высот [topY-depth+1, topY] в точке xz
// колонны col и публикует изменения затронутых чанков. Отрезок проверяется
// до генерации: отклонённый запрос не делает колонну резидентной.
func (s *Store) FillVerticalSpan(ctx context.Context, col pos.ColPos, xz pos.Local2, topY, depth int, id block.ID) error {
	if err := checkSpan(col, xz, topY, depth); err != nil {
		return err
	}
	if err := s.checkHorizontal("fill", col.Origin().Add(xz.X, topY, xz.Z)); err != nil {
		return err
	}
	blockOps.WithLabelValues("fill").Inc()

	c, err := s.column(ctx, col)
	if err != nil {
		return err
	}
	changes, err := c.fillSpan(xz, topY, depth, id)
	if err != nil {
		return err
	}
	s.publish(col, changes)
	return nil
}

func (s *Store) publish(col pos.ColPos, changes []cellChange) {
	created := make(map[int]bool)
	for _, ch := range changes {
		if ch.created {
			created[ch.cy] = true
		}
	}
	for cy := range created {
		s.sink.MarkCreated(col.Chunk(cy))
	}
	for _, ch := range changes {
		if !created[ch.cy] {
			s.sink.MarkEdited(col.Chunk(ch.cy), ch.local)
		}
	}
}

// LoadColumn гарантирует, что колонна сгенерирована, и публикует Created
// для каждого её материализованного чанка.
func (s *Store) LoadColumn(ctx context.Context, col pos.ColPos) error {
	if err := s.checkHorizontal("load", col.Origin()); err != nil {
		return err
	}
	c, err := s.column(ctx, col)
	if err != nil {
		return err
	}
	for _, cy := range c.Materialized() {
		s.sink.MarkCreated(col.Chunk(cy))
	}
	return nil
}

// UnloadColumn удаляет колонну целиком. Возвращает false, если её не было.
func (s *Store) UnloadColumn(col pos.ColPos) bool {
	s.mu.Lock()
	_, ok := s.cols[col]
	delete(s.cols, col)
	n := len(s.cols)
	s.mu.Unlock()

	if ok {
		residentColumns.Set(float64(n))
		s.log.Debug("Колонна %s выгружена", col)
	}
	return ok
}

// IsResident сообщает, находится ли колонна в памяти
func (s *Store) IsResident(col pos.ColPos) bool {
	return s.lookup(col) != nil
}

// Resident возвращает колонны в памяти в детерминированном порядке
func (s *Store) Resident() []pos.ColPos {
	s.mu.RLock()
	out := make([]pos.ColPos, 0, len(s.cols))
	for col := range s.cols {
		out = append(out, col)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Realm != b.Realm {
			return a.Realm < b.Realm
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Z < b.Z
	})
	return out
}

// Len возвращает число колонн в памяти
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cols)
}

// Materialized сообщает, заполнен ли слот чанка. Не генерирует колонну.
func (s *Store) Materialized(cp pos.ChunkPos) bool {
	c := s.lookup(cp.Column())
	return c != nil && c.Chunk(cp.Y) != nil
}

// ChunkSnapshot возвращает копию данных чанка без генерации
func (s *Store) ChunkSnapshot(cp pos.ChunkPos) (ChunkData, bool) {
	c := s.lookup(cp.Column())
	if c == nil {
		return ChunkData{}, false
	}
	return c.Snapshot(cp.Y)
}
