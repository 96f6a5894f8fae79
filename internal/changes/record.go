package changes

import (
	"context"
	"errors"
	"sort"

	"github.com/annel0/blockworld/internal/pos"
)

// ErrNotReady возвращается потребителем, если ресурс чанка ещё не построен.
// Запись при этом возвращается в очередь с задержкой.
var ErrNotReady = errors.New("changes: ресурс чанка не готов")

// Kind - вид изменения чанка
type Kind uint8

const (
	// Created - чанк материализован, нужна полная перестройка
	Created Kind = iota + 1
	// Edited - изменились отдельные ячейки
	Edited
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Edited:
		return "edited"
	}
	return "unknown"
}

// Record - ожидающее обновление представления для одного чанка
type Record struct {
	Kind Kind
	Pos  pos.ChunkPos
	// Offsets - изменённые ячейки для Edited, отсортированы по индексу
	Offsets []pos.Local
	// Attempts - сколько раз запись уже возвращалась потребителем
	Attempts int

	seq uint64
	// epoch - номер выгрузки на момент выдачи, issued - запись выдана Pop
	epoch  uint64
	issued bool
}

// Interest сообщает, интересна ли колонна хотя бы одному наблюдателю
type Interest interface {
	HasInterest(col pos.ColPos) bool
}

// InterestFunc адаптирует функцию к Interest
type InterestFunc func(col pos.ColPos) bool

func (f InterestFunc) HasInterest(col pos.ColPos) bool { return f(col) }

// Consumer применяет записи к представлению
type Consumer interface {
	Apply(ctx context.Context, rec Record) error
}

// ConsumerFunc адаптирует функцию к Consumer
type ConsumerFunc func(ctx context.Context, rec Record) error

func (f ConsumerFunc) Apply(ctx context.Context, rec Record) error { return f(ctx, rec) }

type offsetSet map[pos.Local]struct{}

func (s offsetSet) sorted() []pos.Local {
	out := make([]pos.Local, 0, len(s))
	for l := range s {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out
}
