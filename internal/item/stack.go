package item

import (
	"fmt"

	"github.com/annel0/blockworld/internal/world/block"
)

// MaxStack - предельный размер стопки
const MaxStack = 64

// Stack - стопка одинаковых предметов. Нулевое значение - пустая ячейка.
type Stack struct {
	Item block.ID
	Qty  int
}

// NewStack создаёт стопку, обрезая количество до MaxStack
func NewStack(id block.ID, qty int) Stack {
	if qty <= 0 {
		return Stack{}
	}
	return Stack{Item: id, Qty: min(qty, MaxStack)}
}

// Empty сообщает, что ячейка пуста
func (s Stack) Empty() bool {
	return s.Qty <= 0
}

func (s Stack) String() string {
	if s.Empty() {
		return "empty"
	}
	return fmt.Sprintf("%s x%d", s.Item, s.Qty)
}

// TakeAll забирает всю стопку, оставляя ячейку пустой
func (s *Stack) TakeAll() Stack {
	out := *s
	*s = Stack{}
	return out
}

// TryTakeFrom перекладывает в s сколько поместится из other, не больше MaxStack.
// Возвращает true, если переложен хотя бы один предмет.
func (s *Stack) TryTakeFrom(other *Stack) bool {
	if other.Empty() {
		return false
	}
	if s.Empty() {
		*s = Stack{Item: other.Item}
	}
	if s.Item != other.Item || s.Qty >= MaxStack {
		return false
	}
	n := min(MaxStack-s.Qty, other.Qty)
	s.Qty += n
	other.Qty -= n
	if other.Qty == 0 {
		*other = Stack{}
	}
	return true
}

// SwapWith меняет стопки местами
func (s *Stack) SwapWith(other *Stack) {
	*s, *other = *other, *s
}
