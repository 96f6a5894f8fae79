package item

import (
	"errors"
	"fmt"

	"github.com/annel0/blockworld/internal/world/block"
)

var (
	// ErrBadSlot - номер ячейки вне держателя
	ErrBadSlot = errors.New("item: нет такой ячейки")
	// ErrRejected - ячейка не принимает этот предмет
	ErrRejected = errors.New("item: ячейка не принимает предмет")
)

// Holder - держатель предметов: печь или инвентарь.
// Набор вариантов закрыт, правила приёма у каждого свои.
type Holder interface {
	Slots() int
	Get(slot int) (Stack, error)
	CanReceive(id block.ID, slot int) bool
	// TakeOrSwap кладёт stack в ячейку; если ничего не поместилось -
	// меняет содержимое ячейки и stack местами
	TakeOrSwap(stack *Stack, slot int) error
	// TryAdd раскладывает стопку по подходящим ячейкам и возвращает остаток
	TryAdd(stack Stack) Stack

	slot(i int) (*Stack, error)
}

func takeOrSwap(h Holder, stack *Stack, i int) error {
	own, err := h.slot(i)
	if err != nil {
		return err
	}
	if !stack.Empty() && !h.CanReceive(stack.Item, i) {
		return fmt.Errorf("%w: %s в ячейку %d", ErrRejected, stack.Item, i)
	}
	if own.TryTakeFrom(stack) {
		return nil
	}
	own.SwapWith(stack)
	return nil
}

// FurnaceSlot - ячейки печи
type FurnaceSlot int

const (
	Material FurnaceSlot = iota
	Fuel
	Output
)

// Furnace - печь: сырьё, топливо, результат
type Furnace struct {
	Material Stack
	Fuel     Stack
	Output   Stack
}

// NewFurnace создаёт пустую печь
func NewFurnace() *Furnace { return &Furnace{} }

func (f *Furnace) Slots() int { return 3 }

func (f *Furnace) slot(i int) (*Stack, error) {
	switch FurnaceSlot(i) {
	case Material:
		return &f.Material, nil
	case Fuel:
		return &f.Fuel, nil
	case Output:
		return &f.Output, nil
	}
	return nil, fmt.Errorf("%w: печь, ячейка %d", ErrBadSlot, i)
}

func (f *Furnace) Get(i int) (Stack, error) {
	s, err := f.slot(i)
	if err != nil {
		return Stack{}, err
	}
	return *s, nil
}

// CanReceive: сырьё - любое, топливо - только горючее, в результат класть нельзя
func (f *Furnace) CanReceive(id block.ID, i int) bool {
	switch FurnaceSlot(i) {
	case Material:
		return true
	case Fuel:
		return id.IsFuel()
	}
	return false
}

func (f *Furnace) TakeOrSwap(stack *Stack, i int) error {
	return takeOrSwap(f, stack, i)
}

// TryAdd кладёт сначала в сырьё, остаток горючего - в топливо
func (f *Furnace) TryAdd(stack Stack) Stack {
	if stack.Empty() {
		return Stack{}
	}
	if f.Material.Empty() || f.Material.Item == stack.Item {
		f.Material.TryTakeFrom(&stack)
	}
	if !stack.Empty() && stack.Item.IsFuel() {
		f.Fuel.TryTakeFrom(&stack)
	}
	return stack
}

// Inventory - инвентарь: любая ячейка принимает любой предмет
type Inventory struct {
	items []Stack
}

// NewInventory создаёт инвентарь из n пустых ячеек
func NewInventory(n int) *Inventory {
	return &Inventory{items: make([]Stack, n)}
}

func (inv *Inventory) Slots() int { return len(inv.items) }

func (inv *Inventory) slot(i int) (*Stack, error) {
	if i < 0 || i >= len(inv.items) {
		return nil, fmt.Errorf("%w: инвентарь, ячейка %d", ErrBadSlot, i)
	}
	return &inv.items[i], nil
}

func (inv *Inventory) Get(i int) (Stack, error) {
	s, err := inv.slot(i)
	if err != nil {
		return Stack{}, err
	}
	return *s, nil
}

func (inv *Inventory) CanReceive(block.ID, int) bool { return true }

func (inv *Inventory) TakeOrSwap(stack *Stack, i int) error {
	return takeOrSwap(inv, stack, i)
}

// TryAdd дополняет стопки того же предмета, затем занимает пустые ячейки
func (inv *Inventory) TryAdd(stack Stack) Stack {
	for i := range inv.items {
		if stack.Empty() {
			return Stack{}
		}
		if !inv.items[i].Empty() && inv.items[i].Item == stack.Item {
			inv.items[i].TryTakeFrom(&stack)
		}
	}
	for i := range inv.items {
		if stack.Empty() {
			return Stack{}
		}
		if inv.items[i].Empty() {
			inv.items[i].TryTakeFrom(&stack)
		}
	}
	return stack
}

var (
	_ Holder = (*Furnace)(nil)
	_ Holder = (*Inventory)(nil)
)
