package item

import (
	"testing"

	"github.com/annel0/blockworld/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackTakeFrom(t *testing.T) {
	a := NewStack(block.Dirt, 60)
	b := NewStack(block.Dirt, 10)
	assert.True(t, a.TryTakeFrom(&b))
	assert.Equal(t, MaxStack, a.Qty)
	assert.Equal(t, 6, b.Qty)

	assert.False(t, a.TryTakeFrom(&b), "полная стопка ничего не берёт")

	c := NewStack(block.Sand, 1)
	assert.False(t, b.TryTakeFrom(&c), "разные предметы не смешиваются")

	var empty Stack
	assert.True(t, empty.TryTakeFrom(&c))
	assert.True(t, c.Empty())
	assert.Equal(t, NewStack(block.Sand, 1), empty)
	assert.Equal(t, MaxStack, NewStack(block.Stone, 1000).Qty)
}

func TestFurnaceSlotRules(t *testing.T) {
	f := NewFurnace()
	assert.True(t, f.CanReceive(block.Stone, int(Material)))
	assert.True(t, f.CanReceive(block.Coal, int(Fuel)))
	assert.False(t, f.CanReceive(block.Stone, int(Fuel)), "камень не горит")
	assert.False(t, f.CanReceive(block.Coal, int(Output)), "в результат класть нельзя")

	s := NewStack(block.Stone, 5)
	err := f.TakeOrSwap(&s, int(Fuel))
	assert.ErrorIs(t, err, ErrRejected)
	assert.Equal(t, 5, s.Qty, "отклонённая стопка не меняется")

	_, err = f.Get(3)
	assert.ErrorIs(t, err, ErrBadSlot)
}

func TestTakeOrSwap(t *testing.T) {
	inv := NewInventory(2)
	s := NewStack(block.Dirt, 3)
	require.NoError(t, inv.TakeOrSwap(&s, 0))
	assert.True(t, s.Empty())

	other := NewStack(block.Sand, 2)
	require.NoError(t, inv.TakeOrSwap(&other, 0))
	assert.Equal(t, NewStack(block.Dirt, 3), other, "разные предметы меняются местами")
	got, err := inv.Get(0)
	require.NoError(t, err)
	assert.Equal(t, NewStack(block.Sand, 2), got)

	var hand Stack
	require.NoError(t, inv.TakeOrSwap(&hand, 0))
	assert.Equal(t, NewStack(block.Sand, 2), hand, "пустая рука забирает содержимое")

	assert.ErrorIs(t, inv.TakeOrSwap(&hand, 5), ErrBadSlot)
}

func TestInventoryTryAdd(t *testing.T) {
	inv := NewInventory(3)
	rest := inv.TryAdd(NewStack(block.Dirt, 40))
	assert.True(t, rest.Empty())
	rest = inv.TryAdd(Stack{Item: block.Dirt, Qty: 64})
	assert.True(t, rest.Empty())

	s0, _ := inv.Get(0)
	s1, _ := inv.Get(1)
	assert.Equal(t, 64, s0.Qty, "сначала дополняется существующая стопка")
	assert.Equal(t, 40, s1.Qty)

	inv.TryAdd(NewStack(block.Sand, 64))
	rest = inv.TryAdd(NewStack(block.Stone, 7))
	assert.Equal(t, NewStack(block.Stone, 7), rest, "без свободных ячеек возвращается остаток")
}

func TestFurnaceTryAdd(t *testing.T) {
	f := NewFurnace()
	rest := f.TryAdd(NewStack(block.Stone, 10))
	assert.True(t, rest.Empty())
	assert.Equal(t, NewStack(block.Stone, 10), f.Material)

	rest = f.TryAdd(NewStack(block.Coal, 5))
	assert.True(t, rest.Empty())
	assert.Equal(t, NewStack(block.Coal, 5), f.Fuel, "горючее уходит в топливо, если сырьё занято")

	rest = f.TryAdd(NewStack(block.Sand, 3))
	assert.Equal(t, NewStack(block.Sand, 3), rest)
	assert.True(t, f.Output.Empty())

	var h Holder = NewInventory(4)
	assert.Equal(t, 4, h.Slots())
}

func TestOversizedStackIsSplit(t *testing.T) {
	inv := NewInventory(2)
	rest := inv.TryAdd(Stack{Item: block.Dirt, Qty: 200})

	for i := 0; i < inv.Slots(); i++ {
		s, err := inv.Get(i)
		require.NoError(t, err)
		assert.Equal(t, MaxStack, s.Qty, "ячейка %d заполнена до предела", i)
	}
	assert.Equal(t, Stack{Item: block.Dirt, Qty: 200 - 2*MaxStack}, rest)

	var slot Stack
	big := Stack{Item: block.Sand, Qty: 100}
	assert.True(t, slot.TryTakeFrom(&big))
	assert.Equal(t, MaxStack, slot.Qty)
	assert.Equal(t, 100-MaxStack, big.Qty, "остаток остаётся в исходной стопке")

	f := NewFurnace()
	coal := Stack{Item: block.Coal, Qty: 150}
	require.NoError(t, f.TakeOrSwap(&coal, int(Fuel)))
	assert.Equal(t, MaxStack, f.Fuel.Qty)
	assert.Equal(t, 150-MaxStack, coal.Qty)
}
