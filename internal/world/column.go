package world

import (
	"sync"

	"github.com/annel0/blockworld/internal/pos"
	"github.com/annel0/blockworld/internal/world/block"
)

// Column хранит вертикальный стек чанков с общими (x, z).
// Пустой слот означает, что чанк ещё не материализован; это не то же самое,
// что чанк из одного воздуха.
type Column struct {
	Pos pos.ColPos

	mu     sync.RWMutex
	chunks [ColumnChunks]*Chunk
}

// cellChange описывает одну изменённую ячейку колонны
type cellChange struct {
	cy      int
	local   pos.Local
	created bool
}

// NewColumn создаёт колонну без материализованных чанков
func NewColumn(p pos.ColPos) *Column {
	return &Column{Pos: p}
}

func checkY(op string, p pos.BlockPos) error {
	if p.Y < 0 || p.Y >= MaxHeight {
		return &BoundsError{Op: op, Pos: p, Low: p.Y, High: p.Y, Reason: "высота должна быть в [0, MaxHeight)"}
	}
	return nil
}

// Get возвращает блок по горизонтальному смещению и высоте.
// Пустой слот читается как воздух.
func (c *Column) Get(xz pos.Local2, y int) (block.ID, error) {
	p := c.blockPos(xz, y)
	if err := checkY("read", p); err != nil {
		return block.Air, err
	}
	if !xz.Valid() {
		return block.Air, &BoundsError{Op: "read", Pos: p, Low: y, High: y, Reason: "смещение вне колонны"}
	}
	cy, dy := pos.Chunked(y)

	c.mu.RLock()
	defer c.mu.RUnlock()
	ch := c.chunks[cy]
	if ch == nil {
		return block.Air, nil
	}
	return ch.Get(pos.Local{X: xz.X, Y: dy, Z: xz.Z}), nil
}

// Set записывает блок, материализуя чанк при необходимости
func (c *Column) Set(xz pos.Local2, y int, id block.ID) error {
	_, err := c.set(xz, y, id)
	return err
}

func (c *Column) set(xz pos.Local2, y int, id block.ID) (*cellChange, error) {
	p := c.blockPos(xz, y)
	if err := checkY("write", p); err != nil {
		return nil, err
	}
	if !xz.Valid() {
		return nil, &BoundsError{Op: "write", Pos: p, Low: y, High: y, Reason: "смещение вне колонны"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setLocked(xz, y, id), nil
}

func (c *Column) setLocked(xz pos.Local2, y int, id block.ID) *cellChange {
	cy, dy := pos.Chunked(y)
	local := pos.Local{X: xz.X, Y: dy, Z: xz.Z}

	created := false
	ch := c.chunks[cy]
	if ch == nil {
		ch = NewChunk(c.Pos.Chunk(cy))
		c.chunks[cy] = ch
		created = true
	}
	if !ch.Set(local, id) && !created {
		return nil
	}
	return &cellChange{cy: cy, local: local, created: created}
}

// FillVerticalSpan заполняет блоком отрезок высот [topY-depth+1, topY]
// в точке xz. Весь отрезок должен лежать в [0, MaxHeight), иначе
// возвращается BoundsError и колонна не меняется.
func (c *Column) FillVerticalSpan(xz pos.Local2, topY, depth int, id block.ID) error {
	_, err := c.fillSpan(xz, topY, depth, id)
	return err
}

// checkSpan проверяет отрезок [topY-depth+1, topY] в точке xz колонны col
func checkSpan(col pos.ColPos, xz pos.Local2, topY, depth int) error {
	low := topY - depth + 1
	p := col.Origin().Add(xz.X, topY, xz.Z)
	switch {
	case depth < 1:
		return &BoundsError{Op: "fill", Pos: p, Low: low, High: topY, Reason: "глубина должна быть положительной"}
	case !xz.Valid():
		return &BoundsError{Op: "fill", Pos: p, Low: low, High: topY, Reason: "смещение вне колонны"}
	case low < 0 || topY >= MaxHeight:
		return &BoundsError{Op: "fill", Pos: p, Low: low, High: topY, Reason: "отрезок выходит за [0, MaxHeight)"}
	}
	return nil
}

func (c *Column) fillSpan(xz pos.Local2, topY, depth int, id block.ID) ([]cellChange, error) {
	if err := checkSpan(c.Pos, xz, topY, depth); err != nil {
		return nil, err
	}
	low := topY - depth + 1

	c.mu.Lock()
	defer c.mu.Unlock()

	var changes []cellChange
	for y := low; y <= topY; y++ {
		if ch := c.setLocked(xz, y, id); ch != nil {
			changes = append(changes, *ch)
		}
	}
	return changes, nil
}

// Chunk возвращает чанк слота cy или nil, если слот пуст
func (c *Column) Chunk(cy int) *Chunk {
	if cy < 0 || cy >= ColumnChunks {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.chunks[cy]
}

// Snapshot возвращает копию данных слота cy
func (c *Column) Snapshot(cy int) (ChunkData, bool) {
	if cy < 0 || cy >= ColumnChunks {
		return ChunkData{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	ch := c.chunks[cy]
	if ch == nil {
		return ChunkData{}, false
	}
	return ch.Snapshot(), true
}

// Materialized возвращает номера заполненных слотов снизу вверх
func (c *Column) Materialized() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []int
	for cy, ch := range c.chunks {
		if ch != nil {
			out = append(out, cy)
		}
	}
	return out
}

// SurfaceY возвращает высоту самого верхнего непустого блока или -1
func (c *Column) SurfaceY(xz pos.Local2) int {
	if !xz.Valid() {
		return -1
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for cy := ColumnChunks - 1; cy >= 0; cy-- {
		ch := c.chunks[cy]
		if ch == nil {
			continue
		}
		for dy := ChunkSize - 1; dy >= 0; dy-- {
			if ch.Get(pos.Local{X: xz.X, Y: dy, Z: xz.Z}) != block.Air {
				return pos.Unchunked(cy, dy)
			}
		}
	}
	return -1
}

func (c *Column) blockPos(xz pos.Local2, y int) pos.BlockPos {
	o := c.Pos.Origin()
	return pos.BlockPos{X: o.X + xz.X, Y: y, Z: o.Z + xz.Z, Realm: c.Pos.Realm}
}
