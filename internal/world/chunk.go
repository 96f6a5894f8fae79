package world

import (
	"github.com/annel0/blockworld/internal/pos"
	"github.com/annel0/blockworld/internal/world/block"
)

// ChunkData - плоский массив блоков чанка, индексируется pos.Local.Index()
type ChunkData [ChunkVolume]block.ID

// Get возвращает блок по локальному смещению
func (d *ChunkData) Get(l pos.Local) block.ID {
	return d[l.Index()]
}

// Solid считает непрозрачные блоки
func (d *ChunkData) Solid() int {
	n := 0
	for _, id := range d {
		if id.IsSolid() {
			n++
		}
	}
	return n
}

// Chunk представляет куб 16x16x16 блоков внутри колонны.
// Синхронизация выполняется мьютексом колонны-владельца.
type Chunk struct {
	Pos    pos.ChunkPos
	blocks ChunkData

	// ChangeCounter считает изменения ячеек после материализации
	ChangeCounter int
}

// NewChunk создаёт чанк, заполненный воздухом
func NewChunk(p pos.ChunkPos) *Chunk {
	return &Chunk{Pos: p}
}

// Get возвращает блок по локальному смещению
func (c *Chunk) Get(l pos.Local) block.ID {
	return c.blocks[l.Index()]
}

// Set записывает блок и сообщает, изменилось ли значение
func (c *Chunk) Set(l pos.Local, id block.ID) bool {
	i := l.Index()
	if c.blocks[i] == id {
		return false
	}
	c.blocks[i] = id
	c.ChangeCounter++
	return true
}

// Snapshot возвращает копию данных чанка
func (c *Chunk) Snapshot() ChunkData {
	return c.blocks
}

// IsEmpty сообщает, что в чанке только воздух
func (c *Chunk) IsEmpty() bool {
	for _, id := range c.blocks {
		if id != block.Air {
			return false
		}
	}
	return true
}
