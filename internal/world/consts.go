package world

import "github.com/annel0/blockworld/internal/pos"

const (
	// ChunkSize - ребро чанка в блоках
	ChunkSize = pos.ChunkSize
	// ChunkVolume - число ячеек в чанке
	ChunkVolume = ChunkSize * ChunkSize * ChunkSize
	// MaxHeight - высота мира в блоках
	MaxHeight = 256
	// ColumnChunks - число вертикальных слотов в колонне
	ColumnChunks = MaxHeight / ChunkSize
	// MaxGenHeight - верхняя граница поверхности, которую может выдать генератор
	MaxGenHeight = 128
)
