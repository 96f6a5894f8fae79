package render

import (
	"github.com/annel0/blockworld/internal/pos"
	"github.com/annel0/blockworld/internal/world"
)

// Mesh - построенный ресурс чанка. Хранит снимок блоков, по которому
// строился, чтобы правки можно было накладывать без обращения к хранилищу.
type Mesh struct {
	Pos    pos.ChunkPos
	Blocks world.ChunkData
	// Faces - число видимых граней непрозрачных блоков
	Faces int
	Solid int
	// Version растёт при каждой перестройке или правке
	Version uint64
}

var neighbours = [6]pos.Local{
	{X: 1}, {X: -1},
	{Y: 1}, {Y: -1},
	{Z: 1}, {Z: -1},
}

// rebuild пересчитывает грани и непрозрачные блоки по снимку.
// Грани на границе чанка считаются видимыми.
func (m *Mesh) rebuild() {
	m.Faces, m.Solid = 0, 0
	for i, id := range m.Blocks {
		if !id.IsSolid() {
			continue
		}
		m.Solid++
		l := pos.LocalFromIndex(i)
		for _, d := range neighbours {
			n := pos.Local{X: l.X + d.X, Y: l.Y + d.Y, Z: l.Z + d.Z}
			if !n.Valid() || !m.Blocks.Get(n).IsSolid() {
				m.Faces++
			}
		}
	}
	m.Version++
}
