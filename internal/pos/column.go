package pos

import "fmt"

// ColPos - координаты колонны чанков (общие x, z в пределах мира)
type ColPos struct {
	X, Z  int
	Realm Realm
}

// Chunk возвращает позицию чанка колонны в вертикальном слоте cy
func (c ColPos) Chunk(cy int) ChunkPos {
	return ChunkPos{X: c.X, Y: cy, Z: c.Z, Realm: c.Realm}
}

// Dist - расстояние Чебышёва по горизонтали в колоннах
func (c ColPos) Dist(o ColPos) int {
	if c.Realm != o.Realm {
		return Unreachable
	}
	return max(abs(c.X-o.X), abs(c.Z-o.Z))
}

// Origin возвращает позицию нижнего угла колонны в блоках
func (c ColPos) Origin() BlockPos {
	return BlockPos{X: c.X * ChunkSize, Z: c.Z * ChunkSize, Realm: c.Realm}
}

// Key - строковый ключ для singleflight и логов
func (c ColPos) Key() string {
	return fmt.Sprintf("%d:%d:%d", c.Realm, c.X, c.Z)
}

func (c ColPos) String() string {
	return fmt.Sprintf("col(%d,%d)@%s", c.X, c.Z, c.Realm)
}
