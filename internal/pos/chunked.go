package pos

// ChunkSize - длина ребра чанка в блоках
const ChunkSize = 16

// FloorDiv делит с округлением к минус бесконечности
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Mod возвращает неотрицательный остаток для b > 0
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// Chunked раскладывает мелкую координату на (индекс чанка, смещение внутри).
// Смещение всегда в [0, ChunkSize), в том числе для отрицательных x.
func Chunked(x int) (int, int) {
	return FloorDiv(x, ChunkSize), Mod(x, ChunkSize)
}

// Unchunked обратна Chunked: Unchunked(Chunked(x)) == x
func Unchunked(c, d int) int {
	return c*ChunkSize + d
}

// Local - смещение блока внутри чанка, каждая ось в [0, ChunkSize)
type Local struct {
	X, Y, Z int
}

// Valid проверяет, что смещение лежит внутри чанка
func (l Local) Valid() bool {
	return l.X >= 0 && l.X < ChunkSize &&
		l.Y >= 0 && l.Y < ChunkSize &&
		l.Z >= 0 && l.Z < ChunkSize
}

// Index возвращает линейный индекс ячейки (x, потом z, потом y)
func (l Local) Index() int {
	return (l.Y*ChunkSize+l.Z)*ChunkSize + l.X
}

// LocalFromIndex обратна Local.Index
func LocalFromIndex(i int) Local {
	return Local{
		X: i % ChunkSize,
		Z: (i / ChunkSize) % ChunkSize,
		Y: i / (ChunkSize * ChunkSize),
	}
}

// Local2 - горизонтальное смещение внутри колонны
type Local2 struct {
	X, Z int
}

// Valid проверяет, что смещение лежит внутри колонны
func (l Local2) Valid() bool {
	return l.X >= 0 && l.X < ChunkSize && l.Z >= 0 && l.Z < ChunkSize
}

// Split раскладывает позицию блока на позицию чанка и смещение
func Split(b BlockPos) (ChunkPos, Local) {
	cx, dx := Chunked(b.X)
	cy, dy := Chunked(b.Y)
	cz, dz := Chunked(b.Z)
	return ChunkPos{X: cx, Y: cy, Z: cz, Realm: b.Realm}, Local{X: dx, Y: dy, Z: dz}
}

// Join собирает позицию блока из позиции чанка и смещения
func Join(c ChunkPos, l Local) BlockPos {
	return BlockPos{
		X:     Unchunked(c.X, l.X),
		Y:     Unchunked(c.Y, l.Y),
		Z:     Unchunked(c.Z, l.Z),
		Realm: c.Realm,
	}
}

// ChunkOf возвращает чанк, содержащий блок
func ChunkOf(b BlockPos) ChunkPos {
	c, _ := Split(b)
	return c
}
