package pos

import (
	"fmt"
	"math"
)

// Unit задаёт гранулярность адресации: сколько мелких блоков в одной единице.
type Unit interface {
	Edge() int
}

// Fine - адресация по блокам
type Fine struct{}

// Edge возвращает 1
func (Fine) Edge() int { return 1 }

// ChunkGrain - адресация по чанкам
type ChunkGrain struct{}

// Edge возвращает ChunkSize
func (ChunkGrain) Edge() int { return ChunkSize }

// Pos - целочисленная позиция в мире Realm с гранулярностью U.
// Равенство учитывает мир, так что Pos можно использовать как ключ map.
type Pos[U Unit] struct {
	X, Y, Z int
	Realm   Realm
}

type (
	BlockPos = Pos[Fine]
	ChunkPos = Pos[ChunkGrain]
)

// Unreachable - расстояние между позициями разных миров
const Unreachable = math.MaxInt32

// Vec3 - вектор с плавающими координатами
type Vec3 struct {
	X, Y, Z float64
}

// Edge возвращает длину ребра единицы адресации в блоках
func (p Pos[U]) Edge() int {
	var u U
	return u.Edge()
}

// Add сдвигает позицию на целое смещение
func (p Pos[U]) Add(dx, dy, dz int) Pos[U] {
	return Pos[U]{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz, Realm: p.Realm}
}

// AddVec сдвигает позицию на вектор с округлением вниз по каждой оси
func (p Pos[U]) AddVec(v Vec3) Pos[U] {
	return Pos[U]{
		X:     p.X + int(math.Floor(v.X)),
		Y:     p.Y + int(math.Floor(v.Y)),
		Z:     p.Z + int(math.Floor(v.Z)),
		Realm: p.Realm,
	}
}

// Dist - расстояние Чебышёва (максимум модулей разностей по осям).
// Для разных миров возвращает Unreachable.
func (p Pos[U]) Dist(o Pos[U]) int {
	if p.Realm != o.Realm {
		return Unreachable
	}
	return max(abs(p.X-o.X), abs(p.Y-o.Y), abs(p.Z-o.Z))
}

// Column возвращает колонну, в которую попадает позиция
func (p Pos[U]) Column() ColPos {
	e := p.Edge()
	return ColPos{
		X:     FloorDiv(p.X*e, ChunkSize),
		Z:     FloorDiv(p.Z*e, ChunkSize),
		Realm: p.Realm,
	}
}

func (p Pos[U]) String() string {
	return fmt.Sprintf("%s(%d,%d,%d)@%s", unitName(p.Edge()), p.X, p.Y, p.Z, p.Realm)
}

func unitName(edge int) string {
	if edge == 1 {
		return "block"
	}
	return "chunk"
}

// FromVec округляет вектор вниз до позиции блока
func FromVec(v Vec3, realm Realm) BlockPos {
	return BlockPos{
		X:     int(math.Floor(v.X)),
		Y:     int(math.Floor(v.Y)),
		Z:     int(math.Floor(v.Z)),
		Realm: realm,
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
