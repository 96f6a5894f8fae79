package gen

import (
	"github.com/aquilax/go-perlin"
)

// Noise - двумерный шум Перлина с нормализацией в [0, 1].
// После создания только читается, поэтому безопасен для параллельной генерации.
type Noise struct {
	p     *perlin.Perlin
	scale float64
}

// NewNoise создаёт генератор шума с указанным сидом и масштабом координат
func NewNoise(seed int64, scale float64) *Noise {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &Noise{p: perlin.NewPerlin(alpha, beta, n, seed), scale: scale}
}

// At возвращает значение шума для мировых координат (от 0 до 1)
func (n *Noise) At(x, z int) float64 {
	v := n.p.Noise2D(float64(x)*n.scale, float64(z)*n.scale)
	v = (v + 1.0) / 2.0
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
