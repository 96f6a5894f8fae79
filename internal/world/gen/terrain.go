package gen

import (
	"context"
	"math"

	"github.com/annel0/blockworld/internal/pos"
	"github.com/annel0/blockworld/internal/world"
	"github.com/annel0/blockworld/internal/world/block"
)

// Options - статическая конфигурация генерации
type Options struct {
	Seed int64
	// NoiseScale - масштаб шума высоты
	NoiseScale float64
	// ClimateScale - масштаб шума температуры и влажности
	ClimateScale float64
	// SurfaceDepth - толщина слоя почвы
	SurfaceDepth int
	// SeaLevel - уровень воды, 0 отключает воду
	SeaLevel int
	// FillStone заполняет камнем всё под слоем почвы
	FillStone bool
	// TreeChance - вероятность дерева на траве, от 0 до 1
	TreeChance float64
}

// DefaultOptions возвращает параметры по умолчанию
func DefaultOptions() Options {
	return Options{
		Seed:         0,
		NoiseScale:   0.01,
		ClimateScale: 0.004,
		SurfaceDepth: 3,
		SeaLevel:     0,
		FillStone:    false,
		TreeChance:   0.01,
	}
}

// sampler возвращает нормированные высоту, температуру и влажность точки
type sampler func(x, z int) (height, temp, hum float64)

// columnFiller раскладывает климат точки в блоки колонны
type columnFiller struct {
	opts  Options
	soils *Soils
}

func (f *columnFiller) fill(ctx context.Context, col pos.ColPos, dst *world.Column, sample sampler) error {
	depth := f.opts.SurfaceDepth
	if depth < 1 {
		depth = 1
	}

	for dx := 0; dx < world.ChunkSize; dx++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for dz := 0; dz < world.ChunkSize; dz++ {
			x, z := pos.Unchunked(col.X, dx), pos.Unchunked(col.Z, dz)
			xz := pos.Local2{X: dx, Z: dz}
			h, t, hum := sample(x, z)

			y := int(h * world.MaxGenHeight)
			if y >= world.MaxGenHeight {
				y = world.MaxGenHeight - 1
			}

			soil, _, ok := f.soils.Closest(t, hum)
			if !ok {
				soil = block.Dirt
			}

			d := min(depth, y+1)
			if err := dst.FillVerticalSpan(xz, y, d, soil); err != nil {
				return err
			}
			if f.opts.FillStone && y-d >= 0 {
				if err := dst.FillVerticalSpan(xz, y-d, y-d+1, block.Stone); err != nil {
					return err
				}
			}

			if f.opts.SeaLevel > y {
				if err := dst.FillVerticalSpan(xz, f.opts.SeaLevel, f.opts.SeaLevel-y, block.Water); err != nil {
					return err
				}
				continue
			}
			if soil == block.Grass {
				if err := f.tree(dst, pos.BlockPos{X: x, Y: y + 1, Z: z, Realm: col.Realm}, xz); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// tree ставит ствол и крону, если позиция выпала по prng.
// Дерево не выходит за пределы своей колонны.
func (f *columnFiller) tree(dst *world.Column, base pos.BlockPos, xz pos.Local2) error {
	if f.opts.TreeChance <= 0 {
		return nil
	}
	r := base.Prng(int32(f.opts.Seed))
	if float64(r%10000)/10000 >= f.opts.TreeChance {
		return nil
	}
	trunk := 3 + int((r>>16)%3)
	top := base.Y + trunk - 1
	if top+1 >= world.MaxHeight {
		return nil
	}
	if err := dst.FillVerticalSpan(xz, top, trunk, block.Wood); err != nil {
		return err
	}
	return dst.Set(xz, top+1, block.Leaves)
}

// Terrain - генератор ландшафта на шуме Перлина
type Terrain struct {
	columnFiller
	height      *Noise
	temperature *Noise
	humidity    *Noise
}

// NewTerrain создаёт генератор. soils должна быть загружена заранее.
func NewTerrain(opts Options, soils *Soils) *Terrain {
	return &Terrain{
		columnFiller: columnFiller{opts: opts, soils: soils},
		height:       NewNoise(opts.Seed, opts.NoiseScale),
		temperature:  NewNoise(opts.Seed+1, opts.ClimateScale),
		humidity:     NewNoise(opts.Seed+2, opts.ClimateScale),
	}
}

// Values возвращает нормированные высоту, температуру и влажность
func (t *Terrain) Values(x, z int) (float64, float64, float64) {
	return t.height.At(x, z), t.temperature.At(x, z), t.humidity.At(x, z)
}

// Generate заполняет колонну
func (t *Terrain) Generate(ctx context.Context, col pos.ColPos, dst *world.Column) error {
	return t.fill(ctx, col, dst, t.Values)
}

// Wave - отладочный генератор: синусоидальные холмы и постоянный климат
type Wave struct {
	columnFiller
}

// NewWave создаёт отладочный генератор
func NewWave(opts Options, soils *Soils) *Wave {
	return &Wave{columnFiller: columnFiller{opts: opts, soils: soils}}
}

// Values возвращает высоту холма и средний климат
func (w *Wave) Values(x, z int) (float64, float64, float64) {
	y := (math.Sin(float64(x)/50)*0.5 + 0.5 + math.Cos(float64(z)/50)*0.5 + 0.5) / 2
	return y, 0.5, 0.5
}

// Generate заполняет колонну
func (w *Wave) Generate(ctx context.Context, col pos.ColPos, dst *world.Column) error {
	return w.fill(ctx, col, dst, w.Values)
}

var (
	_ world.Generator = (*Terrain)(nil)
	_ world.Generator = (*Wave)(nil)
)
