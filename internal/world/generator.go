package world

import (
	"context"

	"github.com/annel0/blockworld/internal/pos"
)

// Generator заполняет колонну при первой материализации.
// Результат должен зависеть только от сида, позиции колонны и статической
// конфигурации. Разные колонны могут генерироваться параллельно, поэтому
// реализация не должна хранить изменяемое состояние.
type Generator interface {
	Generate(ctx context.Context, col pos.ColPos, dst *Column) error
}

// GeneratorFunc адаптирует функцию к интерфейсу Generator
type GeneratorFunc func(ctx context.Context, col pos.ColPos, dst *Column) error

func (f GeneratorFunc) Generate(ctx context.Context, col pos.ColPos, dst *Column) error {
	return f(ctx, col, dst)
}

// Empty - генератор, оставляющий все слоты колонны пустыми
var Empty Generator = GeneratorFunc(func(context.Context, pos.ColPos, *Column) error { return nil })
