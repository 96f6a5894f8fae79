package world

import (
	"errors"
	"fmt"

	"github.com/annel0/blockworld/internal/pos"
)

// ErrNoGenerator возвращается при генерации без подключённого генератора
var ErrNoGenerator = errors.New("world: генератор не задан")

// BoundsError - запрос вышел за допустимые пределы мира.
// Хранилище никогда не обрезает такие запросы молча.
type BoundsError struct {
	Op string
	// Pos - позиция запроса (для диапазонов: колонна и верхняя граница)
	Pos pos.BlockPos
	// Low, High - запрошенный диапазон высот включительно
	Low, High int
	Reason    string
}

func (e *BoundsError) Error() string {
	if e.Low != e.High {
		return fmt.Sprintf("world: %s %s: y=[%d,%d] вне мира: %s", e.Op, e.Pos, e.Low, e.High, e.Reason)
	}
	return fmt.Sprintf("world: %s %s вне мира: %s", e.Op, e.Pos, e.Reason)
}

// IsBounds сообщает, является ли ошибка BoundsError
func IsBounds(err error) bool {
	var be *BoundsError
	return errors.As(err, &be)
}
