package gen

import "fmt"

// DataError - данные генерации отсутствуют или повреждены.
// Возникает при старте и считается фатальной.
type DataError struct {
	Path string
	// Line - номер строки CSV, 0 если ошибка не привязана к строке
	Line int
	Err  error
}

func (e *DataError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("gen: %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("gen: %s: %v", e.Path, e.Err)
}

func (e *DataError) Unwrap() error { return e.Err }
