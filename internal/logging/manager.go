package logging

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// LoggerManager хранит по одному логгеру на компонент мира
type LoggerManager struct {
	mu      sync.Mutex
	loggers map[string]*Logger
}

var globalManager = &LoggerManager{loggers: make(map[string]*Logger)}

// GetLoggerManager возвращает общий реестр логгеров компонентов
func GetLoggerManager() *LoggerManager {
	return globalManager
}

// component возвращает логгер компонента. Если файл логов открыть
// не удалось, компонент пишет только в консоль.
func (lm *LoggerManager) component(name string) *Logger {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if l, ok := lm.loggers[name]; ok {
		return l
	}
	l, err := NewLogger(name)
	if err != nil {
		l = newConsoleLogger(name, os.Stdout, INFO)
		l.Warn("файловый лог недоступен: %v", err)
	}
	lm.loggers[name] = l
	return l
}

// CloseAll закрывает файлы всех компонентов и очищает реестр
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for name, l := range lm.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("лог %s: %w", name, err))
		}
	}
	clear(lm.loggers)
	return errors.Join(errs...)
}

// GetComponentLogger возвращает логгер компонента из общего реестра
func GetComponentLogger(component string) *Logger {
	return globalManager.component(component)
}
