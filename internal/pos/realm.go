package pos

import (
	"fmt"
	"strings"
)

// Realm идентифицирует независимый экземпляр мира. Позиции разных миров
// никогда не равны и не сравнимы по расстоянию.
type Realm uint8

const (
	Overworld Realm = iota
	Dream
)

var realmNames = [...]string{
	Overworld: "overworld",
	Dream:     "dream",
}

// String возвращает имя мира
func (r Realm) String() string {
	if int(r) < len(realmNames) {
		return realmNames[r]
	}
	return fmt.Sprintf("realm(%d)", uint8(r))
}

// Valid сообщает, известен ли мир
func (r Realm) Valid() bool {
	return int(r) < len(realmNames)
}

// ParseRealm разбирает имя мира без учёта регистра
func ParseRealm(s string) (Realm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range realmNames {
		if name == s {
			return Realm(i), nil
		}
	}
	return 0, fmt.Errorf("неизвестный мир %q", s)
}
