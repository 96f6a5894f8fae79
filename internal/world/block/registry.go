package block

import (
	"fmt"
	"sort"
	"strings"
)

// ID представляет идентификатор блока. Набор блоков закрытый.
type ID uint16

// Константы ID блоков
const (
	Air ID = iota // 0
	Dirt
	Grass
	Stone
	Sand
	Gravel
	Granite
	Snow
	Ice
	Water
	Clay

	// Растительность (начиная с 100)
	Wood   ID = 100
	Leaves ID = 101
	Cactus ID = 102

	// Ресурсы и рукотворные блоки (начиная с 200)
	Coal    ID = 200
	Planks  ID = 201
	Furnace ID = 202
)

// Info - статические свойства вида блока
type Info struct {
	Name  string
	Solid bool
	// Fuel - блок можно сжечь в печи
	Fuel bool
}

var (
	registry = make(map[ID]Info)
	byName   = make(map[string]ID)
)

func init() {
	Register(Air, Info{Name: "air"})
	Register(Dirt, Info{Name: "dirt", Solid: true})
	Register(Grass, Info{Name: "grass", Solid: true})
	Register(Stone, Info{Name: "stone", Solid: true})
	Register(Sand, Info{Name: "sand", Solid: true})
	Register(Gravel, Info{Name: "gravel", Solid: true})
	Register(Granite, Info{Name: "granite", Solid: true})
	Register(Snow, Info{Name: "snow", Solid: true})
	Register(Ice, Info{Name: "ice", Solid: true})
	Register(Water, Info{Name: "water"})
	Register(Clay, Info{Name: "clay", Solid: true})
	Register(Wood, Info{Name: "wood", Solid: true, Fuel: true})
	Register(Leaves, Info{Name: "leaves", Solid: true})
	Register(Cactus, Info{Name: "cactus", Solid: true})
	Register(Coal, Info{Name: "coal", Solid: true, Fuel: true})
	Register(Planks, Info{Name: "planks", Solid: true, Fuel: true})
	Register(Furnace, Info{Name: "furnace", Solid: true})
}

// Register добавляет описание блока в регистр. Вызывается только из init.
func Register(id ID, info Info) {
	registry[id] = info
	byName[info.Name] = id
}

// Get возвращает описание для указанного ID
func Get(id ID) (Info, bool) {
	info, ok := registry[id]
	return info, ok
}

// IsValid проверяет, является ли ID допустимым идентификатором блока
func IsValid(id ID) bool {
	_, ok := registry[id]
	return ok
}

// Parse находит блок по имени без учёта регистра
func Parse(name string) (ID, error) {
	id, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Air, fmt.Errorf("неизвестный блок %q", name)
	}
	return id, nil
}

// All возвращает все зарегистрированные ID по возрастанию
func All() []ID {
	ids := make([]ID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (id ID) String() string {
	if info, ok := registry[id]; ok {
		return info.Name
	}
	return fmt.Sprintf("block(%d)", uint16(id))
}

// IsSolid сообщает, непрозрачен ли блок для построения меша
func (id ID) IsSolid() bool {
	return registry[id].Solid
}

// IsFuel сообщает, горит ли блок в печи
func (id ID) IsFuel() bool {
	return registry[id].Fuel
}
