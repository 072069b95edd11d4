package block

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownBlock возвращается, если имя блока не найдено в реестре
var ErrUnknownBlock = errors.New("unknown block type")

// BlockID представляет идентификатор блока
type BlockID uint16

// Константы ID блоков
const (
	// Базовые типы блоков
	AirBlockID         BlockID = iota // 0
	StoneBlockID                      // 1
	GrassBlockID                      // 2
	WaterBlockID                      // 3
	SandBlockID                       // 4
	DirtBlockID                       // 5
	BedrockBlockID                    // 6
	CobblestoneBlockID                // 7
	GravelBlockID                     // 8

	// Для возможности расширения, оставляем большие промежутки между категориями

	// Декоративные блоки (начиная с 100)
	FlowerBlockID BlockID = 100 // Мак
	TreeBlockID   BlockID = 101 // Дубовое бревно
	CactusBlockID BlockID = 102 // Кактус
	LeavesBlockID BlockID = 103 // Листва

	// Строительные блоки (начиная с 200)
	PlanksBlockID BlockID = 200
	GlassBlockID  BlockID = 201
	BrickBlockID  BlockID = 202
	WoolBlockID   BlockID = 203
)

// Info описывает зарегистрированный тип блока
type Info struct {
	ID   BlockID
	Name string // каноническое имя в верхнем регистре, например GRASS_BLOCK
	// Liquid блоки не считаются опорой для игрока
	Liquid bool
}

var (
	mu     sync.RWMutex
	byID   = make(map[BlockID]Info)
	byName = make(map[string]Info)
)

func init() {
	for _, info := range []Info{
		{ID: AirBlockID, Name: "AIR"},
		{ID: StoneBlockID, Name: "STONE"},
		{ID: GrassBlockID, Name: "GRASS_BLOCK"},
		{ID: WaterBlockID, Name: "WATER", Liquid: true},
		{ID: SandBlockID, Name: "SAND"},
		{ID: DirtBlockID, Name: "DIRT"},
		{ID: BedrockBlockID, Name: "BEDROCK"},
		{ID: CobblestoneBlockID, Name: "COBBLESTONE"},
		{ID: GravelBlockID, Name: "GRAVEL"},
		{ID: FlowerBlockID, Name: "POPPY"},
		{ID: TreeBlockID, Name: "OAK_LOG"},
		{ID: CactusBlockID, Name: "CACTUS"},
		{ID: LeavesBlockID, Name: "OAK_LEAVES"},
		{ID: PlanksBlockID, Name: "OAK_PLANKS"},
		{ID: GlassBlockID, Name: "GLASS"},
		{ID: BrickBlockID, Name: "BRICKS"},
		{ID: WoolBlockID, Name: "WHITE_WOOL"},
	} {
		if err := Register(info); err != nil {
			panic(err)
		}
	}
}

// Register добавляет тип блока в реестр. Имя приводится к верхнему регистру.
func Register(info Info) error {
	info.Name = strings.ToUpper(strings.TrimSpace(info.Name))
	if info.Name == "" {
		return fmt.Errorf("блок %d: пустое имя", info.ID)
	}

	mu.Lock()
	defer mu.Unlock()

	if existing, ok := byID[info.ID]; ok {
		return fmt.Errorf("блок %d уже зарегистрирован как %s", info.ID, existing.Name)
	}
	if existing, ok := byName[info.Name]; ok {
		return fmt.Errorf("имя %s уже занято блоком %d", info.Name, existing.ID)
	}
	byID[info.ID] = info
	byName[info.Name] = info
	return nil
}

// Get возвращает описание блока по ID
func Get(id BlockID) (Info, bool) {
	mu.RLock()
	defer mu.RUnlock()
	info, ok := byID[id]
	return info, ok
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	_, ok := Get(id)
	return ok
}

// ByName ищет блок по имени без учёта регистра ("stone", "Grass_Block").
func ByName(name string) (BlockID, error) {
	key := strings.ToUpper(strings.TrimSpace(name))

	mu.RLock()
	info, ok := byName[key]
	mu.RUnlock()

	if !ok {
		return AirBlockID, fmt.Errorf("%w: %s", ErrUnknownBlock, name)
	}
	return info.ID, nil
}

// Name возвращает каноническое имя блока или UNKNOWN(id)
func Name(id BlockID) string {
	if info, ok := Get(id); ok {
		return info.Name
	}
	return fmt.Sprintf("UNKNOWN(%d)", id)
}

// String реализует fmt.Stringer
func (id BlockID) String() string {
	return Name(id)
}

// IsAir сообщает, является ли блок пустым
func (id BlockID) IsAir() bool {
	return id == AirBlockID
}

// Names возвращает отсортированный список имён всех блоков
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
