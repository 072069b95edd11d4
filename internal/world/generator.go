package world

import (
	"math/rand"

	"github.com/annel0/blockverse-mods/internal/util"
	"github.com/annel0/blockverse-mods/internal/vec"
	"github.com/annel0/blockverse-mods/internal/world/block"
)

// Generator создаёт содержимое новых чанков
type Generator interface {
	Generate(coords vec.Vec2) *Chunk
}

// Константы высот для генерации
const (
	SeaLevel   = 62 // уровень моря
	BaseHeight = 48 // минимальная высота поверхности
	HeightSpan = 40 // разброс высоты поверхности
	DirtDepth  = 3  // толщина слоя земли под поверхностью
)

// PerlinGenerator генерирует ландшафт по карте высот из шума Перлина
type PerlinGenerator struct {
	Seed        int64   // Сид для генерации шума
	NoiseScale  float64 // Масштаб основного шума (высота)
	TreeDensity float64 // Вероятность дерева на блоке травы (от 0 до 1)

	noise *util.Noise
}

// NewPerlinGenerator создаёт новый генератор мира
func NewPerlinGenerator(seed int64) *PerlinGenerator {
	return &PerlinGenerator{
		Seed:        seed,
		NoiseScale:  0.02, // Настройка сглаженности ландшафта
		TreeDensity: 0.01,
		noise:       util.NewNoise(seed),
	}
}

// SurfaceHeight возвращает высоту поверхности в мировых координатах x, z
func (g *PerlinGenerator) SurfaceHeight(x, z int) int {
	n := g.noise.At(float64(x)*g.NoiseScale, float64(z)*g.NoiseScale)
	return BaseHeight + int(n*HeightSpan)
}

// Generate генерирует чанк по его координатам
func (g *PerlinGenerator) Generate(coords vec.Vec2) *Chunk {
	chunk := NewChunk(coords)

	// Для каждого чанка создаем уникальный сид на основе глобального сида и координат
	chunkSeed := g.Seed + int64(coords.X*31) + int64(coords.Z*17)
	rng := rand.New(rand.NewSource(chunkSeed))

	origin := coords.Origin()
	for z := 0; z < ChunkSize; z++ {
		for x := 0; x < ChunkSize; x++ {
			height := g.SurfaceHeight(origin.X+x, origin.Z+z)
			g.fillColumn(chunk, x, z, height, rng)
		}
	}
	return chunk
}

func (g *PerlinGenerator) fillColumn(c *Chunk, x, z, height int, rng *rand.Rand) {
	set := func(y int, id block.BlockID) {
		c.blocks[index(vec.Vec3{X: x, Y: y, Z: z})] = id
	}

	set(0, block.BedrockBlockID)
	for y := 1; y < height-DirtDepth; y++ {
		set(y, block.StoneBlockID)
	}
	for y := height - DirtDepth; y < height; y++ {
		set(y, block.DirtBlockID)
	}

	// Песок у воды, трава выше
	if height <= SeaLevel+1 {
		set(height, block.SandBlockID)
		for y := height + 1; y <= SeaLevel; y++ {
			set(y, block.WaterBlockID)
		}
		return
	}
	set(height, block.GrassBlockID)

	if rng.Float64() < g.TreeDensity {
		trunk := 4 + rng.Intn(2) // Высота ствола 4-5 блоков
		for y := height + 1; y <= height+trunk && y <= MaxY; y++ {
			set(y, block.TreeBlockID)
		}
	}
}

// FlatGenerator заполняет чанк одинаковыми горизонтальными слоями.
// Layers[y] задаёт блок на высоте y, выше последнего слоя: воздух.
type FlatGenerator struct {
	Layers []block.BlockID
}

// NewFlatGenerator возвращает плоский мир: бедрок, три слоя камня, земля и трава (поверхность на y=5)
func NewFlatGenerator() *FlatGenerator {
	return &FlatGenerator{Layers: []block.BlockID{
		block.BedrockBlockID,
		block.StoneBlockID,
		block.StoneBlockID,
		block.StoneBlockID,
		block.DirtBlockID,
		block.GrassBlockID,
	}}
}

// Generate генерирует чанк по его координатам
func (g *FlatGenerator) Generate(coords vec.Vec2) *Chunk {
	chunk := NewChunk(coords)
	for y, id := range g.Layers {
		if y > MaxY {
			break
		}
		chunk.fillLayer(y, id)
	}
	return chunk
}
