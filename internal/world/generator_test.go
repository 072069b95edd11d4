package world

import (
	"testing"

	"github.com/annel0/blockverse-mods/internal/vec"
	"github.com/annel0/blockverse-mods/internal/world/block"
)

func TestFlatGenerator(t *testing.T) {
	chunk := NewFlatGenerator().Generate(vec.Vec2{X: 2, Z: -1})

	expect := map[int]block.BlockID{
		0: block.BedrockBlockID,
		1: block.StoneBlockID,
		4: block.DirtBlockID,
		5: block.GrassBlockID,
		6: block.AirBlockID,
	}
	for y, want := range expect {
		if got := chunk.GetBlock(vec.Vec3{X: 9, Y: y, Z: 4}); got != want {
			t.Errorf("y=%d: получено %s, ожидалось %s", y, got, want)
		}
	}
}

func TestPerlinGeneratorDeterministic(t *testing.T) {
	coords := vec.Vec2{X: 1, Z: 2}
	a := NewPerlinGenerator(99).Generate(coords)
	b := NewPerlinGenerator(99).Generate(coords)

	da, _ := a.Snapshot()
	db, _ := b.Snapshot()
	if string(da) != string(db) {
		t.Fatal("Одинаковый сид дал разные чанки")
	}
}

func TestPerlinGeneratorColumns(t *testing.T) {
	gen := NewPerlinGenerator(7)
	chunk := gen.Generate(vec.Vec2{})

	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			if got := chunk.GetBlock(vec.Vec3{X: x, Y: 0, Z: z}); got != block.BedrockBlockID {
				t.Fatalf("(%d, 0, %d): ожидался BEDROCK, получен %s", x, z, got)
			}

			h := gen.SurfaceHeight(x, z)
			if h < BaseHeight || h > BaseHeight+HeightSpan {
				t.Fatalf("Высота %d вне диапазона", h)
			}
			top := chunk.GetBlock(vec.Vec3{X: x, Y: h, Z: z})
			if top != block.GrassBlockID && top != block.SandBlockID {
				t.Errorf("(%d, %d, %d): поверхность %s", x, h, z, top)
			}
			if top == block.SandBlockID && h < SeaLevel {
				if got := chunk.GetBlock(vec.Vec3{X: x, Y: SeaLevel, Z: z}); got != block.WaterBlockID {
					t.Errorf("(%d, %d): ожидалась вода на уровне моря, получено %s", x, z, got)
				}
			}
		}
	}
}
