package vec

import "testing"

func TestChunkCoordsNegative(t *testing.T) {
	cases := []struct {
		pos  Vec3
		want Vec2
	}{
		{Vec3{X: 0, Y: 64, Z: 0}, Vec2{X: 0, Z: 0}},
		{Vec3{X: 15, Y: 64, Z: 15}, Vec2{X: 0, Z: 0}},
		{Vec3{X: 16, Y: 64, Z: -1}, Vec2{X: 1, Z: -1}},
		{Vec3{X: -16, Y: 0, Z: -17}, Vec2{X: -1, Z: -2}},
	}

	for _, c := range cases {
		if got := c.pos.ChunkCoords(); got != c.want {
			t.Errorf("ChunkCoords(%v): ожидалось %v, получено %v", c.pos, c.want, got)
		}
	}
}

func TestLocalInChunk(t *testing.T) {
	local := Vec3{X: -1, Y: 70, Z: 33}.LocalInChunk()
	if local != (Vec3{X: 15, Y: 70, Z: 1}) {
		t.Errorf("Неверные локальные координаты: %v", local)
	}
}

func TestOriginAndContains(t *testing.T) {
	c := Vec2{X: -2, Z: 3}
	origin := c.Origin()
	if origin != (Vec3{X: -32, Y: 0, Z: 48}) {
		t.Errorf("Неверный origin: %v", origin)
	}
	if !c.Contains(Vec3{X: -17, Y: 10, Z: 63}) {
		t.Error("Позиция должна принадлежать чанку")
	}
	if c.Contains(Vec3{X: -16, Y: 10, Z: 63}) {
		t.Error("Позиция не должна принадлежать чанку")
	}
}
