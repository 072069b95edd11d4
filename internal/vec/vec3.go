package vec

import "fmt"

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Y: вертикальная ось.
type Vec3 struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// ChunkCoords преобразует мировые координаты в координаты чанка
func (v Vec3) ChunkCoords() Vec2 {
	return Vec2{X: v.X >> 4, Z: v.Z >> 4} // Деление на 16 с округлением вниз
}

// LocalInChunk возвращает локальные координаты внутри чанка (Y не меняется)
func (v Vec3) LocalInChunk() Vec3 {
	return Vec3{X: v.X & 0xF, Y: v.Y, Z: v.Z & 0xF} // Модуль 16
}

// String возвращает координаты в виде "x, y, z"
func (v Vec3) String() string {
	return fmt.Sprintf("%d, %d, %d", v.X, v.Y, v.Z)
}
