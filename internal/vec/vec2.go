package vec

import "fmt"

// Vec2 представляет координаты на горизонтальной плоскости (X, Z).
// Используется в основном как координаты чанка.
type Vec2 struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// Origin возвращает мировые координаты северо-западного угла чанка на высоте 0
func (v Vec2) Origin() Vec3 {
	return Vec3{X: v.X << 4, Y: 0, Z: v.Z << 4} // Умножение на 16
}

// Contains проверяет, попадает ли мировая позиция в колонку этого чанка
func (v Vec2) Contains(pos Vec3) bool {
	return pos.ChunkCoords() == v
}

// String возвращает строковое представление координат
func (v Vec2) String() string {
	return fmt.Sprintf("[%d, %d]", v.X, v.Z)
}
