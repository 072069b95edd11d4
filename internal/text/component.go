// Package text описывает цветные текстовые компоненты чата.
package text

import (
	"strings"

	"github.com/fatih/color"
)

// Color именованный цвет чата
type Color int

const (
	NoColor Color = iota // наследуется от родителя
	Black
	DarkBlue
	DarkGreen
	DarkAqua
	DarkRed
	DarkPurple
	Gold
	Gray
	DarkGray
	Blue
	Green
	Aqua
	Red
	LightPurple
	Yellow
	White
)

var colorNames = map[Color]string{
	NoColor:     "none",
	Black:       "black",
	DarkBlue:    "dark_blue",
	DarkGreen:   "dark_green",
	DarkAqua:    "dark_aqua",
	DarkRed:     "dark_red",
	DarkPurple:  "dark_purple",
	Gold:        "gold",
	Gray:        "gray",
	DarkGray:    "dark_gray",
	Blue:        "blue",
	Green:       "green",
	Aqua:        "aqua",
	Red:         "red",
	LightPurple: "light_purple",
	Yellow:      "yellow",
	White:       "white",
}

// ansiColors сопоставляет цвета чата с атрибутами терминала
var ansiColors = map[Color]color.Attribute{
	Black:       color.FgBlack,
	DarkBlue:    color.FgBlue,
	DarkGreen:   color.FgGreen,
	DarkAqua:    color.FgCyan,
	DarkRed:     color.FgRed,
	DarkPurple:  color.FgMagenta,
	Gold:        color.FgYellow,
	Gray:        color.FgWhite,
	DarkGray:    color.FgHiBlack,
	Blue:        color.FgHiBlue,
	Green:       color.FgHiGreen,
	Aqua:        color.FgHiCyan,
	Red:         color.FgHiRed,
	LightPurple: color.FgHiMagenta,
	Yellow:      color.FgHiYellow,
	White:       color.FgHiWhite,
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return "unknown"
}

// Component фрагмент текста со стилем и дочерними фрагментами.
// Дочерние компоненты наследуют цвет и жирность родителя, если не заданы свои.
type Component struct {
	Content  string
	Color    Color
	Bold     bool
	Children []Component
}

// Of создаёт компонент без стиля
func Of(content string) Component {
	return Component{Content: content}
}

// Colored создаёт компонент указанного цвета
func Colored(content string, c Color) Component {
	return Component{Content: content, Color: c}
}

// WithColor возвращает копию с новым цветом
func (c Component) WithColor(col Color) Component {
	c.Color = col
	return c
}

// Bolded возвращает копию с жирным начертанием
func (c Component) Bolded() Component {
	c.Bold = true
	return c
}

// Append возвращает копию с добавленными дочерними компонентами
func (c Component) Append(children ...Component) Component {
	merged := make([]Component, 0, len(c.Children)+len(children))
	merged = append(merged, c.Children...)
	c.Children = append(merged, children...)
	return c
}

// IsEmpty сообщает, что компонент не содержит текста
func (c Component) IsEmpty() bool {
	return c.Plain() == ""
}

// Plain возвращает текст без форматирования
func (c Component) Plain() string {
	var sb strings.Builder
	c.walk(NoColor, false, func(s string, _ Color, _ bool) {
		sb.WriteString(s)
	})
	return sb.String()
}

// ANSI рендерит компонент escape-последовательностями терминала.
// Цвет включается принудительно, независимо от color.NoColor.
func (c Component) ANSI() string {
	var sb strings.Builder
	c.walk(NoColor, false, func(s string, col Color, bold bool) {
		var attrs []color.Attribute
		if a, ok := ansiColors[col]; ok {
			attrs = append(attrs, a)
		}
		if bold {
			attrs = append(attrs, color.Bold)
		}
		if len(attrs) == 0 {
			sb.WriteString(s)
			return
		}
		p := color.New(attrs...)
		p.EnableColor()
		sb.WriteString(p.Sprint(s))
	})
	return sb.String()
}

// Spans возвращает плоский список фрагментов с итоговым стилем
func (c Component) Spans() []Component {
	var out []Component
	c.walk(NoColor, false, func(s string, col Color, bold bool) {
		out = append(out, Component{Content: s, Color: col, Bold: bold})
	})
	return out
}

func (c Component) String() string {
	return c.Plain()
}

func (c Component) walk(parent Color, parentBold bool, fn func(s string, col Color, bold bool)) {
	col := c.Color
	if col == NoColor {
		col = parent
	}
	bold := c.Bold || parentBold
	if c.Content != "" {
		fn(c.Content, col, bold)
	}
	for _, child := range c.Children {
		child.walk(col, bold, fn)
	}
}
