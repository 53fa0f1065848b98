package manifest

// 文档清单：Markdown 等无版式前端用 TOML 描述页面几何、元信息、
// 字体与样式表，排版语义仍由 layout 包承担。

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/latedeployment/vellum/layout"
)

// Manifest 是清单文件的顶层结构。
type Manifest struct {
	Page   Page             `toml:"page"`
	Meta   Meta             `toml:"meta"`
	Fonts  map[string]Font  `toml:"fonts"`
	Styles map[string]Style `toml:"styles"`
}

// Page 描述页面几何。Size 为预设名（a4/a5/letter），
// Width/Height 可覆盖预设，Margin 为 1~4 个值的简写。
type Page struct {
	Size        string   `toml:"size"`
	Orientation string   `toml:"orientation"`
	Width       string   `toml:"width"`
	Height      string   `toml:"height"`
	Margin      []string `toml:"margin"`
}

// Meta 描述 PDF 文档信息。
type Meta struct {
	Title    string `toml:"title"`
	Author   string `toml:"author"`
	Subject  string `toml:"subject"`
	Creator  string `toml:"creator"`
	Keywords string `toml:"keywords"`
}

// Font 声明一个字体来源。
type Font struct {
	Src string `toml:"src"`
}

// Style 声明一个样式，所有字段可选，缺省继承父样式。
type Style struct {
	Extends     string   `toml:"extends"`
	Font        string   `toml:"font"`
	Size        string   `toml:"size"`
	Leading     string   `toml:"leading"`
	SpaceBefore string   `toml:"space-before"`
	SpaceAfter  string   `toml:"space-after"`
	Align       string   `toml:"align"`
	Color       string   `toml:"color"`
	Background  string   `toml:"background"`
	Padding     []string `toml:"padding"`
	BorderWidth string   `toml:"border-width"`
	BorderColor string   `toml:"border-color"`
}

// Load 从文件读取清单。
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取清单 %s 失败: %w", path, err)
	}
	return Parse(data)
}

// Parse 解析清单内容。
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("解析清单失败: %w", err)
	}
	return &m, nil
}

// Geometry 把页面配置换算为毫米几何。未配置时退回 letter 纵向、四边 0.75in。
func (m *Manifest) Geometry() (layout.Geometry, error) {
	size := m.Page.Size
	if size == "" {
		size = "letter"
	}
	landscape := false
	switch m.Page.Orientation {
	case "", "portrait":
	case "landscape":
		landscape = true
	default:
		return layout.Geometry{}, fmt.Errorf("未知的页面方向 %q", m.Page.Orientation)
	}
	w, h, ok := layout.PageSize(size, landscape)
	if !ok {
		return layout.Geometry{}, fmt.Errorf("未知的页面尺寸预设 %q", size)
	}
	geo := layout.Geometry{
		Width:  w,
		Height: h,
		Margin: layout.Margin{Top: 19.05, Right: 19.05, Bottom: 19.05, Left: 19.05},
	}
	if m.Page.Width != "" {
		geo.Width = layout.ParseLength(m.Page.Width)
	}
	if m.Page.Height != "" {
		geo.Height = layout.ParseLength(m.Page.Height)
	}
	if len(m.Page.Margin) > 0 {
		margin, err := marginShorthand(m.Page.Margin)
		if err != nil {
			return layout.Geometry{}, err
		}
		geo.Margin = margin
	}
	if geo.ContentWidth() <= 0 || geo.ContentHeight() <= 0 {
		return layout.Geometry{}, fmt.Errorf("页面几何不合法：内容区为 %.2f×%.2fmm", geo.ContentWidth(), geo.ContentHeight())
	}
	return geo, nil
}

func marginShorthand(values []string) (layout.Margin, error) {
	mm := make([]float64, len(values))
	for i, v := range values {
		mm[i] = layout.ParseLength(v)
	}
	switch len(mm) {
	case 1:
		return layout.Margin{Top: mm[0], Right: mm[0], Bottom: mm[0], Left: mm[0]}, nil
	case 2:
		return layout.Margin{Top: mm[0], Right: mm[1], Bottom: mm[0], Left: mm[1]}, nil
	case 3:
		return layout.Margin{Top: mm[0], Right: mm[1], Bottom: mm[2], Left: mm[1]}, nil
	case 4:
		return layout.Margin{Top: mm[0], Right: mm[1], Bottom: mm[2], Left: mm[3]}, nil
	default:
		return layout.Margin{}, fmt.Errorf("margin 简写最多 4 个值，收到 %d 个", len(mm))
	}
}

// DocumentMeta 转换为排版层的文档信息。
func (m *Manifest) DocumentMeta() layout.Meta {
	return layout.Meta{
		Title:    m.Meta.Title,
		Author:   m.Meta.Author,
		Subject:  m.Meta.Subject,
		Creator:  m.Meta.Creator,
		Keywords: m.Meta.Keywords,
	}
}

// FontPaths 返回 字体名 → 文件路径 的映射。
func (m *Manifest) FontPaths() map[string]string {
	paths := make(map[string]string, len(m.Fonts))
	for name, font := range m.Fonts {
		if font.Src != "" {
			paths[name] = font.Src
		}
	}
	return paths
}

// StyleSheet 在默认样式表之上叠加清单声明的样式。
func (m *Manifest) StyleSheet() (layout.StyleSheet, error) {
	sheet := layout.DefaultStyles()
	for name, s := range m.Styles {
		overrides, err := s.overrides()
		if err != nil {
			return nil, fmt.Errorf("样式 %s: %w", name, err)
		}
		sheet.Add(layout.StyleDefinition{
			Name:           name,
			Parent:         s.Extends,
			StyleOverrides: overrides,
		})
	}
	if err := layout.NewResolver(sheet).Validate(); err != nil {
		return nil, err
	}
	return sheet, nil
}

func (s Style) overrides() (layout.StyleOverrides, error) {
	var o layout.StyleOverrides
	if s.Font != "" {
		f := s.Font
		o.Font = &f
	}
	if s.Size != "" {
		v := layout.ParseLength(s.Size)
		o.Size = &v
	}
	if s.Leading != "" {
		v := layout.ParseLength(s.Leading)
		o.Leading = &v
	}
	if s.SpaceBefore != "" {
		v := layout.ParseLength(s.SpaceBefore)
		o.SpaceBefore = &v
	}
	if s.SpaceAfter != "" {
		v := layout.ParseLength(s.SpaceAfter)
		o.SpaceAfter = &v
	}
	if s.Align != "" {
		al, ok := layout.ParseAlignment(s.Align)
		if !ok {
			return o, fmt.Errorf("未知的对齐方式 %q", s.Align)
		}
		o.Align = &al
	}
	if s.Color != "" {
		col, ok := layout.ParseColor(s.Color)
		if !ok {
			return o, fmt.Errorf("非法的颜色 %q", s.Color)
		}
		o.TextColor = &col
	}
	if s.Background != "" {
		col, ok := layout.ParseColor(s.Background)
		if !ok {
			return o, fmt.Errorf("非法的底色 %q", s.Background)
		}
		o.BackgroundColor = &col
	}
	if len(s.Padding) > 0 {
		mm := make([]float64, len(s.Padding))
		for i, v := range s.Padding {
			mm[i] = layout.ParseLength(v)
		}
		var p layout.Padding
		switch len(mm) {
		case 1:
			p = layout.Padding{Top: mm[0], Right: mm[0], Bottom: mm[0], Left: mm[0]}
		case 2:
			p = layout.Padding{Top: mm[0], Right: mm[1], Bottom: mm[0], Left: mm[1]}
		case 3:
			p = layout.Padding{Top: mm[0], Right: mm[1], Bottom: mm[2], Left: mm[1]}
		case 4:
			p = layout.Padding{Top: mm[0], Right: mm[1], Bottom: mm[2], Left: mm[3]}
		default:
			return o, fmt.Errorf("padding 简写最多 4 个值，收到 %d 个", len(mm))
		}
		o.Padding = &p
	}
	if s.BorderWidth != "" || s.BorderColor != "" {
		b := &layout.Border{}
		if s.BorderWidth != "" {
			b.Width = layout.ParseLength(s.BorderWidth)
		}
		if s.BorderColor != "" {
			col, ok := layout.ParseColor(s.BorderColor)
			if !ok {
				return o, fmt.Errorf("非法的边框颜色 %q", s.BorderColor)
			}
			b.Color = col
		}
		o.Border = b
	}
	return o, nil
}
