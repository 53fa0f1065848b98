package layout

import (
	"fmt"
	"strings"
)

// 样式解析：具名样式定义 + 父样式继承链 + 调用点覆盖 → 生效样式。
// 解析过程无副作用，结果按 (样式名, 覆盖指纹) 缓存，缓存生命周期为一次文档构建。

// StyleOverrides 是一组可选的样式属性；非空指针字段覆盖下层取值。
type StyleOverrides struct {
	Font            *string    `json:"font,omitempty"`
	Size            *float64   `json:"size,omitempty"`    // 字号（mm）
	Leading         *float64   `json:"leading,omitempty"` // 行高（mm）
	Align           *Alignment `json:"align,omitempty"`
	TextColor       *Color     `json:"textColor,omitempty"`
	BackgroundColor *Color     `json:"backgroundColor,omitempty"`
	Padding         *Padding   `json:"padding,omitempty"`
	Border          *Border    `json:"border,omitempty"`
	SpaceBefore     *float64   `json:"spaceBefore,omitempty"`
	SpaceAfter      *float64   `json:"spaceAfter,omitempty"`
}

// StyleDefinition 是一条具名样式定义；Parent 非空时先并入父样式再叠加本层属性。
type StyleDefinition struct {
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
	StyleOverrides
}

// EffectiveStyle 是继承链完全合并后的生效样式，所有属性均为具体值。
type EffectiveStyle struct {
	Font            string    `json:"font"`
	Size            float64   `json:"size"`
	Leading         float64   `json:"leading"`
	Align           Alignment `json:"align"`
	TextColor       Color     `json:"textColor"`
	BackgroundColor *Color    `json:"backgroundColor,omitempty"` // 为空表示无底色
	Padding         Padding   `json:"padding"`
	Border          Border    `json:"border"`
	SpaceBefore     float64   `json:"spaceBefore"`
	SpaceAfter      float64   `json:"spaceAfter"`
}

// StyleSheet 是名字到样式定义的映射。
type StyleSheet map[string]StyleDefinition

// Add 写入一条定义，名字取自定义本身。
func (s StyleSheet) Add(def StyleDefinition) { s[def.Name] = def }

// Resolver 在一次文档构建内解析并缓存生效样式。
// 缓存逐键只写一次，单次构建内串行使用。
type Resolver struct {
	sheet StyleSheet
	cache map[string]EffectiveStyle
}

// NewResolver 基于给定样式表创建解析器。
func NewResolver(sheet StyleSheet) *Resolver {
	return &Resolver{
		sheet: sheet,
		cache: map[string]EffectiveStyle{},
	}
}

// Resolve 解析样式名为生效样式：自根向下合并祖先链，再叠加 overrides。
// 未定义的名字返回 UnknownStyleError，继承链成环返回 CyclicStyleError。
func (r *Resolver) Resolve(name string, overrides *StyleOverrides) (EffectiveStyle, error) {
	if name == "" {
		name = StyleNormal
	}
	key := name + "\x00" + overrideKey(overrides)
	if es, ok := r.cache[key]; ok {
		return es, nil
	}

	chain, err := r.ancestry(name)
	if err != nil {
		return EffectiveStyle{}, err
	}

	es := baseStyle()
	// chain 根在前、最具体的在后，逐层叠加。
	for _, def := range chain {
		applyOverrides(&es, def.StyleOverrides)
	}
	if overrides != nil {
		applyOverrides(&es, *overrides)
	}
	if es.Leading <= 0 {
		es.Leading = es.Size * defaultLeadingFactor
	}

	r.cache[key] = es
	return es, nil
}

// ancestry 迭代回溯父链并倒序返回（根在前）；用 visited 集检测环。
func (r *Resolver) ancestry(name string) ([]StyleDefinition, error) {
	var chain []StyleDefinition
	visited := map[string]bool{}
	for cur := name; cur != ""; {
		if visited[cur] {
			return nil, &CyclicStyleError{Name: cur}
		}
		visited[cur] = true
		def, ok := r.sheet[cur]
		if !ok {
			return nil, &UnknownStyleError{Name: cur}
		}
		chain = append(chain, def)
		cur = def.Parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Validate 预先解析样式表中的全部名字，让坏引用在布局开始前暴露。
func (r *Resolver) Validate() error {
	for name := range r.sheet {
		if _, err := r.Resolve(name, nil); err != nil {
			return fmt.Errorf("校验样式表失败: %w", err)
		}
	}
	return nil
}

func applyOverrides(es *EffectiveStyle, o StyleOverrides) {
	if o.Font != nil {
		es.Font = *o.Font
	}
	if o.Size != nil {
		es.Size = *o.Size
	}
	if o.Leading != nil {
		es.Leading = *o.Leading
	}
	if o.Align != nil {
		es.Align = *o.Align
	}
	if o.TextColor != nil {
		es.TextColor = *o.TextColor
	}
	if o.BackgroundColor != nil {
		c := *o.BackgroundColor
		es.BackgroundColor = &c
	}
	if o.Padding != nil {
		es.Padding = *o.Padding
	}
	if o.Border != nil {
		es.Border = *o.Border
	}
	if o.SpaceBefore != nil {
		es.SpaceBefore = *o.SpaceBefore
	}
	if o.SpaceAfter != nil {
		es.SpaceAfter = *o.SpaceAfter
	}
}

// overrideKey 生成覆盖集的缓存指纹；覆盖为空时返回空串。
func overrideKey(o *StyleOverrides) string {
	if o == nil {
		return ""
	}
	var b strings.Builder
	if o.Font != nil {
		fmt.Fprintf(&b, "f=%s;", *o.Font)
	}
	if o.Size != nil {
		fmt.Fprintf(&b, "s=%g;", *o.Size)
	}
	if o.Leading != nil {
		fmt.Fprintf(&b, "l=%g;", *o.Leading)
	}
	if o.Align != nil {
		fmt.Fprintf(&b, "a=%d;", *o.Align)
	}
	if o.TextColor != nil {
		fmt.Fprintf(&b, "tc=%v;", *o.TextColor)
	}
	if o.BackgroundColor != nil {
		fmt.Fprintf(&b, "bg=%v;", *o.BackgroundColor)
	}
	if o.Padding != nil {
		fmt.Fprintf(&b, "p=%v;", *o.Padding)
	}
	if o.Border != nil {
		fmt.Fprintf(&b, "bd=%v;", *o.Border)
	}
	if o.SpaceBefore != nil {
		fmt.Fprintf(&b, "sb=%g;", *o.SpaceBefore)
	}
	if o.SpaceAfter != nil {
		fmt.Fprintf(&b, "sa=%g;", *o.SpaceAfter)
	}
	return b.String()
}

const (
	defaultLeadingFactor = 1.4
	defaultFontName      = "Body"
)

// 常用样式名。
const (
	StyleNormal   = "Normal"
	StyleBodyText = "BodyText"
	StyleTitle    = "Title"
	StyleHeading1 = "Heading1"
	StyleHeading2 = "Heading2"
	StyleHeading3 = "Heading3"
	StyleSubtitle  = "Subtitle"
	StyleFooter    = "Footer"
	StyleHighlight = "Highlight"
)

// baseStyle 是继承链之下的兜底取值（相当于隐式根样式）。
func baseStyle() EffectiveStyle {
	return EffectiveStyle{
		Font:      defaultFontName,
		Size:      12 * PtToMm,
		Align:     AlignStart,
		TextColor: Color{R: 30, G: 30, B: 30},
	}
}

// DefaultStyles 返回内置样式表：正文、标题层级、副标题与页脚。
// 数值取常见公文排版习惯，调用方可整体替换或逐条覆盖。
func DefaultStyles() StyleSheet {
	sheet := StyleSheet{}
	sheet.Add(StyleDefinition{Name: StyleNormal})
	sheet.Add(StyleDefinition{
		Name:   StyleBodyText,
		Parent: StyleNormal,
		StyleOverrides: StyleOverrides{
			Size:       ptr(11 * PtToMm),
			Leading:    ptr(14 * PtToMm),
			SpaceAfter: ptr(10 * PtToMm),
		},
	})
	sheet.Add(StyleDefinition{
		Name:   StyleTitle,
		Parent: StyleNormal,
		StyleOverrides: StyleOverrides{
			Size:       ptr(28 * PtToMm),
			Align:      alignPtr(AlignCenter),
			SpaceAfter: ptr(6 * PtToMm),
		},
	})
	sheet.Add(StyleDefinition{
		Name:   StyleHeading1,
		Parent: StyleNormal,
		StyleOverrides: StyleOverrides{
			Size:        ptr(18 * PtToMm),
			SpaceBefore: ptr(22 * PtToMm),
			SpaceAfter:  ptr(12 * PtToMm),
		},
	})
	sheet.Add(StyleDefinition{
		Name:   StyleHeading2,
		Parent: StyleHeading1,
		StyleOverrides: StyleOverrides{
			Size:        ptr(16 * PtToMm),
			SpaceBefore: ptr(20 * PtToMm),
		},
	})
	sheet.Add(StyleDefinition{
		Name:   StyleHeading3,
		Parent: StyleHeading1,
		StyleOverrides: StyleOverrides{
			Size:        ptr(13 * PtToMm),
			SpaceBefore: ptr(15 * PtToMm),
			SpaceAfter:  ptr(8 * PtToMm),
		},
	})
	sheet.Add(StyleDefinition{
		Name:   StyleSubtitle,
		Parent: StyleNormal,
		StyleOverrides: StyleOverrides{
			Size:       ptr(14 * PtToMm),
			Align:      alignPtr(AlignCenter),
			TextColor:  &Color{R: 74, G: 85, B: 104},
			SpaceAfter: ptr(30 * PtToMm),
		},
	})
	sheet.Add(StyleDefinition{
		Name:   StyleFooter,
		Parent: StyleNormal,
		StyleOverrides: StyleOverrides{
			Size:      ptr(8 * PtToMm),
			Align:     alignPtr(AlignCenter),
			TextColor: &Color{R: 113, G: 128, B: 150},
		},
	})
	sheet.Add(StyleDefinition{
		Name:   StyleHighlight,
		Parent: StyleNormal,
		StyleOverrides: StyleOverrides{
			Size:            ptr(11 * PtToMm),
			Align:           alignPtr(AlignCenter),
			TextColor:       &Color{R: 44, G: 82, B: 130},
			BackgroundColor: &Color{R: 235, G: 248, B: 255},
			Padding:         &Padding{Top: 10 * PtToMm, Right: 10 * PtToMm, Bottom: 10 * PtToMm, Left: 10 * PtToMm},
			SpaceBefore:     ptr(15 * PtToMm),
			SpaceAfter:      ptr(15 * PtToMm),
		},
	})
	return sheet
}

func ptr(v float64) *float64 { return &v }
func alignPtr(a Alignment) *Alignment { return &a }
