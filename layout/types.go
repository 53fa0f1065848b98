package layout

import "strings"

// 该文件定义内容元素、页面几何与布局结果，供分页计算、渲染与调试 JSON 共用。
// 所有长度单位均为毫米（mm）。

// Element 表示参与纵向排版的内容元素（flowable）。
// 元素一经构造即视为不可变，由文档序列独占持有。
type Element interface {
	element()
}

// Paragraph 是一段按样式折行排版的文本。
type Paragraph struct {
	Text      string          `json:"text"`
	Style     string          `json:"style"`               // 样式名，空时取 "Normal"
	Overrides *StyleOverrides `json:"overrides,omitempty"` // 调用点覆盖，可为空
}

// Spacer 在流中占用固定高度的空白。
type Spacer struct {
	Height float64 `json:"height"`
}

// PageBreak 强制换页。
type PageBreak struct{}

// Rule 是一条水平分隔线，宽度按内容区宽度的比例给出。
type Rule struct {
	Width     float64 `json:"width"` // 内容区宽度的比例 (0,1]；<=0 视为 1
	Thickness float64 `json:"thickness"`
	Color     Color   `json:"color"`
}

// Table 是一个二维单元格网格，带列宽提示与按区间声明的样式规则。
type Table struct {
	Rows         [][]string      `json:"rows"`
	ColumnWidths []float64       `json:"columnWidths,omitempty"` // 列宽提示（mm），可为空
	Style        string          `json:"style"`                  // 基础样式名，空时取 "Normal"
	Rules        []CellStyleRule `json:"rules,omitempty"`
	HeaderRows   int             `json:"headerRows"`   // 前 N 行视为表头
	RepeatHeader bool            `json:"repeatHeader"` // 跨页拆分时在后续分片重复表头行
}

func (*Paragraph) element() {}
func (*Spacer) element()    {}
func (*PageBreak) element() {}
func (*Rule) element()      {}
func (*Table) element()     {}

// CellStyleRule 按行列区间（含端点，0 起始，-1 表示最后一行/列）覆盖单元格样式。
// 规则按声明顺序叠加，重叠区间内逐属性后写覆盖先写。
type CellStyleRule struct {
	FromRow int `json:"fromRow"`
	ToRow   int `json:"toRow"`
	FromCol int `json:"fromCol"`
	ToCol   int `json:"toCol"`
	// Set 中非空的属性覆盖该区间内已有的取值。
	Set StyleOverrides `json:"set"`
	// RowBackgrounds 非空时在区间内按行轮换背景色（交替行底色）。
	RowBackgrounds []Color `json:"rowBackgrounds,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Padding 描述四边内边距。
type Padding struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Border 描述边框；Width 为 0 时不绘制。
type Border struct {
	Width float64 `json:"width"`
	Color Color   `json:"color"`
}

// Alignment 表示水平对齐方式。
type Alignment int

const (
	AlignStart Alignment = iota
	AlignCenter
	AlignEnd
	AlignJustify
)

// String returns the canonical keyword for the alignment.
func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignEnd:
		return "end"
	case AlignJustify:
		return "justify"
	default:
		return "start"
	}
}

// ParseAlignment 解析对齐关键字，接受 left/right 作为 start/end 的别名。
func ParseAlignment(s string) (Alignment, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start", "left":
		return AlignStart, true
	case "center", "middle":
		return AlignCenter, true
	case "end", "right":
		return AlignEnd, true
	case "justify":
		return AlignJustify, true
	default:
		return AlignStart, false
	}
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Geometry 描述固定的页面尺寸与四边边距；内容区 = 页面减去边距。
type Geometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Margin Margin  `json:"margin"`
}

// ContentWidth 返回内容区宽度。
func (g Geometry) ContentWidth() float64 { return g.Width - g.Margin.Left - g.Margin.Right }

// ContentHeight 返回内容区高度。
func (g Geometry) ContentHeight() float64 { return g.Height - g.Margin.Top - g.Margin.Bottom }

var pagePresets = map[string][2]float64{
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
}

// PageSize 返回纸张预设的宽高（mm）。landscape 为 true 时交换宽高。
func PageSize(name string, landscape bool) (float64, float64, bool) {
	base, ok := pagePresets[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, 0, false
	}
	w, h := base[0], base[1]
	if landscape {
		w, h = h, w
	}
	return w, h, true
}

// LineBox 表示折行后的一行文本。
type LineBox struct {
	Text   string   `json:"text"`           // 行内容（词间以单空格连接）
	Tokens []string `json:"tokens"`         // 原词序
	Width  float64  `json:"width"`          // 自然宽度（未计 justify 扩展）
	Height float64  `json:"height"`         // 行高 = 样式 leading
	Gap    float64  `json:"gap,omitempty"`  // justify 时每个词间隙的附加空白
	Last   bool     `json:"last,omitempty"` // 段落末行（justify 不生效）
}

// TextBox 表示一个已排好位置的段落。
type TextBox struct {
	Text   string         `json:"text"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"` // 含上下 padding
	Style  EffectiveStyle `json:"style"`
	Lines  []LineBox      `json:"lines"`
}

// RuleBox 表示一条已定位的水平分隔线。
type RuleBox struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Thickness float64 `json:"thickness"`
	Color     Color   `json:"color"`
}

// CellBox 表示表格中一个已定位的单元格。X 相对表格左缘。
type CellBox struct {
	X     float64        `json:"x"`
	Width float64        `json:"width"`
	Style EffectiveStyle `json:"style"`
	Lines []LineBox      `json:"lines"`
}

// RowLayout 记录一行的高度与单元格。
type RowLayout struct {
	Height float64   `json:"height"`
	Header bool      `json:"header"`
	Cells  []CellBox `json:"cells"`
}

// TableLayout 是表格布局结果；跨页拆分时每个分片各持有一份行子集。
type TableLayout struct {
	Width        float64     `json:"width"`
	Height       float64     `json:"height"`
	ColumnWidths []float64   `json:"columnWidths"`
	Rows         []RowLayout `json:"rows"`
}

// TableBox 表示一个已定位的表格分片。
type TableBox struct {
	X      float64      `json:"x"`
	Y      float64      `json:"y"`
	Layout *TableLayout `json:"layout"`
}

// Placement 是分页结果中的一条放置记录：第几页、距内容区顶部多少毫米、放什么。
// Text/Table/Rule 恰有一个非空。
type Placement struct {
	Page  int       `json:"page"`
	Y     float64   `json:"y"`
	Text  *TextBox  `json:"text,omitempty"`
	Table *TableBox `json:"table,omitempty"`
	Rule  *RuleBox  `json:"rule,omitempty"`
}

// Height 返回放置内容的总高度。
func (p Placement) Height() float64 {
	switch {
	case p.Text != nil:
		return p.Text.Height
	case p.Table != nil:
		return p.Table.Layout.Height
	case p.Rule != nil:
		return p.Rule.Thickness
	default:
		return 0
	}
}

// Meta 保存输出文档的元信息。
type Meta struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Subject  string `json:"subject"`
	Creator  string `json:"creator"`
	Keywords string `json:"keywords,omitempty"`
}

// Document 是分页后的最终结果，交由渲染器消费。
type Document struct {
	Geometry   Geometry    `json:"geometry"`
	PageCount  int         `json:"pageCount"`
	Placements []Placement `json:"placements"`
	Meta       Meta        `json:"meta"`
}

// PagePlacements 返回第 page 页上的放置记录，保持原有顺序。
func (d *Document) PagePlacements(page int) []Placement {
	var out []Placement
	for i := range d.Placements {
		if d.Placements[i].Page == page {
			out = append(out, d.Placements[i])
		}
	}
	return out
}
