package dsl

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/latedeployment/vellum/binding"
	"github.com/latedeployment/vellum/layout"
)

// Compiled 是一个故事文件编译后的产物：排版所需的全部输入。
type Compiled struct {
	Meta     layout.Meta
	Geometry layout.Geometry
	Styles   layout.StyleSheet
	Fonts    map[string]string // 字体名 → 文件路径
	Elements []layout.Element
}

// Compile 将语法树编译为排版输入。data 提供 ${path} 占位符的取值，可为 nil。
// 先处理 meta/page/fonts/styles 等声明节，再编译 story，
// 使故事内容可以引用已知的页面宽度与样式名。
func Compile(doc *Document, data any) (*Compiled, error) {
	if doc == nil {
		return nil, fmt.Errorf("缺少文档语法树")
	}
	c := &Compiled{
		Styles: layout.DefaultStyles(),
		Fonts:  map[string]string{},
	}
	// 缺省几何：letter 纵向，四边 0.75in
	w, h, _ := layout.PageSize("letter", false)
	c.Geometry = layout.Geometry{
		Width:  w,
		Height: h,
		Margin: layout.Margin{Top: 19.05, Right: 19.05, Bottom: 19.05, Left: 19.05},
	}

	var story *StorySection
	for _, sec := range doc.Sections {
		switch {
		case sec.Meta != nil:
			if err := c.compileMeta(sec.Meta.Block, data); err != nil {
				return nil, err
			}
		case sec.Page != nil:
			if err := c.compilePage(sec.Page); err != nil {
				return nil, err
			}
		case sec.Fonts != nil:
			if err := c.compileFonts(sec.Fonts.Block); err != nil {
				return nil, err
			}
		case sec.Styles != nil:
			if err := c.compileStyles(sec.Styles); err != nil {
				return nil, err
			}
		case sec.Story != nil:
			story = sec.Story
		}
	}
	if story != nil {
		if err := c.compileStory(story.Block, data); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Compiled) compileMeta(block *Block, data any) error {
	for _, stmt := range statements(block) {
		a := stmt.Assignment
		if a == nil {
			return fmt.Errorf("%s: meta 节只接受 key: value 赋值", statementPos(stmt))
		}
		val := binding.Interpolate(valueString(a.Value), data)
		switch a.Key {
		case "title":
			c.Meta.Title = val
		case "author":
			c.Meta.Author = val
		case "subject":
			c.Meta.Subject = val
		case "creator":
			c.Meta.Creator = val
		case "keywords":
			c.Meta.Keywords = val
		default:
			return fmt.Errorf("%s: 未知的 meta 字段 %q", a.Pos, a.Key)
		}
	}
	return nil
}

func (c *Compiled) compilePage(sec *PageSection) error {
	landscape := false
	for _, p := range sec.Params {
		switch p.Value {
		case "landscape":
			landscape = true
		case "portrait":
			landscape = false
		default:
			return fmt.Errorf("%s: 未知的页面参数 %q", p.Pos, p.Value)
		}
	}
	w, h, ok := layout.PageSize(sec.Size, landscape)
	if !ok {
		return fmt.Errorf("未知的页面尺寸预设 %q", sec.Size)
	}
	c.Geometry.Width, c.Geometry.Height = w, h

	for _, stmt := range statements(sec.Block) {
		a := stmt.Assignment
		if a == nil {
			return fmt.Errorf("%s: page 节只接受 key: value 赋值", statementPos(stmt))
		}
		switch a.Key {
		case "width":
			c.Geometry.Width = valueMM(a.Value)
		case "height":
			c.Geometry.Height = valueMM(a.Value)
		case "margin":
			m, err := marginShorthand(a)
			if err != nil {
				return err
			}
			c.Geometry.Margin = m
		case "margin-top":
			c.Geometry.Margin.Top = valueMM(a.Value)
		case "margin-right":
			c.Geometry.Margin.Right = valueMM(a.Value)
		case "margin-bottom":
			c.Geometry.Margin.Bottom = valueMM(a.Value)
		case "margin-left":
			c.Geometry.Margin.Left = valueMM(a.Value)
		default:
			return fmt.Errorf("%s: 未知的 page 字段 %q", a.Pos, a.Key)
		}
	}
	return nil
}

// marginShorthand 按 CSS 习惯展开 1/2/3/4 个值的页边距简写。
func marginShorthand(a *Assignment) (layout.Margin, error) {
	if a.Value.Array == nil {
		mm := valueMM(a.Value)
		return layout.Margin{Top: mm, Right: mm, Bottom: mm, Left: mm}, nil
	}
	vals := a.Value.Array.Values
	mm := make([]float64, len(vals))
	for i, v := range vals {
		mm[i] = valueMM(v)
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
		return layout.Margin{}, fmt.Errorf("%s: margin 简写最多 4 个值，收到 %d 个", a.Pos, len(mm))
	}
}

func (c *Compiled) compileFonts(block *Block) error {
	for _, stmt := range statements(block) {
		a := stmt.Assignment
		if a == nil || a.Value.String == nil {
			return fmt.Errorf("%s: fonts 节只接受 名称: \"路径\" 赋值", statementPos(stmt))
		}
		c.Fonts[a.Key] = string(*a.Value.String)
	}
	return nil
}

func (c *Compiled) compileStyles(sec *StylesSection) error {
	for _, decl := range sec.Styles {
		overrides, err := compileOverrides(decl.Block)
		if err != nil {
			return err
		}
		c.Styles.Add(layout.StyleDefinition{
			Name:           decl.Name,
			Parent:         decl.Parent,
			StyleOverrides: overrides,
		})
	}
	return nil
}

// compileOverrides 把样式块里的赋值转为可叠加的样式覆盖。
func compileOverrides(block *Block) (layout.StyleOverrides, error) {
	var o layout.StyleOverrides
	for _, stmt := range statements(block) {
		a := stmt.Assignment
		if a == nil {
			return o, fmt.Errorf("%s: 样式块只接受 key: value 赋值", statementPos(stmt))
		}
		switch a.Key {
		case "font":
			f := valueString(a.Value)
			o.Font = &f
		case "size":
			v := valueMM(a.Value)
			o.Size = &v
		case "leading":
			v := valueMM(a.Value)
			o.Leading = &v
		case "space-before":
			v := valueMM(a.Value)
			o.SpaceBefore = &v
		case "space-after":
			v := valueMM(a.Value)
			o.SpaceAfter = &v
		case "align":
			al, ok := layout.ParseAlignment(valueString(a.Value))
			if !ok {
				return o, fmt.Errorf("%s: 未知的对齐方式 %q", a.Pos, valueString(a.Value))
			}
			o.Align = &al
		case "color":
			col, err := valueColor(a)
			if err != nil {
				return o, err
			}
			o.TextColor = &col
		case "background":
			col, err := valueColor(a)
			if err != nil {
				return o, err
			}
			o.BackgroundColor = &col
		case "padding":
			p, err := paddingShorthand(a)
			if err != nil {
				return o, err
			}
			o.Padding = &p
		case "border-width":
			if o.Border == nil {
				o.Border = &layout.Border{}
			}
			o.Border.Width = valueMM(a.Value)
		case "border-color":
			col, err := valueColor(a)
			if err != nil {
				return o, err
			}
			if o.Border == nil {
				o.Border = &layout.Border{}
			}
			o.Border.Color = col
		default:
			return o, fmt.Errorf("%s: 未知的样式属性 %q", a.Pos, a.Key)
		}
	}
	return o, nil
}

func paddingShorthand(a *Assignment) (layout.Padding, error) {
	if a.Value.Array == nil {
		mm := valueMM(a.Value)
		return layout.Padding{Top: mm, Right: mm, Bottom: mm, Left: mm}, nil
	}
	vals := a.Value.Array.Values
	mm := make([]float64, len(vals))
	for i, v := range vals {
		mm[i] = valueMM(v)
	}
	switch len(mm) {
	case 1:
		return layout.Padding{Top: mm[0], Right: mm[0], Bottom: mm[0], Left: mm[0]}, nil
	case 2:
		return layout.Padding{Top: mm[0], Right: mm[1], Bottom: mm[0], Left: mm[1]}, nil
	case 3:
		return layout.Padding{Top: mm[0], Right: mm[1], Bottom: mm[2], Left: mm[1]}, nil
	case 4:
		return layout.Padding{Top: mm[0], Right: mm[1], Bottom: mm[2], Left: mm[3]}, nil
	default:
		return layout.Padding{}, fmt.Errorf("%s: padding 简写最多 4 个值，收到 %d 个", a.Pos, len(mm))
	}
}

var headingStyles = map[string]string{
	"title":    layout.StyleTitle,
	"subtitle": layout.StyleSubtitle,
	"h1":       layout.StyleHeading1,
	"h2":       layout.StyleHeading2,
	"h3":       layout.StyleHeading3,
}

func (c *Compiled) compileStory(block *Block, data any) error {
	for _, stmt := range statements(block) {
		switch {
		case stmt.Text != nil:
			c.Elements = append(c.Elements, &layout.Paragraph{
				Text:  binding.Interpolate(string(stmt.Text.Value), data),
				Style: layout.StyleBodyText,
			})
		case stmt.Command != nil:
			if err := c.compileCommand(stmt.Command, data); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%s: story 节不接受赋值", statementPos(stmt))
		}
	}
	return nil
}

func (c *Compiled) compileCommand(cmd *Command, data any) error {
	if style, ok := headingStyles[cmd.Name]; ok {
		return c.appendParagraph(cmd, style, data)
	}
	switch cmd.Name {
	case "text":
		return c.appendParagraph(cmd, layout.StyleBodyText, data)
	case "p":
		style := ""
		if len(cmd.Args) > 0 && cmd.Args[0].Type == "Ident" {
			style = cmd.Args[0].Value
		}
		return c.appendParagraph(cmd, style, data)
	case "spacer":
		if len(cmd.Args) != 1 {
			return fmt.Errorf("%s: spacer 需要一个高度参数", cmd.Pos)
		}
		c.Elements = append(c.Elements, &layout.Spacer{Height: layout.ParseLength(cmd.Args[0].Value)})
		return nil
	case "rule":
		return c.appendRule(cmd)
	case "pagebreak":
		c.Elements = append(c.Elements, &layout.PageBreak{})
		return nil
	case "table":
		return c.compileTable(cmd, data)
	default:
		return fmt.Errorf("%s: 未知的 story 命令 %q", cmd.Pos, cmd.Name)
	}
}

// appendParagraph 取命令中的字符串参数作为正文，可选块为内联样式覆盖。
func (c *Compiled) appendParagraph(cmd *Command, style string, data any) error {
	text := ""
	found := false
	for _, arg := range cmd.Args {
		if arg.Type == "String" {
			text = arg.Value
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%s: %s 需要一个字符串正文", cmd.Pos, cmd.Name)
	}
	p := &layout.Paragraph{
		Text:  binding.Interpolate(text, data),
		Style: style,
	}
	if cmd.Block != nil {
		overrides, err := compileOverrides(cmd.Block)
		if err != nil {
			return err
		}
		p.Overrides = &overrides
	}
	c.Elements = append(c.Elements, p)
	return nil
}

// appendRule 解析可选的 宽度比例、线宽、颜色 三个参数。
func (c *Compiled) appendRule(cmd *Command) error {
	r := &layout.Rule{
		Width:     1,
		Thickness: 0.2,
		Color:     layout.Color{R: 128, G: 128, B: 128},
	}
	seenWidth := false
	for _, arg := range cmd.Args {
		switch arg.Type {
		case "Number":
			if !seenWidth {
				if f := layout.ParseFraction(arg.Value); f > 0 && f <= 1 {
					r.Width = f
					seenWidth = true
					continue
				}
				seenWidth = true
			}
			r.Thickness = layout.ParseLength(arg.Value)
		case "Color":
			col, ok := layout.ParseColor(arg.Value)
			if !ok {
				return fmt.Errorf("%s: 非法的颜色 %q", arg.Pos, arg.Value)
			}
			r.Color = col
		default:
			return fmt.Errorf("%s: 未知的 rule 参数 %q", arg.Pos, arg.Value)
		}
	}
	c.Elements = append(c.Elements, r)
	return nil
}

func (c *Compiled) compileTable(cmd *Command, data any) error {
	if cmd.Block == nil {
		return fmt.Errorf("%s: table 需要一个内容块", cmd.Pos)
	}
	t := &layout.Table{}
	contentWidth := c.Geometry.ContentWidth()
	for _, stmt := range statements(cmd.Block) {
		switch {
		case stmt.Assignment != nil:
			a := stmt.Assignment
			switch a.Key {
			case "columns":
				if a.Value.Array == nil {
					return fmt.Errorf("%s: columns 需要一个数组", a.Pos)
				}
				for _, v := range a.Value.Array.Values {
					t.ColumnWidths = append(t.ColumnWidths, layout.ParseDimension(valueString(v), contentWidth))
				}
			case "style":
				t.Style = valueString(a.Value)
			case "header-rows":
				n, err := strconv.Atoi(valueString(a.Value))
				if err != nil {
					return fmt.Errorf("%s: header-rows 需要整数: %v", a.Pos, err)
				}
				t.HeaderRows = n
			case "repeat-header":
				t.RepeatHeader = valueString(a.Value) == "true"
			default:
				return fmt.Errorf("%s: 未知的 table 字段 %q", a.Pos, a.Key)
			}
		case stmt.Command != nil:
			sub := stmt.Command
			switch sub.Name {
			case "row":
				var row []string
				for _, arg := range sub.Args {
					if arg.Type != "String" {
						return fmt.Errorf("%s: row 的单元格必须是字符串", arg.Pos)
					}
					row = append(row, binding.Interpolate(arg.Value, data))
				}
				t.Rows = append(t.Rows, row)
			case "style":
				rule, err := compileCellRule(sub)
				if err != nil {
					return err
				}
				t.Rules = append(t.Rules, rule)
			case "row-backgrounds":
				rule, err := compileRowBackgrounds(sub)
				if err != nil {
					return err
				}
				t.Rules = append(t.Rules, rule)
			default:
				return fmt.Errorf("%s: 未知的 table 命令 %q", sub.Pos, sub.Name)
			}
		default:
			return fmt.Errorf("%s: table 块不接受裸字符串", statementPos(stmt))
		}
	}
	c.Elements = append(c.Elements, t)
	return nil
}

// compileCellRule 解析 style r0 r1 c0 c1 { ... }，区间端点接受整数或 last。
func compileCellRule(cmd *Command) (layout.CellStyleRule, error) {
	indexes, rest, err := takeIndexes(cmd.Args, 4)
	if err != nil {
		return layout.CellStyleRule{}, fmt.Errorf("%s: %v", cmd.Pos, err)
	}
	if len(rest) != 0 {
		return layout.CellStyleRule{}, fmt.Errorf("%s: style 命令多余的参数 %q", cmd.Pos, rest[0].Value)
	}
	if cmd.Block == nil {
		return layout.CellStyleRule{}, fmt.Errorf("%s: style 命令需要一个样式块", cmd.Pos)
	}
	set, err := compileOverrides(cmd.Block)
	if err != nil {
		return layout.CellStyleRule{}, err
	}
	return layout.CellStyleRule{
		FromRow: indexes[0], ToRow: indexes[1],
		FromCol: indexes[2], ToCol: indexes[3],
		Set: set,
	}, nil
}

// compileRowBackgrounds 解析 row-backgrounds r0 r1 [#aaa, #bbb]。
func compileRowBackgrounds(cmd *Command) (layout.CellStyleRule, error) {
	indexes, rest, err := takeIndexes(cmd.Args, 2)
	if err != nil {
		return layout.CellStyleRule{}, fmt.Errorf("%s: %v", cmd.Pos, err)
	}
	var colors []layout.Color
	for _, arg := range rest {
		if arg.Type != "Color" {
			continue // 跳过数组分隔符
		}
		col, ok := layout.ParseColor(arg.Value)
		if !ok {
			return layout.CellStyleRule{}, fmt.Errorf("%s: 非法的颜色 %q", arg.Pos, arg.Value)
		}
		colors = append(colors, col)
	}
	if len(colors) == 0 {
		return layout.CellStyleRule{}, fmt.Errorf("%s: row-backgrounds 需要至少一个颜色", cmd.Pos)
	}
	return layout.CellStyleRule{
		FromRow: indexes[0], ToRow: indexes[1],
		FromCol: 0, ToCol: -1,
		RowBackgrounds: colors,
	}, nil
}

// takeIndexes 从参数序列头部取 n 个区间端点：整数、-1 或关键字 last。
func takeIndexes(args []*Lexeme, n int) ([]int, []*Lexeme, error) {
	indexes := make([]int, 0, n)
	i := 0
	for len(indexes) < n {
		if i >= len(args) {
			return nil, nil, fmt.Errorf("需要 %d 个区间端点，只有 %d 个", n, len(indexes))
		}
		arg := args[i]
		switch {
		case arg.Type == "Ident" && arg.Value == "last":
			indexes = append(indexes, -1)
			i++
		case arg.Type == "Symbol" && arg.Value == "-":
			if i+1 >= len(args) || args[i+1].Type != "Number" {
				return nil, nil, fmt.Errorf("负号后需要数字")
			}
			v, err := strconv.Atoi(args[i+1].Value)
			if err != nil {
				return nil, nil, err
			}
			indexes = append(indexes, -v)
			i += 2
		case arg.Type == "Number":
			v, err := strconv.Atoi(arg.Value)
			if err != nil {
				return nil, nil, fmt.Errorf("区间端点必须是整数: %v", err)
			}
			indexes = append(indexes, v)
			i++
		default:
			return nil, nil, fmt.Errorf("非法的区间端点 %q", arg.Value)
		}
	}
	return indexes, args[i:], nil
}

func statements(block *Block) []*Statement {
	if block == nil {
		return nil
	}
	return block.Statements
}

func statementPos(stmt *Statement) lexer.Position {
	switch {
	case stmt.Assignment != nil:
		return stmt.Assignment.Pos
	case stmt.Command != nil:
		return stmt.Command.Pos
	default:
		return lexer.Position{}
	}
}

// valueString 将标量值还原为字符串形式，供上层按需解析。
func valueString(v *Value) string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// valueMM 将标量值解析为毫米。
func valueMM(v *Value) float64 {
	return layout.ParseLength(valueString(v))
}

func valueColor(a *Assignment) (layout.Color, error) {
	col, ok := layout.ParseColor(valueString(a.Value))
	if !ok {
		return layout.Color{}, fmt.Errorf("%s: 非法的颜色 %q", a.Pos, valueString(a.Value))
	}
	return col, nil
}
