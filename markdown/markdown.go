package markdown

// Markdown 前端：把 GFM 文档翻译成排版元素序列。
// 结构映射是有损的：只保留能落到段落/表格/分隔线上的内容。

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/latedeployment/vellum/layout"
)

var headingStyles = map[int]string{
	1: layout.StyleHeading1,
	2: layout.StyleHeading2,
	3: layout.StyleHeading3,
}

var headerBackground = layout.Color{R: 0x1f, G: 0x29, B: 0x37}

// Import 将 Markdown 源文本转换为排版元素。
func Import(src []byte) ([]layout.Element, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	root := md.Parser().Parse(text.NewReader(src))

	var elements []layout.Element
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		converted, err := convertBlock(node, src)
		if err != nil {
			return nil, err
		}
		elements = append(elements, converted...)
	}
	return elements, nil
}

func convertBlock(node ast.Node, src []byte) ([]layout.Element, error) {
	switch n := node.(type) {
	case *ast.Heading:
		style, ok := headingStyles[n.Level]
		if !ok {
			style = layout.StyleHeading3
		}
		return []layout.Element{&layout.Paragraph{Text: inlineText(n, src), Style: style}}, nil
	case *ast.Paragraph, *ast.TextBlock:
		return []layout.Element{&layout.Paragraph{Text: inlineText(node, src), Style: layout.StyleBodyText}}, nil
	case *ast.ThematicBreak:
		return []layout.Element{&layout.Rule{Width: 1, Thickness: 0.2, Color: layout.Color{R: 128, G: 128, B: 128}}}, nil
	case *ast.List:
		return convertList(n, src), nil
	case *ast.Blockquote, *ast.FencedCodeBlock, *ast.CodeBlock:
		txt := blockText(node, src)
		if txt == "" {
			return nil, nil
		}
		return []layout.Element{&layout.Paragraph{Text: txt, Style: layout.StyleBodyText}}, nil
	case *east.Table:
		return convertTable(n, src)
	case *ast.HTMLBlock:
		return nil, nil // 原样 HTML 没有排版语义，丢弃
	default:
		return nil, nil
	}
}

func convertList(list *ast.List, src []byte) []layout.Element {
	var elements []layout.Element
	index := 1
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "• "
		if list.IsOrdered() {
			marker = fmt.Sprintf("%d. ", index)
			index++
		}
		elements = append(elements, &layout.Paragraph{
			Text:  marker + inlineText(item, src),
			Style: layout.StyleBodyText,
		})
	}
	return elements
}

// convertTable 把 GFM 表格翻译为带表头样式的排版表格。
func convertTable(table *east.Table, src []byte) ([]layout.Element, error) {
	t := &layout.Table{RepeatHeader: true}
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, inlineText(cell, src))
		}
		switch row.(type) {
		case *east.TableHeader:
			t.Rows = append([][]string{cells}, t.Rows...)
			t.HeaderRows = 1
		case *east.TableRow:
			t.Rows = append(t.Rows, cells)
		}
	}
	if len(t.Rows) == 0 {
		return nil, nil
	}
	if t.HeaderRows > 0 {
		white := layout.Color{R: 255, G: 255, B: 255}
		bg := headerBackground
		t.Rules = append(t.Rules, layout.CellStyleRule{
			FromRow: 0, ToRow: 0, FromCol: 0, ToCol: -1,
			Set: layout.StyleOverrides{
				TextColor:       &white,
				BackgroundColor: &bg,
			},
		})
	}
	return []layout.Element{t}, nil
}

// inlineText 收集节点内的纯文本，软换行折叠为空格。
func inlineText(node ast.Node, src []byte) string {
	var b strings.Builder
	collectText(node, src, &b)
	return strings.TrimSpace(b.String())
}

func collectText(node ast.Node, src []byte, b *strings.Builder) {
	switch n := node.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(src))
		if n.SoftLineBreak() || n.HardLineBreak() {
			b.WriteByte(' ')
		}
	case *ast.String:
		b.Write(n.Value)
	default:
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			collectText(child, src, b)
		}
	}
}

// blockText 取块级节点的原始行内容，换行折叠为空格。
func blockText(node ast.Node, src []byte) string {
	var parts []string
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		parts = append(parts, strings.TrimSpace(string(seg.Value(src))))
	}
	if len(parts) == 0 {
		// 引用块的内容在子节点里
		var b strings.Builder
		collectText(node, src, &b)
		return strings.TrimSpace(b.String())
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
