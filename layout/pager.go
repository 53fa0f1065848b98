package layout

import "fmt"

// 分页器：顺序遍历内容元素，在内容区内纵向累积高度并决定换页。
// 坐标约定：X/Y 均相对内容区左上角，渲染阶段再加上页边距。
// 段落与分隔线整体放置，不跨页；表格是唯一允许按行拆分跨页的元素。

// Options 配置一次分页构建。
type Options struct {
	// Strict 为 true 时，零元素文档返回 EmptyDocumentError；默认产出一个空页。
	Strict bool
	Meta   Meta
}

// Paginate 将元素序列排入固定几何的页面，返回按序的放置结果。
// 相同的输入序列与几何总是产生相同的放置序列。
func Paginate(m Measurer, sheet StyleSheet, elements []Element, geo Geometry, opts Options) (*Document, error) {
	if geo.ContentWidth() <= 0 || geo.ContentHeight() <= 0 {
		return nil, fmt.Errorf("页面几何不合法：内容区为 %.2f×%.2fmm", geo.ContentWidth(), geo.ContentHeight())
	}
	if m == nil {
		return nil, fmt.Errorf("缺少测量后端 Measurer")
	}

	doc := &Document{Geometry: geo, Meta: opts.Meta}
	if len(elements) == 0 {
		if opts.Strict {
			return nil, &EmptyDocumentError{}
		}
		doc.PageCount = 1
		return doc, nil
	}

	r := NewResolver(sheet)
	p := &pager{
		doc:      doc,
		contentW: geo.ContentWidth(),
		contentH: geo.ContentHeight(),
	}

	for idx, el := range elements {
		var err error
		switch el := el.(type) {
		case *Paragraph:
			err = p.placeParagraph(m, r, idx, el)
		case *Spacer:
			p.placeSpacer(el)
		case *PageBreak:
			p.placeBreak()
		case *Rule:
			err = p.placeRule(idx, el)
		case *Table:
			err = p.placeTable(m, r, idx, el)
		default:
			err = fmt.Errorf("未知的内容元素类型 %T", el)
		}
		if err != nil {
			return nil, err
		}
	}

	doc.PageCount = p.page + 1
	return doc, nil
}

type pager struct {
	doc      *Document
	contentW float64
	contentH float64
	page     int
	y        float64
	// lastBreak 标记上一个元素是否为强制换页，用于合并连续换页。
	lastBreak bool
}

func (p *pager) newPage() {
	p.page++
	p.y = 0
}

// placeSpacer 推进纵向游标；超出页底时裁剪到页底，不主动换页，
// 避免文档末尾的空白把一张空页顶出来。
func (p *pager) placeSpacer(s *Spacer) {
	p.y += s.Height
	if p.y > p.contentH {
		p.y = p.contentH
	}
	p.lastBreak = false
}

// placeBreak 无条件换页；紧跟在另一次强制换页之后时合并为无操作。
func (p *pager) placeBreak() {
	if p.lastBreak {
		return
	}
	p.newPage()
	p.lastBreak = true
}

func (p *pager) placeParagraph(m Measurer, r *Resolver, idx int, el *Paragraph) error {
	es, err := r.Resolve(el.Style, el.Overrides)
	if err != nil {
		return err
	}
	inner := p.contentW - es.Padding.Left - es.Padding.Right
	if inner <= 0 {
		inner = p.contentW
	}
	lines, err := Wrap(m, el.Text, es, inner)
	if err != nil {
		return err
	}
	height := LinesHeight(lines) + es.Padding.Top + es.Padding.Bottom

	y, err := p.fit(idx, height, es.SpaceBefore)
	if err != nil {
		return err
	}
	p.doc.Placements = append(p.doc.Placements, Placement{
		Page: p.page,
		Y:    y,
		Text: &TextBox{
			Text:   el.Text,
			X:      0,
			Y:      y,
			Width:  p.contentW,
			Height: height,
			Style:  es,
			Lines:  lines,
		},
	})
	p.advance(y+height, es.SpaceAfter)
	return nil
}

func (p *pager) placeRule(idx int, el *Rule) error {
	frac := el.Width
	if frac <= 0 || frac > 1 {
		frac = 1
	}
	width := p.contentW * frac
	y, err := p.fit(idx, el.Thickness, 0)
	if err != nil {
		return err
	}
	p.doc.Placements = append(p.doc.Placements, Placement{
		Page: p.page,
		Y:    y,
		Rule: &RuleBox{
			X:         (p.contentW - width) / 2,
			Y:         y,
			Width:     width,
			Thickness: el.Thickness,
			Color:     el.Color,
		},
	})
	p.advance(y+el.Thickness, 0)
	return nil
}

// fit 为整体放置的元素求落点：剩余空间放得下就放在当前游标处；
// 放不下且当前页已有内容则换页重试一次；整页仍放不下视为布局缺陷。
// spaceBefore 仅在页面中段生效，页首忽略。
func (p *pager) fit(idx int, height, spaceBefore float64) (float64, error) {
	y := p.y
	if y > 0 {
		y += spaceBefore
	}
	if y+height <= p.contentH+widthEpsilon {
		p.lastBreak = false
		return y, nil
	}
	if height <= p.contentH+widthEpsilon {
		p.newPage()
		p.lastBreak = false
		return 0, nil
	}
	return 0, &LayoutInvariantViolation{Index: idx, Height: height, Avail: p.contentH}
}

// advance 将游标推进到元素底部之后，并附加 spaceAfter（裁剪到页底）。
func (p *pager) advance(bottom, spaceAfter float64) {
	p.y = bottom + spaceAfter
	if p.y > p.contentH {
		p.y = p.contentH
	}
}

// placeTable 放置表格：整体放得下则一次放置；否则按行边界拆分跨页，
// 声明了 RepeatHeader 的表格在每个后续分片前重放表头行。
func (p *pager) placeTable(m Measurer, r *Resolver, idx int, el *Table) error {
	full, err := LayoutTable(m, r, el, p.contentW)
	if err != nil {
		return err
	}
	if len(full.Rows) == 0 {
		p.lastBreak = false
		return nil
	}

	var header []RowLayout
	headerH := 0.0
	if el.RepeatHeader && el.HeaderRows > 0 && el.HeaderRows < len(full.Rows) {
		header = full.Rows[:el.HeaderRows]
		for _, row := range header {
			headerH += row.Height
		}
	}

	rest := full.Rows
	first := true
	for len(rest) > 0 {
		avail := p.contentH - p.y
		var frag []RowLayout
		fragH := 0.0
		if !first && header != nil {
			frag = append(frag, header...)
			fragH = headerH
		}
		n := 0
		for _, row := range rest {
			if fragH+row.Height > avail+widthEpsilon {
				break
			}
			frag = append(frag, row)
			fragH += row.Height
			n++
		}
		if n == 0 {
			if p.y > 0 {
				// 剩余空间一行都放不下，换页重试
				p.newPage()
				continue
			}
			return &LayoutInvariantViolation{Index: idx, Height: headerH + rest[0].Height, Avail: p.contentH}
		}
		p.doc.Placements = append(p.doc.Placements, Placement{
			Page: p.page,
			Y:    p.y,
			Table: &TableBox{
				X: 0,
				Y: p.y,
				Layout: &TableLayout{
					Width:        full.Width,
					ColumnWidths: full.ColumnWidths,
					Rows:         frag,
					Height:       fragH,
				},
			},
		})
		p.y += fragH
		rest = rest[n:]
		first = false
		if len(rest) > 0 {
			p.newPage()
		}
	}
	p.lastBreak = false
	return nil
}
