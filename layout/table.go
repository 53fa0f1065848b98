package layout

// 表格布局：列宽解析、逐单元格样式叠加与按行高度计算。
// 边框与底色都落到单元格粒度，便于表头行等任意区间覆盖。

// LayoutTable 计算表格在 totalWidth 宽度内的布局。
// 列宽：提示完整且总和不超宽时原样使用；缺省时均分；超宽时按比例缩小。
// 行高 = 该行各单元格（折行内容高度 + 上下内边距）的最大值。
func LayoutTable(m Measurer, r *Resolver, t *Table, totalWidth float64) (*TableLayout, error) {
	rows := len(t.Rows)
	if rows == 0 {
		return &TableLayout{Width: totalWidth}, nil
	}
	cols := 0
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	styles, err := resolveCellStyles(r, t, rows, cols)
	if err != nil {
		return nil, err
	}

	widths := resolveColumnWidths(t.ColumnWidths, cols, totalWidth)
	offsets := make([]float64, cols)
	for i := 1; i < cols; i++ {
		offsets[i] = offsets[i-1] + widths[i-1]
	}

	layout := &TableLayout{
		Width:        totalWidth,
		ColumnWidths: widths,
	}
	for ri, row := range t.Rows {
		rl := RowLayout{Header: ri < t.HeaderRows}
		maxHeight := 0.0
		for ci := 0; ci < cols; ci++ {
			content := ""
			if ci < len(row) {
				content = row[ci]
			}
			st := styles[ri][ci]
			inner := widths[ci] - st.Padding.Left - st.Padding.Right
			if inner <= 0 {
				inner = widths[ci]
			}
			lines, err := Wrap(m, content, st, inner)
			if err != nil {
				return nil, err
			}
			h := LinesHeight(lines) + st.Padding.Top + st.Padding.Bottom
			if h > maxHeight {
				maxHeight = h
			}
			rl.Cells = append(rl.Cells, CellBox{
				X:     offsets[ci],
				Width: widths[ci],
				Style: st,
				Lines: lines,
			})
		}
		rl.Height = maxHeight
		layout.Rows = append(layout.Rows, rl)
		layout.Height += maxHeight
	}
	return layout, nil
}

// resolveColumnWidths 实现规格化的三分支列宽策略。
// 提示数量与列数不符时按缺省处理（均分），避免错位的提示静默串列。
func resolveColumnWidths(hints []float64, cols int, totalWidth float64) []float64 {
	widths := make([]float64, cols)
	if len(hints) != cols {
		even := totalWidth / float64(cols)
		for i := range widths {
			widths[i] = even
		}
		return widths
	}
	sum := 0.0
	for _, h := range hints {
		sum += h
	}
	if sum <= totalWidth {
		copy(widths, hints)
		return widths
	}
	// 超宽：整体等比缩小，保持可复现的确定性结果
	scale := totalWidth / sum
	for i, h := range hints {
		widths[i] = h * scale
	}
	return widths
}

// resolveCellStyles 先校验全部规则区间，再按声明顺序逐属性叠加到每个单元格。
func resolveCellStyles(r *Resolver, t *Table, rows, cols int) ([][]EffectiveStyle, error) {
	base, err := r.Resolve(t.Style, nil)
	if err != nil {
		return nil, err
	}

	type span struct{ r0, r1, c0, c1 int }
	spans := make([]span, len(t.Rules))
	for i := range t.Rules {
		rule := &t.Rules[i]
		r0, ok1 := resolveIndex(rule.FromRow, rows)
		r1, ok2 := resolveIndex(rule.ToRow, rows)
		c0, ok3 := resolveIndex(rule.FromCol, cols)
		c1, ok4 := resolveIndex(rule.ToCol, cols)
		if !ok1 || !ok2 {
			bad := rule.FromRow
			if ok1 {
				bad = rule.ToRow
			}
			return nil, &InvalidRangeError{Rule: i, Row: bad, Rows: rows, Cols: cols}
		}
		if !ok3 || !ok4 {
			bad := rule.FromCol
			if ok3 {
				bad = rule.ToCol
			}
			return nil, &InvalidRangeError{Rule: i, Col: bad, Rows: rows, Cols: cols}
		}
		spans[i] = span{r0, r1, c0, c1}
	}

	styles := make([][]EffectiveStyle, rows)
	for ri := 0; ri < rows; ri++ {
		styles[ri] = make([]EffectiveStyle, cols)
		for ci := 0; ci < cols; ci++ {
			styles[ri][ci] = base
		}
	}
	for i := range t.Rules {
		rule := &t.Rules[i]
		sp := spans[i]
		for ri := sp.r0; ri <= sp.r1 && ri < rows; ri++ {
			for ci := sp.c0; ci <= sp.c1 && ci < cols; ci++ {
				applyOverrides(&styles[ri][ci], rule.Set)
				if n := len(rule.RowBackgrounds); n > 0 {
					bg := rule.RowBackgrounds[(ri-sp.r0)%n]
					styles[ri][ci].BackgroundColor = &bg
				}
			}
		}
	}
	return styles, nil
}

// resolveIndex 将 -1 解析为最后一个下标；其余负值与越界值均为非法。
func resolveIndex(i, n int) (int, bool) {
	if i == -1 {
		return n - 1, true
	}
	if i < 0 || i >= n {
		return 0, false
	}
	return i, true
}
