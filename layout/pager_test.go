package layout

import (
	"errors"
	"reflect"
	"testing"
)

// pagerGeometry：内容区恰好 100×250mm，便于手算落点。
func pagerGeometry() Geometry {
	return Geometry{
		Width:  120,
		Height: 270,
		Margin: Margin{Top: 10, Right: 10, Bottom: 10, Left: 10},
	}
}

func pagerSheet() StyleSheet {
	sheet := StyleSheet{}
	sheet.Add(StyleDefinition{Name: "Normal", StyleOverrides: StyleOverrides{Size: ptr(4), Leading: ptr(100)}})
	sheet.Add(StyleDefinition{Name: "Short", Parent: "Normal", StyleOverrides: StyleOverrides{Leading: ptr(80)}})
	sheet.Add(StyleDefinition{Name: "Huge", Parent: "Normal", StyleOverrides: StyleOverrides{Leading: ptr(300)}})
	sheet.Add(StyleDefinition{Name: "Led", Parent: "Normal", StyleOverrides: StyleOverrides{SpaceBefore: ptr(30)}})
	return sheet
}

func para(style string) *Paragraph { return &Paragraph{Text: "para", Style: style} }

// TestPaginateOverflowToNextPage 验证放不下的整体元素换页后从页首放置。
func TestPaginateOverflowToNextPage(t *testing.T) {
	doc, err := Paginate(charMeasurer{}, pagerSheet(),
		[]Element{para("Normal"), para("Normal"), para("Normal")},
		pagerGeometry(), Options{})
	if err != nil {
		t.Fatalf("分页失败: %v", err)
	}
	want := []struct {
		page int
		y    float64
	}{{0, 0}, {0, 100}, {1, 0}}
	if len(doc.Placements) != len(want) {
		t.Fatalf("放置数量错误: %d", len(doc.Placements))
	}
	for i, w := range want {
		got := doc.Placements[i]
		if got.Page != w.page || got.Y != w.y {
			t.Fatalf("第 %d 个放置错误: page=%d y=%g，期望 page=%d y=%g",
				i, got.Page, got.Y, w.page, w.y)
		}
	}
	if doc.PageCount != 2 {
		t.Fatalf("页数错误: %d", doc.PageCount)
	}
}

// TestPaginatePageBreakCollapse 验证连续强制换页合并为一次。
func TestPaginatePageBreakCollapse(t *testing.T) {
	doc, err := Paginate(charMeasurer{}, pagerSheet(),
		[]Element{para("Normal"), &PageBreak{}, &PageBreak{}, para("Normal")},
		pagerGeometry(), Options{})
	if err != nil {
		t.Fatalf("分页失败: %v", err)
	}
	if doc.PageCount != 2 {
		t.Fatalf("连续换页应合并: 页数=%d", doc.PageCount)
	}
	if doc.Placements[1].Page != 1 || doc.Placements[1].Y != 0 {
		t.Fatalf("换页后元素应落在次页页首: %+v", doc.Placements[1])
	}
}

// TestPaginateLeadingPageBreak 验证文档起始的强制换页产生一张空页。
func TestPaginateLeadingPageBreak(t *testing.T) {
	doc, err := Paginate(charMeasurer{}, pagerSheet(),
		[]Element{&PageBreak{}, para("Normal")},
		pagerGeometry(), Options{})
	if err != nil {
		t.Fatalf("分页失败: %v", err)
	}
	if doc.PageCount != 2 || doc.Placements[0].Page != 1 {
		t.Fatalf("起始换页应留出空页: 页数=%d page=%d", doc.PageCount, doc.Placements[0].Page)
	}
	if len(doc.PagePlacements(0)) != 0 {
		t.Fatalf("首页应为空页")
	}
}

// TestPaginateTrailingSpacerClipped 验证末尾空白裁剪到页底，不顶出空页。
func TestPaginateTrailingSpacerClipped(t *testing.T) {
	doc, err := Paginate(charMeasurer{}, pagerSheet(),
		[]Element{para("Normal"), &Spacer{Height: 500}},
		pagerGeometry(), Options{})
	if err != nil {
		t.Fatalf("分页失败: %v", err)
	}
	if doc.PageCount != 1 {
		t.Fatalf("末尾空白不应产生新页: 页数=%d", doc.PageCount)
	}
}

// TestPaginateSpacerThenParagraph 验证空白推进游标后续元素顺延。
func TestPaginateSpacerThenParagraph(t *testing.T) {
	doc, err := Paginate(charMeasurer{}, pagerSheet(),
		[]Element{&Spacer{Height: 40}, para("Normal")},
		pagerGeometry(), Options{})
	if err != nil {
		t.Fatalf("分页失败: %v", err)
	}
	if doc.Placements[0].Y != 40 {
		t.Fatalf("空白后的元素落点错误: %g", doc.Placements[0].Y)
	}
}

// TestPaginateSpaceBeforeDroppedAtTop 验证 spaceBefore 仅在页面中段生效。
func TestPaginateSpaceBeforeDroppedAtTop(t *testing.T) {
	doc, err := Paginate(charMeasurer{}, pagerSheet(),
		[]Element{para("Led"), para("Led")},
		pagerGeometry(), Options{})
	if err != nil {
		t.Fatalf("分页失败: %v", err)
	}
	if doc.Placements[0].Y != 0 {
		t.Fatalf("页首 spaceBefore 应被丢弃: %g", doc.Placements[0].Y)
	}
	if doc.Placements[1].Y != 130 {
		t.Fatalf("页中 spaceBefore 应生效: %g", doc.Placements[1].Y)
	}
}

// TestPaginateEmptyDocument 验证零元素文档的宽松与严格两种行为。
func TestPaginateEmptyDocument(t *testing.T) {
	doc, err := Paginate(charMeasurer{}, pagerSheet(), nil, pagerGeometry(), Options{})
	if err != nil {
		t.Fatalf("宽松模式不应报错: %v", err)
	}
	if doc.PageCount != 1 || len(doc.Placements) != 0 {
		t.Fatalf("宽松模式应产出一张空页: 页数=%d 放置=%d", doc.PageCount, len(doc.Placements))
	}

	_, err = Paginate(charMeasurer{}, pagerSheet(), nil, pagerGeometry(), Options{Strict: true})
	var ede *EmptyDocumentError
	if !errors.As(err, &ede) {
		t.Fatalf("严格模式期望 EmptyDocumentError，实际: %v", err)
	}
}

// TestPaginateOversizeParagraph 验证整页都放不下的元素报布局缺陷。
func TestPaginateOversizeParagraph(t *testing.T) {
	_, err := Paginate(charMeasurer{}, pagerSheet(),
		[]Element{para("Normal"), para("Huge")},
		pagerGeometry(), Options{})
	var liv *LayoutInvariantViolation
	if !errors.As(err, &liv) {
		t.Fatalf("期望 LayoutInvariantViolation，实际: %v", err)
	}
	if liv.Index != 1 || liv.Height != 300 {
		t.Fatalf("缺陷定位错误: %+v", liv)
	}
}

// TestPaginateTableSplit 验证表格按行边界拆分跨页。
func TestPaginateTableSplit(t *testing.T) {
	tbl := &Table{
		Rows:  [][]string{{"r0"}, {"r1"}, {"r2"}},
		Style: "Short", // 行高 80
	}
	doc, err := Paginate(charMeasurer{}, pagerSheet(),
		[]Element{para("Normal"), tbl},
		pagerGeometry(), Options{})
	if err != nil {
		t.Fatalf("分页失败: %v", err)
	}
	// 段落占 100，剩 150：只够 1 行（80×2=160 超出）
	if len(doc.Placements) != 3 {
		t.Fatalf("放置数量错误: %d", len(doc.Placements))
	}
	frag0 := doc.Placements[1]
	frag1 := doc.Placements[2]
	if frag0.Page != 0 || frag0.Y != 100 || len(frag0.Table.Layout.Rows) != 1 {
		t.Fatalf("首个分片错误: page=%d y=%g rows=%d",
			frag0.Page, frag0.Y, len(frag0.Table.Layout.Rows))
	}
	if frag1.Page != 1 || frag1.Y != 0 || len(frag1.Table.Layout.Rows) != 2 {
		t.Fatalf("后续分片错误: page=%d y=%g rows=%d",
			frag1.Page, frag1.Y, len(frag1.Table.Layout.Rows))
	}
	if frag0.Table.Layout.Rows[0].Cells[0].Lines[0].Text != "r0" {
		t.Fatalf("拆分应保持行序")
	}
	if frag1.Table.Layout.Rows[0].Cells[0].Lines[0].Text != "r1" {
		t.Fatalf("拆分应保持行序")
	}
}

// TestPaginateTableRepeatHeader 验证后续分片重放表头行。
func TestPaginateTableRepeatHeader(t *testing.T) {
	tbl := &Table{
		Rows:         [][]string{{"head"}, {"r1"}, {"r2"}, {"r3"}, {"r4"}},
		Style:        "Short", // 行高 80
		HeaderRows:   1,
		RepeatHeader: true,
	}
	doc, err := Paginate(charMeasurer{}, pagerSheet(),
		[]Element{tbl}, pagerGeometry(), Options{})
	if err != nil {
		t.Fatalf("分页失败: %v", err)
	}
	if len(doc.Placements) != 2 {
		t.Fatalf("分片数量错误: %d", len(doc.Placements))
	}
	// 首片：表头 + 2 行正文（80×3=240 ≤ 250）
	frag0 := doc.Placements[0].Table.Layout.Rows
	if len(frag0) != 3 || !frag0[0].Header {
		t.Fatalf("首片错误: rows=%d", len(frag0))
	}
	// 次片：重放表头 + 余下 2 行正文
	frag1 := doc.Placements[1].Table.Layout.Rows
	if len(frag1) != 3 || !frag1[0].Header {
		t.Fatalf("次片未重放表头: rows=%d", len(frag1))
	}
	if frag1[0].Cells[0].Lines[0].Text != "head" {
		t.Fatalf("次片首行应为表头内容")
	}
	if frag1[1].Cells[0].Lines[0].Text != "r3" {
		t.Fatalf("次片正文应从断点续排")
	}
}

// TestPaginateRuleCentered 验证分隔线按比例取宽并水平居中。
func TestPaginateRuleCentered(t *testing.T) {
	doc, err := Paginate(charMeasurer{}, pagerSheet(),
		[]Element{&Rule{Width: 0.4, Thickness: 0.5}},
		pagerGeometry(), Options{})
	if err != nil {
		t.Fatalf("分页失败: %v", err)
	}
	rb := doc.Placements[0].Rule
	if rb.Width != 40 || rb.X != 30 {
		t.Fatalf("分隔线几何错误: x=%g width=%g", rb.X, rb.Width)
	}
}

// TestPaginateDeterministic 验证相同输入两次分页结果完全一致。
func TestPaginateDeterministic(t *testing.T) {
	elements := []Element{
		para("Normal"),
		&Spacer{Height: 20},
		&Table{Rows: [][]string{{"a", "b"}, {"c", "d"}}, Style: "Short"},
		&PageBreak{},
		para("Led"),
		&Rule{Width: 0.4, Thickness: 0.5},
	}
	first, err := Paginate(charMeasurer{}, pagerSheet(), elements, pagerGeometry(), Options{})
	if err != nil {
		t.Fatalf("分页失败: %v", err)
	}
	second, err := Paginate(charMeasurer{}, pagerSheet(), elements, pagerGeometry(), Options{})
	if err != nil {
		t.Fatalf("分页失败: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("相同输入应产生相同结果")
	}
}

// TestPaginateBadGeometry 验证内容区为零或负时直接拒绝。
func TestPaginateBadGeometry(t *testing.T) {
	geo := Geometry{Width: 20, Height: 270, Margin: Margin{Left: 10, Right: 10}}
	if _, err := Paginate(charMeasurer{}, pagerSheet(), []Element{para("Normal")}, geo, Options{}); err == nil {
		t.Fatalf("内容区宽度为零应报错")
	}
}
