package layout

import (
	"strings"
	"testing"
)

// charMeasurer 是测试用的等宽测量后端：每个字符 1mm 宽，行高等于字号。
type charMeasurer struct{}

func (charMeasurer) TextWidth(text string, font string, size float64) (float64, error) {
	return float64(len([]rune(text))), nil
}

func (charMeasurer) LineHeight(font string, size float64) (float64, error) {
	return size, nil
}

func wrapStyle(leading float64, align Alignment) EffectiveStyle {
	return EffectiveStyle{Font: "Body", Size: 4, Leading: leading, Align: align}
}

// TestWrapSingleLine 断言：宽度内的文本恰好产出一行。
func TestWrapSingleLine(t *testing.T) {
	lines, err := Wrap(charMeasurer{}, "hello world", wrapStyle(5, AlignStart), 20)
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("应为一行，实际 %d 行", len(lines))
	}
	if lines[0].Text != "hello world" || lines[0].Width != 11 {
		t.Fatalf("行内容不符: %+v", lines[0])
	}
	if !lines[0].Last {
		t.Fatalf("唯一一行应标记为末行")
	}
}

// TestWrapGreedy 验证贪心换行在超宽处闭行。
func TestWrapGreedy(t *testing.T) {
	// 每词 4 字符，行宽 14 → 每行放 "aaaa bbbb"（9）再加 " cccc" 即 14，正好放下
	lines, err := Wrap(charMeasurer{}, "aaaa bbbb cccc dddd", wrapStyle(5, AlignStart), 14)
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("应为两行，实际 %d 行: %+v", len(lines), lines)
	}
	if lines[0].Text != "aaaa bbbb cccc" {
		t.Fatalf("首行不符: %q", lines[0].Text)
	}
	if lines[1].Text != "dddd" {
		t.Fatalf("次行不符: %q", lines[1].Text)
	}
}

// TestWrapTokenPreservation 断言：所有行的词连接后与原词序完全一致（不丢、不重、不乱序）。
func TestWrapTokenPreservation(t *testing.T) {
	inputs := []string{
		"the quick brown fox jumps over the lazy dog",
		"a bb ccc dddd eeeee ffffff ggggggg",
		"one",
		"pneumonoultramicroscopicsilicovolcanoconiosis short words here",
	}
	for _, in := range inputs {
		for _, width := range []float64{5, 9, 16, 80} {
			lines, err := Wrap(charMeasurer{}, in, wrapStyle(5, AlignStart), width)
			if err != nil {
				t.Fatalf("折行失败: %v", err)
			}
			var got []string
			for _, lb := range lines {
				got = append(got, lb.Tokens...)
			}
			want := strings.Fields(in)
			if strings.Join(got, " ") != strings.Join(want, " ") {
				t.Fatalf("词序不保持: width=%g got=%v want=%v", width, got, want)
			}
		}
	}
}

// TestWrapOversizeToken 验证超宽单词独占一行且不被拆开。
func TestWrapOversizeToken(t *testing.T) {
	lines, err := Wrap(charMeasurer{}, "aa extraordinarily bb", wrapStyle(5, AlignStart), 6)
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("应为三行，实际 %d 行: %+v", len(lines), lines)
	}
	if lines[1].Text != "extraordinarily" {
		t.Fatalf("超宽词应独占一行: %q", lines[1].Text)
	}
	if lines[1].Width <= 6 {
		t.Fatalf("超宽词不应被拆短: width=%g", lines[1].Width)
	}
}

// TestWrapEmptyText 验证空文本产出恰好一行空行盒，保留一行纵向空间。
func TestWrapEmptyText(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		lines, err := Wrap(charMeasurer{}, in, wrapStyle(7, AlignStart), 20)
		if err != nil {
			t.Fatalf("折行失败: %v", err)
		}
		if len(lines) != 1 {
			t.Fatalf("空文本应为一行，实际 %d", len(lines))
		}
		if lines[0].Text != "" || lines[0].Width != 0 {
			t.Fatalf("空行盒不应有内容: %+v", lines[0])
		}
		if lines[0].Height != 7 {
			t.Fatalf("空行盒应保留一行高度: got=%g", lines[0].Height)
		}
	}
}

// TestWrapJustify 验证两端对齐只作用于非末行，且多余空间均分到词间隙。
func TestWrapJustify(t *testing.T) {
	// 行宽 11：首行 "aaa bbb ccc"（11）正好；改窄到 10 则 "aaa bbb"（7）+ gap
	lines, err := Wrap(charMeasurer{}, "aaa bbb ccc ddd", wrapStyle(5, AlignJustify), 10)
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("应为两行，实际 %d", len(lines))
	}
	first := lines[0]
	if first.Gap <= 0 {
		t.Fatalf("非末行应有附加词间隙: %+v", first)
	}
	wantGap := (10 - first.Width) / float64(len(first.Tokens)-1)
	if diff := first.Gap - wantGap; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("词间隙分配不均: got=%g want=%g", first.Gap, wantGap)
	}
	if lines[1].Gap != 0 {
		t.Fatalf("末行不参与两端对齐: %+v", lines[1])
	}
}

// TestWrapReinvocable 验证同一文本可用不同宽度重复折行（表格列宽变化场景）。
func TestWrapReinvocable(t *testing.T) {
	text := "one two three four five six"
	narrow, err := Wrap(charMeasurer{}, text, wrapStyle(5, AlignStart), 8)
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	wide, err := Wrap(charMeasurer{}, text, wrapStyle(5, AlignStart), 100)
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	if len(wide) != 1 {
		t.Fatalf("宽排应为一行: %d", len(wide))
	}
	if len(narrow) <= len(wide) {
		t.Fatalf("窄排行数应更多: narrow=%d wide=%d", len(narrow), len(wide))
	}
	again, err := Wrap(charMeasurer{}, text, wrapStyle(5, AlignStart), 8)
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	if len(again) != len(narrow) {
		t.Fatalf("重复折行结果应一致: %d vs %d", len(again), len(narrow))
	}
}

// TestLinesHeight 验证行盒总高度求和。
func TestLinesHeight(t *testing.T) {
	lines := []LineBox{{Height: 3}, {Height: 4.5}, {Height: 2.5}}
	if h := LinesHeight(lines); h != 10 {
		t.Fatalf("总高度错误: got=%g", h)
	}
}
