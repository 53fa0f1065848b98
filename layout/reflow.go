package layout

import "strings"

// 文本折行：贪心按词换行。词以空白分隔，永不从词中间断开；
// 单个词超出可用宽度时独占一行。宽度测量能力由调用方注入。

// Measurer 提供文本测量能力（字体度量查询），由渲染后端实现。
// 字号与返回宽度均为毫米。
type Measurer interface {
	// TextWidth 返回文本串按指定字体与字号排布后的宽度。
	TextWidth(text string, font string, size float64) (float64, error)
	// LineHeight 返回指定字体与字号的自然行高。
	LineHeight(font string, size float64) (float64, error)
}

const widthEpsilon = 1e-9

// Wrap 将文本按生效样式折行到 maxWidth 宽度内。
// 结果可随不同的 maxWidth 重复求取（例如表格列宽变化后重新布局）。
// 空文本返回恰好一行空行盒，保留一行的纵向空间。
func Wrap(m Measurer, text string, st EffectiveStyle, maxWidth float64) ([]LineBox, error) {
	leading := st.Leading
	if leading <= 0 {
		lh, err := m.LineHeight(st.Font, st.Size)
		if err != nil {
			return nil, err
		}
		leading = lh
	}

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return []LineBox{{Text: "", Height: leading, Last: true}}, nil
	}

	var lines []LineBox
	var cur []string
	curWidth := 0.0

	close := func() {
		if len(cur) == 0 {
			return
		}
		lines = append(lines, LineBox{
			Text:   strings.Join(cur, " "),
			Tokens: cur,
			Width:  curWidth,
			Height: leading,
		})
		cur = nil
		curWidth = 0
	}

	for _, tok := range tokens {
		candidate := tok
		if len(cur) > 0 {
			candidate = strings.Join(cur, " ") + " " + tok
		}
		w, err := m.TextWidth(candidate, st.Font, st.Size)
		if err != nil {
			return nil, err
		}
		if len(cur) > 0 && w > maxWidth+widthEpsilon {
			close()
			// 重新以 tok 单独起行测量
			w, err = m.TextWidth(tok, st.Font, st.Size)
			if err != nil {
				return nil, err
			}
		}
		cur = append(cur, tok)
		curWidth = w
		// 独词超宽：独占一行，不拆词
		if len(cur) == 1 && curWidth > maxWidth+widthEpsilon {
			close()
		}
	}
	close()

	lines[len(lines)-1].Last = true
	if st.Align == AlignJustify {
		justify(lines, maxWidth)
	}
	return lines, nil
}

// justify 将多余空间均匀分配到非末行的词间隙中。
func justify(lines []LineBox, maxWidth float64) {
	for i := range lines {
		lb := &lines[i]
		if lb.Last || len(lb.Tokens) < 2 {
			continue
		}
		extra := maxWidth - lb.Width
		if extra <= 0 {
			continue
		}
		lb.Gap = extra / float64(len(lb.Tokens)-1)
	}
}

// LinesHeight 返回若干行盒的总高度。
func LinesHeight(lines []LineBox) float64 {
	total := 0.0
	for i := range lines {
		total += lines[i].Height
	}
	return total
}
