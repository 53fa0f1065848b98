package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/latedeployment/vellum/layout"
	"github.com/latedeployment/vellum/renderer"
)

const hairline = 0.2

// Renderer 基于 github.com/tdewolff/canvas 绘制分页结果，
// 同时作为测量后端向分页器提供字体度量。
type Renderer struct {
	baseDir string

	// injected resources
	fontBlobs map[string][]byte // by font name

	fontMu         sync.Mutex
	fontFamilies   map[string]*canvas.FontFamily
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // font files keyed by style font name
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected font resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(r.resolvePath(res.Path)) // 读取失败在实际取用时报告
			if len(data) > 0 {
				r.fontBlobs[name] = data
			}
		}
	}
	return r
}

func (r *Renderer) resolvePath(path string) string {
	if filepath.IsAbs(path) || r.baseDir == "" {
		return path
	}
	return filepath.Join(r.baseDir, path)
}

// TextWidth 实现 layout.Measurer。
// 约定：size 入参为毫米（mm），与字体系统交互使用 pt，在边界做 mm↔pt 换算。
func (r *Renderer) TextWidth(text, font string, size float64) (float64, error) {
	face, err := r.fontFace(font, toPt(size), layout.Color{R: 30, G: 30, B: 30})
	if err != nil {
		return 0, err
	}
	return face.TextWidth(text), nil
}

// LineHeight 实现 layout.Measurer，返回字体的自然行高（mm）。
func (r *Renderer) LineHeight(font string, size float64) (float64, error) {
	face, err := r.fontFace(font, toPt(size), layout.Color{R: 30, G: 30, B: 30})
	if err != nil {
		return 0, err
	}
	h := face.Metrics().LineHeight
	if h <= 0 {
		h = size
	}
	return h, nil
}

// Render 将文档渲染为 PDF 字节切片。
func (r *Renderer) Render(doc *layout.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("渲染文档为空")
	}
	if doc.PageCount <= 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	geo := doc.Geometry
	var buf bytes.Buffer
	writer := pdf.New(&buf, geo.Width, geo.Height, nil)
	r.applyMeta(writer, doc.Meta)
	for page := 0; page < doc.PageCount; page++ {
		if page > 0 {
			writer.NewPage(geo.Width, geo.Height)
		}
		c := canvas.New(geo.Width, geo.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, doc, page); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.Meta) {
	if writer == nil {
		return
	}
	writer.SetInfo(meta.Title, meta.Subject, meta.Keywords, meta.Author, meta.Creator)
}

// drawPage 绘制单页。放置坐标相对内容区，这里加上页边距得到页面坐标。
func (r *Renderer) drawPage(ctx *canvas.Context, doc *layout.Document, page int) error {
	left := doc.Geometry.Margin.Left
	top := doc.Geometry.Margin.Top
	for _, pl := range doc.PagePlacements(page) {
		switch {
		case pl.Text != nil:
			if err := r.drawTextBox(ctx, left+pl.Text.X, top+pl.Text.Y, pl.Text.Width, pl.Text.Height, pl.Text.Style, pl.Text.Lines); err != nil {
				return err
			}
		case pl.Rule != nil:
			r.drawRule(ctx, left+pl.Rule.X, top+pl.Rule.Y, pl.Rule)
		case pl.Table != nil:
			if err := r.drawTable(ctx, left+pl.Table.X, top+pl.Table.Y, pl.Table.Layout); err != nil {
				return err
			}
		}
	}
	return nil
}

// drawTextBox 在页面坐标 (x, y) 处绘制一个宽 width 高 height 的文本框：
// 先铺底色与边框，再按对齐方式逐行绘制文本。
func (r *Renderer) drawTextBox(ctx *canvas.Context, x, y, width, height float64, st layout.EffectiveStyle, lines []layout.LineBox) error {
	if st.BackgroundColor != nil {
		ctx.SetFillColor(colorFromLayout(*st.BackgroundColor))
		ctx.SetStrokeColor(canvas.Transparent)
		ctx.DrawPath(x, y, canvas.Rectangle(width, height))
	}
	if st.Border.Width > 0 {
		ctx.SetFillColor(canvas.Transparent)
		ctx.SetStrokeColor(colorFromLayout(st.Border.Color))
		ctx.SetStrokeWidth(st.Border.Width)
		ctx.DrawPath(x, y, canvas.Rectangle(width, height))
	}

	face, err := r.fontFace(st.Font, toPt(st.Size), st.TextColor)
	if err != nil {
		return err
	}

	innerX := x + st.Padding.Left
	innerW := width - st.Padding.Left - st.Padding.Right
	if innerW <= 0 {
		innerW = width
	}
	cursorY := y + st.Padding.Top
	for _, line := range lines {
		if err := r.drawLine(ctx, face, innerX, cursorY, innerW, st.Align, line); err != nil {
			return err
		}
		cursorY += line.Height
	}
	return nil
}

// drawLine 绘制一行文本。两端对齐的非末行按 Gap 逐词排布，
// 其余情况整行一次绘制。
func (r *Renderer) drawLine(ctx *canvas.Context, face *canvas.FontFace, x, y, width float64, align layout.Alignment, line layout.LineBox) error {
	if line.Text == "" {
		return nil
	}

	// 基线位置：行顶部加上字体上升部
	baseline := y + face.Metrics().Ascent

	if align == layout.AlignJustify && line.Gap > 0 && len(line.Tokens) >= 2 {
		space := face.TextWidth(" ")
		cursor := x
		for _, tok := range line.Tokens {
			ctx.DrawText(cursor, baseline, canvas.NewTextLine(face, tok, canvas.Left))
			cursor += face.TextWidth(tok) + space + line.Gap
		}
		return nil
	}

	var textAlign canvas.TextAlign
	var anchorX float64
	switch align {
	case layout.AlignCenter:
		textAlign = canvas.Center
		anchorX = x + width/2
	case layout.AlignEnd:
		textAlign = canvas.Right
		anchorX = x + width
	default:
		textAlign = canvas.Left
		anchorX = x
	}
	ctx.DrawText(anchorX, baseline, canvas.NewTextLine(face, line.Text, textAlign))
	return nil
}

func (r *Renderer) drawRule(ctx *canvas.Context, x, y float64, rb *layout.RuleBox) {
	w := rb.Thickness
	if w <= 0 {
		w = hairline
	}
	ctx.SetStrokeColor(colorFromLayout(rb.Color))
	ctx.SetStrokeWidth(w)
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(rb.Width, 0)
	ctx.DrawPath(x, y+w/2, p)
}

// drawTable 绘制表格：逐行逐格先铺底色与格线，再画单元格文本。
func (r *Renderer) drawTable(ctx *canvas.Context, x, y float64, lay *layout.TableLayout) error {
	if lay == nil || len(lay.Rows) == 0 {
		return nil
	}
	cursorY := y
	for _, row := range lay.Rows {
		for _, cell := range row.Cells {
			cellX := x + cell.X
			st := cell.Style

			fill := cellFill(st)
			stroke := colorFromLayout(st.Border.Color)
			strokeW := st.Border.Width
			if strokeW <= 0 {
				strokeW = hairline
			}
			ctx.SetFillColor(fill)
			ctx.SetStrokeColor(stroke)
			ctx.SetStrokeWidth(strokeW)
			ctx.DrawPath(cellX, cursorY, canvas.Rectangle(cell.Width, row.Height))

			face, err := r.fontFace(st.Font, toPt(st.Size), st.TextColor)
			if err != nil {
				return err
			}
			innerX := cellX + st.Padding.Left
			innerW := cell.Width - st.Padding.Left - st.Padding.Right
			if innerW <= 0 {
				innerW = cell.Width
			}
			lineY := cursorY + st.Padding.Top
			for _, line := range cell.Lines {
				if err := r.drawLine(ctx, face, innerX, lineY, innerW, st.Align, line); err != nil {
					return err
				}
				lineY += line.Height
			}
		}
		cursorY += row.Height
	}
	return nil
}

func (r *Renderer) fontFace(font string, sizePt float64, col layout.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(name string) (*canvas.FontFamily, error) {
	if name == "" {
		name = "Body"
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[name]; ok {
		return family, nil
	}

	family := canvas.NewFontFamily(name)
	if err := r.loadFontIntoFamily(family, name); err != nil {
		fallback, fbErr := r.fallback()
		if fbErr != nil {
			return nil, err
		}
		r.fontFamilies[name] = fallback
		return fallback, nil
	}
	r.fontFamilies[name] = family
	return family, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, name string) error {
	blob, ok := r.fontBlobs[name]
	if !ok {
		return fmt.Errorf("找不到字体资源 %s", name)
	}
	return family.LoadFont(blob, 0, canvas.FontRegular)
}

// fallback 在未注册任何匹配字体时退回系统无衬线字体。
func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	family := canvas.NewFontFamily("vellum-fallback")
	for _, name := range []string{"sans-serif", "serif"} {
		if err := family.LoadSystemFont(name, canvas.FontRegular); err == nil {
			r.fallbackFamily = family
			return family, nil
		}
	}
	return nil, fmt.Errorf("没有可用的回退字体")
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// cellFill 返回单元格铺底色；无底色声明时用白色，避免边框下透出底层内容。
func cellFill(st layout.EffectiveStyle) color.Color {
	if st.BackgroundColor != nil {
		return colorFromLayout(*st.BackgroundColor)
	}
	return canvas.White
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * layout.PtToMm }
