package layout

import "fmt"

// 布局错误均在首次检测处同步返回，不做内部重试：它们表示输入数据有误，而非瞬态故障。

// UnknownStyleError 表示引用了未定义的样式名。
type UnknownStyleError struct {
	Name string
}

func (e *UnknownStyleError) Error() string {
	return fmt.Sprintf("样式 %q 未定义", e.Name)
}

// CyclicStyleError 表示样式继承链存在循环。
type CyclicStyleError struct {
	Name string
}

func (e *CyclicStyleError) Error() string {
	return fmt.Sprintf("样式 %q 的继承链存在循环", e.Name)
}

// InvalidRangeError 表示表格样式规则在解析 -1 之后仍越界。
type InvalidRangeError struct {
	Rule     int // 规则在声明序列中的下标
	Row, Col int // 越界的行/列下标（未越界的一侧为 0）
	Rows     int
	Cols     int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("表格样式规则 #%d 越界: 行 %d / 列 %d 超出 %d×%d 表格",
		e.Rule, e.Row, e.Col, e.Rows, e.Cols)
}

// EmptyDocumentError 仅在严格模式下对零元素文档返回；默认策略是产出一个空页。
type EmptyDocumentError struct{}

func (e *EmptyDocumentError) Error() string {
	return "文档不含任何内容元素"
}

// LayoutInvariantViolation 表示某元素无法放入任何一页。
// 分页器从不静默丢弃内容，放不下一律报错。
type LayoutInvariantViolation struct {
	Index  int     // 元素在输入序列中的下标
	Height float64 // 元素高度
	Avail  float64 // 整页内容区高度
}

func (e *LayoutInvariantViolation) Error() string {
	return fmt.Sprintf("元素 #%d 高 %.2fmm，超出整页内容区 %.2fmm，无法放置", e.Index, e.Height, e.Avail)
}
