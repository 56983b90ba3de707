package service

import "math"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// maxOffset 超大页码截断到此偏移，避免 (page-1)*pageSize 溢出
	maxOffset = math.MaxInt32
)

// Pager 规范化 page / pageSize
type Pager struct {
	DefaultSize int
	MaxSize     int
}

// Window 返回 offset 与 limit，page 从 1 开始
func (p Pager) Window(page, pageSize int) (offset, limit int) {
	def, maxSize := p.DefaultSize, p.MaxSize
	if def < 1 {
		def = DefaultPageSize
	}
	if maxSize < def {
		maxSize = def
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = def
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}
	if page-1 > maxOffset/pageSize {
		page = maxOffset/pageSize + 1
	}
	return (page - 1) * pageSize, pageSize
}
