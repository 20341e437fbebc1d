package model

// ListQuery 列表查询参数
type ListQuery struct {
	Search string
	Sort   string
	Desc   bool
	Skip   int
	Limit  int // 0 表示不限
}

// Page 列表结果
type Page[T any] struct {
	Total int `json:"total"`
	Data  []T `json:"data"`
}
