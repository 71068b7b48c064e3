package service

import "errors"

// 业务错误哨兵，处理器用 errors.Is 映射 HTTP 状态码
var (
	ErrNotFound          = errors.New("记录不存在")
	ErrInsufficientStock = errors.New("库存不足")
	ErrInvalidQuantity   = errors.New("数量必须大于0")
	ErrOverReceipt       = errors.New("到货数量超过采购数量")
	ErrStateConflict     = errors.New("当前状态不允许该操作")
	ErrDuplicate         = errors.New("记录已存在")
)
