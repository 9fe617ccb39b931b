package domain

import "errors"

var (
	// ErrValidation 輸入驗證失敗，拒於任何持久化之前
	ErrValidation = errors.New("validation failed")
	// ErrPersistence Store 寫入失敗，請求終止且不發布
	ErrPersistence = errors.New("persistence failed")
	// ErrPublish broker 發布失敗，訊息已持久化但可能到不了線上訂閱者
	ErrPublish = errors.New("publish failed")
	// ErrQuery Store 讀取失敗
	ErrQuery = errors.New("query failed")
)
