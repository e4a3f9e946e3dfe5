package request

// ListFeatureRequest 分页查询功能请求
// 使用位置:
//   - internal/handler/feature_request_handler.go: List
type ListFeatureRequest struct {
	Amount         int    `form:"amount" binding:"omitempty,min=0"`
	Offset         int    `form:"offset" binding:"omitempty,min=0"`
	Filter         string `form:"filter"`
	IncludePending bool   `form:"includePending"`
}

// GetFeatureRequest 读取单个功能请求
type GetFeatureRequest struct {
	ID string `form:"id" binding:"required"`
}

// AddFeatureRequest 提交功能请求
// 标题与正文的长度规则由投票系统配置决定，这里不做限制
type AddFeatureRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// FeatureIDRequest 审核 / 删除请求
type FeatureIDRequest struct {
	FeatureID string `json:"featureId" binding:"required"`
}

// VoteRequest 投票请求，Type 为 "up" / "down"，留空视为 "up"
type VoteRequest struct {
	FeatureID string `json:"featureId" binding:"required"`
	Type      string `json:"type"`
}

// FeatureEditRequest 批量编辑中的单项
type FeatureEditRequest struct {
	ID      string `json:"id" binding:"required"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Pending *bool  `json:"pending"`
}
