package respond

// UserRespond 当前登录用户
// 使用位置:
//   - internal/handler/user_handler.go: Current
type UserRespond struct {
	ID  string `json:"id"`
	Dev bool   `json:"dev"`
}
