package respond

// SuccessRespond 无返回数据的写操作
type SuccessRespond struct {
	Success bool `json:"success"`
}

// ErrorRespond 单条错误
type ErrorRespond struct {
	ErrorCode int    `json:"errorCode"`
	Error     string `json:"error"`
}
