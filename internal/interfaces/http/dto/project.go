package dto

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}

// UpdateOutlineRequest 更新项目总大纲请求
type UpdateOutlineRequest struct {
	Outline string `json:"outline"`
}

// MessageResponse 仅携带提示信息的响应体
type MessageResponse struct {
	Message string `json:"message"`
}
