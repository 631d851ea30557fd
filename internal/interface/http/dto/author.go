package dto

// CreateAuthorRequest HTTP创建作者请求
type CreateAuthorRequest struct {
	Name  string `json:"name" binding:"required,max=200" example:"王小波"`
	Email string `json:"email" binding:"omitempty,email,max=254" example:"wang@example.com"`
}

// AuthorResponse HTTP作者响应
type AuthorResponse struct {
	ID        string `json:"id" example:"4e8d5a1c-9f3b-4a6e-8c2d-1b7f9e0a3c5d"`
	Name      string `json:"name" example:"王小波"`
	Email     string `json:"email,omitempty" example:"wang@example.com"`
	CreatedAt string `json:"created_at" example:"2024-01-15 10:30:00"`
}

// ListAuthorsRequest HTTP作者列表请求
type ListAuthorsRequest struct {
	Q      string `form:"q" binding:"omitempty,max=100" example:"王"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100" example:"20"`
	Offset int    `form:"offset" binding:"omitempty,min=0" example:"0"`
}
