package dto

// CreateBookRequest HTTP创建图书请求
// PublishedAt接受YYYY-MM-DD格式
type CreateBookRequest struct {
	Title       string `json:"title" binding:"required,max=500" example:"黄金时代"`
	AuthorID    string `json:"author_id" binding:"required,uuid" example:"4e8d5a1c-9f3b-4a6e-8c2d-1b7f9e0a3c5d"`
	Price       int64  `json:"price" binding:"min=0" example:"3900"` // 价格(分)
	Stock       int    `json:"stock" binding:"min=0" example:"100"`
	PublishedAt string `json:"published_at" binding:"omitempty,datetime=2006-01-02" example:"1994-06-01"`
}

// BookResponse HTTP图书响应
type BookResponse struct {
	ID          string `json:"id" example:"7a1b2c3d-4e5f-6a7b-8c9d-0e1f2a3b4c5d"`
	Title       string `json:"title" example:"黄金时代"`
	AuthorID    string `json:"author_id" example:"4e8d5a1c-9f3b-4a6e-8c2d-1b7f9e0a3c5d"`
	Price       int64  `json:"price" example:"3900"` // 价格(分)
	Stock       int    `json:"stock" example:"100"`
	PublishedAt string `json:"published_at,omitempty" example:"1994-06-01"`
	Version     int    `json:"version" example:"1"`
	CreatedAt   string `json:"created_at" example:"2024-01-15 10:30:00"`
}

// ListBooksRequest HTTP图书列表请求
type ListBooksRequest struct {
	AuthorID string `form:"author_id" binding:"omitempty,uuid"`
	Q        string `form:"q" binding:"omitempty,max=100" example:"黄金"`
	Sort     string `form:"sort" binding:"omitempty,oneof=created_at title published_at" example:"created_at"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100" example:"20"`
	Offset   int    `form:"offset" binding:"omitempty,min=0" example:"0"`
}
