package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appauthor "github.com/xiebiao/books-orders/internal/application/author"
	appbook "github.com/xiebiao/books-orders/internal/application/book"
	"github.com/xiebiao/books-orders/internal/interface/http/dto"
	"github.com/xiebiao/books-orders/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	createBookUseCase *appbook.CreateBookUseCase
	listBooksUseCase  *appbook.ListBooksUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	createBookUseCase *appbook.CreateBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
) *BookHandler {
	return &BookHandler{
		createBookUseCase: createBookUseCase,
		listBooksUseCase:  listBooksUseCase,
	}
}

// Create 创建图书
// @Summary      创建图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        X-Tenant header string true "租户名"
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误或作者不存在"
// @Failure      409 {object} response.Response "同作者同年份的同名图书已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40901, "参数错误: "+err.Error())
		return
	}

	authorID, err := uuid.Parse(req.AuthorID)
	if err != nil {
		response.ErrorWithCode(c, 40901, "author_id格式错误")
		return
	}

	var publishedAt *time.Time
	if req.PublishedAt != "" {
		t, err := time.Parse("2006-01-02", req.PublishedAt)
		if err != nil {
			response.ErrorWithCode(c, 40901, "published_at格式错误,应为YYYY-MM-DD")
			return
		}
		publishedAt = &t
	}

	result, err := h.createBookUseCase.Execute(c.Request.Context(), appbook.CreateBookRequest{
		Title:       req.Title,
		AuthorID:    authorID,
		Price:       req.Price,
		Stock:       req.Stock,
		PublishedAt: publishedAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.BookResponse{
		ID:          result.ID,
		Title:       result.Title,
		AuthorID:    result.AuthorID,
		Price:       result.Price,
		Stock:       result.Stock,
		PublishedAt: result.PublishedAt,
		Version:     result.Version,
		CreatedAt:   result.CreatedAt,
	})
}

// List 图书列表
// @Summary      图书列表
// @Tags         图书
// @Produce      json
// @Param        X-Tenant header string true "租户名"
// @Param        author_id query string false "按作者过滤"
// @Param        q query string false "标题模糊搜索"
// @Param        sort query string false "排序字段" Enums(created_at, title, published_at)
// @Param        limit query int false "每页数量(默认20,最大100)"
// @Param        offset query int false "偏移量"
// @Success      200 {object} response.Response{data=response.ListData}
// @Router       /api/v1/books [get]
func (h *BookHandler) List(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40901, "参数错误: "+err.Error())
		return
	}

	var authorID *uuid.UUID
	if req.AuthorID != "" {
		id, err := uuid.Parse(req.AuthorID)
		if err != nil {
			response.ErrorWithCode(c, 40901, "author_id格式错误")
			return
		}
		authorID = &id
	}

	items, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		AuthorID: authorID,
		Keyword:  req.Q,
		Sort:     req.Sort,
		Limit:    req.Limit,
		Offset:   req.Offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, offset := appauthor.NormalizePage(req.Limit, req.Offset)
	list := make([]dto.BookResponse, len(items))
	for i, item := range items {
		list[i] = dto.BookResponse{
			ID:          item.ID,
			Title:       item.Title,
			AuthorID:    item.AuthorID,
			Price:       item.Price,
			Stock:       item.Stock,
			PublishedAt: item.PublishedAt,
			Version:     item.Version,
			CreatedAt:   item.CreatedAt,
		}
	}
	response.SuccessWithList(c, list, limit, offset, len(list))
}
