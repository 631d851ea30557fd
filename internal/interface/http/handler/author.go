package handler

import (
	"github.com/gin-gonic/gin"

	appauthor "github.com/xiebiao/books-orders/internal/application/author"
	"github.com/xiebiao/books-orders/internal/interface/http/dto"
	"github.com/xiebiao/books-orders/pkg/response"
)

// AuthorHandler 作者HTTP处理器
type AuthorHandler struct {
	createAuthorUseCase *appauthor.CreateAuthorUseCase
	listAuthorsUseCase  *appauthor.ListAuthorsUseCase
}

// NewAuthorHandler 创建作者处理器
func NewAuthorHandler(
	createAuthorUseCase *appauthor.CreateAuthorUseCase,
	listAuthorsUseCase *appauthor.ListAuthorsUseCase,
) *AuthorHandler {
	return &AuthorHandler{
		createAuthorUseCase: createAuthorUseCase,
		listAuthorsUseCase:  listAuthorsUseCase,
	}
}

// Create 创建作者
// @Summary      创建作者
// @Tags         作者
// @Accept       json
// @Produce      json
// @Param        X-Tenant header string true "租户名"
// @Param        request body dto.CreateAuthorRequest true "作者信息"
// @Success      200 {object} response.Response{data=dto.AuthorResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "姓名或邮箱重复"
// @Router       /api/v1/authors [post]
func (h *AuthorHandler) Create(c *gin.Context) {
	var req dto.CreateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40901, "参数错误: "+err.Error())
		return
	}

	result, err := h.createAuthorUseCase.Execute(c.Request.Context(), appauthor.CreateAuthorRequest{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.AuthorResponse{
		ID:        result.ID,
		Name:      result.Name,
		Email:     result.Email,
		CreatedAt: result.CreatedAt,
	})
}

// List 作者列表
// @Summary      作者列表
// @Tags         作者
// @Produce      json
// @Param        X-Tenant header string true "租户名"
// @Param        q query string false "姓名模糊搜索"
// @Param        limit query int false "每页数量(默认20,最大100)"
// @Param        offset query int false "偏移量"
// @Success      200 {object} response.Response{data=response.ListData}
// @Router       /api/v1/authors [get]
func (h *AuthorHandler) List(c *gin.Context) {
	var req dto.ListAuthorsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithCode(c, 40901, "参数错误: "+err.Error())
		return
	}

	items, err := h.listAuthorsUseCase.Execute(c.Request.Context(), appauthor.ListAuthorsRequest{
		Query:  req.Q,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	limit, offset := appauthor.NormalizePage(req.Limit, req.Offset)
	list := make([]dto.AuthorResponse, len(items))
	for i, item := range items {
		list[i] = dto.AuthorResponse{
			ID:        item.ID,
			Name:      item.Name,
			Email:     item.Email,
			CreatedAt: item.CreatedAt,
		}
	}
	response.SuccessWithList(c, list, limit, offset, len(list))
}
