package handler

import (
	"github.com/gin-gonic/gin"

	apptenant "github.com/xiebiao/books-orders/internal/application/tenant"
	"github.com/xiebiao/books-orders/internal/interface/http/dto"
	"github.com/xiebiao/books-orders/pkg/response"
)

// TenantHandler 租户HTTP处理器(管理面)
type TenantHandler struct {
	bootstrapUseCase *apptenant.BootstrapUseCase
}

// NewTenantHandler 创建租户处理器
func NewTenantHandler(bootstrapUseCase *apptenant.BootstrapUseCase) *TenantHandler {
	return &TenantHandler{bootstrapUseCase: bootstrapUseCase}
}

// Bootstrap 初始化租户
// @Summary      初始化租户
// @Description  创建租户schema并迁移表结构,幂等操作。需管理员Token
// @Tags         租户
// @Produce      json
// @Security     BearerAuth
// @Param        tenant path string true "租户名([a-zA-Z0-9_-]{1,63})"
// @Success      200 {object} response.Response{data=dto.BootstrapTenantResponse}
// @Failure      400 {object} response.Response "租户名不合法"
// @Failure      401 {object} response.Response "未认证或非管理员"
// @Router       /api/v1/tenants/{tenant}/bootstrap [post]
func (h *TenantHandler) Bootstrap(c *gin.Context) {
	result, err := h.bootstrapUseCase.Execute(c.Request.Context(), c.Param("tenant"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.BootstrapTenantResponse{
		Tenant: result.Tenant,
		Status: result.Status,
	})
}
