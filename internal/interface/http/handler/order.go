package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apporder "github.com/xiebiao/books-orders/internal/application/order"
	"github.com/xiebiao/books-orders/internal/interface/http/dto"
	"github.com/xiebiao/books-orders/pkg/response"
)

// HeaderIdempotencyKey 幂等键请求头
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotentReplay 重放标记响应头(重放时为true)
const HeaderIdempotentReplay = "X-Idempotent-Replay"

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	createOrderUseCase  *apporder.CreateOrderUseCase
	confirmOrderUseCase *apporder.ConfirmOrderUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createOrderUseCase *apporder.CreateOrderUseCase,
	confirmOrderUseCase *apporder.ConfirmOrderUseCase,
) *OrderHandler {
	return &OrderHandler{
		createOrderUseCase:  createOrderUseCase,
		confirmOrderUseCase: confirmOrderUseCase,
	}
}

// Create 创建草稿订单
// @Summary      创建草稿订单
// @Description  只建草稿不碰库存,库存在确认时扣减
// @Tags         订单
// @Accept       json
// @Produce      json
// @Param        X-Tenant header string true "租户名"
// @Param        request body dto.CreateOrderRequest true "订单明细"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "引用的图书不存在"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40901, "参数错误: "+err.Error())
		return
	}

	lines := make([]apporder.CreateOrderLine, len(req.Lines))
	for i, l := range req.Lines {
		productID, err := uuid.Parse(l.ProductID)
		if err != nil {
			response.ErrorWithCode(c, 40901, "product_id格式错误")
			return
		}
		lines[i] = apporder.CreateOrderLine{ProductID: productID, Qty: l.Qty}
	}

	result, err := h.createOrderUseCase.Execute(c.Request.Context(), apporder.CreateOrderRequest{
		Lines: lines,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	respLines := make([]dto.OrderLineResponse, len(result.Lines))
	for i, l := range result.Lines {
		respLines[i] = dto.OrderLineResponse{
			ProductID: l.ProductID,
			Qty:       l.Qty,
			Position:  l.Position,
		}
	}
	response.Success(c, &dto.OrderResponse{
		OrderID:   result.OrderID,
		Status:    result.Status,
		Lines:     respLines,
		CreatedAt: result.CreatedAt,
	})
}

// Confirm 确认订单
// @Summary      确认订单
// @Description  扣减库存并把订单翻到CONFIRMED。带Idempotency-Key时重复请求原样重放首次响应
// @Tags         订单
// @Produce      json
// @Param        X-Tenant header string true "租户名"
// @Param        Idempotency-Key header string false "幂等键(租户内唯一)"
// @Param        id path string true "订单ID"
// @Success      200 {object} response.Response{data=dto.ConfirmOrderResponse}
// @Failure      404 {object} response.Response "订单不存在"
// @Failure      409 {object} response.Response "库存不足(details带缺货清单)或订单已取消"
// @Router       /api/v1/orders/{id}/confirm [post]
func (h *OrderHandler) Confirm(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ErrorWithCode(c, 40901, "订单ID格式错误")
		return
	}

	result, err := h.confirmOrderUseCase.Execute(c.Request.Context(), apporder.ConfirmOrderRequest{
		OrderID:        orderID,
		IdempotencyKey: c.GetHeader(HeaderIdempotencyKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Replayed {
		c.Header(HeaderIdempotentReplay, "true")
	}
	// data直接嵌入存档原文(json.RawMessage原样输出),保证重放字节级一致
	response.Success(c, json.RawMessage(result.Body))
}
