package dto

// CreateOrderRequest HTTP下单请求
type CreateOrderRequest struct {
	Lines []CreateOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// CreateOrderLineRequest 订单行
type CreateOrderLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Qty       int    `json:"qty" binding:"required,min=1,max=9999"`
}

// OrderLineResponse HTTP订单行响应
type OrderLineResponse struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty" example:"2"`
	Position  int    `json:"position" example:"1"`
}

// OrderResponse HTTP订单响应
type OrderResponse struct {
	OrderID   string              `json:"order_id"`
	Status    string              `json:"status" example:"DRAFT"`
	Lines     []OrderLineResponse `json:"lines"`
	CreatedAt string              `json:"created_at" example:"2024-01-15 10:30:00"`
}

// ConfirmOrderResponse HTTP确认响应(与存档的幂等响应结构一致)
// 仅用于swagger文档:实际响应体按字节原样输出,见OrderHandler.Confirm
type ConfirmOrderResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status" example:"CONFIRMED"`
	CreatedAt string `json:"created_at" example:"2024-01-15T02:30:00Z"`
}
