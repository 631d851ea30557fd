package dto

// BootstrapTenantResponse HTTP租户初始化响应
type BootstrapTenantResponse struct {
	Tenant string `json:"tenant" example:"acme"`
	Status string `json:"status" example:"ready"`
}
