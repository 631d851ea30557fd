package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xiebiao/books-orders/pkg/jwt"
)

// 教学说明:集成测试辅助工具
// 这些测试对着真实运行的服务发HTTP请求,需要预先启动:
//   go run ./cmd/api
// 服务不可达时整组测试跳过,不算失败

const (
	// BaseURL API基础URL
	BaseURL = "http://localhost:8080/api/v1"
	// PingURL 健康检查URL
	PingURL = "http://localhost:8080/ping"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second

	// testJWTSecret 与config.yaml默认值一致(仅用于本地调试环境)
	testJWTSecret = "your-secret-key-change-in-production"
)

// Response 统一响应结构
type Response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details json.RawMessage `json:"details"`
}

// AuthorData 作者响应数据
type AuthorData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BookData 图书响应数据
type BookData struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Stock   int    `json:"stock"`
	Version int    `json:"version"`
}

// OrderData 订单响应数据
type OrderData struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// ConfirmData 确认响应数据
type ConfirmData struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// SkipIfServerDown 服务不可达时跳过测试
func SkipIfServerDown(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(PingURL)
	if err != nil {
		t.Skipf("服务未启动(%v),跳过集成测试", err)
	}
	resp.Body.Close()
}

// doJSON 发送请求并解析统一响应
func doJSON(t *testing.T, method, url string, data interface{}, headers map[string]string) *Response {
	t.Helper()

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "创建HTTP请求失败")
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	var result Response
	err = json.Unmarshal(raw, &result)
	require.NoError(t, err, "解析JSON响应失败: %s", string(raw))
	return &result
}

// PostJSON 发送租户作用域的POST请求
func PostJSON(t *testing.T, url string, data interface{}, tenantName string) *Response {
	return doJSON(t, http.MethodPost, url, data, map[string]string{"X-Tenant": tenantName})
}

// PostJSONWithKey 发送带幂等Key的POST请求
func PostJSONWithKey(t *testing.T, url string, data interface{}, tenantName, idempotencyKey string) *Response {
	return doJSON(t, http.MethodPost, url, data, map[string]string{
		"X-Tenant":        tenantName,
		"Idempotency-Key": idempotencyKey,
	})
}

// GetJSON 发送租户作用域的GET请求
func GetJSON(t *testing.T, url string, tenantName string) *Response {
	return doJSON(t, http.MethodGet, url, nil, map[string]string{"X-Tenant": tenantName})
}

// BootstrapTestTenant 初始化一个唯一的测试租户
// 管理员Token用本地调试密钥现签
func BootstrapTestTenant(t *testing.T) string {
	t.Helper()
	name := fmt.Sprintf("it_%d", time.Now().UnixNano()%1_000_000_000)

	token, err := jwt.NewManager(testJWTSecret, time.Hour).GenerateToken("integration-test")
	require.NoError(t, err, "签发管理员Token失败")

	resp := doJSON(t, http.MethodPost, BaseURL+"/tenants/"+name+"/bootstrap", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, 0, resp.Code, "租户初始化失败: %s", resp.Message)
	return name
}

// CreateTestAuthor 创建测试作者并返回ID
func CreateTestAuthor(t *testing.T, tenantName, name string) string {
	t.Helper()
	resp := PostJSON(t, BaseURL+"/authors", map[string]string{"name": name}, tenantName)
	require.Equal(t, 0, resp.Code, "创建作者失败: %s", resp.Message)

	var data AuthorData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data.ID
}

// CreateTestBook 创建测试图书并返回ID
func CreateTestBook(t *testing.T, tenantName, authorID, title string, stock int) string {
	t.Helper()
	resp := PostJSON(t, BaseURL+"/books", map[string]interface{}{
		"title":     title,
		"author_id": authorID,
		"price":     3900,
		"stock":     stock,
	}, tenantName)
	require.Equal(t, 0, resp.Code, "创建图书失败: %s", resp.Message)

	var data BookData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data.ID
}

// CreateDraftOrder 创建草稿订单并返回订单ID
func CreateDraftOrder(t *testing.T, tenantName string, lines []map[string]interface{}) string {
	t.Helper()
	resp := PostJSON(t, BaseURL+"/orders", map[string]interface{}{"lines": lines}, tenantName)
	require.Equal(t, 0, resp.Code, "创建订单失败: %s", resp.Message)

	var data OrderData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Equal(t, "DRAFT", data.Status)
	return data.OrderID
}
