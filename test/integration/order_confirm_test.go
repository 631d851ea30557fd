package integration

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明:订单确认集成测试
//
// 测试场景覆盖:
// 1. 正常确认(库存扣减+状态翻转)
// 2. 库存不足(缺货清单+订单保持DRAFT)
// 3. 幂等重放(同Key二次请求原样返回)
// 4. 并发确认同一图书库存(不超卖)

func TestOrderConfirm(t *testing.T) {
	SkipIfServerDown(t)
	tenantName := BootstrapTestTenant(t)
	authorID := CreateTestAuthor(t, tenantName, "集成测试作者")

	t.Run("正常确认", func(t *testing.T) {
		bookID := CreateTestBook(t, tenantName, authorID, "《确认测试》", 10)
		orderID := CreateDraftOrder(t, tenantName, []map[string]interface{}{
			{"product_id": bookID, "qty": 3},
		})

		resp := PostJSON(t, BaseURL+"/orders/"+orderID+"/confirm", nil, tenantName)
		require.Equal(t, 0, resp.Code, "确认失败: %s", resp.Message)

		var data ConfirmData
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, orderID, data.ID)
		assert.Equal(t, "CONFIRMED", data.Status)
		assert.NotEmpty(t, data.CreatedAt, "响应携带订单创建时间")
	})

	t.Run("重复确认是幂等成功", func(t *testing.T) {
		bookID := CreateTestBook(t, tenantName, authorID, "《重复确认测试》", 10)
		orderID := CreateDraftOrder(t, tenantName, []map[string]interface{}{
			{"product_id": bookID, "qty": 2},
		})

		first := PostJSON(t, BaseURL+"/orders/"+orderID+"/confirm", nil, tenantName)
		require.Equal(t, 0, first.Code)

		second := PostJSON(t, BaseURL+"/orders/"+orderID+"/confirm", nil, tenantName)
		assert.Equal(t, 0, second.Code, "已确认订单再次确认应幂等成功")
		// 时间戳来自订单创建时间,不带Key的重复确认响应也完全一致
		assert.Equal(t, string(first.Data), string(second.Data))
	})

	t.Run("库存不足返回缺货清单", func(t *testing.T) {
		bookID := CreateTestBook(t, tenantName, authorID, "《缺货测试》", 1)
		orderID := CreateDraftOrder(t, tenantName, []map[string]interface{}{
			{"product_id": bookID, "qty": 5},
		})

		resp := PostJSON(t, BaseURL+"/orders/"+orderID+"/confirm", nil, tenantName)
		assert.Equal(t, 40001, resp.Code, "应返回库存不足错误码")
		assert.Contains(t, string(resp.Details), bookID, "details应携带缺货图书ID")
		assert.Contains(t, string(resp.Details), `"available":1`)

		// 订单保持DRAFT:补库存后可重新确认
		bookID2 := CreateTestBook(t, tenantName, authorID, "《缺货测试2》", 100)
		_ = bookID2
		retry := PostJSON(t, BaseURL+"/orders/"+orderID+"/confirm", nil, tenantName)
		assert.Equal(t, 40001, retry.Code, "库存未补,重试仍然缺货")
	})

	t.Run("幂等Key重放", func(t *testing.T) {
		bookID := CreateTestBook(t, tenantName, authorID, "《幂等测试》", 10)
		orderID := CreateDraftOrder(t, tenantName, []map[string]interface{}{
			{"product_id": bookID, "qty": 4},
		})
		key := fmt.Sprintf("it-key-%d", time.Now().UnixNano())

		first := PostJSONWithKey(t, BaseURL+"/orders/"+orderID+"/confirm", nil, tenantName, key)
		require.Equal(t, 0, first.Code)

		second := PostJSONWithKey(t, BaseURL+"/orders/"+orderID+"/confirm", nil, tenantName, key)
		require.Equal(t, 0, second.Code)
		// 存档原文重放:data部分字节级一致
		assert.Equal(t, string(first.Data), string(second.Data))
	})

	t.Run("并发确认不超卖", func(t *testing.T) {
		// 库存10,两张各要8的订单并发确认:只有一张能成功
		bookID := CreateTestBook(t, tenantName, authorID, "《并发测试》", 10)
		orderA := CreateDraftOrder(t, tenantName, []map[string]interface{}{
			{"product_id": bookID, "qty": 8},
		})
		orderB := CreateDraftOrder(t, tenantName, []map[string]interface{}{
			{"product_id": bookID, "qty": 8},
		})

		var wg sync.WaitGroup
		results := make([]int, 2)
		for i, orderID := range []string{orderA, orderB} {
			wg.Add(1)
			go func(i int, id string) {
				defer wg.Done()
				resp := PostJSON(t, BaseURL+"/orders/"+id+"/confirm", nil, tenantName)
				results[i] = resp.Code
			}(i, orderID)
		}
		wg.Wait()

		succeeded := 0
		for _, code := range results {
			if code == 0 {
				succeeded++
			}
		}
		assert.Equal(t, 1, succeeded, "库存只够一张订单,恰好一个确认成功: %v", results)
	})
}

func TestTenantIsolation(t *testing.T) {
	SkipIfServerDown(t)

	// 两个租户各建各的数据,互相看不见
	tenantA := BootstrapTestTenant(t)
	tenantB := BootstrapTestTenant(t)

	authorA := CreateTestAuthor(t, tenantA, "租户A作者")
	bookA := CreateTestBook(t, tenantA, authorA, "《租户A的书》", 5)

	// 租户B用租户A的图书ID下单:图书不存在
	resp := PostJSON(t, BaseURL+"/orders", map[string]interface{}{
		"lines": []map[string]interface{}{{"product_id": bookA, "qty": 1}},
	}, tenantB)
	assert.NotEqual(t, 0, resp.Code, "跨租户引用图书应失败")

	// 租户B的图书列表为空
	list := GetJSON(t, BaseURL+"/books", tenantB)
	assert.Equal(t, 0, list.Code)
	assert.NotContains(t, string(list.Data), bookA)
}

func TestTenantBootstrapGuard(t *testing.T) {
	SkipIfServerDown(t)

	// 没有管理员Token不能初始化租户
	resp := doJSON(t, "POST", BaseURL+"/tenants/unauthorized_tenant/bootstrap", nil, nil)
	assert.NotEqual(t, 0, resp.Code, "无Token应被拒绝")
}
