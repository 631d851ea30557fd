package tenant

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestValidName 租户名校验规则
func TestValidName(t *testing.T) {
	valid := []string{"acme", "acme-books", "tenant_01", "A1", strings.Repeat("a", 63)}
	for _, name := range valid {
		assert.True(t, ValidName(name), "应该合法: %s", name)
	}

	invalid := []string{
		"",
		"acme books",                // 空格
		"acme;DROP SCHEMA public",   // 注入
		`acme"b`,                    // 引号
		"中文租户",                      // 非ASCII
		strings.Repeat("a", 64),     // 超长
		"acme.books",                // 点号
	}
	for _, name := range invalid {
		assert.False(t, ValidName(name), "应该非法: %q", name)
	}
}

// TestContext 租户名经context往返
func TestContext(t *testing.T) {
	ctx := context.Background()

	_, ok := FromContext(ctx)
	assert.False(t, ok, "空context不应有租户")

	ctx = NewContext(ctx, "acme")
	name, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "acme", name)

	// 空字符串视为未设置
	_, ok = FromContext(NewContext(context.Background(), ""))
	assert.False(t, ok)
}
