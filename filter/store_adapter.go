package filter

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/rushteam/moviekit/core"
)

// StoreAdapter 将 core.Store 适配为过滤器所需的存储接口。
type StoreAdapter struct {
	store core.Store
}

// NewStoreAdapter 创建一个 core.Store 适配器。
func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

// GetBlacklist 从 Store 读取黑名单，value 为 JSON 字符串数组。
// key 不存在时返回空列表。
func (a *StoreAdapter) GetBlacklist(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var titles []string
	if err := json.Unmarshal(data, &titles); err != nil {
		return nil, err
	}
	return titles, nil
}

// PutBlacklist 把黑名单写入 Store。
func (a *StoreAdapter) PutBlacklist(ctx context.Context, key string, titles []string) error {
	data, err := json.Marshal(titles)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, key, data)
}
