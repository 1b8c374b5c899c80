package filter

import (
	"context"

	"github.com/rushteam/recprep/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉黑名单用户或物品的交互（例如测试账号、下架物品）。
type BlacklistFilter struct {
	users map[string]struct{}
	items map[string]struct{}
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(userIDs, itemIDs []string) *BlacklistFilter {
	f := &BlacklistFilter{
		users: make(map[string]struct{}, len(userIDs)),
		items: make(map[string]struct{}, len(itemIDs)),
	}
	for _, id := range userIDs {
		f.users[id] = struct{}{}
	}
	for _, id := range itemIDs {
		f.items[id] = struct{}{}
	}
	return f
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(_ context.Context, ev *core.Event) (bool, error) {
	if ev == nil {
		return true, nil
	}
	if _, ok := f.users[ev.UserID]; ok {
		return true, nil
	}
	_, ok := f.items[ev.ItemID]
	return ok, nil
}
