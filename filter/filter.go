// Package filter 在归一化之后、编码之前剔除交互事件。
package filter

import (
	"context"

	"github.com/rushteam/recprep/core"
)

// Filter 是事件级过滤器的抽象接口。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断事件是否应该被过滤
	ShouldFilter(ctx context.Context, ev *core.Event) (bool, error)
}
