package filter

import (
	"context"
	"fmt"

	"github.com/rushteam/recprep/core"
	"github.com/rushteam/recprep/pipeline"
)

// FilterNode 是过滤 Node，可以组合多个过滤器，再做最少交互数过滤。
// 如果任何一个过滤器返回 true，该事件就会被移除。
type FilterNode struct {
	Filters []Filter

	// UserLimit / ItemLimit 是最少交互数，0 表示不限制。
	UserLimit int
	ItemLimit int
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(ctx context.Context, frame *core.Frame) (*core.Frame, error) {
	events := frame.Events
	if len(n.Filters) > 0 {
		out := events[:0:0]
		for i := range events {
			drop := false
			for _, f := range n.Filters {
				ok, err := f.ShouldFilter(ctx, &events[i])
				if err != nil {
					return nil, core.WrapDomainError(core.ModuleFilter, core.ErrorCodeInvalidInput,
						fmt.Sprintf("%s on event %d", f.Name(), events[i].Seq), err)
				}
				if ok {
					drop = true
					break
				}
			}
			if !drop {
				out = append(out, events[i])
			}
		}
		events = out
	}
	frame.Events = MinInteractions(events, n.UserLimit, n.ItemLimit)
	return frame, nil
}

// MinInteractions 反复剔除交互数少于 userLimit 的用户和少于 itemLimit 的物品，直到稳定。
// 剔除物品会让用户交互数下降，所以需要迭代。
func MinInteractions(events []core.Event, userLimit, itemLimit int) []core.Event {
	if userLimit <= 1 && itemLimit <= 1 {
		return events
	}
	for {
		users := make(map[string]int)
		items := make(map[string]int)
		for i := range events {
			users[events[i].UserID]++
			items[events[i].ItemID]++
		}
		out := make([]core.Event, 0, len(events))
		for i := range events {
			if users[events[i].UserID] < userLimit || items[events[i].ItemID] < itemLimit {
				continue
			}
			out = append(out, events[i])
		}
		if len(out) == len(events) {
			return out
		}
		events = out
	}
}
