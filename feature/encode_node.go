package feature

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/recprep/core"
	"github.com/rushteam/recprep/pipeline"
)

// EncodeNode 是一个 Encode Node：
//  1. 在全量事件上拟合用户 / 物品 / 类目编码（物品与类目保留 0 作为 padding）
//  2. 按用户分组（用户 id 升序），组内按时间戳稳定排序
//  3. 生成基础 Record 与物品侧表，计算时间桶 unit_time
type EncodeNode struct {
	// TimeRange 是时间桶宽度（毫秒）
	TimeRange int64
}

func (n *EncodeNode) Name() string        { return "encode" }
func (n *EncodeNode) Kind() pipeline.Kind { return pipeline.KindEncode }

func (n *EncodeNode) Process(ctx context.Context, frame *core.Frame) (*core.Frame, error) {
	events := frame.Events
	if len(events) == 0 {
		return nil, core.NewDomainError(core.ModuleEncode, core.ErrorCodeInvalidInput, "no events to encode")
	}

	users := make([]string, len(events))
	items := make([]string, len(events))
	cats := make([]string, len(events))
	minTs := events[0].Timestamp
	for i := range events {
		if events[i].UserID == "" || events[i].ItemID == "" {
			return nil, core.NewDomainError(core.ModuleEncode, core.ErrorCodeInvalidInput,
				fmt.Sprintf("event %d: empty user or item id", events[i].Seq))
		}
		users[i] = events[i].UserID
		items[i] = events[i].ItemID
		cats[i] = events[i].Category
		if events[i].Timestamp < minTs {
			minTs = events[i].Timestamp
		}
	}
	userEnc := NewFrequencyEncoder(false).Fit(users)
	itemEnc := NewFrequencyEncoder(true).Fit(items)
	catEnc := NewNullableEncoder().Fit(cats)

	frame.Vocab = &core.Vocab{
		Users:   userEnc.Mapping,
		Items:   itemEnc.Mapping,
		Cats:    catEnc.Mapping,
		MaxItem: itemEnc.MaxCode(),
	}
	frame.Items = BuildItemTables(events, itemEnc, catEnc)

	timeRange := n.TimeRange
	if timeRange <= 0 {
		timeRange = 1
	}

	order, groups := GroupByUser(events)
	records := make([]core.Record, len(order))
	for pos, idx := range order {
		ev := &events[idx]
		records[pos] = core.Record{
			UserID:    ev.UserID,
			User:      userEnc.Encode(ev.UserID),
			Item:      itemEnc.Encode(ev.ItemID),
			Cat:       catEnc.Encode(ev.Category),
			Con:       float32(ev.Conformity),
			Qlt:       float32(ev.Quality),
			Timestamp: ev.Timestamp,
			UnitTime:  (ev.Timestamp - minTs) / timeRange,
		}
	}
	frame.Records = records
	frame.Groups = groups
	return frame, nil
}

// GroupByUser 返回按用户分组后的事件下标顺序及每个用户的区间。
// 用户按 id 升序排列；组内按时间戳稳定排序，时间戳相同时保持原始顺序。
func GroupByUser(events []core.Event) ([]int, []core.Group) {
	byUser := make(map[string][]int)
	for i := range events {
		byUser[events[i].UserID] = append(byUser[events[i].UserID], i)
	}
	userIDs := make([]string, 0, len(byUser))
	for u := range byUser {
		userIDs = append(userIDs, u)
	}
	sort.Strings(userIDs)

	order := make([]int, 0, len(events))
	groups := make([]core.Group, 0, len(userIDs))
	for _, u := range userIDs {
		idx := byUser[u]
		sort.SliceStable(idx, func(a, b int) bool {
			return events[idx[a]].Timestamp < events[idx[b]].Timestamp
		})
		start := len(order)
		order = append(order, idx...)
		groups = append(groups, core.Group{UserID: u, Start: start, End: len(order)})
	}
	return order, groups
}

// BuildItemTables 构建按物品编码索引的侧表：类目、最近一次 conformity 与 quality。
// “最近一次”按原始事件顺序取最后出现的值。
func BuildItemTables(events []core.Event, itemEnc, catEnc *FrequencyEncoder) *core.ItemTables {
	size := int(itemEnc.MaxCode()) + 1
	t := &core.ItemTables{
		Cat: make([]int32, size),
		Con: make([]float32, size),
		Qlt: make([]float32, size),
	}
	for i := range events {
		code := itemEnc.Encode(events[i].ItemID)
		t.Cat[code] = catEnc.Encode(events[i].Category)
		t.Con[code] = float32(events[i].Conformity)
		t.Qlt[code] = float32(events[i].Quality)
	}
	return t
}
