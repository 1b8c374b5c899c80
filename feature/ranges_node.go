package feature

import (
	"context"

	"github.com/rushteam/recprep/core"
	"github.com/rushteam/recprep/pipeline"
)

// RangeNode 是一个 Feature Node：计算 mid_len / short_len。
// Mid、Short 为窗口时长（毫秒），要求 Short <= Mid，从而保证 short_len <= mid_len。
type RangeNode struct {
	Mid     int64
	Short   int64
	Workers int
}

func (n *RangeNode) Name() string        { return "feature.ranges" }
func (n *RangeNode) Kind() pipeline.Kind { return pipeline.KindFeature }

func (n *RangeNode) Process(ctx context.Context, frame *core.Frame) (*core.Frame, error) {
	if n.Mid < 0 || n.Short < 0 || n.Short > n.Mid {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidConfig,
			"range windows must satisfy 0 <= short <= mid")
	}
	records := frame.Records
	err := ForEachGroup(ctx, frame.Groups, n.Workers, func(g core.Group) error {
		rows := records[g.Start:g.End]
		ts := make([]int64, len(rows))
		for i := range rows {
			ts[i] = rows[i].Timestamp
		}
		mid := RangeCounts(ts, n.Mid)
		short := RangeCounts(ts, n.Short)
		for i := range rows {
			rows[i].MidLen = mid[i]
			rows[i].ShortLen = short[i]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return frame, nil
}
