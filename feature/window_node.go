package feature

import (
	"context"

	"github.com/rushteam/recprep/core"
	"github.com/rushteam/recprep/pipeline"
)

// WindowNode 是一个 Feature Node：为每条记录生成物品、类目、conformity、quality
// 四列长度为 Size 的历史窗口。各用户独立处理，不会跨用户泄漏。
type WindowNode struct {
	Size    int
	Workers int
}

func (n *WindowNode) Name() string        { return "feature.window" }
func (n *WindowNode) Kind() pipeline.Kind { return pipeline.KindFeature }

func (n *WindowNode) Process(ctx context.Context, frame *core.Frame) (*core.Frame, error) {
	if n.Size <= 0 {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidConfig, "history length must be positive")
	}
	records := frame.Records
	err := ForEachGroup(ctx, frame.Groups, n.Workers, func(g core.Group) error {
		rows := records[g.Start:g.End]
		items := make([]int32, len(rows))
		cats := make([]int32, len(rows))
		cons := make([]float32, len(rows))
		qlts := make([]float32, len(rows))
		for i := range rows {
			items[i] = rows[i].Item
			cats[i] = rows[i].Cat
			cons[i] = rows[i].Con
			qlts[i] = rows[i].Qlt
		}
		itemHis := Window(items, n.Size)
		catHis := Window(cats, n.Size)
		conHis := Window(cons, n.Size)
		qltHis := Window(qlts, n.Size)
		for i := range rows {
			rows[i].ItemHis = itemHis[i]
			rows[i].CatHis = catHis[i]
			rows[i].ConHis = conHis[i]
			rows[i].QltHis = qltHis[i]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return frame, nil
}
