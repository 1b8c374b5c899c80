// Package split 按用户把时间有序的记录划分为 train / valid / test。
package split

import (
	"context"

	"github.com/rushteam/recprep/core"
	"github.com/rushteam/recprep/pipeline"
)

// Assign 对每个用户：train 为除最后两条外的全部，valid 为倒数第二条，test 为最后一条。
//
// 少于 3 条的用户按尾部切片处理，缺失的部分为空，不报错：
//   - 2 条：train 为空，valid 为第一条，test 为第二条
//   - 1 条：train、valid 为空，test 为该条
//
// 输出按分组顺序拼接（不按全局时间排序），train 内保持时间顺序。
func Assign(records []core.Record, groups []core.Group) map[core.SplitKind][]core.Record {
	train := make([]core.Record, 0, len(records))
	valid := make([]core.Record, 0, len(groups))
	test := make([]core.Record, 0, len(groups))

	for _, g := range groups {
		rows := records[g.Start:g.End]
		n := len(rows)
		if n > 2 {
			train = append(train, rows[:n-2]...)
		}
		if n >= 2 {
			valid = append(valid, rows[n-2])
		}
		if n >= 1 {
			test = append(test, rows[n-1])
		}
	}

	return map[core.SplitKind][]core.Record{
		core.SplitTrain: train,
		core.SplitValid: valid,
		core.SplitTest:  test,
	}
}

// Candidates 组装测试集排序候选：负样本补零到 k 个，再把正样本放在第 k 位（下标 k）。
// 正样本不会替换任何负样本，位置固定便于排序评估。
func Candidates(negatives []int32, k int, positive int32) []int32 {
	out := make([]int32, k+1)
	copy(out, negatives[:min(len(negatives), k)])
	out[k] = positive
	return out
}

// Node 是一个 Split Node，把 Frame.Records 划分到 Frame.Sets。
type Node struct{}

func (n *Node) Name() string        { return "split" }
func (n *Node) Kind() pipeline.Kind { return pipeline.KindSplit }

func (n *Node) Process(ctx context.Context, frame *core.Frame) (*core.Frame, error) {
	frame.Sets = Assign(frame.Records, frame.Groups)
	return frame, nil
}
