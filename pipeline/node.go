package pipeline

import (
	"context"

	"github.com/rushteam/recprep/core"
)

// Kind 用于标记 Node 类型，方便日志按阶段打点。
type Kind string

const (
	KindIngest  Kind = "ingest"  // 读取与归一化：原始日志 -> Event
	KindFilter  Kind = "filter"  // 过滤阶段：剔除不满足条件的 Event
	KindEncode  Kind = "encode"  // 编码阶段：稀疏 id -> 稠密编码，按用户分组
	KindFeature Kind = "feature" // 特征阶段：历史窗口、时间窗口计数
	KindSplit   Kind = "split"   // 划分阶段：train / valid / test
	KindSample  Kind = "sample"  // 负采样阶段
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 Frame -> 输出 Frame”的形态，各阶段只追加自己负责的字段。
type Node interface {
	Name() string
	Kind() Kind

	Process(ctx context.Context, frame *core.Frame) (*core.Frame, error)
}
