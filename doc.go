// Package recprep 是推荐模型训练前的离线预处理工具（Recommendation Preprocessing）。
//
// 设计要点：
// - Pipeline-first: 预处理拆成 Node 串联（Ingest → Filter → Encode → Feature → Split → Sample）
// - 按用户分区并行: 窗口与时间计数只在用户内部计算，结果与并发度无关
// - 产物可复用: 三个划分与 manifest 写入 core.Store，配置不变时直接读回
package recprep

import "github.com/rushteam/recprep/pipeline"

// 轻量 facade：便于用户直接 import "recprep" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindIngest  = pipeline.KindIngest
	KindFilter  = pipeline.KindFilter
	KindEncode  = pipeline.KindEncode
	KindFeature = pipeline.KindFeature
	KindSplit   = pipeline.KindSplit
	KindSample  = pipeline.KindSample
)
