package config

import (
	"github.com/rushteam/recprep/core"
	"github.com/rushteam/recprep/feature"
	"github.com/rushteam/recprep/filter"
	"github.com/rushteam/recprep/ingest"
	"github.com/rushteam/recprep/pipeline"
	"github.com/rushteam/recprep/pkg/conv"
	"github.com/rushteam/recprep/pkg/logger"
	"github.com/rushteam/recprep/sample"
	"github.com/rushteam/recprep/split"
)

// DefaultNodes 是未配置 pipeline.nodes 时的阶段顺序。
// filter 在没有任何过滤条件时不改变事件。
var DefaultNodes = []string{
	"ingest.load",
	"ingest.normalize",
	"filter",
	"encode",
	"feature.window",
	"feature.ranges",
	"split",
	"sample.negative",
}

// DefaultFactory 返回注册了全部内置 Node 的工厂。
// 每个 Node 以 cfg 中的全局取值为默认值，节点级 config 可以覆盖。
func DefaultFactory(cfg *Config, log *logger.Logger) *pipeline.NodeFactory {
	b := &builders{cfg: cfg, log: logger.OrNop(log)}
	factory := pipeline.NewNodeFactory()

	factory.Register("ingest.load", b.load)
	factory.Register("ingest.normalize", b.normalize)
	factory.Register("filter", b.filter)
	factory.Register("encode", b.encode)
	factory.Register("feature.window", b.window)
	factory.Register("feature.ranges", b.ranges)
	factory.Register("split", b.split)
	factory.Register("sample.negative", b.negative)

	return factory
}

// BuildPipeline 按 cfg.Pipeline 构建 Pipeline，未配置节点时使用 DefaultNodes。
func BuildPipeline(cfg *Config, log *logger.Logger) (*pipeline.Pipeline, error) {
	spec := cfg.Pipeline
	if len(spec.Nodes) == 0 {
		spec.Nodes = make([]pipeline.NodeConfig, 0, len(DefaultNodes))
		for _, t := range DefaultNodes {
			spec.Nodes = append(spec.Nodes, pipeline.NodeConfig{Type: t})
		}
	}
	p, err := spec.Build(DefaultFactory(cfg, log))
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig, "build pipeline", err)
	}
	p.Logger = log
	return p, nil
}

type builders struct {
	cfg *Config
	log *logger.Logger
}

func (b *builders) load(c map[string]interface{}) (pipeline.Node, error) {
	return &ingest.Load{
		ReviewsPath: conv.ConfigGet(c, "reviews", b.cfg.Input.Reviews),
		MetaPath:    conv.ConfigGet(c, "meta", b.cfg.Input.Meta),
	}, nil
}

func (b *builders) normalize(map[string]interface{}) (pipeline.Node, error) {
	return &ingest.Normalize{}, nil
}

func (b *builders) filter(c map[string]interface{}) (pipeline.Node, error) {
	node := &filter.FilterNode{
		UserLimit: conv.ConfigGetInt(c, "user_limit", b.cfg.Filter.UserLimit),
		ItemLimit: conv.ConfigGetInt(c, "item_limit", b.cfg.Filter.ItemLimit),
	}
	if expr := conv.ConfigGet(c, "expr", b.cfg.Filter.Expr); expr != "" {
		f, err := filter.NewExprFilter(expr)
		if err != nil {
			return nil, err
		}
		node.Filters = append(node.Filters, f)
	}
	users := conv.SliceAnyToString(c["block_users"])
	items := conv.SliceAnyToString(c["block_items"])
	if len(users) > 0 || len(items) > 0 {
		node.Filters = append(node.Filters, filter.NewBlacklistFilter(users, items))
	}
	return node, nil
}

func (b *builders) encode(c map[string]interface{}) (pipeline.Node, error) {
	return &feature.EncodeNode{
		TimeRange: conv.ConfigGetInt64(c, "time_range", b.cfg.TimeRange),
	}, nil
}

func (b *builders) window(c map[string]interface{}) (pipeline.Node, error) {
	return &feature.WindowNode{
		Size:    conv.ConfigGetInt(c, "history_len", b.cfg.HistoryLen),
		Workers: conv.ConfigGetInt(c, "workers", b.cfg.Workers),
	}, nil
}

func (b *builders) ranges(c map[string]interface{}) (pipeline.Node, error) {
	return &feature.RangeNode{
		Mid:     conv.ConfigGetInt64(c, "k_m", b.cfg.KM),
		Short:   conv.ConfigGetInt64(c, "k_s", b.cfg.KS),
		Workers: conv.ConfigGetInt(c, "workers", b.cfg.Workers),
	}, nil
}

func (b *builders) split(map[string]interface{}) (pipeline.Node, error) {
	return &split.Node{}, nil
}

func (b *builders) negative(c map[string]interface{}) (pipeline.Node, error) {
	return &sample.NegativeNode{
		NumSamples: map[core.SplitKind]int{
			core.SplitTrain: conv.ConfigGetInt(c, "train_num_samples", b.cfg.TrainNumSamples),
			core.SplitValid: conv.ConfigGetInt(c, "valid_num_samples", b.cfg.ValidNumSamples),
			core.SplitTest:  conv.ConfigGetInt(c, "test_num_samples", b.cfg.TestNumSamples),
		},
		Seed:      uint64(conv.ConfigGetInt64(c, "seed", int64(b.cfg.Seed))),
		CacheSize: conv.ConfigGetInt(c, "sample_cache_size", b.cfg.SampleCacheSize),
		Workers:   conv.ConfigGetInt(c, "workers", b.cfg.Workers),
		Logger:    b.log,
	}, nil
}

// Shape 是 Pipeline 中节点实际生效的产物形状参数，节点级覆盖优先于全局配置。
type Shape struct {
	HistoryLen int
	NumSamples map[core.SplitKind]int
}

// ResolveShape 从已构建的 Pipeline 中读取历史窗口长度与各划分负样本个数。
// 缺少对应节点时回退到 cfg 中的全局取值。
func ResolveShape(p *pipeline.Pipeline, cfg *Config) Shape {
	s := Shape{HistoryLen: cfg.HistoryLen, NumSamples: cfg.NumSamples()}
	for _, n := range p.Nodes {
		switch node := n.(type) {
		case *feature.WindowNode:
			s.HistoryLen = node.Size
		case *sample.NegativeNode:
			s.NumSamples = node.NumSamples
		}
	}
	return s
}
