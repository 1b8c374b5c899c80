package sample

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/recprep/core"
	"github.com/rushteam/recprep/pipeline"
	"github.com/rushteam/recprep/pkg/logger"
	"github.com/rushteam/recprep/split"
)

// rowsPerTask 是每个并发任务处理的行数
const rowsPerTask = 1024

// NegativeNode 是一个 Sample Node：为 train / valid / test 的每条记录生成负样本。
// 物品全集为 1..Vocab.MaxItem，历史集合取记录的物品历史窗口。
// 测试集在采样后把正样本追加为第 k+1 个候选。
type NegativeNode struct {
	NumSamples map[core.SplitKind]int
	Seed       uint64
	CacheSize  int
	Workers    int
	Logger     *logger.Logger
}

func (n *NegativeNode) Name() string        { return "sample.negative" }
func (n *NegativeNode) Kind() pipeline.Kind { return pipeline.KindSample }

func (n *NegativeNode) Process(ctx context.Context, frame *core.Frame) (*core.Frame, error) {
	if frame.Vocab == nil {
		return nil, core.NewDomainError(core.ModuleSample, core.ErrorCodeInvalidInput, "vocab not built")
	}
	sampler, err := NewSampler(frame.Vocab.MaxItem, n.Seed, n.CacheSize)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleSample, core.ErrorCodeInternalError, "create sampler", err)
	}
	log := logger.OrNop(n.Logger)

	for i, kind := range core.Splits {
		k := n.NumSamples[kind]
		if k < 0 {
			return nil, core.NewDomainError(core.ModuleSample, core.ErrorCodeInvalidConfig, "negative sample count must be >= 0")
		}
		rows := frame.Sets[kind]
		short, err := n.sampleSplit(ctx, sampler, uint64(i+1), rows, k, kind == core.SplitTest)
		if err != nil {
			return nil, err
		}
		if short > 0 {
			log.Warn("eligible pool smaller than requested negatives",
				"split", string(kind), "rows", short, "k", k)
		}
	}
	return frame, nil
}

// sampleSplit 按行分块并发采样，返回负样本不足 k 的行数。
// 每行的随机流由 (splitSalt, 行号) 决定，结果与调度顺序无关。
func (n *NegativeNode) sampleSplit(
	ctx context.Context,
	sampler *Sampler,
	splitSalt uint64,
	rows []core.Record,
	k int,
	appendPositive bool,
) (int64, error) {
	workers := n.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var short atomic.Int64
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for start := 0; start < len(rows); start += rowsPerTask {
		end := min(start+rowsPerTask, len(rows))
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				r := &rows[i]
				neg := sampler.Sample(splitSalt<<40|uint64(i), r.Item, r.ItemHis, k)
				if len(neg) < k {
					short.Add(1)
				}
				if appendPositive {
					neg = split.Candidates(neg, k, r.Item)
				}
				r.NegItems = neg
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}
	return short.Load(), nil
}
