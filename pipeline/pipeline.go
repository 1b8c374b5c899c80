package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/recprep/core"
	"github.com/rushteam/recprep/pkg/logger"
)

// Pipeline 把预处理拆成可组合的 Node 链，按顺序执行。
// 任一 Node 出错即终止，错误中带上出错阶段的名称。
type Pipeline struct {
	Nodes  []Node
	Logger *logger.Logger
}

func (p *Pipeline) Run(ctx context.Context, frame *core.Frame) (*core.Frame, error) {
	log := logger.OrNop(p.Logger)
	cur := frame
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		log.Info("stage start", "stage", node.Name(), "kind", string(node.Kind()))
		next, err := node.Process(ctx, cur)
		if err != nil {
			log.Error("stage failed", "stage", node.Name(), "error", err)
			return nil, fmt.Errorf("stage %s: %w", node.Name(), err)
		}
		log.Info("stage done",
			"stage", node.Name(),
			"events", len(next.Events),
			"records", len(next.Records),
			"elapsed", time.Since(start).String(),
		)
		cur = next
	}
	return cur, nil
}
