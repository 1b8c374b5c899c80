package feature

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/recprep/core"
)

// groupsPerTask 控制每个任务处理的用户数，避免为每个用户启动一个 goroutine。
const groupsPerTask = 256

// ForEachGroup 按用户分区并发执行 fn，最大并发为 workers（<=0 时取 GOMAXPROCS）。
// 每个用户的记录区间互不重叠，fn 只写自己区间内的记录，因此不需要额外的合并与重排。
func ForEachGroup(ctx context.Context, groups []core.Group, workers int, fn func(g core.Group) error) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for start := 0; start < len(groups); start += groupsPerTask {
		end := start + groupsPerTask
		if end > len(groups) {
			end = len(groups)
		}
		chunk := groups[start:end]
		eg.Go(func() error {
			for _, g := range chunk {
				if err := egCtx.Err(); err != nil {
					return err
				}
				if err := fn(g); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return eg.Wait()
}
