package ingest

import (
	"context"

	"github.com/rushteam/recprep/core"
	"github.com/rushteam/recprep/pipeline"
)

// Load 是一个 Ingest Node：从本地文件读取评论与元数据到 Frame。
// Frame 中已有数据且未配置路径时直接透传（便于测试与内存输入）。
type Load struct {
	ReviewsPath string
	MetaPath    string
}

func (n *Load) Name() string        { return "ingest.load" }
func (n *Load) Kind() pipeline.Kind { return pipeline.KindIngest }

func (n *Load) Process(ctx context.Context, frame *core.Frame) (*core.Frame, error) {
	if n.ReviewsPath != "" {
		reviews, err := ReadReviewsFile(n.ReviewsPath)
		if err != nil {
			return nil, err
		}
		frame.Reviews = reviews
	}
	if n.MetaPath != "" {
		metas, err := ReadMetasFile(n.MetaPath)
		if err != nil {
			return nil, err
		}
		frame.Metas = metas
	}
	return frame, nil
}

// Normalize 是一个 Ingest Node：按物品 id 左连接评论与元数据，产出 Event。
//
// 元数据按物品去重，保留第一次出现的记录；没有元数据的物品类目为 null。
type Normalize struct{}

func (n *Normalize) Name() string        { return "ingest.normalize" }
func (n *Normalize) Kind() pipeline.Kind { return pipeline.KindIngest }

func (n *Normalize) Process(ctx context.Context, frame *core.Frame) (*core.Frame, error) {
	if len(frame.Reviews) == 0 {
		return nil, core.NewDomainError(core.ModuleIngest, core.ErrorCodeInvalidInput, "no review records")
	}
	frame.Events = NormalizeEvents(frame.Reviews, frame.Metas)
	return frame, nil
}

// NormalizeEvents 合并评论与元数据，输出顺序与评论顺序一致。
func NormalizeEvents(reviews []core.Review, metas []core.ItemMeta) []core.Event {
	byItem := make(map[string]*core.ItemMeta, len(metas))
	for i := range metas {
		if _, ok := byItem[metas[i].ItemID]; ok {
			continue
		}
		byItem[metas[i].ItemID] = &metas[i]
	}

	events := make([]core.Event, len(reviews))
	for i, rv := range reviews {
		ev := core.Event{
			UserID:     rv.UserID,
			ItemID:     rv.ItemID,
			Timestamp:  rv.Timestamp,
			Rating:     rv.Rating,
			Conformity: rv.Conformity,
			Quality:    rv.Quality,
			Seq:        i,
		}
		if m, ok := byItem[rv.ItemID]; ok {
			ev.Category = m.PrimaryCategory()
			ev.AvgRating = m.AvgRating
			ev.RatingNumber = m.RatingNumber
			ev.Store = m.Store
		}
		events[i] = ev
	}
	return events
}
