package filter

import (
	"context"
	"fmt"

	"github.com/rushteam/recprep/core"
	"github.com/rushteam/recprep/pkg/dsl"
)

// ExprFilter 用 CEL 表达式描述“保留”条件，表达式为 false 的事件被过滤。
//
// 示例：
//   - `event.rating >= 3.0` 只保留正向交互
//   - `event.category != ""` 只保留有类目的物品
type ExprFilter struct {
	prg *dsl.Program
}

// NewExprFilter 编译保留条件表达式。
func NewExprFilter(expr string) (*ExprFilter, error) {
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleFilter, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("compile filter %q", expr), err)
	}
	return &ExprFilter{prg: prg}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

func (f *ExprFilter) ShouldFilter(_ context.Context, ev *core.Event) (bool, error) {
	keep, err := f.prg.Evaluate(map[string]interface{}{"event": eventVars(ev)})
	if err != nil {
		return false, err
	}
	return !keep, nil
}

func eventVars(ev *core.Event) map[string]interface{} {
	return map[string]interface{}{
		"user_id":       ev.UserID,
		"item_id":       ev.ItemID,
		"category":      ev.Category,
		"timestamp":     ev.Timestamp,
		"rating":        ev.Rating,
		"conformity":    ev.Conformity,
		"quality":       ev.Quality,
		"avg_rating":    ev.AvgRating,
		"rating_number": ev.RatingNumber,
		"store":         ev.Store,
	}
}
