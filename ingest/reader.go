// Package ingest 读取原始交互日志与物品元数据（JSON Lines），并归一化为 core.Event。
//
// 缺少必需字段属于致命错误：批处理不会尝试修复脏数据，直接返回 INVALID_INPUT。
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/rushteam/recprep/core"
)

// rawReview 使用指针字段区分“缺失”与“零值”。
// 物品 id 兼容 parent_asin 与 item_id 两种列名。
type rawReview struct {
	UserID     *string  `json:"user_id"`
	ParentASIN *string  `json:"parent_asin"`
	ItemID     *string  `json:"item_id"`
	Timestamp  *int64   `json:"timestamp"`
	Rating     *float64 `json:"rating"`
	Conformity *float64 `json:"conformity"`
	Quality    *float64 `json:"quality"`
}

type rawMeta struct {
	ParentASIN   *string  `json:"parent_asin"`
	ItemID       *string  `json:"item_id"`
	Categories   []string `json:"categories"`
	AverageRat   *float64 `json:"average_rating"`
	RatingNumber *int64   `json:"rating_number"`
	Store        *string  `json:"store"`
}

func missingField(kind string, line int, field string) error {
	return core.NewDomainError(core.ModuleIngest, core.ErrorCodeInvalidInput,
		fmt.Sprintf("%s record %d: missing required field %q", kind, line, field))
}

// blank 表示字段缺失或为空字符串；id 列为空与缺失同样视为缺少必需字段。
func blank(p *string) bool {
	return p == nil || *p == ""
}

func pickItemID(parentASIN, itemID *string) *string {
	if !blank(parentASIN) {
		return parentASIN
	}
	return itemID
}

// ReadReviews 从 JSON Lines 流读取交互日志。
// 必需字段：user_id、parent_asin（或 item_id）、timestamp、conformity、quality。
func ReadReviews(r io.Reader) ([]core.Review, error) {
	dec := json.NewDecoder(r)
	var out []core.Review
	for line := 1; ; line++ {
		var raw rawReview
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, core.WrapDomainError(core.ModuleIngest, core.ErrorCodeInvalidInput,
				fmt.Sprintf("review record %d: malformed json", line), err)
		}
		item := pickItemID(raw.ParentASIN, raw.ItemID)
		switch {
		case blank(raw.UserID):
			return nil, missingField("review", line, "user_id")
		case blank(item):
			return nil, missingField("review", line, "parent_asin")
		case raw.Timestamp == nil:
			return nil, missingField("review", line, "timestamp")
		case raw.Conformity == nil:
			return nil, missingField("review", line, "conformity")
		case raw.Quality == nil:
			return nil, missingField("review", line, "quality")
		}
		rv := core.Review{
			UserID:     *raw.UserID,
			ItemID:     *item,
			Timestamp:  *raw.Timestamp,
			Conformity: *raw.Conformity,
			Quality:    *raw.Quality,
		}
		if raw.Rating != nil {
			rv.Rating = *raw.Rating
		}
		out = append(out, rv)
	}
	return out, nil
}

// ReadMetas 从 JSON Lines 流读取物品元数据。
// 必需字段：parent_asin（或 item_id）、categories。
func ReadMetas(r io.Reader) ([]core.ItemMeta, error) {
	dec := json.NewDecoder(r)
	var out []core.ItemMeta
	for line := 1; ; line++ {
		var raw rawMeta
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, core.WrapDomainError(core.ModuleIngest, core.ErrorCodeInvalidInput,
				fmt.Sprintf("meta record %d: malformed json", line), err)
		}
		item := pickItemID(raw.ParentASIN, raw.ItemID)
		if blank(item) {
			return nil, missingField("meta", line, "parent_asin")
		}
		if raw.Categories == nil {
			return nil, missingField("meta", line, "categories")
		}
		m := core.ItemMeta{
			ItemID:     *item,
			Categories: raw.Categories,
		}
		if raw.AverageRat != nil {
			m.AvgRating = *raw.AverageRat
		}
		if raw.RatingNumber != nil {
			m.RatingNumber = *raw.RatingNumber
		}
		if raw.Store != nil {
			m.Store = *raw.Store
		}
		out = append(out, m)
	}
	return out, nil
}

// ReadReviewsFile 打开文件读取交互日志，读取完成后关闭文件。
func ReadReviewsFile(path string) ([]core.Review, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleIngest, core.ErrorCodeInvalidInput, "open reviews", err)
	}
	defer f.Close()
	return ReadReviews(f)
}

// ReadMetasFile 打开文件读取物品元数据，读取完成后关闭文件。
func ReadMetasFile(path string) ([]core.ItemMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleIngest, core.ErrorCodeInvalidInput, "open meta", err)
	}
	defer f.Close()
	return ReadMetas(f)
}
