// Package dataset 把划分后的记录表转换为定长张量，按下标随机访问或按批迭代。
package dataset

import (
	"fmt"

	"github.com/rushteam/recprep/core"
)

// Shape 是整个集合统一的字段形状。
type Shape struct {
	// HistoryLen 是四列历史序列的长度 L
	HistoryLen int
	// NegWidth 是负样本列宽：train / valid 为 k，test 为 k+1
	NegWidth int
}

// Dataset 持有与原始记录独立的扁平张量副本，构建后只读。
// 序列字段按行优先存储：第 i 行位于 [i*width, (i+1)*width)。
type Dataset struct {
	n     int
	shape Shape

	Users     []int64
	Items     []int64
	Cats      []int64
	Cons      []float32
	Qlts      []float32
	MidLens   []int32
	ShortLens []int32

	ItemHis  []int64
	CatHis   []int64
	ConHis   []float32
	QltHis   []float32
	NegItems []int64
}

// Sample 是单行数据，序列字段是 Dataset 内部存储的只读视图。
type Sample struct {
	User     int64
	Item     int64
	Cat      int64
	Con      float32
	Qlt      float32
	ItemHis  []int64
	CatHis   []int64
	ConHis   []float32
	QltHis   []float32
	MidLen   int32
	ShortLen int32
	NegItems []int64
}

func shapeError(row int, field string, got, want int) error {
	return core.NewDomainError(core.ModuleDataset, core.ErrorCodeShapeMismatch,
		fmt.Sprintf("row %d: %s has length %d, want %d", row, field, got, want))
}

// New 校验形状并拷贝记录。
//
// 形状约定：
//   - 四列历史长度必须恰好为 HistoryLen，否则返回 SHAPE_MISMATCH
//   - 负样本不足 NegWidth 时在尾部补 0；超过 NegWidth 返回 SHAPE_MISMATCH
func New(records []core.Record, shape Shape) (*Dataset, error) {
	if shape.HistoryLen <= 0 || shape.NegWidth < 0 {
		return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeInvalidConfig,
			fmt.Sprintf("invalid shape %+v", shape))
	}
	n := len(records)
	L, W := shape.HistoryLen, shape.NegWidth
	d := &Dataset{
		n:         n,
		shape:     shape,
		Users:     make([]int64, n),
		Items:     make([]int64, n),
		Cats:      make([]int64, n),
		Cons:      make([]float32, n),
		Qlts:      make([]float32, n),
		MidLens:   make([]int32, n),
		ShortLens: make([]int32, n),
		ItemHis:   make([]int64, n*L),
		CatHis:    make([]int64, n*L),
		ConHis:    make([]float32, n*L),
		QltHis:    make([]float32, n*L),
		NegItems:  make([]int64, n*W),
	}

	for i := range records {
		r := &records[i]
		switch {
		case len(r.ItemHis) != L:
			return nil, shapeError(i, "item_his", len(r.ItemHis), L)
		case len(r.CatHis) != L:
			return nil, shapeError(i, "cat_his", len(r.CatHis), L)
		case len(r.ConHis) != L:
			return nil, shapeError(i, "con_his", len(r.ConHis), L)
		case len(r.QltHis) != L:
			return nil, shapeError(i, "qlt_his", len(r.QltHis), L)
		case len(r.NegItems) > W:
			return nil, shapeError(i, "neg_items", len(r.NegItems), W)
		}

		d.Users[i] = int64(r.User)
		d.Items[i] = int64(r.Item)
		d.Cats[i] = int64(r.Cat)
		d.Cons[i] = r.Con
		d.Qlts[i] = r.Qlt
		d.MidLens[i] = r.MidLen
		d.ShortLens[i] = r.ShortLen

		base := i * L
		for j := 0; j < L; j++ {
			d.ItemHis[base+j] = int64(r.ItemHis[j])
			d.CatHis[base+j] = int64(r.CatHis[j])
		}
		copy(d.ConHis[base:base+L], r.ConHis)
		copy(d.QltHis[base:base+L], r.QltHis)

		nb := i * W
		for j, v := range r.NegItems {
			d.NegItems[nb+j] = int64(v)
		}
	}
	return d, nil
}

// Len 返回行数
func (d *Dataset) Len() int { return d.n }

// Shape 返回字段形状
func (d *Dataset) Shape() Shape { return d.shape }

// Get 返回第 i 行，越界时 panic（与切片下标一致）。
func (d *Dataset) Get(i int) Sample {
	if i < 0 || i >= d.n {
		panic(fmt.Sprintf("dataset: index %d out of range [0, %d)", i, d.n))
	}
	L, W := d.shape.HistoryLen, d.shape.NegWidth
	return Sample{
		User:     d.Users[i],
		Item:     d.Items[i],
		Cat:      d.Cats[i],
		Con:      d.Cons[i],
		Qlt:      d.Qlts[i],
		ItemHis:  d.ItemHis[i*L : (i+1)*L : (i+1)*L],
		CatHis:   d.CatHis[i*L : (i+1)*L : (i+1)*L],
		ConHis:   d.ConHis[i*L : (i+1)*L : (i+1)*L],
		QltHis:   d.QltHis[i*L : (i+1)*L : (i+1)*L],
		MidLen:   d.MidLens[i],
		ShortLen: d.ShortLens[i],
		NegItems: d.NegItems[i*W : (i+1)*W : (i+1)*W],
	}
}

// Build 按划分构建三个 Dataset，test 的负样本宽度为 k+1。
func Build(sets map[core.SplitKind][]core.Record, historyLen int, numSamples map[core.SplitKind]int) (map[core.SplitKind]*Dataset, error) {
	out := make(map[core.SplitKind]*Dataset, len(core.Splits))
	for _, kind := range core.Splits {
		width := numSamples[kind]
		if kind == core.SplitTest {
			width++
		}
		ds, err := New(sets[kind], Shape{HistoryLen: historyLen, NegWidth: width})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		out[kind] = ds
	}
	return out, nil
}
