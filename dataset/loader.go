package dataset

import "math/rand/v2"

// Batch 是一批按行优先拼接的张量，序列字段形状为 [Size, HistoryLen] / [Size, NegWidth]。
type Batch struct {
	Size       int
	HistoryLen int
	NegWidth   int

	Users     []int64
	Items     []int64
	Cats      []int64
	Cons      []float32
	Qlts      []float32
	MidLens   []int32
	ShortLens []int32
	ItemHis   []int64
	CatHis    []int64
	ConHis    []float32
	QltHis    []float32
	NegItems  []int64
}

// Loader 按批迭代 Dataset：train 通常打乱顺序，valid / test 顺序读取。
type Loader struct {
	ds        *Dataset
	batchSize int
	rng       *rand.Rand
	dropLast  bool

	order []int
	pos   int
}

// LoaderOption Loader 配置选项
type LoaderOption func(*Loader)

// WithShuffle 每轮用给定随机源打乱顺序
func WithShuffle(rng *rand.Rand) LoaderOption {
	return func(l *Loader) {
		l.rng = rng
	}
}

// WithDropLast 丢弃最后不足一批的数据
func WithDropLast(drop bool) LoaderOption {
	return func(l *Loader) {
		l.dropLast = drop
	}
}

// NewLoader 创建 Loader；batchSize <= 0 时视为 1。
func NewLoader(ds *Dataset, batchSize int, opts ...LoaderOption) *Loader {
	if batchSize <= 0 {
		batchSize = 1
	}
	l := &Loader{ds: ds, batchSize: batchSize}
	for _, opt := range opts {
		opt(l)
	}
	l.Reset()
	return l
}

// Reset 开始新一轮迭代，启用打乱时重新洗牌
func (l *Loader) Reset() {
	if l.order == nil {
		l.order = make([]int, l.ds.Len())
	}
	for i := range l.order {
		l.order[i] = i
	}
	if l.rng != nil {
		l.rng.Shuffle(len(l.order), func(i, j int) {
			l.order[i], l.order[j] = l.order[j], l.order[i]
		})
	}
	l.pos = 0
}

// NumBatches 返回每轮的批数
func (l *Loader) NumBatches() int {
	n := l.ds.Len()
	if l.dropLast {
		return n / l.batchSize
	}
	return (n + l.batchSize - 1) / l.batchSize
}

// Next 返回下一批；本轮结束时返回 false
func (l *Loader) Next() (*Batch, bool) {
	remain := len(l.order) - l.pos
	if remain <= 0 || (l.dropLast && remain < l.batchSize) {
		return nil, false
	}
	size := min(remain, l.batchSize)
	idx := l.order[l.pos : l.pos+size]
	l.pos += size
	return l.gather(idx), true
}

func (l *Loader) gather(idx []int) *Batch {
	shape := l.ds.Shape()
	L, W := shape.HistoryLen, shape.NegWidth
	size := len(idx)
	b := &Batch{
		Size:       size,
		HistoryLen: L,
		NegWidth:   W,
		Users:      make([]int64, size),
		Items:      make([]int64, size),
		Cats:       make([]int64, size),
		Cons:       make([]float32, size),
		Qlts:       make([]float32, size),
		MidLens:    make([]int32, size),
		ShortLens:  make([]int32, size),
		ItemHis:    make([]int64, 0, size*L),
		CatHis:     make([]int64, 0, size*L),
		ConHis:     make([]float32, 0, size*L),
		QltHis:     make([]float32, 0, size*L),
		NegItems:   make([]int64, 0, size*W),
	}
	for k, i := range idx {
		s := l.ds.Get(i)
		b.Users[k] = s.User
		b.Items[k] = s.Item
		b.Cats[k] = s.Cat
		b.Cons[k] = s.Con
		b.Qlts[k] = s.Qlt
		b.MidLens[k] = s.MidLen
		b.ShortLens[k] = s.ShortLen
		b.ItemHis = append(b.ItemHis, s.ItemHis...)
		b.CatHis = append(b.CatHis, s.CatHis...)
		b.ConHis = append(b.ConHis, s.ConHis...)
		b.QltHis = append(b.QltHis, s.QltHis...)
		b.NegItems = append(b.NegItems, s.NegItems...)
	}
	return b
}
