package core

// SplitKind 标识数据集划分。
type SplitKind string

const (
	SplitTrain SplitKind = "train"
	SplitValid SplitKind = "valid"
	SplitTest  SplitKind = "test"
)

// Splits 是三个划分的固定顺序。
var Splits = []SplitKind{SplitTrain, SplitValid, SplitTest}

// Vocab 是编码器产出的编码空间，train / valid / test 共享同一份。
type Vocab struct {
	Users map[string]int32
	Items map[string]int32
	Cats  map[string]int32

	// MaxItem 是最大物品编码，负采样的全集为 1..MaxItem。
	MaxItem int32
}

// NumUsers 返回用户数
func (v *Vocab) NumUsers() int { return len(v.Users) }

// NumItems 返回物品数
func (v *Vocab) NumItems() int { return len(v.Items) }

// NumCats 返回类目数
func (v *Vocab) NumCats() int { return len(v.Cats) }

// ItemTables 是按物品编码索引的侧表，下标 0 为 padding。
type ItemTables struct {
	Cat []int32   `json:"item_to_cat"`
	Con []float32 `json:"item_to_con"`
	Qlt []float32 `json:"item_to_qlt"`
}

// Frame 是在 Pipeline 各阶段间传递的批处理状态。
//
// 数据流：
//
//	Reviews + Metas -> Events -> Records(按用户分组) -> Sets(train/valid/test)
type Frame struct {
	Reviews []Review
	Metas   []ItemMeta

	Events []Event

	// Records 按用户分组、组内按时间排序；Groups 描述每个用户的区间。
	Records []Record
	Groups  []Group

	Vocab *Vocab
	Items *ItemTables

	// Sets 是划分后的结果，每个划分拥有独立的 Record 副本。
	Sets map[SplitKind][]Record
}

// NewFrame 创建 Frame
func NewFrame(reviews []Review, metas []ItemMeta) *Frame {
	return &Frame{
		Reviews: reviews,
		Metas:   metas,
		Sets:    make(map[SplitKind][]Record, len(Splits)),
	}
}
