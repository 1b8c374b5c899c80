package core

// Record 是一条训练样本行：编码后的 id、侧信号历史、时间窗口计数与负样本。
// 构建完成后只读。
type Record struct {
	UserID    string  `json:"user_id"`
	User      int32   `json:"user_encoded"`
	Item      int32   `json:"item_encoded"`
	Cat       int32   `json:"cat_encoded"`
	Con       float32 `json:"conformity"`
	Qlt       float32 `json:"quality"`
	Timestamp int64   `json:"timestamp"`
	UnitTime  int64   `json:"unit_time"`

	ItemHis []int32   `json:"item_his_encoded"`
	CatHis  []int32   `json:"cat_his_encoded"`
	ConHis  []float32 `json:"con_his"`
	QltHis  []float32 `json:"qlt_his"`

	MidLen   int32 `json:"mid_len"`
	ShortLen int32 `json:"short_len"`

	NegItems []int32 `json:"neg_items"`
}

// Group 是某个用户在 Frame.Records 中的连续区间 [Start, End)。
type Group struct {
	UserID string
	Start  int
	End    int
}

// Len 返回区间长度
func (g Group) Len() int { return g.End - g.Start }
