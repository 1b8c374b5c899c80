package core

// Review 是原始交互日志中的一行（用户对物品的一次评论/交互）。
type Review struct {
	UserID     string  `json:"user_id"`
	ItemID     string  `json:"item_id"`
	Timestamp  int64   `json:"timestamp"` // 毫秒
	Rating     float64 `json:"rating"`
	Conformity float64 `json:"conformity"`
	Quality    float64 `json:"quality"`
}

// ItemMeta 是物品元数据中的一行。
type ItemMeta struct {
	ItemID       string   `json:"item_id"`
	Categories   []string `json:"categories"`
	AvgRating    float64  `json:"avg_rating"`
	RatingNumber int64    `json:"rating_number"`
	Store        string   `json:"store"`
}

// PrimaryCategory 把类目列表投影为单个类目：
// 两个及以上取第二个，恰好一个取该值，否则为空（视为 null）。
func (m *ItemMeta) PrimaryCategory() string {
	switch {
	case len(m.Categories) > 1:
		return m.Categories[1]
	case len(m.Categories) == 1:
		return m.Categories[0]
	default:
		return ""
	}
}

// Event 是归一化后的一次交互，合并了评论与物品元数据。
// Category 为空字符串表示 null。创建后不再修改。
type Event struct {
	UserID       string
	ItemID       string
	Category     string
	Timestamp    int64
	Rating       float64
	Conformity   float64
	Quality      float64
	AvgRating    float64
	RatingNumber int64
	Store        string

	// Seq 是事件在原始日志中的顺序，用于时间戳相同时的稳定排序。
	Seq int
}
