package feature

import "sort"

// FrequencyEncoder 频率排序编码
// 按出现频率降序为每个不同取值分配稠密整数编码，频率相同时按首次出现顺序。
// Pad 为 true 时编码从 1 开始，0 保留给 padding / 未知值。
// Nullable 为 true 时空字符串视为 null：不参与统计，编码为 0（只用于类目列，且需要 Pad）。
// 否则空字符串与其他取值一样参与编码，保证编码是一一映射。
type FrequencyEncoder struct {
	Pad      bool
	Nullable bool
	Mapping  map[string]int32
}

// NewFrequencyEncoder 创建频率编码器
func NewFrequencyEncoder(pad bool) *FrequencyEncoder {
	return &FrequencyEncoder{Pad: pad}
}

// NewNullableEncoder 创建把空字符串视为 null 的编码器，0 同时表示 padding 与 null。
func NewNullableEncoder() *FrequencyEncoder {
	return &FrequencyEncoder{Pad: true, Nullable: true}
}

// Fit 统计整列取值并生成编码表。
// 必须在划分 train/valid/test 之前对全量数据调用，保证三个划分共享编码空间。
func (e *FrequencyEncoder) Fit(values []string) *FrequencyEncoder {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, v := range values {
		if v == "" && e.Nullable {
			continue
		}
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	offset := int32(0)
	if e.Pad {
		offset = 1
	}
	e.Mapping = make(map[string]int32, len(order))
	for i, v := range order {
		e.Mapping[v] = int32(i) + offset
	}
	return e
}

// Encode 编码单个值，未见过的值编码为 0
func (e *FrequencyEncoder) Encode(value string) int32 {
	return e.Mapping[value]
}

// EncodeColumn 编码整列
func (e *FrequencyEncoder) EncodeColumn(values []string) []int32 {
	out := make([]int32, len(values))
	for i, v := range values {
		out[i] = e.Encode(v)
	}
	return out
}

// Len 返回不同取值的数量
func (e *FrequencyEncoder) Len() int {
	return len(e.Mapping)
}

// MaxCode 返回最大编码；没有取值时返回 0
func (e *FrequencyEncoder) MaxCode() int32 {
	if len(e.Mapping) == 0 {
		return 0
	}
	if e.Pad {
		return int32(len(e.Mapping))
	}
	return int32(len(e.Mapping)) - 1
}
