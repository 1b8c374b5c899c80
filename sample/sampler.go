// Package sample 为每条记录生成负样本：从物品全集中排除正样本与历史窗口中的物品后均匀无放回抽取。
package sample

import (
	"encoding/binary"
	"math/rand/v2"
	"slices"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Draw 从 1..universe 中排除 history 与 positive 后，均匀无放回地抽取 k 个物品。
// 可选物品不足 k 个时返回全部可选物品（升序），调用方需要容忍短结果。
// 随机源由调用方持有并显式传入，不使用全局随机状态。
func Draw(r *rand.Rand, universe int32, positive int32, history []int32, k int) []int32 {
	if k <= 0 || universe <= 0 {
		return []int32{}
	}
	mask := excludedMask(universe, positive, history)
	excluded := 0
	for _, ex := range mask {
		if ex {
			excluded++
		}
	}
	eligible := int(universe) - excluded

	if eligible <= k {
		return eligiblePool(mask, eligible)
	}

	// 排除集合较小时拒绝采样，期望尝试次数不超过 2k
	if excluded*2 <= int(universe) && eligible >= 2*k {
		out := make([]int32, 0, k)
		picked := make(map[int32]struct{}, k)
		for len(out) < k {
			c := r.Int32N(universe) + 1
			if mask[c] {
				continue
			}
			if _, ok := picked[c]; ok {
				continue
			}
			picked[c] = struct{}{}
			out = append(out, c)
		}
		return out
	}

	// 否则在全集上做一次成员判定得到候选池，再做部分 Fisher-Yates
	pool := eligiblePool(mask, eligible)
	for i := 0; i < k; i++ {
		j := i + r.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k:k]
}

// excludedMask 返回长度为 universe+1 的掩码，mask[c] 为 true 表示 c 不可选。
// 下标 0 为 padding，始终不可选。
func excludedMask(universe int32, positive int32, history []int32) []bool {
	mask := make([]bool, int(universe)+1)
	mask[0] = true
	for _, h := range history {
		if h >= 1 && h <= universe {
			mask[h] = true
		}
	}
	if positive >= 1 && positive <= universe {
		mask[positive] = true
	}
	return mask
}

func eligiblePool(mask []bool, eligible int) []int32 {
	pool := make([]int32, 0, eligible)
	for c := 1; c < len(mask); c++ {
		if !mask[c] {
			pool = append(pool, int32(c))
		}
	}
	return pool
}

// Sampler 在 Draw 之上提供可复现的随机源派生与可选的内容寻址缓存。
//
// 随机源：
//   - 不启用缓存时，每行使用由 (seed, stream) 派生的独立 PCG 流
//   - 启用缓存时，随机流由 (seed, 缓存 key 指纹) 派生
//
// 因此结果只取决于种子与输入内容，与 worker 调度顺序无关。
// 缓存 key 为 (正样本, k, 历史集合) 的规范化字节串，容量有界并按 LRU 淘汰；
// 并发未命中由 singleflight 合并，避免“查询-插入”竞态下的重复计算。
type Sampler struct {
	universe int32
	seed     uint64
	cache    *lru.Cache[string, []int32]
	flight   singleflight.Group
}

// NewSampler 创建 Sampler；cacheSize <= 0 表示不启用缓存。
func NewSampler(universe int32, seed uint64, cacheSize int) (*Sampler, error) {
	s := &Sampler{universe: universe, seed: seed}
	if cacheSize > 0 {
		c, err := lru.New[string, []int32](cacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}
	return s, nil
}

// Universe 返回物品全集的最大编码
func (s *Sampler) Universe() int32 { return s.universe }

// Cached 返回是否启用了缓存
func (s *Sampler) Cached() bool { return s.cache != nil }

// Sample 为一行生成负样本。stream 用于在不启用缓存时区分各行的随机流。
// 返回的切片归调用方所有。
func (s *Sampler) Sample(stream uint64, positive int32, history []int32, k int) []int32 {
	if s.cache == nil {
		r := rand.New(rand.NewPCG(s.seed, stream))
		return Draw(r, s.universe, positive, history, k)
	}

	key := CacheKey(positive, history, k)
	if v, ok := s.cache.Get(key); ok {
		return slices.Clone(v)
	}
	v, _, _ := s.flight.Do(key, func() (interface{}, error) {
		if v, ok := s.cache.Get(key); ok {
			return v, nil
		}
		r := rand.New(rand.NewPCG(s.seed, xxhash.Sum64String(key)))
		out := Draw(r, s.universe, positive, history, k)
		s.cache.Add(key, out)
		return out, nil
	})
	return slices.Clone(v.([]int32))
}

// CacheKey 把 (positive, k, 历史集合) 编码为规范化字节串：历史去重并升序排列，
// 因此同一集合的不同排列得到相同的 key。
func CacheKey(positive int32, history []int32, k int) string {
	set := slices.Clone(history)
	slices.Sort(set)
	set = slices.Compact(set)

	buf := make([]byte, 0, 8+4*len(set))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(positive))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(k))
	for _, h := range set {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(h))
	}
	return string(buf)
}
