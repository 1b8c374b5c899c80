package sample

import (
	"math/rand/v2"
	"reflect"
	"slices"
	"testing"
)

func TestDraw_Example(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 1))
	for trial := 0; trial < 200; trial++ {
		got := Draw(r, 10, 5, []int32{3, 7, 9}, 4)
		if len(got) != 4 {
			t.Fatalf("len = %d, want 4", len(got))
		}
		seen := map[int32]bool{}
		for _, v := range got {
			switch v {
			case 3, 5, 7, 9:
				t.Fatalf("drew excluded item %d in %v", v, got)
			}
			if v < 1 || v > 10 {
				t.Fatalf("drew %d outside universe", v)
			}
			if seen[v] {
				t.Fatalf("duplicate %d in %v", v, got)
			}
			seen[v] = true
		}
	}
}

func TestDraw(t *testing.T) {
	tests := []struct {
		name     string
		universe int32
		positive int32
		history  []int32
		k        int
		wantLen  int
		want     []int32 // 非空时要求精确匹配
	}{
		{
			name:     "pool smaller than k returns all eligible",
			universe: 6,
			positive: 1,
			history:  []int32{0, 0, 2, 3},
			k:        5,
			wantLen:  3,
			want:     []int32{4, 5, 6},
		},
		{
			name:     "pool equal to k",
			universe: 4,
			positive: 4,
			history:  []int32{1},
			k:        2,
			wantLen:  2,
			want:     []int32{2, 3},
		},
		{
			name:     "empty pool",
			universe: 2,
			positive: 1,
			history:  []int32{2},
			k:        3,
			wantLen:  0,
		},
		{
			name:     "dense exclusion uses bulk pool",
			universe: 20,
			positive: 20,
			history:  []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14},
			k:        3,
			wantLen:  3,
		},
		{
			name:     "zero k",
			universe: 10,
			positive: 1,
			k:        0,
			wantLen:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rand.New(rand.NewPCG(7, 7))
			got := Draw(r, tt.universe, tt.positive, tt.history, tt.k)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d (%v)", len(got), tt.wantLen, got)
			}
			if tt.want != nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Draw() = %v, want %v", got, tt.want)
			}
			for _, v := range got {
				if v == tt.positive || slices.Contains(tt.history, v) {
					t.Errorf("drew excluded item %d", v)
				}
			}
		})
	}
}

func TestSampler_Reproducible(t *testing.T) {
	history := []int32{0, 2, 4}
	for _, cacheSize := range []int{0, 16} {
		a, _ := NewSampler(1000, 99, cacheSize)
		b, _ := NewSampler(1000, 99, cacheSize)
		got := a.Sample(3, 1, history, 8)
		want := b.Sample(3, 1, history, 8)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("cache=%d: same seed gave %v and %v", cacheSize, got, want)
		}
	}
}

func TestSampler_CacheHitIsStable(t *testing.T) {
	s, err := NewSampler(500, 1, 4)
	if err != nil {
		t.Fatalf("NewSampler() error = %v", err)
	}
	first := s.Sample(1, 10, []int32{3, 2, 1}, 5)
	// 相同集合、不同排列与不同 stream 命中同一缓存项
	second := s.Sample(2, 10, []int32{1, 2, 3, 3}, 5)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("cache miss for equal history sets: %v vs %v", first, second)
	}
	second[0] = -1
	third := s.Sample(3, 10, []int32{1, 2, 3}, 5)
	if third[0] == -1 {
		t.Fatal("cached slice was mutated through a returned copy")
	}
}

func TestCacheKey(t *testing.T) {
	if CacheKey(1, []int32{3, 1, 2}, 4) != CacheKey(1, []int32{1, 2, 3, 2}, 4) {
		t.Error("permutations of the same set must share a key")
	}
	if CacheKey(1, []int32{1, 2}, 4) == CacheKey(2, []int32{1, 2}, 4) {
		t.Error("different positives must not share a key")
	}
	if CacheKey(1, []int32{1, 2}, 4) == CacheKey(1, []int32{1, 2}, 5) {
		t.Error("different k must not share a key")
	}
}
