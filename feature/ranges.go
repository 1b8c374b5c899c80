package feature

// RangeCounts 对按时间升序的时间戳计算：每个事件之前 window 时长内（闭区间
// [t-window, t]）同一用户的其他事件数，即区间内事件数减去自身。
//
// 与历史窗口不同，这里不受历史长度 L 的限制，扫描完整的本地事件集合。
// 时间戳相同的事件互相计入。两个指针都单调前进，整体线性。
func RangeCounts(ts []int64, window int64) []int32 {
	n := len(ts)
	out := make([]int32, n)
	lo, hi := 0, 0
	for i := 0; i < n; i++ {
		t := ts[i]
		for lo < n && ts[lo] < t-window {
			lo++
		}
		if hi < i+1 {
			hi = i + 1
		}
		for hi < n && ts[hi] <= t {
			hi++
		}
		out[i] = int32(hi - lo - 1)
	}
	return out
}
