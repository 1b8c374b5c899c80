package feature

// Window 为序列的每个位置生成长度为 size 的尾部窗口：
//
//	out[i] = padLeft(seq[max(0, i-size+1) : i+1], size)
//
// 窗口包含当前位置（out[i][size-1] == seq[i]），左侧用零值补齐，不会包含 i 之后的元素。
// 所有窗口共享一块底层数组，总开销与输出大小成正比。
func Window[T any](seq []T, size int) [][]T {
	n := len(seq)
	if n == 0 || size <= 0 {
		return nil
	}
	backing := make([]T, n*size)
	out := make([][]T, n)
	for i := 0; i < n; i++ {
		w := backing[i*size : (i+1)*size : (i+1)*size]
		start := i - size + 1
		if start < 0 {
			start = 0
		}
		copy(w[size-(i+1-start):], seq[start:i+1])
		out[i] = w
	}
	return out
}
