// Package window partitions the vocabulary into K windows arranged on a
// ring and provides circular distance arithmetic over window ids.
package window

// Distance returns the circular distance between windows a and b on a ring
// of size k. The result is symmetric and lies in [0, k/2].
func Distance(a int, b int, k int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if k-d < d {
		d = k - d
	}
	return d
}

// SignedDistance returns actual minus predicted on the ring, normalized to
// (-k/2, k/2]. A positive result means the actual window sits clockwise of
// the prediction.
func SignedDistance(predicted int, actual int, k int) int {
	d := ((actual-predicted)%k + k) % k
	if d > k/2 {
		d -= k
	}
	return d
}
