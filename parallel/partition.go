package parallel

// Offset returns the byte offset at which worker i of workers starts
// scanning a stream of size bytes. Offsets are non-decreasing in i, the
// first is 0 and all are below size when size is positive.
func Offset(i int, size int64, workers int) int64 {
	if workers <= 0 || size <= 0 {
		return 0
	}
	return int64(i) * size / int64(workers)
}
