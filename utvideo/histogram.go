package utvideo

// countUsage counts symbol occurrences over a tightly packed residual
// plane. The counts sum to width*height.
func countUsage(src []byte, width, height int, counts *[256]uint32) {
	for i := 0; i < width*height; i++ {
		counts[src[i]]++
	}
}
