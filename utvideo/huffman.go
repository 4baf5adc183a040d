package utvideo

import "sort"

// huffEntry is one symbol of the 256-entry code table.
type huffEntry struct {
	sym  uint8
	len  uint8
	code uint32
}

// addWeights combines two node weights. The high 24 bits accumulate
// frequency; the low 8 bits hold the subtree depth, advanced to one
// past the deeper child. The depth acts as a tie-breaker that keeps
// maximum code lengths low.
func addWeights(w1, w2 uint32) uint32 {
	max := w1 & 0xFF
	if w2&0xFF > max {
		max = w2 & 0xFF
	}
	return ((w1 & 0xFFFFFF00) + (w2 & 0xFFFFFF00)) | (1 + max)
}

func upHeap(val uint32, heap, weights []uint32) {
	initialVal := heap[val]

	for weights[initialVal] < weights[heap[val>>1]] {
		heap[val] = heap[val>>1]
		val >>= 1
	}

	heap[val] = initialVal
}

func downHeap(nrHeap uint32, heap, weights []uint32) {
	val := uint32(1)
	initialVal := heap[val]

	for {
		val2 := val << 1

		if val2 > nrHeap {
			break
		}

		if val2 < nrHeap && weights[heap[val2+1]] < weights[heap[val2]] {
			val2++
		}

		if weights[initialVal] < weights[heap[val2]] {
			break
		}

		heap[val] = heap[val2]

		val = val2
	}

	heap[val] = initialVal
}

// calculateCodeLengths derives the 256 Huffman code lengths from the
// symbol counts. Zero counts are promoted to one so that every symbol
// receives a code.
func calculateCodeLengths(lengths *[256]uint8, counts *[256]uint32) {
	// Heap and node entries start from 1
	var (
		weights [512]uint32
		heap    [512]uint32
		parents [512]int32
	)

	// Set initial weights
	for i := 0; i < 256; i++ {
		if counts[i] != 0 {
			weights[i+1] = counts[i] << 8
		} else {
			weights[i+1] = 1 << 8
		}
	}

	nrNodes := uint32(256)
	nrHeap := uint32(0)

	heap[0] = 0
	weights[0] = 0
	parents[0] = -2

	// Create initial nodes
	for i := uint32(1); i <= 256; i++ {
		parents[i] = -1

		nrHeap++
		heap[nrHeap] = i
		upHeap(nrHeap, heap[:], weights[:])
	}

	// Build the tree
	for nrHeap > 1 {
		node1 := heap[1]
		heap[1] = heap[nrHeap]
		nrHeap--

		downHeap(nrHeap, heap[:], weights[:])

		node2 := heap[1]
		heap[1] = heap[nrHeap]
		nrHeap--

		downHeap(nrHeap, heap[:], weights[:])

		nrNodes++

		parents[node1] = int32(nrNodes)
		parents[node2] = int32(nrNodes)
		weights[nrNodes] = addWeights(weights[node1], weights[node2])
		parents[nrNodes] = -1

		nrHeap++
		heap[nrHeap] = nrNodes
		upHeap(nrHeap, heap[:], weights[:])
	}

	// Generate lengths by walking each leaf up to the root
	for i := 1; i <= 256; i++ {
		j := 0
		for k := int32(i); parents[k] >= 0; k = parents[k] {
			j++
		}
		lengths[i-1] = uint8(j)
	}
}

// calculateCodes assigns canonical codes to the entries from their
// lengths. Entries are ordered by (length, symbol), codes are handed
// out from the largest length downward, and the table is returned in
// symbol order so that a symbol's code is indexed by its value.
func calculateCodes(he *[256]huffEntry) {
	sort.Slice(he[:], func(i, j int) bool {
		return (int(he[i].len)-int(he[j].len))*256+int(he[i].sym)-int(he[j].sym) < 0
	})

	last := 255
	for he[last].len == 255 && last > 0 {
		last--
	}

	code := uint32(1)
	for i := last; i >= 0; i-- {
		he[i].code = code >> (32 - he[i].len)
		code += uint32(0x80000000) >> (he[i].len - 1)
	}

	sort.Slice(he[:], func(i, j int) bool {
		return he[i].sym < he[j].sym
	})
}
