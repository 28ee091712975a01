package engine

// DefaultTableSize is the transposition table entry count used when none is
// configured. It must be odd so that the stored 32-bit partial key and the
// slot index together identify a 49-bit position key.
const DefaultTableSize = (1 << 21) - 9

// table is a fixed-size, always-replace transposition table. A stored value
// of 0 means the slot is empty.
type table struct {
	keys []uint32
	vals []int8
}

func newTable(size int) *table {
	if size <= 0 {
		size = DefaultTableSize
	}
	if size%2 == 0 {
		size++
	}
	return &table{
		keys: make([]uint32, size),
		vals: make([]int8, size),
	}
}

func (t *table) index(key uint64) int {
	return int(key % uint64(len(t.keys)))
}

func (t *table) put(key uint64, val int8) {
	i := t.index(key)
	t.keys[i] = uint32(key)
	t.vals[i] = val
}

func (t *table) get(key uint64) int8 {
	i := t.index(key)
	if t.keys[i] == uint32(key) {
		return t.vals[i]
	}
	return 0
}

func (t *table) reset() {
	clear(t.keys)
	clear(t.vals)
}
