package changes

import "github.com/annel0/blockworld/internal/pos"

// entry - ожидающая запись в очереди
type entry struct {
	pos      pos.ChunkPos
	kind     Kind
	offsets  offsetSet
	attempts int
	seq      uint64
	due      uint64
	index    int
}

// merge объединяет вид и смещения: Created поглощает Edited
func (e *entry) merge(kind Kind, offsets []pos.Local) {
	if kind == Created || e.kind == Created {
		e.kind = Created
		e.offsets = nil
		return
	}
	if e.offsets == nil {
		e.offsets = make(offsetSet, len(offsets))
	}
	for _, l := range offsets {
		e.offsets[l] = struct{}{}
	}
}

func (e *entry) record() Record {
	rec := Record{Kind: e.kind, Pos: e.pos, Attempts: e.attempts, seq: e.seq}
	if e.kind == Edited {
		rec.Offsets = e.offsets.sorted()
	}
	return rec
}

// entryHeap упорядочивает записи по (due, seq): сначала готовые, затем старые
type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x interface{}) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}
