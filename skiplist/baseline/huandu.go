package baseline

import (
	hskiplist "github.com/huandu/skiplist"

	"github.com/Hakuto4838/TowerList.git/skiplist"
)

// HuanduList 以 github.com/huandu/skiplist 作為對照組
type HuanduList struct {
	sl *hskiplist.SkipList
}

func NewHuanduList() *HuanduList {
	return &HuanduList{sl: hskiplist.New(hskiplist.Int64)}
}

func (h *HuanduList) Contains(key skiplist.K) bool {
	return h.sl.Get(key) != nil
}

func (h *HuanduList) Get(key skiplist.K) (skiplist.V, bool) {
	elem := h.sl.Get(key)
	if elem == nil {
		return 0, false
	}
	return elem.Value.(skiplist.V), true
}

func (h *HuanduList) Put(key skiplist.K, value skiplist.V) {
	h.sl.Set(key, value)
}

func (h *HuanduList) Delete(key skiplist.K) {
	h.sl.Remove(key)
}

func (h *HuanduList) Len() int {
	return h.sl.Len()
}
