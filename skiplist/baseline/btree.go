package baseline

import (
	"github.com/google/btree"

	"github.com/Hakuto4838/TowerList.git/skiplist"
)

const DefaultDegree = 32

type entry struct {
	key   skiplist.K
	value skiplist.V
}

func entryLess(a, b entry) bool {
	return a.key < b.key
}

// BTreeMap 以 github.com/google/btree 作為對照組
type BTreeMap struct {
	tree *btree.BTreeG[entry]
}

func NewBTreeMap(degree int) *BTreeMap {
	if degree < 2 {
		degree = DefaultDegree
	}
	return &BTreeMap{tree: btree.NewG(degree, entryLess)}
}

func (m *BTreeMap) Contains(key skiplist.K) bool {
	return m.tree.Has(entry{key: key})
}

func (m *BTreeMap) Get(key skiplist.K) (skiplist.V, bool) {
	e, ok := m.tree.Get(entry{key: key})
	return e.value, ok
}

func (m *BTreeMap) Put(key skiplist.K, value skiplist.V) {
	m.tree.ReplaceOrInsert(entry{key: key, value: value})
}

func (m *BTreeMap) Delete(key skiplist.K) {
	m.tree.Delete(entry{key: key})
}

func (m *BTreeMap) Len() int {
	return m.tree.Len()
}
